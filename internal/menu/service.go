package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

const (
	maxNameLength        = 120
	maxDescriptionLength = 1000
)

// Service manages the menu catalog.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]models.MenuItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	Create(ctx context.Context, input CreateInput) (*models.MenuItem, error)
	Update(ctx context.Context, input UpdateInput) (*models.MenuItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds the menu service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("menu repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.MenuItem, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu items")
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "load menu item")
	}
	return item, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.MenuItem, error) {
	item := &models.MenuItem{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Price:       input.Price,
		Available:   true,
		CookingTime: input.CookingTime,
		Options:     normalizeOptions(input.Options),
	}
	if input.Available != nil {
		item.Available = *input.Available
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create menu item")
	}
	return item, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.MenuItem, error) {
	if input.ID == uuid.Nil {
		return nil, pkgerrors.Validation("Ürün kimliği zorunlu", pkgerrors.FieldError{Field: "id", Message: "zorunlu alan"})
	}
	current, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, mapLookupError(err, "load menu item")
	}

	updates := map[string]any{}
	if input.Name != nil {
		current.Name = strings.TrimSpace(*input.Name)
		updates["name"] = current.Name
	}
	if input.Description != nil {
		current.Description = strings.TrimSpace(*input.Description)
		updates["description"] = current.Description
	}
	if input.Category != nil {
		current.Category = strings.TrimSpace(*input.Category)
		updates["category"] = current.Category
	}
	if input.Price != nil {
		current.Price = *input.Price
		updates["price"] = current.Price
	}
	if input.Available != nil {
		current.Available = *input.Available
		updates["available"] = current.Available
	}
	if input.CookingTime != nil {
		current.CookingTime = input.CookingTime
		updates["cooking_time"] = *input.CookingTime
	}
	if input.Options != nil {
		current.Options = normalizeOptions(*input.Options)
		updates["options"] = current.Options
	}

	if err := validateItem(current); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, current.ID, updates); err != nil {
		return nil, mapLookupError(err, "update menu item")
	}
	return s.Get(ctx, current.ID)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapLookupError(err, "delete menu item")
	}
	return nil
}

func validateItem(item *models.MenuItem) error {
	var fields []pkgerrors.FieldError
	switch {
	case item.Name == "":
		fields = append(fields, pkgerrors.FieldError{Field: "name", Message: "zorunlu alan"})
	case len([]rune(item.Name)) > maxNameLength:
		fields = append(fields, pkgerrors.FieldError{Field: "name", Message: fmt.Sprintf("en fazla %d karakter olmalı", maxNameLength)})
	}
	if len([]rune(item.Description)) > maxDescriptionLength {
		fields = append(fields, pkgerrors.FieldError{Field: "description", Message: fmt.Sprintf("en fazla %d karakter olmalı", maxDescriptionLength)})
	}
	if item.Category == "" {
		fields = append(fields, pkgerrors.FieldError{Field: "category", Message: "zorunlu alan"})
	}
	if !item.Price.IsPositive() {
		fields = append(fields, pkgerrors.FieldError{Field: "price", Message: "0'dan büyük olmalı"})
	}
	if item.CookingTime != nil && *item.CookingTime <= 0 {
		fields = append(fields, pkgerrors.FieldError{Field: "cookingTime", Message: "0'dan büyük olmalı"})
	}
	for i, opt := range item.Options {
		if opt.Name == "" {
			fields = append(fields, pkgerrors.FieldError{Field: fmt.Sprintf("options[%d].name", i), Message: "zorunlu alan"})
		}
		if opt.Price.IsNegative() {
			fields = append(fields, pkgerrors.FieldError{Field: fmt.Sprintf("options[%d].price", i), Message: "negatif olamaz"})
		}
	}
	if len(fields) > 0 {
		return pkgerrors.Validation("Ürün bilgileri geçersiz", fields...)
	}
	return nil
}

func normalizeOptions(opts types.MenuOptions) types.MenuOptions {
	out := make(types.MenuOptions, 0, len(opts))
	for _, opt := range opts {
		opt.Name = strings.TrimSpace(opt.Name)
		out = append(out, opt)
	}
	return out
}

func mapLookupError(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Ürün bulunamadı")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
