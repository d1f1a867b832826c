package tables

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

// Service exposes admin table management.
type Service interface {
	List(ctx context.Context) ([]TableView, error)
	Get(ctx context.Context, id uuid.UUID) (*TableView, error)
	Create(ctx context.Context, input CreateInput) (*TableView, error)
	Update(ctx context.Context, input UpdateInput) (*TableView, error)
	Open(ctx context.Context, number types.TableNumber) (*TableView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds the table service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tables repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]TableView, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tables")
	}
	counts, err := s.repo.ActiveOrderCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active orders")
	}
	out := make([]TableView, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewView(row, counts[row.ID]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TableView, error) {
	table, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "load table")
	}
	return s.view(ctx, table)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*TableView, error) {
	var fields []pkgerrors.FieldError
	if input.Number.IsZero() {
		fields = append(fields, pkgerrors.FieldError{Field: "number", Message: "zorunlu alan"})
	}
	capacity := input.Capacity
	if capacity == 0 {
		capacity = defaultCapacity
	}
	if capacity < 1 || capacity > maxCapacity {
		fields = append(fields, pkgerrors.FieldError{Field: "capacity", Message: fmt.Sprintf("1 ile %d arasında olmalı", maxCapacity)})
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("Masa bilgileri geçersiz", fields...)
	}

	table := &models.RestaurantTable{
		Number:   input.Number.String(),
		Capacity: capacity,
		Location: strings.TrimSpace(input.Location),
		Status:   enums.TableStatusEmpty,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, table); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Bu masa numarası zaten kayıtlı").
				WithDetails(map[string]any{"number": table.Number})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create table")
	}
	view := NewView(*table, 0)
	return &view, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*TableView, error) {
	if input.ID == uuid.Nil {
		return nil, pkgerrors.Validation("Masa kimliği zorunlu", pkgerrors.FieldError{Field: "id", Message: "zorunlu alan"})
	}
	updates := map[string]any{}
	if input.Capacity != nil {
		if *input.Capacity < 1 || *input.Capacity > maxCapacity {
			return nil, pkgerrors.Validation("Masa bilgileri geçersiz", pkgerrors.FieldError{
				Field:   "capacity",
				Message: fmt.Sprintf("1 ile %d arasında olmalı", maxCapacity),
			})
		}
		updates["capacity"] = *input.Capacity
	}
	if input.Location != nil {
		updates["location"] = strings.TrimSpace(*input.Location)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, input.ID, updates); err != nil {
			return nil, mapLookupError(err, "update table")
		}
	}
	return s.Get(ctx, input.ID)
}

func (s *service) Open(ctx context.Context, number types.TableNumber) (*TableView, error) {
	if number.IsZero() {
		return nil, pkgerrors.Validation("Masa numarası zorunlu", pkgerrors.FieldError{Field: "tableNumber", Message: "zorunlu alan"})
	}
	table, err := s.repo.FindByNumber(ctx, number.String())
	if err != nil {
		return nil, mapLookupError(err, "load table")
	}
	if table.Status != enums.TableStatusOccupied {
		if err := s.repo.SetStatus(ctx, table.ID, enums.TableStatusOccupied); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open table")
		}
		table.Status = enums.TableStatusOccupied
	}
	return s.view(ctx, table)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	table, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapLookupError(err, "load table")
	}
	if table.Status == enums.TableStatusOccupied {
		return pkgerrors.New(pkgerrors.CodeConflict, "Dolu masa silinemez")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "Sipariş geçmişi olan masa silinemez; pasif hale getirin")
		}
		return mapLookupError(err, "delete table")
	}
	return nil
}

func (s *service) view(ctx context.Context, table *models.RestaurantTable) (*TableView, error) {
	counts, err := s.repo.ActiveOrderCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active orders")
	}
	view := NewView(*table, counts[table.ID])
	return &view, nil
}

func mapLookupError(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Masa bulunamadı")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
