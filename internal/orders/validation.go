package orders

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

const (
	maxNotesLength     = 500
	maxItemNotesLength = 200
	maxItemsPerOrder   = 50
)

func (s *service) validateItemInputs(items []ItemInput) []pkgerrors.FieldError {
	var fields []pkgerrors.FieldError
	if len(items) == 0 {
		return append(fields, pkgerrors.FieldError{Field: "items", Message: "en az bir ürün gerekli"})
	}
	if len(items) > maxItemsPerOrder {
		return append(fields, pkgerrors.FieldError{Field: "items", Message: fmt.Sprintf("en fazla %d satır olabilir", maxItemsPerOrder)})
	}
	for i, item := range items {
		if item.MenuItemID == uuid.Nil {
			fields = append(fields, pkgerrors.FieldError{Field: fmt.Sprintf("items[%d].menuItemId", i), Message: "zorunlu alan"})
		}
		if item.Quantity < 1 || item.Quantity > s.cfg.MaxItemQuantity {
			fields = append(fields, pkgerrors.FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: fmt.Sprintf("1 ile %d arasında olmalı", s.cfg.MaxItemQuantity),
			})
		}
		if len([]rune(item.Notes)) > maxItemNotesLength {
			fields = append(fields, pkgerrors.FieldError{
				Field:   fmt.Sprintf("items[%d].notes", i),
				Message: fmt.Sprintf("en fazla %d karakter olabilir", maxItemNotesLength),
			})
		}
	}
	return fields
}

// snapshotItems copies name and price from the menu onto each requested line.
// Option deltas are added to the unit price.
func snapshotItems(inputs []ItemInput, menu map[uuid.UUID]models.MenuItem) (types.OrderItems, error) {
	items := make(types.OrderItems, 0, len(inputs))
	var fields []pkgerrors.FieldError
	for i, input := range inputs {
		menuItem, ok := menu[input.MenuItemID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Menüde olmayan ürün sipariş edilemez").
				WithDetails(map[string]any{"menuItemId": input.MenuItemID.String(), "index": i})
		}
		if !menuItem.Available {
			return nil, pkgerrors.New(pkgerrors.CodeUnavailable, fmt.Sprintf("%s şu anda sipariş edilemez", menuItem.Name)).
				WithDetails(map[string]any{"menuItemId": menuItem.ID.String(), "name": menuItem.Name})
		}

		price := menuItem.Price
		selected := make([]types.SelectedOption, 0, len(input.SelectedOptions))
		for j, name := range input.SelectedOptions {
			option, found := menuItem.Options.Find(name)
			if !found {
				fields = append(fields, pkgerrors.FieldError{
					Field:   fmt.Sprintf("items[%d].selectedOptions[%d]", i, j),
					Message: "ürüne ait olmayan seçenek",
				})
				continue
			}
			selected = append(selected, types.SelectedOption{Name: option.Name, Price: option.Price})
			price = price.Add(option.Price)
		}
		if !price.IsPositive() {
			fields = append(fields, pkgerrors.FieldError{Field: fmt.Sprintf("items[%d].price", i), Message: "sıfırdan büyük olmalı"})
		}
		if len(selected) == 0 {
			selected = nil
		}
		items = append(items, types.OrderItem{
			MenuItemID:      menuItem.ID,
			Name:            menuItem.Name,
			Price:           price,
			Quantity:        input.Quantity,
			Notes:           strings.TrimSpace(input.Notes),
			SelectedOptions: selected,
			Status:          enums.ItemStatusPending,
			CookingTime:     menuItem.CookingTime,
		})
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("Sipariş kalemleri geçersiz", fields...)
	}
	return items, nil
}

// validateLines re-checks stored line snapshots after a staff edit.
func (s *service) validateLines(items types.OrderItems) []pkgerrors.FieldError {
	var fields []pkgerrors.FieldError
	if len(items) == 0 {
		return append(fields, pkgerrors.FieldError{Field: "items", Message: "en az bir ürün gerekli"})
	}
	for i, item := range items {
		if item.MenuItemID == uuid.Nil {
			fields = append(fields, pkgerrors.FieldError{Field: fmt.Sprintf("items[%d].menuItemId", i), Message: "zorunlu alan"})
		}
		if strings.TrimSpace(item.Name) == "" {
			fields = append(fields, pkgerrors.FieldError{Field: fmt.Sprintf("items[%d].name", i), Message: "zorunlu alan"})
		}
		if !item.Price.IsPositive() {
			fields = append(fields, pkgerrors.FieldError{Field: fmt.Sprintf("items[%d].price", i), Message: "sıfırdan büyük olmalı"})
		}
		if item.Quantity < 1 || item.Quantity > s.cfg.MaxItemQuantity {
			fields = append(fields, pkgerrors.FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: fmt.Sprintf("1 ile %d arasında olmalı", s.cfg.MaxItemQuantity),
			})
		}
		if item.Status != "" && !item.Status.IsValid() {
			fields = append(fields, pkgerrors.FieldError{Field: fmt.Sprintf("items[%d].status", i), Message: "geçersiz durum"})
		}
	}
	return fields
}

func (s *service) validateTotal(total decimal.Decimal) *pkgerrors.FieldError {
	if !total.IsPositive() {
		return &pkgerrors.FieldError{Field: "totalAmount", Message: "sıfırdan büyük olmalı"}
	}
	if total.GreaterThan(s.cfg.MaxTotal()) {
		return &pkgerrors.FieldError{Field: "totalAmount", Message: fmt.Sprintf("en fazla %s olabilir", s.cfg.MaxTotal().String())}
	}
	return nil
}

// estimateMinutes is the ceiling of the mean cooking time × quantity over lines
// that carry a cooking time.
func estimateMinutes(items types.OrderItems, fallback int) int {
	sum, count := 0, 0
	for _, item := range items {
		if item.CookingTime == nil || *item.CookingTime <= 0 {
			continue
		}
		sum += *item.CookingTime * item.Quantity
		count++
	}
	if count == 0 {
		return fallback
	}
	return int(math.Ceil(float64(sum) / float64(count)))
}

func parsePriority(raw string) (enums.OrderPriority, *pkgerrors.FieldError) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return enums.OrderPriorityNormal, nil
	}
	priority, err := enums.ParseOrderPriority(raw)
	if err != nil {
		return "", &pkgerrors.FieldError{Field: "priority", Message: "low, normal, high veya urgent olmalı"}
	}
	return priority, nil
}
