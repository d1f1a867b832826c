package menu

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

// ListFilter narrows GET /menu.
type ListFilter struct {
	Available *bool
	Category  string
}

// CreateInput adds a menu item.
type CreateInput struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Available   *bool
	CookingTime *int
	Options     types.MenuOptions
}

// UpdateInput patches a menu item; nil fields are left untouched.
type UpdateInput struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	Available   *bool
	CookingTime *int
	Options     *types.MenuOptions
}

// View is the API representation of a menu item.
type View struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Price       decimal.Decimal   `json:"price"`
	Available   bool              `json:"available"`
	CookingTime *int              `json:"cookingTime,omitempty"`
	Options     types.MenuOptions `json:"options"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewView maps a row onto its API view.
func NewView(item models.MenuItem) View {
	options := item.Options
	if options == nil {
		options = types.MenuOptions{}
	}
	return View{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Category:    item.Category,
		Price:       item.Price,
		Available:   item.Available,
		CookingTime: item.CookingTime,
		Options:     options,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
