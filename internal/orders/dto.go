package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

// ItemInput is one requested line. Name and price always come from the menu.
type ItemInput struct {
	MenuItemID      uuid.UUID
	Quantity        int
	Notes           string
	SelectedOptions []string
}

// CreateInput is a checkout from a table.
type CreateInput struct {
	TableNumber       types.TableNumber
	TableID           uuid.UUID
	Items             []ItemInput
	TotalAmount       *decimal.Decimal
	CustomerNotes     string
	Priority          string
	SessionID         *uuid.UUID
	DeviceFingerprint string
}

// CreateResult is returned to the guest after checkout.
type CreateResult struct {
	ID            uuid.UUID         `json:"id"`
	OrderNumber   string            `json:"orderNumber"`
	TotalAmount   decimal.Decimal   `json:"totalAmount"`
	Status        enums.OrderStatus `json:"status"`
	EstimatedTime int               `json:"estimatedTime"`
}

// UpdateStatusInput moves the order through the lifecycle.
type UpdateStatusInput struct {
	ID     uuid.UUID
	Status string
}

// UpdateItemStatusInput sets the kitchen state of one line by index.
type UpdateItemStatusInput struct {
	ID        uuid.UUID
	ItemIndex int
	Status    string
}

// UpdatePaymentInput records the payment state.
type UpdatePaymentInput struct {
	ID            uuid.UUID
	PaymentStatus string
}

// AddNotesInput replaces whichever notes are supplied.
type AddNotesInput struct {
	ID            uuid.UUID
	CustomerNotes *string
	KitchenNotes  *string
}

// PatchInput merges staff edits onto a stored order.
type PatchInput struct {
	ID            uuid.UUID
	Items         *types.OrderItems
	TotalAmount   *decimal.Decimal
	CustomerNotes *string
	KitchenNotes  *string
	Priority      *string
	EstimatedTime *int
}

// CloseTableResult summarizes a table close.
type CloseTableResult struct {
	TableNumber     string  `json:"tableNumber"`
	CompletedOrders []Order `json:"completedOrders"`
	ClosedSessions  int     `json:"closedSessions"`
}

// ListQuery carries the order board filters.
type ListQuery struct {
	Statuses         []enums.OrderStatus
	Search           string
	ExcludeCompleted bool
	GroupByTable     bool
	IncludeTableInfo bool
}

// ListResult is either a flat or a grouped order board.
type ListResult struct {
	Orders         []Order      `json:"-"`
	Groups         []TableGroup `json:"-"`
	OriginalOrders []Order      `json:"originalOrders"`
	Statistics     Statistics   `json:"statistics"`
}

// TableInfo enriches orders and groups with table metadata.
type TableInfo struct {
	ID       uuid.UUID `json:"id"`
	Number   string    `json:"number"`
	Location string    `json:"location"`
	Capacity int       `json:"capacity"`
}

// Order is the staff-facing order representation.
type Order struct {
	ID               uuid.UUID              `json:"id"`
	OrderNumber      string                 `json:"orderNumber"`
	TableID          uuid.UUID              `json:"tableId"`
	TableNumber      string                 `json:"tableNumber"`
	SessionID        *uuid.UUID             `json:"sessionId,omitempty"`
	Items            types.OrderItems       `json:"items"`
	TotalAmount      decimal.Decimal        `json:"totalAmount"`
	Status           enums.OrderStatus      `json:"status"`
	PaymentStatus    enums.PaymentStatus    `json:"paymentStatus"`
	Priority         enums.OrderPriority    `json:"priority"`
	CustomerNotes    string                 `json:"customerNotes"`
	KitchenNotes     string                 `json:"kitchenNotes"`
	EstimatedTime    int                    `json:"estimatedTime"`
	StatusTimestamps types.StatusTimestamps `json:"statusTimestamps"`
	ClosedViaTable   bool                   `json:"closedViaTable"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
	Table            *TableInfo             `json:"tableInfo,omitempty"`
}

// NewOrder maps a row onto its API view.
func NewOrder(o models.Order) Order {
	items := o.Items
	if items == nil {
		items = types.OrderItems{}
	}
	stamps := o.StatusTimestamps
	if stamps == nil {
		stamps = types.StatusTimestamps{}
	}
	return Order{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		TableID:          o.TableID,
		TableNumber:      o.TableNumber,
		SessionID:        o.SessionID,
		Items:            items,
		TotalAmount:      o.TotalAmount,
		Status:           o.Status,
		PaymentStatus:    o.PaymentStatus,
		Priority:         o.Priority,
		CustomerNotes:    o.CustomerNotes,
		KitchenNotes:     o.KitchenNotes,
		EstimatedTime:    o.EstimatedTime,
		StatusTimestamps: stamps,
		ClosedViaTable:   o.ClosedViaTable,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
