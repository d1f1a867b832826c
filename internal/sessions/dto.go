package sessions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

// Session flags raised by heuristics. "blocked" is set by staff and stops ordering.
const (
	FlagManyDevices     = "many_devices"
	FlagHighOrderVolume = "high_order_volume"
	FlagBlocked         = "blocked"
)

// StartInput is a QR scan asking for a session at a table.
type StartInput struct {
	TableNumber types.TableNumber
	Device      DeviceInfo
}

// StartResult carries the session and whether it was minted by this call.
type StartResult struct {
	Session View
	IsNew   bool
}

// ValidateResult answers whether a stored session may keep ordering.
type ValidateResult struct {
	Valid       bool
	CanOrder    bool
	DeviceMatch bool
	Session     View
}

// OrderRecord links a freshly placed order to its session.
type OrderRecord struct {
	SessionID    uuid.UUID
	OrderID      uuid.UUID
	Amount       decimal.Decimal
	Fingerprint  string
	At           time.Time
	RecentOrders int64
}

// View is the guest-facing session representation.
type View struct {
	SessionID    uuid.UUID            `json:"sessionId"`
	TableID      uuid.UUID            `json:"tableId"`
	TableNumber  string               `json:"tableNumber"`
	Status       enums.SessionStatus  `json:"status"`
	StartTime    time.Time            `json:"startTime"`
	ExpiryTime   time.Time            `json:"expiryTime"`
	LastActivity time.Time            `json:"lastActivity"`
	Devices      types.SessionDevices `json:"devices"`
	OrderCount   int                  `json:"orderCount"`
	TotalAmount  decimal.Decimal      `json:"totalAmount"`
	Orders       []uuid.UUID          `json:"orders"`
	Flags        []string             `json:"flags"`
	LastOrderAt  *time.Time           `json:"lastOrderAt,omitempty"`
}

// NewView maps a row onto its API view.
func NewView(s models.TableSession) View {
	orders := make([]uuid.UUID, len(s.OrderIDs))
	copy(orders, s.OrderIDs)
	flags := make([]string, len(s.Flags))
	copy(flags, s.Flags)
	devices := s.Devices
	if devices == nil {
		devices = types.SessionDevices{}
	}
	return View{
		SessionID:    s.ID,
		TableID:      s.TableID,
		TableNumber:  s.TableNumber,
		Status:       s.Status,
		StartTime:    s.StartTime,
		ExpiryTime:   s.ExpiresAt,
		LastActivity: s.LastActivity,
		Devices:      devices,
		OrderCount:   s.OrderCount,
		TotalAmount:  s.TotalAmount,
		Orders:       orders,
		Flags:        flags,
		LastOrderAt:  s.LastOrderAt,
	}
}
