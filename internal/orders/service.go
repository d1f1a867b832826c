package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/internal/menu"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/sessions"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/tables"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/config"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/metrics"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/redis"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

const orderNumberAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*Order, error)
	UpdateItemStatus(ctx context.Context, input UpdateItemStatusInput) (*Order, error)
	UpdatePayment(ctx context.Context, input UpdatePaymentInput) (*Order, error)
	AddNotes(ctx context.Context, input AddNotesInput) (*Order, error)
	Patch(ctx context.Context, input PatchInput) (*Order, error)
	CloseTable(ctx context.Context, tableNumber types.TableNumber) (*CloseTableResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     Repository
	tables   tables.Repository
	menu     menu.Repository
	sessions SessionRecorder
	tx       txRunner
	limiter  redis.RateLimiter
	cfg      config.OrdersConfig
	sessCfg  config.SessionsConfig
	metrics  *metrics.DomainMetrics
	now      func() time.Time
}

// Option customizes the service.
type Option func(*service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics records order counters.
func WithMetrics(m *metrics.DomainMetrics) Option {
	return func(s *service) { s.metrics = m }
}

// WithRateLimiter throttles checkouts per session.
func WithRateLimiter(limiter redis.RateLimiter, cfg config.SessionsConfig) Option {
	return func(s *service) {
		s.limiter = limiter
		s.sessCfg = cfg
	}
}

// NewService builds the order service.
func NewService(repo Repository, tableRepo tables.Repository, menuRepo menu.Repository, recorder SessionRecorder, tx txRunner, cfg config.OrdersConfig, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tableRepo == nil {
		return nil, fmt.Errorf("tables repository required")
	}
	if menuRepo == nil {
		return nil, fmt.Errorf("menu repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("session recorder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cfg.MaxItemQuantity <= 0 {
		cfg.MaxItemQuantity = 99
	}
	if cfg.DefaultEstimatedMinutes <= 0 {
		cfg.DefaultEstimatedMinutes = 20
	}
	s := &service{
		repo:     repo,
		tables:   tableRepo,
		menu:     menuRepo,
		sessions: recorder,
		tx:       tx,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	fields := s.validateItemInputs(input.Items)
	if input.TableNumber.IsZero() && input.TableID == uuid.Nil {
		fields = append(fields, pkgerrors.FieldError{Field: "tableNumber", Message: "masa numarası veya masa kimliği gerekli"})
	}
	priority, perr := parsePriority(input.Priority)
	if perr != nil {
		fields = append(fields, *perr)
	}
	notes := strings.TrimSpace(input.CustomerNotes)
	if len([]rune(notes)) > maxNotesLength {
		fields = append(fields, pkgerrors.FieldError{Field: "customerNotes", Message: fmt.Sprintf("en fazla %d karakter olabilir", maxNotesLength)})
	}
	if input.TotalAmount != nil {
		if ferr := s.validateTotal(*input.TotalAmount); ferr != nil {
			fields = append(fields, *ferr)
		}
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("Sipariş bilgileri geçersiz", fields...)
	}

	if input.SessionID != nil {
		if err := s.throttle(ctx, *input.SessionID); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	var order models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		tableRepo := s.tables.WithTx(tx)
		repo := s.repo.WithTx(tx)

		table, err := s.lockTable(ctx, tableRepo, input.TableNumber, input.TableID)
		if err != nil {
			return err
		}
		if input.SessionID != nil {
			if err := s.sessions.CheckOrderable(ctx, tx, *input.SessionID, table.ID); err != nil {
				return err
			}
		}

		menuItems, err := s.loadMenu(ctx, s.menu.WithTx(tx), menuItemIDs(input.Items))
		if err != nil {
			return err
		}
		items, err := snapshotItems(input.Items, menuItems)
		if err != nil {
			return err
		}

		total := items.Total()
		if input.TotalAmount != nil {
			total = *input.TotalAmount
		} else if ferr := s.validateTotal(total); ferr != nil {
			return pkgerrors.Validation("Sipariş tutarı geçersiz", *ferr)
		}

		number, err := s.nextOrderNumber(ctx, repo, now)
		if err != nil {
			return err
		}
		order = models.Order{
			OrderNumber:   number,
			TableID:       table.ID,
			TableNumber:   table.Number,
			SessionID:     input.SessionID,
			Items:         items,
			TotalAmount:   total.Round(2),
			Status:        enums.OrderStatusPending,
			PaymentStatus: enums.PaymentStatusPending,
			Priority:      priority,
			CustomerNotes: notes,
			EstimatedTime: estimateMinutes(items, s.cfg.DefaultEstimatedMinutes),
		}
		order.StatusTimestamps.Stamp(enums.OrderStatusPending, now)
		if err := repo.Create(ctx, &order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := tableRepo.MarkOrdered(ctx, table.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark table occupied")
		}

		if input.SessionID != nil {
			recent, err := s.recentSessionOrders(ctx, repo, *input.SessionID, now)
			if err != nil {
				return err
			}
			if err := s.sessions.RecordOrder(ctx, tx, sessions.OrderRecord{
				SessionID:    *input.SessionID,
				OrderID:      order.ID,
				Amount:       order.TotalAmount,
				Fingerprint:  input.DeviceFingerprint,
				At:           now,
				RecentOrders: recent,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderCreated(order.TotalAmount.InexactFloat64())
	return &CreateResult{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		TotalAmount:   order.TotalAmount,
		Status:        order.Status,
		EstimatedTime: order.EstimatedTime,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "load order")
	}
	view := NewOrder(*row)
	return &view, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, err := s.repo.List(ctx, ListFilter{Statuses: query.Statuses, ExcludeCompleted: query.ExcludeCompleted})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	var info map[uuid.UUID]TableInfo
	if query.IncludeTableInfo {
		info, err = s.tableInfo(ctx)
		if err != nil {
			return nil, err
		}
	}

	search := strings.ToLower(strings.TrimSpace(query.Search))
	views := make([]Order, 0, len(rows))
	for _, row := range rows {
		if search != "" && !matchesSearch(row, search) {
			continue
		}
		view := NewOrder(row)
		if t, ok := info[row.TableID]; ok {
			view.Table = &t
		}
		views = append(views, view)
	}

	result := &ListResult{
		Orders:         views,
		OriginalOrders: views,
		Statistics:     ComputeStatistics(views),
	}
	if query.GroupByTable {
		result.Groups = GroupByTable(views)
	}
	return result, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*Order, error) {
	target, err := enums.ParseOrderStatus(strings.TrimSpace(input.Status))
	if err != nil {
		return nil, pkgerrors.Validation("Geçersiz sipariş durumu", pkgerrors.FieldError{Field: "status", Message: "bilinmeyen durum"})
	}
	return s.mutate(ctx, input.ID, func(order *models.Order, now time.Time) error {
		if !CanTransition(order.Status, target) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("%s durumundan %s durumuna geçilemez", order.Status, target)).
				WithDetails(map[string]any{
					"from":    order.Status,
					"to":      target,
					"allowed": AllowedTransitions(order.Status),
				})
		}
		order.Status = target
		order.StatusTimestamps.Stamp(target, now)
		return nil
	})
}

func (s *service) UpdateItemStatus(ctx context.Context, input UpdateItemStatusInput) (*Order, error) {
	status, err := enums.ParseItemStatus(strings.TrimSpace(input.Status))
	if err != nil {
		return nil, pkgerrors.Validation("Geçersiz ürün durumu", pkgerrors.FieldError{Field: "status", Message: "bilinmeyen durum"})
	}
	return s.mutate(ctx, input.ID, func(order *models.Order, now time.Time) error {
		if order.Status.IsTerminal() {
			return terminalTransitionError(order)
		}
		if input.ItemIndex < 0 || input.ItemIndex >= len(order.Items) {
			return pkgerrors.Validation("Ürün bulunamadı", pkgerrors.FieldError{
				Field:   "itemIndex",
				Message: fmt.Sprintf("0 ile %d arasında olmalı", len(order.Items)-1),
			})
		}
		stamped := now
		order.Items[input.ItemIndex].Status = status
		order.Items[input.ItemIndex].StatusUpdatedAt = &stamped

		// The order follows its items in both directions.
		derived := enums.MostAdvancedStatus(order.Items.Statuses()...)
		if derived != "" && derived != order.Status {
			order.Status = derived
			order.StatusTimestamps.Stamp(derived, now)
		}
		return nil
	})
}

func (s *service) UpdatePayment(ctx context.Context, input UpdatePaymentInput) (*Order, error) {
	payment, err := enums.ParsePaymentStatus(strings.TrimSpace(input.PaymentStatus))
	if err != nil {
		return nil, pkgerrors.Validation("Geçersiz ödeme durumu", pkgerrors.FieldError{Field: "paymentStatus", Message: "pending, paid, partial veya refunded olmalı"})
	}
	return s.mutate(ctx, input.ID, func(order *models.Order, now time.Time) error {
		order.PaymentStatus = payment
		if payment == enums.PaymentStatusPaid && order.Status == enums.OrderStatusDelivered {
			order.Status = enums.OrderStatusCompleted
			order.StatusTimestamps.Stamp(enums.OrderStatusCompleted, now)
		}
		return nil
	})
}

func (s *service) AddNotes(ctx context.Context, input AddNotesInput) (*Order, error) {
	if input.CustomerNotes == nil && input.KitchenNotes == nil {
		return nil, pkgerrors.Validation("Not bilgisi gerekli", pkgerrors.FieldError{Field: "kitchenNotes", Message: "müşteri veya mutfak notu gerekli"})
	}
	var fields []pkgerrors.FieldError
	if input.CustomerNotes != nil && len([]rune(strings.TrimSpace(*input.CustomerNotes))) > maxNotesLength {
		fields = append(fields, pkgerrors.FieldError{Field: "customerNotes", Message: fmt.Sprintf("en fazla %d karakter olabilir", maxNotesLength)})
	}
	if input.KitchenNotes != nil && len([]rune(strings.TrimSpace(*input.KitchenNotes))) > maxNotesLength {
		fields = append(fields, pkgerrors.FieldError{Field: "kitchenNotes", Message: fmt.Sprintf("en fazla %d karakter olabilir", maxNotesLength)})
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("Not bilgisi geçersiz", fields...)
	}
	return s.mutate(ctx, input.ID, func(order *models.Order, _ time.Time) error {
		if input.CustomerNotes != nil {
			order.CustomerNotes = strings.TrimSpace(*input.CustomerNotes)
		}
		if input.KitchenNotes != nil {
			order.KitchenNotes = strings.TrimSpace(*input.KitchenNotes)
		}
		return nil
	})
}

func (s *service) Patch(ctx context.Context, input PatchInput) (*Order, error) {
	return s.mutateTx(ctx, input.ID, func(tx *gorm.DB, order *models.Order, _ time.Time) error {
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeConflict, "Tamamlanmış veya iptal edilmiş sipariş düzenlenemez").
				WithDetails(map[string]any{"status": order.Status})
		}

		var fields []pkgerrors.FieldError
		itemsChanged := false
		if input.Items != nil {
			items := make(types.OrderItems, len(*input.Items))
			copy(items, *input.Items)
			for i := range items {
				if items[i].Status == "" {
					items[i].Status = enums.ItemStatusPending
				}
				items[i].Name = strings.TrimSpace(items[i].Name)
				items[i].Notes = strings.TrimSpace(items[i].Notes)
			}
			fields = append(fields, s.validateLines(items)...)
			if len(fields) == 0 {
				resolved, err := s.resolvePatchedItems(ctx, s.menu.WithTx(tx), order.Items, items)
				if err != nil {
					return err
				}
				items = resolved
			}
			order.Items = items
			itemsChanged = true
		}
		if input.CustomerNotes != nil {
			order.CustomerNotes = strings.TrimSpace(*input.CustomerNotes)
		}
		if input.KitchenNotes != nil {
			order.KitchenNotes = strings.TrimSpace(*input.KitchenNotes)
		}
		if len([]rune(order.CustomerNotes)) > maxNotesLength {
			fields = append(fields, pkgerrors.FieldError{Field: "customerNotes", Message: fmt.Sprintf("en fazla %d karakter olabilir", maxNotesLength)})
		}
		if len([]rune(order.KitchenNotes)) > maxNotesLength {
			fields = append(fields, pkgerrors.FieldError{Field: "kitchenNotes", Message: fmt.Sprintf("en fazla %d karakter olabilir", maxNotesLength)})
		}
		if input.Priority != nil {
			priority, perr := parsePriority(*input.Priority)
			if perr != nil {
				fields = append(fields, *perr)
			} else {
				order.Priority = priority
			}
		}
		if input.EstimatedTime != nil {
			if *input.EstimatedTime < 0 {
				fields = append(fields, pkgerrors.FieldError{Field: "estimatedTime", Message: "negatif olamaz"})
			} else {
				order.EstimatedTime = *input.EstimatedTime
			}
		}
		switch {
		case input.TotalAmount != nil:
			order.TotalAmount = input.TotalAmount.Round(2)
		case itemsChanged:
			order.TotalAmount = order.Items.Total().Round(2)
		}
		if ferr := s.validateTotal(order.TotalAmount); ferr != nil {
			fields = append(fields, *ferr)
		}
		if len(fields) > 0 {
			return pkgerrors.Validation("Sipariş bilgileri geçersiz", fields...)
		}
		return nil
	})
}

func (s *service) CloseTable(ctx context.Context, tableNumber types.TableNumber) (*CloseTableResult, error) {
	if tableNumber.IsZero() {
		return nil, pkgerrors.Validation("Masa numarası zorunlu", pkgerrors.FieldError{Field: "tableNumber", Message: "zorunlu alan"})
	}
	now := s.now().UTC()
	result := &CloseTableResult{TableNumber: tableNumber.String()}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		tableRepo := s.tables.WithTx(tx)
		repo := s.repo.WithTx(tx)

		table, err := tableRepo.FindByNumberForUpdate(ctx, tableNumber.String())
		if err != nil {
			return mapTableError(err)
		}
		active, err := repo.FindActiveByTable(ctx, table.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active orders")
		}
		if len(active) == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Masada aktif sipariş yok").
				WithDetails(map[string]any{"tableNumber": table.Number})
		}

		completed := make([]Order, 0, len(active))
		for i := range active {
			order := &active[i]
			order.Status = enums.OrderStatusCompleted
			order.StatusTimestamps.Stamp(enums.OrderStatusCompleted, now)
			order.ClosedViaTable = true
			if err := repo.Save(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete order")
			}
			completed = append(completed, NewOrder(*order))
		}

		closed, err := s.sessions.CloseForTable(ctx, tx, table.ID, now)
		if err != nil {
			return err
		}
		if err := tableRepo.MarkEmpty(ctx, table.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset table")
		}
		result.TableNumber = table.Number
		result.CompletedOrders = completed
		result.ClosedSessions = closed
		return nil
	})
	if err != nil {
		return nil, err
	}
	for range result.CompletedOrders {
		s.metrics.OrderStatusChanged(enums.OrderStatusCompleted.String())
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.Validation("Sipariş kimliği zorunlu", pkgerrors.FieldError{Field: "id", Message: "zorunlu alan"})
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapLookupError(err, "load order")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeConflict, "Tamamlanmış veya iptal edilmiş sipariş silinemez").
				WithDetails(map[string]any{"status": order.Status})
		}
		if err := repo.Delete(ctx, id); err != nil {
			return mapLookupError(err, "delete order")
		}
		return s.releaseTable(ctx, tx, order.TableID, s.now().UTC())
	})
}

// mutate loads the order under a row lock, applies fn and persists the result.
func (s *service) mutate(ctx context.Context, id uuid.UUID, fn func(order *models.Order, now time.Time) error) (*Order, error) {
	return s.mutateTx(ctx, id, func(_ *gorm.DB, order *models.Order, now time.Time) error {
		return fn(order, now)
	})
}

func (s *service) mutateTx(ctx context.Context, id uuid.UUID, fn func(tx *gorm.DB, order *models.Order, now time.Time) error) (*Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.Validation("Sipariş kimliği zorunlu", pkgerrors.FieldError{Field: "id", Message: "zorunlu alan"})
	}
	now := s.now().UTC()
	var (
		updated models.Order
		changed bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapLookupError(err, "load order")
		}
		before := order.Status
		if err := fn(tx, order, now); err != nil {
			return err
		}
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		if order.Status.IsTerminal() && !before.IsTerminal() {
			if err := s.releaseTable(ctx, tx, order.TableID, now); err != nil {
				return err
			}
		}
		changed = before != order.Status
		updated = *order
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.metrics.OrderStatusChanged(updated.Status.String())
	}
	view := NewOrder(updated)
	return &view, nil
}

// releaseTable flips the table to empty once it has no non-terminal orders.
func (s *service) releaseTable(ctx context.Context, tx *gorm.DB, tableID uuid.UUID, now time.Time) error {
	remaining, err := s.repo.WithTx(tx).CountActiveByTable(ctx, tableID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active orders")
	}
	if remaining > 0 {
		return nil
	}
	if err := s.tables.WithTx(tx).MarkEmpty(ctx, tableID, now); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release table")
	}
	return nil
}

func (s *service) lockTable(ctx context.Context, repo tables.Repository, number types.TableNumber, id uuid.UUID) (*models.RestaurantTable, error) {
	key := number.String()
	if number.IsZero() {
		byID, err := repo.FindByID(ctx, id)
		if err != nil {
			return nil, mapTableError(err)
		}
		key = byID.Number
	}
	table, err := repo.FindByNumberForUpdate(ctx, key)
	if err != nil {
		return nil, mapTableError(err)
	}
	if !table.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "Masa şu anda hizmet dışı").
			WithDetails(map[string]any{"tableNumber": table.Number})
	}
	return table, nil
}

func (s *service) loadMenu(ctx context.Context, repo menu.Repository, ids []uuid.UUID) (map[uuid.UUID]models.MenuItem, error) {
	rows, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu items")
	}
	out := make(map[uuid.UUID]models.MenuItem, len(rows))
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// resolvePatchedItems checks every line against the menu. Lines whose menu
// item is already on the order keep their snapshot; new lines must be
// orderable and are re-priced from the menu like at creation.
func (s *service) resolvePatchedItems(ctx context.Context, repo menu.Repository, stored, items types.OrderItems) (types.OrderItems, error) {
	known, err := s.loadMenu(ctx, repo, menuItemIDsOf(items))
	if err != nil {
		return nil, err
	}
	onOrder := make(map[uuid.UUID]struct{}, len(stored))
	for _, item := range stored {
		onOrder[item.MenuItemID] = struct{}{}
	}

	var fields []pkgerrors.FieldError
	for i := range items {
		menuItem, ok := known[items[i].MenuItemID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Menüde olmayan ürün sipariş edilemez").
				WithDetails(map[string]any{"menuItemId": items[i].MenuItemID.String(), "index": i})
		}
		if _, ok := onOrder[menuItem.ID]; ok {
			continue
		}
		if !menuItem.Available {
			return nil, pkgerrors.New(pkgerrors.CodeUnavailable, fmt.Sprintf("%s şu anda sipariş edilemez", menuItem.Name)).
				WithDetails(map[string]any{"menuItemId": menuItem.ID.String(), "name": menuItem.Name})
		}
		price := menuItem.Price
		selected := make([]types.SelectedOption, 0, len(items[i].SelectedOptions))
		for j, chosen := range items[i].SelectedOptions {
			option, found := menuItem.Options.Find(chosen.Name)
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
		if len(selected) == 0 {
			selected = nil
		}
		items[i].Name = menuItem.Name
		items[i].Price = price
		items[i].SelectedOptions = selected
		items[i].CookingTime = menuItem.CookingTime
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("Sipariş bilgileri geçersiz", fields...)
	}
	return items, nil
}

func menuItemIDsOf(items types.OrderItems) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.MenuItemID)
	}
	return ids
}

func (s *service) nextOrderNumber(ctx context.Context, repo Repository, now time.Time) (string, error) {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		number := newOrderNumber(now)
		exists, err := repo.OrderNumberExists(ctx, number)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order number")
		}
		if !exists {
			return number, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique order number")
}

func (s *service) recentSessionOrders(ctx context.Context, repo Repository, sessionID uuid.UUID, now time.Time) (int64, error) {
	window := s.sessCfg.HighOrderVolumeWindow
	if window <= 0 {
		window = 10 * time.Minute
	}
	count, err := repo.CountBySessionSince(ctx, sessionID, now.Add(-window))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count session orders")
	}
	return count, nil
}

func (s *service) throttle(ctx context.Context, sessionID uuid.UUID) error {
	if s.limiter == nil || s.sessCfg.OrderRateLimit <= 0 || s.sessCfg.OrderRateLimitWindow <= 0 {
		return nil
	}
	scope := "orders:session:" + sessionID.String()
	allowed, _, err := s.limiter.FixedWindowAllow(ctx, scope, int64(s.sessCfg.OrderRateLimit), s.sessCfg.OrderRateLimitWindow)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order rate limit")
	}
	if allowed {
		return nil
	}
	retry, _ := s.limiter.RetryAfter(ctx, scope)
	return pkgerrors.New(pkgerrors.CodeRateLimit, "Çok fazla sipariş gönderildi, lütfen biraz bekleyin").
		WithDetails(map[string]any{"retryAfterSeconds": int(retry.Seconds())})
}

func (s *service) tableInfo(ctx context.Context) (map[uuid.UUID]TableInfo, error) {
	rows, err := s.tables.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tables")
	}
	out := make(map[uuid.UUID]TableInfo, len(rows))
	for _, row := range rows {
		out[row.ID] = TableInfo{ID: row.ID, Number: row.Number, Location: row.Location, Capacity: row.Capacity}
	}
	return out, nil
}

func menuItemIDs(items []ItemInput) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.MenuItemID]; ok {
			continue
		}
		seen[item.MenuItemID] = struct{}{}
		ids = append(ids, item.MenuItemID)
	}
	return ids
}

// matchesSearch compares the lowered needle against the order number, table
// number and item names.
func matchesSearch(order models.Order, needle string) bool {
	if strings.Contains(strings.ToLower(order.OrderNumber), needle) ||
		strings.Contains(strings.ToLower(order.TableNumber), needle) {
		return true
	}
	for _, item := range order.Items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			return true
		}
	}
	return false
}

func terminalTransitionError(order *models.Order) error {
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, "Tamamlanmış veya iptal edilmiş sipariş güncellenemez").
		WithDetails(map[string]any{"status": order.Status})
}

func mapTableError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Masa bulunamadı")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load table")
}

func mapLookupError(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Sipariş bulunamadı")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
