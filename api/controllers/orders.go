package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ardacaliskaan/meva-qr-sub000/api/responses"
	"github.com/ardacaliskaan/meva-qr-sub000/api/validators"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/orders"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/logger"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

const (
	actionUpdateStatus     = "updateStatus"
	actionUpdateItemStatus = "updateItemStatus"
	actionUpdatePayment    = "updatePayment"
	actionAddNotes         = "addNotes"
	actionCloseTable       = "closeTable"
)

// OrdersList serves the order board. includeMenuImages is accepted for
// client compatibility and has no effect.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := orders.ListQuery{
			Search:           strings.TrimSpace(r.URL.Query().Get("search")),
			ExcludeCompleted: validators.ParseQueryBool(r, "excludeCompleted"),
			GroupByTable:     validators.ParseQueryBool(r, "groupByTable"),
			IncludeTableInfo: validators.ParseQueryBool(r, "includeTableInfo"),
		}
		for _, raw := range validators.ParseQueryCSV(r, "status") {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Validation("Geçersiz sipariş durumu",
					pkgerrors.FieldError{Field: "status", Message: "bilinmeyen durum: " + raw}))
				return
			}
			query.Statuses = append(query.Statuses, status)
		}

		result, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := map[string]any{
			"originalOrders": result.OriginalOrders,
			"statistics":     result.Statistics,
		}
		if query.GroupByTable {
			payload["orders"] = result.Groups
		} else {
			payload["orders"] = result.Orders
		}
		responses.WriteSuccess(w, payload)
	}
}

func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseRequiredUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"order": order})
	}
}

type orderItemRequest struct {
	MenuItemID      string            `json:"menuItemId" validate:"required,uuid"`
	Quantity        int               `json:"quantity"`
	Notes           string            `json:"notes"`
	SelectedOptions []optionSelection `json:"selectedOptions"`
}

type orderCreateRequest struct {
	TableNumber       types.TableNumber  `json:"tableNumber"`
	TableID           string             `json:"tableId" validate:"omitempty,uuid"`
	Items             []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalAmount       *decimal.Decimal   `json:"totalAmount"`
	CustomerNotes     string             `json:"customerNotes"`
	Priority          string             `json:"priority"`
	SessionID         string             `json:"sessionId" validate:"omitempty,uuid"`
	DeviceFingerprint string             `json:"deviceFingerprint" validate:"max=256"`
}

func (req orderCreateRequest) toInput() (orders.CreateInput, error) {
	input := orders.CreateInput{
		TableNumber:       req.TableNumber,
		TotalAmount:       req.TotalAmount,
		CustomerNotes:     req.CustomerNotes,
		Priority:          req.Priority,
		DeviceFingerprint: strings.TrimSpace(req.DeviceFingerprint),
	}
	tableID, err := parseOptionalUUID(req.TableID, "tableId")
	if err != nil {
		return input, err
	}
	if tableID != nil {
		input.TableID = *tableID
	}
	sessionID, err := parseOptionalUUID(req.SessionID, "sessionId")
	if err != nil {
		return input, err
	}
	input.SessionID = sessionID

	input.Items = make([]orders.ItemInput, 0, len(req.Items))
	for i, item := range req.Items {
		menuItemID, err := parseRequiredUUID(item.MenuItemID, "items["+strconv.Itoa(i)+"].menuItemId")
		if err != nil {
			return input, err
		}
		options := make([]string, 0, len(item.SelectedOptions))
		for _, opt := range item.SelectedOptions {
			options = append(options, string(opt))
		}
		input.Items = append(input.Items, orders.ItemInput{
			MenuItemID:      menuItemID,
			Quantity:        item.Quantity,
			Notes:           item.Notes,
			SelectedOptions: options,
		})
	}
	return input, nil
}

// OrderCreate places an order from a table.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orderCreateRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if !input.TableNumber.IsZero() {
			ctx = logg.WithTableNumber(ctx, input.TableNumber.String())
		}
		result, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		logg.Info(logg.WithOrderID(ctx, result.ID.String()), "order.created")
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type orderStatusRequest struct {
	ID     string `json:"id" validate:"required,uuid"`
	Status string `json:"status" validate:"required"`
}

type orderItemStatusRequest struct {
	ID        string `json:"id" validate:"required,uuid"`
	ItemIndex *int   `json:"itemIndex" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

type orderPaymentRequest struct {
	ID            string `json:"id" validate:"required,uuid"`
	PaymentStatus string `json:"paymentStatus" validate:"required"`
}

type orderNotesRequest struct {
	ID            string  `json:"id" validate:"required,uuid"`
	CustomerNotes *string `json:"customerNotes"`
	KitchenNotes  *string `json:"kitchenNotes"`
}

type orderCloseTableRequest struct {
	TableNumber types.TableNumber `json:"tableNumber" validate:"required"`
}

type orderPatchRequest struct {
	ID            string            `json:"id" validate:"required,uuid"`
	Items         *types.OrderItems `json:"items"`
	TotalAmount   *decimal.Decimal  `json:"totalAmount"`
	CustomerNotes *string           `json:"customerNotes"`
	KitchenNotes  *string           `json:"kitchenNotes"`
	Priority      *string           `json:"priority"`
	EstimatedTime *int              `json:"estimatedTime"`
}

// OrderUpdate dispatches PUT /orders on its action field. A body without an
// action is a full patch.
func OrderUpdate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readTaggedBody(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		var (
			order   *orders.Order
			message string
		)
		switch body.action {
		case actionUpdateStatus:
			var req orderStatusRequest
			if err = body.decode(&req); err == nil {
				order, err = svc.UpdateStatus(ctx, orders.UpdateStatusInput{ID: mustUUID(req.ID), Status: req.Status})
				message = "Sipariş durumu güncellendi"
			}
		case actionUpdateItemStatus:
			var req orderItemStatusRequest
			if err = body.decode(&req); err == nil {
				order, err = svc.UpdateItemStatus(ctx, orders.UpdateItemStatusInput{ID: mustUUID(req.ID), ItemIndex: *req.ItemIndex, Status: req.Status})
				message = "Ürün durumu güncellendi"
			}
		case actionUpdatePayment:
			var req orderPaymentRequest
			if err = body.decode(&req); err == nil {
				order, err = svc.UpdatePayment(ctx, orders.UpdatePaymentInput{ID: mustUUID(req.ID), PaymentStatus: req.PaymentStatus})
				message = "Ödeme durumu güncellendi"
			}
		case actionAddNotes:
			var req orderNotesRequest
			if err = body.decode(&req); err == nil {
				order, err = svc.AddNotes(ctx, orders.AddNotesInput{ID: mustUUID(req.ID), CustomerNotes: req.CustomerNotes, KitchenNotes: req.KitchenNotes})
				message = "Notlar güncellendi"
			}
		case actionCloseTable:
			var req orderCloseTableRequest
			if err = body.decode(&req); err != nil {
				break
			}
			result, closeErr := svc.CloseTable(logg.WithTableNumber(ctx, req.TableNumber.String()), req.TableNumber)
			if closeErr != nil {
				responses.WriteError(ctx, logg, w, closeErr)
				return
			}
			responses.WriteSuccess(w, map[string]any{
				"message":         "Masa kapatıldı",
				"tableNumber":     result.TableNumber,
				"completedOrders": result.CompletedOrders,
				"closedSessions":  result.ClosedSessions,
			})
			return
		case "":
			var req orderPatchRequest
			if err = body.decode(&req); err == nil {
				order, err = svc.Patch(ctx, orders.PatchInput{
					ID:            mustUUID(req.ID),
					Items:         req.Items,
					TotalAmount:   req.TotalAmount,
					CustomerNotes: req.CustomerNotes,
					KitchenNotes:  req.KitchenNotes,
					Priority:      req.Priority,
					EstimatedTime: req.EstimatedTime,
				})
				message = "Sipariş güncellendi"
			}
		default:
			err = unknownAction(body.action, actionUpdateStatus, actionUpdateItemStatus, actionUpdatePayment, actionAddNotes, actionCloseTable)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"message": message, "order": order})
	}
}

func OrderDelete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseQueryUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Sipariş silindi"})
	}
}
