package controllers

import (
	"net/http"

	"github.com/ardacaliskaan/meva-qr-sub000/api/responses"
	"github.com/ardacaliskaan/meva-qr-sub000/api/validators"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/tables"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/logger"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

const actionOpen = "open"

func TablesList(svc tables.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"tables": views})
	}
}

type tableCreateRequest struct {
	Number   types.TableNumber `json:"number" validate:"required"`
	Capacity int               `json:"capacity"`
	Location string            `json:"location" validate:"max=120"`
}

func TableCreate(svc tables.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tableCreateRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Create(r.Context(), tables.CreateInput{
			Number:   req.Number,
			Capacity: req.Capacity,
			Location: req.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"table": view})
	}
}

type tableUpdateRequest struct {
	ID       string  `json:"id" validate:"required,uuid"`
	Capacity *int    `json:"capacity"`
	Location *string `json:"location"`
	IsActive *bool   `json:"isActive"`
}

type tableOpenRequest struct {
	TableNumber types.TableNumber `json:"tableNumber" validate:"required"`
}

// TableUpdate patches a table, or reopens one with {"action": "open"}.
func TableUpdate(svc tables.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readTaggedBody(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var view *tables.TableView
		switch body.action {
		case actionOpen:
			var req tableOpenRequest
			if err = body.decode(&req); err == nil {
				view, err = svc.Open(logg.WithTableNumber(r.Context(), req.TableNumber.String()), req.TableNumber)
			}
		case "":
			var req tableUpdateRequest
			if err = body.decode(&req); err == nil {
				view, err = svc.Update(r.Context(), tables.UpdateInput{
					ID:       mustUUID(req.ID),
					Capacity: req.Capacity,
					Location: req.Location,
					IsActive: req.IsActive,
				})
			}
		default:
			err = unknownAction(body.action, actionOpen)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message": "Masa güncellendi",
			"table":   view,
		})
	}
}

func TableDelete(svc tables.Service, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, map[string]string{"message": "Masa silindi"})
	}
}
