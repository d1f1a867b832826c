package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ardacaliskaan/meva-qr-sub000/api/responses"
	"github.com/ardacaliskaan/meva-qr-sub000/api/validators"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/menu"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/logger"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

// MenuList returns menu items, optionally filtered by availability and category.
func MenuList(svc menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := menu.ListFilter{Category: r.URL.Query().Get("category")}
		if raw := strings.TrimSpace(r.URL.Query().Get("available")); raw != "" {
			available, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Validation("Geçersiz parametre",
					pkgerrors.FieldError{Field: "available", Message: "true veya false olmalı"}))
				return
			}
			filter.Available = &available
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := make([]menu.View, 0, len(items))
		for _, item := range items {
			views = append(views, menu.NewView(item))
		}
		responses.WriteSuccess(w, map[string]any{"items": views})
	}
}

type menuCreateRequest struct {
	Name        string            `json:"name" validate:"required,max=120"`
	Description string            `json:"description" validate:"max=1000"`
	Category    string            `json:"category" validate:"required,max=60"`
	Price       decimal.Decimal   `json:"price"`
	Available   *bool             `json:"available"`
	CookingTime *int              `json:"cookingTime"`
	Options     types.MenuOptions `json:"options"`
}

func MenuCreate(svc menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req menuCreateRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Create(r.Context(), menu.CreateInput{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Price:       req.Price,
			Available:   req.Available,
			CookingTime: req.CookingTime,
			Options:     req.Options,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"item": menu.NewView(*item)})
	}
}

type menuUpdateRequest struct {
	ID          string             `json:"id" validate:"required,uuid"`
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Category    *string            `json:"category"`
	Price       *decimal.Decimal   `json:"price"`
	Available   *bool              `json:"available"`
	CookingTime *int               `json:"cookingTime"`
	Options     *types.MenuOptions `json:"options"`
}

// MenuUpdate patches a menu item. Toggling availability is a patch of
// {"id", "available"}.
func MenuUpdate(svc menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req menuUpdateRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Update(r.Context(), menu.UpdateInput{
			ID:          mustUUID(req.ID),
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Price:       req.Price,
			Available:   req.Available,
			CookingTime: req.CookingTime,
			Options:     req.Options,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message": "Ürün güncellendi",
			"item":    menu.NewView(*item),
		})
	}
}

func MenuDelete(svc menu.Service, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, map[string]string{"message": "Ürün silindi"})
	}
}
