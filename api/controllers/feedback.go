package controllers

import (
	"net/http"
	"strings"

	"github.com/ardacaliskaan/meva-qr-sub000/api/middleware"
	"github.com/ardacaliskaan/meva-qr-sub000/api/responses"
	"github.com/ardacaliskaan/meva-qr-sub000/api/validators"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/feedback"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/logger"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/pagination"
)

type feedbackSubmitRequest struct {
	Category string `json:"category"`
	Rating   *int   `json:"rating"`
	Message  string `json:"message"`
}

// FeedbackSubmit accepts anonymous feedback from a guest.
func FeedbackSubmit(svc feedback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req feedbackSubmitRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Submit(r.Context(), feedback.SubmitInput{
			Category:  req.Category,
			Rating:    req.Rating,
			Message:   req.Message,
			IPAddress: middleware.ClientIPFromContext(r.Context()),
			UserAgent: r.UserAgent(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"message":  "Geri bildiriminiz için teşekkürler",
			"feedback": view,
		})
	}
}

func FeedbackList(svc feedback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := r.URL.Query()
		result, err := svc.List(r.Context(), feedback.ListParams{
			Status:   strings.TrimSpace(query.Get("status")),
			Category: strings.TrimSpace(query.Get("category")),
			Params: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(query.Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type feedbackUpdateRequest struct {
	ID         string  `json:"id" validate:"required,uuid"`
	Status     *string `json:"status"`
	AdminNotes *string `json:"adminNotes"`
}

func FeedbackUpdate(svc feedback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req feedbackUpdateRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Update(r.Context(), feedback.UpdateInput{
			ID:         mustUUID(req.ID),
			Status:     req.Status,
			AdminNotes: req.AdminNotes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message":  "Geri bildirim güncellendi",
			"feedback": view,
		})
	}
}

func FeedbackDelete(svc feedback.Service, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, map[string]string{"message": "Geri bildirim silindi"})
	}
}
