package controllers

import (
	"net/http"
	"strings"

	"github.com/ardacaliskaan/meva-qr-sub000/api/middleware"
	"github.com/ardacaliskaan/meva-qr-sub000/api/responses"
	"github.com/ardacaliskaan/meva-qr-sub000/api/validators"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/sessions"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/logger"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

const (
	actionExtend = "extend"
	actionClose  = "close"
)

type sessionStartRequest struct {
	TableNumber types.TableNumber `json:"tableNumber" validate:"required"`
	DeviceInfo  struct {
		Fingerprint string `json:"fingerprint" validate:"required,max=256"`
		UserAgent   string `json:"userAgent"`
	} `json:"deviceInfo"`
}

// SessionStart opens a session for a scanned table or joins the live one.
func SessionStart(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionStartRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userAgent := strings.TrimSpace(req.DeviceInfo.UserAgent)
		if userAgent == "" {
			userAgent = r.UserAgent()
		}

		ctx := logg.WithTableNumber(r.Context(), req.TableNumber.String())
		result, err := svc.Start(ctx, sessions.StartInput{
			TableNumber: req.TableNumber,
			Device: sessions.DeviceInfo{
				Fingerprint: strings.TrimSpace(req.DeviceInfo.Fingerprint),
				UserAgent:   userAgent,
				IPAddress:   middleware.ClientIPFromContext(r.Context()),
			},
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if result.IsNew {
			logg.Info(logg.WithSessionID(ctx, result.Session.SessionID.String()), "session.started")
		}
		responses.WriteSuccess(w, map[string]any{
			"session": result.Session,
			"isNew":   result.IsNew,
		})
	}
}

// SessionValidate reports whether a stored session can keep ordering.
func SessionValidate(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseQueryUUID(r, "sessionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fingerprint := strings.TrimSpace(r.URL.Query().Get("fingerprint"))

		result, err := svc.Validate(logg.WithSessionID(r.Context(), id.String()), id, fingerprint)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"valid":       result.Valid,
			"canOrder":    result.CanOrder,
			"deviceMatch": result.DeviceMatch,
			"session":     result.Session,
		})
	}
}

type sessionUpdateRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
	Action    string `json:"action" validate:"required"`
}

// SessionUpdate extends or closes a session.
func SessionUpdate(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionUpdateRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id := mustUUID(req.SessionID)
		ctx := logg.WithSessionID(r.Context(), id.String())

		var (
			view    *sessions.View
			err     error
			message string
		)
		switch strings.TrimSpace(req.Action) {
		case actionExtend:
			view, err = svc.Extend(ctx, id)
			message = "Oturum süresi uzatıldı"
		case actionClose:
			view, err = svc.Close(ctx, id)
			message = "Oturum kapatıldı"
		default:
			err = unknownAction(req.Action, actionExtend, actionClose)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message":    message,
			"expiryTime": view.ExpiryTime,
			"session":    view,
		})
	}
}
