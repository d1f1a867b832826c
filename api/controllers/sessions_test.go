package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardacaliskaan/meva-qr-sub000/api/middleware"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/sessions"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

type stubSessions struct {
	sessions.Service
	startFn    func(ctx context.Context, input sessions.StartInput) (*sessions.StartResult, error)
	validateFn func(ctx context.Context, id uuid.UUID, fingerprint string) (*sessions.ValidateResult, error)
	extendFn   func(ctx context.Context, id uuid.UUID) (*sessions.View, error)
	closeFn    func(ctx context.Context, id uuid.UUID) (*sessions.View, error)
}

func (s stubSessions) Start(ctx context.Context, input sessions.StartInput) (*sessions.StartResult, error) {
	return s.startFn(ctx, input)
}

func (s stubSessions) Validate(ctx context.Context, id uuid.UUID, fingerprint string) (*sessions.ValidateResult, error) {
	return s.validateFn(ctx, id, fingerprint)
}

func (s stubSessions) Extend(ctx context.Context, id uuid.UUID) (*sessions.View, error) {
	return s.extendFn(ctx, id)
}

func (s stubSessions) Close(ctx context.Context, id uuid.UUID) (*sessions.View, error) {
	return s.closeFn(ctx, id)
}

func TestSessionStartPassesDeviceInfo(t *testing.T) {
	sessionID := uuid.New()
	var got sessions.StartInput
	svc := stubSessions{startFn: func(_ context.Context, input sessions.StartInput) (*sessions.StartResult, error) {
		got = input
		return &sessions.StartResult{
			Session: sessions.View{SessionID: sessionID, TableNumber: "4", Status: enums.SessionStatusActive},
			IsNew:   true,
		}, nil
	}}

	req := jsonRequest(t, http.MethodPost, "/sessions", map[string]any{
		"tableNumber": "04",
		"deviceInfo":  map[string]any{"fingerprint": "fp-1"},
	})
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone)")
	req = req.WithContext(middleware.WithClientIP(req.Context(), "10.0.0.9"))
	rec := serve(SessionStart(svc, testLogger()), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["isNew"])
	assert.Equal(t, sessionID.String(), body["session"].(map[string]any)["sessionId"])

	assert.Equal(t, types.TableNumber("4"), got.TableNumber)
	assert.Equal(t, "fp-1", got.Device.Fingerprint)
	assert.Equal(t, "Mozilla/5.0 (iPhone)", got.Device.UserAgent)
	assert.Equal(t, "10.0.0.9", got.Device.IPAddress)
}

func TestSessionStartRequiresFingerprint(t *testing.T) {
	rec := serve(SessionStart(stubSessions{}, testLogger()), jsonRequest(t, http.MethodPost, "/sessions", map[string]any{"tableNumber": "4"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeEnvelope(t, rec)["code"])
}

func TestSessionValidate(t *testing.T) {
	id := uuid.New()
	svc := stubSessions{validateFn: func(_ context.Context, got uuid.UUID, fingerprint string) (*sessions.ValidateResult, error) {
		assert.Equal(t, id, got)
		assert.Equal(t, "fp-2", fingerprint)
		return &sessions.ValidateResult{Valid: true, CanOrder: false, DeviceMatch: false, Session: sessions.View{SessionID: id}}, nil
	}}
	rec := serve(SessionValidate(svc, testLogger()), jsonRequest(t, http.MethodGet, "/sessions?sessionId="+id.String()+"&fingerprint=fp-2", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, false, body["canOrder"])
	assert.Equal(t, false, body["deviceMatch"])
}

func TestSessionValidateExpired(t *testing.T) {
	svc := stubSessions{validateFn: func(context.Context, uuid.UUID, string) (*sessions.ValidateResult, error) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Oturum süresi doldu")
	}}
	rec := serve(SessionValidate(svc, testLogger()), jsonRequest(t, http.MethodGet, "/sessions?sessionId="+uuid.NewString(), nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionUpdateExtendAndClose(t *testing.T) {
	id := uuid.New()
	expiry := time.Date(2026, 10, 16, 22, 0, 0, 0, time.UTC)
	svc := stubSessions{
		extendFn: func(context.Context, uuid.UUID) (*sessions.View, error) {
			return &sessions.View{SessionID: id, ExpiryTime: expiry}, nil
		},
		closeFn: func(context.Context, uuid.UUID) (*sessions.View, error) {
			return &sessions.View{SessionID: id, Status: enums.SessionStatusClosed, ExpiryTime: expiry}, nil
		},
	}
	handler := SessionUpdate(svc, testLogger())

	rec := serve(handler, jsonRequest(t, http.MethodPut, "/sessions", map[string]any{"sessionId": id, "action": "extend"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2026-10-16T22:00:00Z", decodeEnvelope(t, rec)["expiryTime"])

	rec = serve(handler, jsonRequest(t, http.MethodPut, "/sessions", map[string]any{"sessionId": id, "action": "close"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "closed", decodeEnvelope(t, rec)["session"].(map[string]any)["status"])

	rec = serve(handler, jsonRequest(t, http.MethodPut, "/sessions", map[string]any{"sessionId": id, "action": "pause"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
