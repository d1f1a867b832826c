package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/logger"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

// WriteSuccess writes {"success": true, ...payload} with status 200.
func WriteSuccess(w http.ResponseWriter, payload any) {
	WriteSuccessStatus(w, http.StatusOK, payload)
}

// WriteSuccessStatus merges payload's top-level fields next to "success".
// payload must encode to a JSON object (or be nil).
func WriteSuccessStatus(w http.ResponseWriter, status int, payload any) {
	body, err := mergeSuccess(payload)
	if err != nil {
		log.Printf(`{"level":"error","msg":"failed to build success envelope","err":"%v"}`, err)
		writeJSON(w, http.StatusInternalServerError, types.ErrorEnvelope{
			Error: pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage,
			Code:  string(pkgerrors.CodeInternal),
		})
		return
	}
	writeJSON(w, status, body)
}

func mergeSuccess(payload any) (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		if string(raw) != "null" {
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, fmt.Errorf("success payload must be a JSON object: %w", err)
			}
		}
	}
	out["success"] = json.RawMessage("true")
	return out, nil
}

// WriteError maps err onto the failure envelope and logs it with the error chain.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeInvalidTransition,
		pkgerrors.CodeUnavailable,
		pkgerrors.CodeIdempotency,
		pkgerrors.CodeRateLimit:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Error:  msg,
		Code:   string(typed.Code()),
		Errors: typed.Fields(),
	}
	if meta.DetailsAllowed {
		payload.Details = typed.Details()
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		ctx = logg.WithFields(ctx, dump.Fields())
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
