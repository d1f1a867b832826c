package types

import pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"

// ErrorEnvelope is the failure body every endpoint writes.
type ErrorEnvelope struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Errors  []pkgerrors.FieldError `json:"errors,omitempty"`
	Details any                    `json:"details,omitempty"`
}
