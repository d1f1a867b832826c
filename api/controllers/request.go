package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ardacaliskaan/meva-qr-sub000/api/validators"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
)

const maxActionBodyBytes = 1 << 20

// taggedBody is a PUT payload whose shape depends on its action field.
type taggedBody struct {
	action string
	raw    []byte
}

func readTaggedBody(w http.ResponseWriter, r *http.Request) (*taggedBody, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActionBodyBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "İstek gövdesi okunamadı")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, pkgerrors.Validation("İstek gövdesi boş")
	}
	var head struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Geçersiz JSON gövdesi").WithDetails(map[string]any{"error": err.Error()})
	}
	return &taggedBody{action: strings.TrimSpace(head.Action), raw: body}, nil
}

// decode unmarshals the payload into dest and runs the struct validators.
func (b *taggedBody) decode(dest any) error {
	if err := json.Unmarshal(b.raw, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Geçersiz JSON gövdesi").WithDetails(map[string]any{"error": err.Error()})
	}
	return validators.ValidateStruct(dest)
}

func unknownAction(action string, allowed ...string) error {
	return pkgerrors.Validation("Geçersiz işlem", pkgerrors.FieldError{
		Field:   "action",
		Message: "şunlardan biri olmalı: " + strings.Join(allowed, ", "),
	}).WithDetails(map[string]any{"action": action})
}

// parseOptionalUUID parses a UUID that may be omitted.
func parseOptionalUUID(raw, field string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Validation("Geçersiz parametre", pkgerrors.FieldError{Field: field, Message: "geçerli bir UUID olmalı"})
	}
	return &id, nil
}

func parseRequiredUUID(raw, field string) (uuid.UUID, error) {
	id, err := parseOptionalUUID(raw, field)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, pkgerrors.Validation("Eksik parametre", pkgerrors.FieldError{Field: field, Message: "zorunlu alan"})
	}
	return *id, nil
}

// mustUUID converts a value that already passed the uuid validator.
func mustUUID(raw string) uuid.UUID {
	id, _ := uuid.Parse(strings.TrimSpace(raw))
	return id
}

// optionSelection accepts either an option name or an {"name": ...} object.
type optionSelection string

func (o *optionSelection) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*o = optionSelection(name)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.New("option must be a name or an object with a name")
	}
	*o = optionSelection(obj.Name)
	return nil
}
