package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Validation("Sorgu parametresi sayı olmalı", pkgerrors.FieldError{Field: key, Message: "sayı olmalı"})
	}
	if value < min || value > max {
		return 0, pkgerrors.Validation("Sorgu parametresi aralık dışında", pkgerrors.FieldError{
			Field:   key,
			Message: strconv.Itoa(min) + " ile " + strconv.Itoa(max) + " arasında olmalı",
		})
	}
	return value, nil
}

// ParseQueryBool treats "1", "true" and "yes" as true; anything else is false.
func ParseQueryBool(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// ParseQueryCSV splits a comma separated parameter, dropping blanks.
func ParseQueryCSV(r *http.Request, key string) []string {
	raw := r.URL.Query().Get(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseQueryUUID parses a required UUID query parameter.
func ParseQueryUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return uuid.Nil, pkgerrors.Validation("Eksik parametre", pkgerrors.FieldError{Field: key, Message: "zorunlu alan"})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Validation("Geçersiz parametre", pkgerrors.FieldError{Field: key, Message: "geçerli bir UUID olmalı"})
	}
	return id, nil
}
