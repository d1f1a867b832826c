package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// DecodeJSONBody decodes the request body into dest and runs struct validation.
// Unknown fields are tolerated; guest clients send display-only fields such as
// item prices that the server recomputes.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dest any) error {
	if w != nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.Validation("İstek gövdesi boş")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Geçersiz JSON gövdesi").WithDetails(map[string]any{"error": err.Error()})
	}
	return ValidateStruct(dest)
}

// ValidateStruct runs the validator tags on v and returns an itemized error.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		fields := make([]pkgerrors.FieldError, 0, len(errs))
		for _, fieldErr := range errs {
			fields = append(fields, pkgerrors.FieldError{
				Field:   fieldPath(fieldErr.Namespace()),
				Message: validationMessage(fieldErr),
			})
		}
		return pkgerrors.Validation("Doğrulama hatası", fields...)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Doğrulama hatası")
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "zorunlu alan"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("en az %s karakter olmalı", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("en az %s öğe içermeli", fe.Param())
		}
		return fmt.Sprintf("en az %s olmalı", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("en fazla %s karakter olmalı", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("en fazla %s öğe içermeli", fe.Param())
		}
		return fmt.Sprintf("en fazla %s olmalı", fe.Param())
	case "gt":
		return fmt.Sprintf("%s değerinden büyük olmalı", fe.Param())
	case "oneof":
		return fmt.Sprintf("şunlardan biri olmalı: %s", fe.Param())
	case "uuid", "uuid4":
		return "geçerli bir UUID olmalı"
	}
	return "geçersiz değer"
}
