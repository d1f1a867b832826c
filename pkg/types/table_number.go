package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TableNumber is the canonical form of a restaurant table label. Values are
// trimmed and upper-cased, and purely numeric labels lose their leading zeros,
// so "05", " 5" and "5" all address the same table.
type TableNumber string

// ParseTableNumber canonicalizes raw input. Empty input is rejected.
func ParseTableNumber(raw string) (TableNumber, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", fmt.Errorf("table number is required")
	}
	if len(trimmed) > 20 {
		return "", fmt.Errorf("table number %q is too long", trimmed)
	}
	if isDigits(trimmed) {
		stripped := strings.TrimLeft(trimmed, "0")
		if stripped == "" {
			stripped = "0"
		}
		return TableNumber(stripped), nil
	}
	return TableNumber(trimmed), nil
}

// MustTableNumber is ParseTableNumber for literals known to be valid.
func MustTableNumber(raw string) TableNumber {
	tn, err := ParseTableNumber(raw)
	if err != nil {
		panic(err)
	}
	return tn
}

// String implements fmt.Stringer.
func (t TableNumber) String() string {
	return string(t)
}

// IsZero reports whether no table number was supplied.
func (t TableNumber) IsZero() bool {
	return t == ""
}

// UnmarshalJSON accepts both string and numeric JSON values.
func (t *TableNumber) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}

	var raw string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		if strings.TrimSpace(raw) == "" {
			*t = ""
			return nil
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("table number must be a string or number")
		}
		if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
			return fmt.Errorf("table number must be an integer")
		}
		raw = n.String()
	}

	parsed, err := ParseTableNumber(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
