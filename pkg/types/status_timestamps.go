package types

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
)

// StatusTimestamps records when an order first entered each status.
type StatusTimestamps map[enums.OrderStatus]time.Time

// Value marshals the map into JSON.
func (s StatusTimestamps) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	return jsonValue(s)
}

// Scan decodes the JSONB object.
func (s *StatusTimestamps) Scan(value interface{}) error {
	if value == nil {
		*s = StatusTimestamps{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	result := make(StatusTimestamps)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*s = result
	return nil
}

// Stamp sets the timestamp for status, overwriting any earlier value.
func (s *StatusTimestamps) Stamp(status enums.OrderStatus, at time.Time) {
	if *s == nil {
		*s = make(StatusTimestamps)
	}
	(*s)[status] = at.UTC()
}
