package types

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// SessionDevice describes one browser that joined a table session.
type SessionDevice struct {
	Fingerprint string    `json:"fingerprint"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	Browser     string    `json:"browser,omitempty"`
	OS          string    `json:"os,omitempty"`
	IsMobile    bool      `json:"isMobile"`
	OrderCount  int       `json:"orderCount"`
	VisitCount  int       `json:"visitCount"`
	FirstSeen   time.Time `json:"firstSeen"`
	LastSeen    time.Time `json:"lastSeen"`
}

// SessionDevices is the JSONB array stored on session rows.
type SessionDevices []SessionDevice

// Value marshals the devices into JSON.
func (s SessionDevices) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return jsonValue(s)
}

// Scan decodes the JSONB array.
func (s *SessionDevices) Scan(value interface{}) error {
	if value == nil {
		*s = SessionDevices{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var devices SessionDevices
	if err := json.Unmarshal(raw, &devices); err != nil {
		return err
	}
	*s = devices
	return nil
}

// Index returns the position of the device with the fingerprint, or -1.
func (s SessionDevices) Index(fingerprint string) int {
	if fingerprint == "" {
		return -1
	}
	for i, device := range s {
		if device.Fingerprint == fingerprint {
			return i
		}
	}
	return -1
}
