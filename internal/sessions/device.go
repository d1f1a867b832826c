package sessions

import (
	"strings"
	"time"

	"github.com/mssola/useragent"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

const maxUserAgentLength = 512

// DeviceInfo is what the browser reports when it joins a table.
type DeviceInfo struct {
	Fingerprint string
	UserAgent   string
	IPAddress   string
}

func newDevice(info DeviceInfo, now time.Time) types.SessionDevice {
	device := types.SessionDevice{
		Fingerprint: info.Fingerprint,
		IPAddress:   info.IPAddress,
		VisitCount:  1,
		FirstSeen:   now,
		LastSeen:    now,
	}
	applyUserAgent(&device, info.UserAgent)
	return device
}

func applyUserAgent(device *types.SessionDevice, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	if len(raw) > maxUserAgentLength {
		raw = raw[:maxUserAgentLength]
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	device.UserAgent = raw
	device.Browser = strings.TrimSpace(name + " " + version)
	device.OS = ua.OS()
	device.IsMobile = ua.Mobile()
}

// registerDevice appends the device or refreshes the existing entry with the
// same fingerprint. It reports whether a new device was added.
func registerDevice(devices types.SessionDevices, info DeviceInfo, now time.Time) (types.SessionDevices, bool) {
	if idx := devices.Index(info.Fingerprint); idx >= 0 {
		device := devices[idx]
		device.VisitCount++
		device.LastSeen = now
		if info.IPAddress != "" {
			device.IPAddress = info.IPAddress
		}
		applyUserAgent(&device, info.UserAgent)
		devices[idx] = device
		return devices, false
	}
	return append(devices, newDevice(info, now)), true
}
