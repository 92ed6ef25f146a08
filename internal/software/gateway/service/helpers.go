package service

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	errLocationNotStreaming = errors.New("active trip is not in a location-streaming status")
	errLocationMissing      = errors.New("location frame has no coordinates")
)

// marshalMessage exists so contract marshaling stays in one place.
func marshalMessage(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// fallbackExpiry substitutes the configured TTL for offers that arrive
// without an expiry.
func fallbackExpiry(expiresAt time.Time, ttl time.Duration, now time.Time) time.Time {
	if expiresAt.IsZero() {
		return now.Add(ttl)
	}
	return expiresAt
}

// throttleLocation reports whether a location frame from this driver should
// be dropped because the previous one was forwarded too recently. Forwarded
// frames advance the per-driver mark.
func (service *Service) throttleLocation(driverID string, now time.Time) bool {
	if last, ok := service.lastLocation.Load(driverID); ok {
		if now.Sub(last.(time.Time)) < service.locationInterval {
			return true
		}
	}
	service.lastLocation.Store(driverID, now)
	return false
}
