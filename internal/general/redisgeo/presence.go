package redisgeo

import (
	"context"
	"strconv"
	"time"

	"seryvo/internal/general/contracts"

	"github.com/redis/go-redis/v9"
)

// Presence mirrors the last known driver position and metadata into Redis
// GEO structures so nearby-driver queries stay cheap for the dispatcher.
type Presence struct {
	client *redis.Client
	key    string
}

func NewPresence(addr, password, key string) *Presence {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &Presence{client: c, key: key}
}

// Upsert stores the position via GEOADD plus a metadata hash per driver.
func (p *Presence) Upsert(ctx context.Context, msg contracts.LocationUpdateMessage) error {
	if err := p.client.GeoAdd(ctx, p.key, &redis.GeoLocation{
		Longitude: msg.Location.Lng,
		Latitude:  msg.Location.Lat,
		Name:      msg.DriverID,
	}).Err(); err != nil {
		return err
	}

	meta := map[string]any{
		"booking_id": msg.BookingID,
		"speed_kmh":  strconv.FormatFloat(msg.SpeedKMH, 'f', 2, 64),
		"updated":    time.Now().UTC().Format(time.RFC3339),
	}
	return p.client.HSet(ctx, metaKey(msg.DriverID), meta).Err()
}

// Remove drops the driver from the GEO set (driver went offline).
func (p *Presence) Remove(ctx context.Context, driverID string) error {
	if err := p.client.ZRem(ctx, p.key, driverID).Err(); err != nil {
		return err
	}
	return p.client.Del(ctx, metaKey(driverID)).Err()
}

// Ping verifies connectivity at startup.
func (p *Presence) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Presence) Close() error {
	return p.client.Close()
}

func metaKey(id string) string { return "driver:meta:" + id }
