package service

import (
	"context"
	"time"

	"seryvo/internal/ports"
)

// Earnings fetches read-only performance aggregates and payout snapshots.
// Aggregates come from the backend; payouts from the payment provider. A
// payout failure degrades to an empty list rather than failing the screen.
func (service *Service) Earnings(ctx context.Context, driverID string) (ports.EarningsResult, error) {
	snap, err := service.backend.Earnings(ctx, driverID)
	if err != nil {
		return ports.EarningsResult{}, err
	}

	payouts, err := service.payouts.Snapshots(ctx, driverID, 10)
	if err != nil {
		service.logger.Error(ctx, "payouts_fetch_failed", "Failed to fetch payout snapshots", err, map[string]any{
			"driver_id": driverID,
		})
		payouts = nil
	}

	return ports.EarningsResult{
		Timestamp: time.Now().UTC(),
		Earnings:  snap,
		Payouts:   payouts,
	}, nil
}
