package payouts

import (
	"context"
	"time"

	"seryvo/internal/ports"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/payout"
)

// StripeClient is a thin wrapper around stripe-go for read-only payout
// snapshots shown on the driver earnings screen.
type StripeClient struct{}

// NewStripeClient initializes the stripe client with the given API key.
func NewStripeClient(apiKey string) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{}
}

var _ ports.PayoutProvider = (*StripeClient)(nil)

// Snapshots lists the most recent payouts for a connected driver account.
func (s *StripeClient) Snapshots(ctx context.Context, accountID string, limit int) ([]ports.PayoutSnapshot, error) {
	if limit <= 0 {
		limit = 10
	}

	params := &stripe.PayoutListParams{}
	params.Limit = stripe.Int64(int64(limit))
	params.SetStripeAccount(accountID)
	params.Context = ctx

	var out []ports.PayoutSnapshot
	iter := payout.List(params)
	for iter.Next() {
		p := iter.Payout()
		out = append(out, ports.PayoutSnapshot{
			ID:          p.ID,
			Amount:      float64(p.Amount) / 100,
			Currency:    string(p.Currency),
			Status:      string(p.Status),
			ArrivalDate: time.Unix(p.ArrivalDate, 0).UTC(),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
