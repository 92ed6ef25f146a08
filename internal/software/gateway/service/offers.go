package service

import (
	"context"
	"fmt"
	"time"

	"seryvo/internal/ports"
)

// ListOffers returns the driver's live offer feed. Remaining seconds are
// computed here, at response time, from each offer's absolute expiry.
func (service *Service) ListOffers(ctx context.Context, driverID string) (ports.OffersResult, error) {
	ctrl := service.manager.Get(driverID)

	now := time.Now().UTC()
	live := ctrl.Offers(ctx)

	views := make([]ports.OfferView, 0, len(live))
	for _, o := range live {
		views = append(views, ports.OfferView{
			BookingID:        o.BookingID,
			PickupAddress:    o.PickupAddress,
			DropoffAddress:   o.DropoffAddress,
			DistanceKM:       o.DistanceKM,
			EstimatedMinutes: o.EstimatedMinutes,
			DriverEarnings:   o.DriverEarnings,
			ExpiresAt:        o.ExpiresAt.Format(time.RFC3339),
			RemainingSeconds: o.RemainingSeconds(now),
		})
	}

	return ports.OffersResult{
		Availability: ctrl.Availability().String(),
		Offers:       views,
		Connected:    ctrl.Connected(),
	}, nil
}

// AcceptOffer claims an offer for the driver.
func (service *Service) AcceptOffer(ctx context.Context, in ports.AcceptOfferInput) (ports.AcceptOfferResult, error) {
	ctrl := service.manager.Get(in.DriverID)

	confirmed, err := ctrl.AcceptOffer(ctx, in.BookingID)
	if err != nil {
		return ports.AcceptOfferResult{}, err
	}

	return ports.AcceptOfferResult{
		BookingID:    confirmed.ID,
		Status:       confirmed.Status.String(),
		Availability: ctrl.Availability().String(),
		Message:      "offer accepted, trip assigned",
	}, nil
}

// DeclineOffer removes one offer from the driver's feed.
func (service *Service) DeclineOffer(ctx context.Context, in ports.DeclineOfferInput) (ports.DeclineOfferResult, error) {
	ctrl := service.manager.Get(in.DriverID)

	remaining, err := ctrl.DeclineOffer(ctx, in.BookingID)
	if err != nil {
		return ports.DeclineOfferResult{}, err
	}

	return ports.DeclineOfferResult{
		BookingID: in.BookingID,
		Remaining: remaining,
		Message:   fmt.Sprintf("offer declined, %d remaining", remaining),
	}, nil
}
