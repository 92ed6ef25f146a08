package service

import (
	"context"

	"seryvo/internal/ports"
)

// AdvanceTrip moves the active trip one step along the fixed progression.
func (service *Service) AdvanceTrip(ctx context.Context, in ports.AdvanceTripInput) (ports.AdvanceTripResult, error) {
	ctrl := service.manager.Get(in.DriverID)

	res, err := ctrl.AdvanceTrip(ctx)
	if err != nil {
		return ports.AdvanceTripResult{}, err
	}

	msg := "trip advanced"
	if res.RatingRequired {
		msg = "trip at completion gate, submit a rating to finish"
	}

	return ports.AdvanceTripResult{
		BookingID:      res.BookingID,
		Status:         res.Status.String(),
		Applied:        res.Applied,
		RatingRequired: res.RatingRequired,
		Message:        msg,
	}, nil
}
