package service

import (
	"context"
	"errors"

	"seryvo/internal/ports"
)

var ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")

// SubmitRating resolves the armed rating capture, completing the trip or
// skipping the step. An omitted rating defaults to 5.
func (service *Service) SubmitRating(ctx context.Context, in ports.SubmitRatingInput) (ports.SubmitRatingResult, error) {
	ctrl := service.manager.Get(in.DriverID)

	rating := in.Rating
	if rating == 0 {
		rating = 5
	}
	if rating < 1 || rating > 5 {
		return ports.SubmitRatingResult{}, ErrRatingOutOfRange
	}

	res, err := ctrl.SubmitRating(ctx, rating, in.Comment, in.Skip)
	if err != nil {
		return ports.SubmitRatingResult{}, err
	}

	msg := "trip completed"
	if res.Skipped {
		msg = "rating skipped"
	}

	return ports.SubmitRatingResult{
		BookingID:    res.BookingID,
		Status:       res.Status.String(),
		Availability: ctrl.Availability().String(),
		Earnings:     res.Earnings,
		Skipped:      res.Skipped,
		Message:      msg,
	}, nil
}
