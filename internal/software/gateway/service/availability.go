package service

import (
	"context"
	"fmt"

	"seryvo/internal/domain/driver"
	"seryvo/internal/ports"
)

// ToggleOnline flips the driver between offline and available.
func (service *Service) ToggleOnline(ctx context.Context, in ports.AvailabilityInput) (ports.AvailabilityResult, error) {
	ctrl := service.manager.Get(in.DriverID)

	state, err := ctrl.ToggleOnline(ctx)
	if err != nil {
		return ports.AvailabilityResult{}, err
	}

	result := ports.AvailabilityResult{
		Availability: state.String(),
		Message:      fmt.Sprintf("driver is now %s", state),
	}

	// surface the open shift ID when a shift just started
	if state == driver.AvailabilityAvailable {
		_ = service.uow.WithinTx(ctx, func(ctx context.Context) error {
			shift, err := service.shifts.GetActiveForDriver(ctx, in.DriverID)
			if err != nil {
				return err
			}
			result.ShiftID = shift.ID
			return nil
		})
	}

	return result, nil
}

// GoOnBreak pauses offer solicitation without closing the shift.
func (service *Service) GoOnBreak(ctx context.Context, in ports.AvailabilityInput) (ports.AvailabilityResult, error) {
	ctrl := service.manager.Get(in.DriverID)

	state, err := ctrl.GoOnBreak(ctx)
	if err != nil {
		return ports.AvailabilityResult{}, err
	}

	return ports.AvailabilityResult{
		Availability: state.String(),
		Message:      "break started",
	}, nil
}

// EndBreak returns the driver to available.
func (service *Service) EndBreak(ctx context.Context, in ports.AvailabilityInput) (ports.AvailabilityResult, error) {
	ctrl := service.manager.Get(in.DriverID)

	state, err := ctrl.EndBreak(ctx)
	if err != nil {
		return ports.AvailabilityResult{}, err
	}

	return ports.AvailabilityResult{
		Availability: state.String(),
		Message:      "break ended",
	}, nil
}
