package postgres

import (
	"context"

	"seryvo/internal/domain/driver"
	"seryvo/internal/ports"
)

// ShiftRepo persists driver shift records using pgx and plain SQL.
type ShiftRepo struct{}

// NewShiftRepo constructs a new ShiftRepo.
func NewShiftRepo() ports.ShiftRepository {
	return &ShiftRepo{}
}

// Start creates a new driver shift row and returns its generated shift ID.
func (repo *ShiftRepo) Start(ctx context.Context, driverID string) (string, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return "", err
	}

	shift, err := driver.NewShift(driverID)
	if err != nil {
		return "", err
	}

	var shiftID string
	err = tx.QueryRow(ctx, `
		INSERT INTO driver_shifts (driver_id, started_at, trips_done, total_earnings)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`,
		shift.DriverID,
		shift.StartedAt,
		shift.TripsDone,
		shift.TotalEarnings,
	).Scan(&shiftID)
	if err != nil {
		return "", err
	}

	return shiftID, nil
}

// End updates an existing shift with its summary and marks it ended.
func (repo *ShiftRepo) End(ctx context.Context, shiftID string, summary driver.Shift) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	if summary.EndedAt == nil {
		if err := summary.End(); err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE driver_shifts
		SET ended_at = $1,
		    trips_done = $2,
		    total_earnings = $3
		WHERE id = $4
	`, summary.EndedAt, summary.TripsDone, summary.TotalEarnings, shiftID)

	return err
}

// GetActiveForDriver fetches the driver's open shift, if any.
func (repo *ShiftRepo) GetActiveForDriver(ctx context.Context, driverID string) (*driver.Shift, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var shift driver.Shift

	err = tx.QueryRow(ctx, `
		SELECT
			id,
			driver_id,
			started_at,
			ended_at,
			trips_done,
			total_earnings
		FROM driver_shifts
		WHERE driver_id = $1 AND ended_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`, driverID).Scan(
		&shift.ID,
		&shift.DriverID,
		&shift.StartedAt,
		&shift.EndedAt,
		&shift.TripsDone,
		&shift.TotalEarnings,
	)
	if err != nil {
		return nil, err
	}

	return &shift, nil
}

// IncrementCounters updates aggregate counters for an open shift.
func (repo *ShiftRepo) IncrementCounters(ctx context.Context, shiftID string, tripsDone int, totalEarnings float64) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE driver_shifts
		SET trips_done = $1,
		    total_earnings = $2
		WHERE id = $3
	`, tripsDone, totalEarnings, shiftID)

	return err
}
