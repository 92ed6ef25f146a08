package postgres

import (
	"context"

	"seryvo/internal/domain/booking"
	"seryvo/internal/ports"
)

// TripEventRepo persists trip lifecycle events using pgx and plain SQL.
type TripEventRepo struct{}

// NewTripEventRepo constructs a new TripEventRepo.
func NewTripEventRepo() ports.TripEventRepository {
	return &TripEventRepo{}
}

// Append inserts a new trip_events row.
func (repo *TripEventRepo) Append(ctx context.Context, event *booking.Event) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	// validate event before inserting
	if err := event.Validate(); err != nil {
		return err
	}

	// serialize event data to JSON
	data, err := event.DataJSON()
	if err != nil {
		return err
	}

	// insert trip event record
	err = tx.QueryRow(ctx, `
		INSERT INTO trip_events (booking_id, event_type, event_data)
		VALUES ($1, $2, $3::jsonb)
		RETURNING id, created_at
	`,
		event.BookingID,
		event.Type.String(),
		string(data),
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return err
	}

	return nil
}

// ListForBooking returns the newest events for a booking, newest first.
func (repo *TripEventRepo) ListForBooking(ctx context.Context, bookingID string, limit int) ([]*booking.Event, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}

	rows, err := tx.Query(ctx, `
		SELECT id, booking_id, event_type, event_data, created_at
		FROM trip_events
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, bookingID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*booking.Event
	for rows.Next() {
		var (
			event   booking.Event
			rawType string
			data    map[string]any
		)

		if err := rows.Scan(&event.ID, &event.BookingID, &rawType, &data, &event.CreatedAt); err != nil {
			return nil, err
		}

		eventType, err := booking.ParseEventType(rawType)
		if err != nil {
			return nil, err
		}
		event.Type = eventType
		event.Data = data

		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
