package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"seryvo/internal/domain/booking"
	"seryvo/internal/domain/driver"
	"seryvo/internal/domain/user"
	"seryvo/internal/general/logger"
	"seryvo/internal/ports"
)

// ErrConflict is returned when the backend rejects a transition because the
// booking already moved past the target status. Callers treat it as a signal
// to reconcile, not as data corruption.
var ErrConflict = errors.New("backend rejected transition: booking already moved")

// Client talks to the Seryvo REST backend. It owns no booking state: every
// call returns the backend's confirmed view and nothing else.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// NewClient builds a REST client with a per-call timeout.
func NewClient(baseURL string, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

var _ ports.BookingBackend = (*Client)(nil)

// ----- wire DTOs -----

type stopDTO struct {
	Sequence  int     `json:"sequence"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IsPickup  bool    `json:"is_pickup"`
}

type priceDTO struct {
	BaseFare       float64 `json:"base_fare"`
	DistanceFare   float64 `json:"distance_fare"`
	TimeFare       float64 `json:"time_fare"`
	Surcharges     float64 `json:"surcharges"`
	Discount       float64 `json:"discount"`
	Total          float64 `json:"total"`
	DriverEarnings float64 `json:"driver_earnings"`
	Currency       string  `json:"currency"`
}

type bookingDTO struct {
	ID             string     `json:"id"`
	ClientID       string     `json:"client_id"`
	DriverID       *string    `json:"driver_id"`
	Status         string     `json:"status"`
	Stops          []stopDTO  `json:"stops"`
	PassengerCount int        `json:"passenger_count"`
	LuggageCount   int        `json:"luggage_count"`
	Price          priceDTO   `json:"price"`
	RequestedAt    time.Time  `json:"requested_at"`
	ScheduledAt    *time.Time `json:"scheduled_at"`
	DriverRating   *int       `json:"driver_rating"`
	ClientRating   *int       `json:"client_rating"`
	RatingComment  *string    `json:"rating_comment"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type errorDTO struct {
	Detail string `json:"detail"`
}

// toDomain converts the wire booking into the domain snapshot.
func (dto *bookingDTO) toDomain() (*booking.Booking, error) {
	status, err := booking.ParseStatus(dto.Status)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", dto.ID, err)
	}

	legs := make([]booking.Leg, 0, len(dto.Stops))
	for _, s := range dto.Stops {
		legs = append(legs, booking.Leg{
			Sequence:  s.Sequence,
			Address:   s.Address,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			IsPickup:  s.IsPickup,
		})
	}

	b := &booking.Booking{
		ID:             dto.ID,
		ClientID:       dto.ClientID,
		DriverID:       dto.DriverID,
		Status:         status,
		Legs:           legs,
		PassengerCount: dto.PassengerCount,
		LuggageCount:   dto.LuggageCount,
		Price: booking.PriceBreakdown{
			BaseFare:       dto.Price.BaseFare,
			DistanceFare:   dto.Price.DistanceFare,
			TimeFare:       dto.Price.TimeFare,
			Surcharges:     dto.Price.Surcharges,
			Discount:       dto.Price.Discount,
			Total:          dto.Price.Total,
			DriverEarnings: dto.Price.DriverEarnings,
			Currency:       dto.Price.Currency,
		},
		RequestedAt:   dto.RequestedAt,
		ScheduledAt:   dto.ScheduledAt,
		DriverRating:  dto.DriverRating,
		ClientRating:  dto.ClientRating,
		RatingComment: dto.RatingComment,
		CreatedAt:     dto.CreatedAt,
		UpdatedAt:     dto.UpdatedAt,
	}

	if err := b.ValidateSnapshot(); err != nil {
		return nil, err
	}
	return b, nil
}

// ----- BookingBackend implementation -----

// ListForDriver fetches the driver's visible booking snapshots.
func (c *Client) ListForDriver(ctx context.Context, driverID string) ([]*booking.Booking, error) {
	q := url.Values{}
	q.Set("driver_id", driverID)

	var payload struct {
		Bookings []bookingDTO `json:"bookings"`
	}
	actor := user.Actor{ID: driverID, Role: user.RoleDriver}
	if err := c.do(ctx, http.MethodGet, "/api/v1/bookings?"+q.Encode(), actor, nil, &payload); err != nil {
		return nil, err
	}

	out := make([]*booking.Booking, 0, len(payload.Bookings))
	for i := range payload.Bookings {
		b, err := payload.Bookings[i].toDomain()
		if err != nil {
			// skip malformed snapshots instead of failing the whole feed
			c.logger.Error(ctx, "backend_bad_snapshot", "Dropping malformed booking snapshot", err, map[string]any{
				"booking_id": payload.Bookings[i].ID,
			})
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// UpdateStatus issues a transition and returns the confirmed snapshot.
func (c *Client) UpdateStatus(ctx context.Context, bookingID string, target booking.Status, actor user.Actor) (*booking.Booking, error) {
	body := map[string]string{"status": target.String()}

	var dto bookingDTO
	path := fmt.Sprintf("/api/v1/bookings/%s/status", url.PathEscape(bookingID))
	if err := c.do(ctx, http.MethodPatch, path, actor, body, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain()
}

// SubmitRating attaches the driver's rating of the client to the booking.
func (c *Client) SubmitRating(ctx context.Context, bookingID string, rating int, comment string, actor user.Actor) error {
	body := map[string]any{"rating": rating}
	if comment = strings.TrimSpace(comment); comment != "" {
		body["comment"] = comment
	}

	path := fmt.Sprintf("/api/v1/bookings/%s/rate", url.PathEscape(bookingID))
	return c.do(ctx, http.MethodPost, path, actor, body, nil)
}

// SetAvailability updates the driver's presence state remotely.
func (c *Client) SetAvailability(ctx context.Context, driverID string, state driver.Availability, actor user.Actor) error {
	body := map[string]string{"availability_status": state.String()}
	return c.do(ctx, http.MethodPatch, "/api/v1/drivers/status", actor, body, nil)
}

// Earnings fetches the read-only performance aggregates.
func (c *Client) Earnings(ctx context.Context, driverID string) (ports.EarningsSnapshot, error) {
	var snap ports.EarningsSnapshot
	actor := user.Actor{ID: driverID, Role: user.RoleDriver}
	err := c.do(ctx, http.MethodGet, "/api/v1/drivers/performance", actor, nil, &snap)
	return snap, err
}

// ----- plumbing -----

// do performs one JSON round trip. The acting identity travels in headers so
// the backend can scope authorization without a second token exchange.
func (c *Client) do(ctx context.Context, method, path string, actor user.Actor, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-ID", actor.ID)
	req.Header.Set("X-User-Role", actor.Role.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	// bounded read; error payloads are tiny, snapshots are modest
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("backend: read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("backend: decode response: %w", err)
		}
		return nil

	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusBadRequest:
		var e errorDTO
		_ = json.Unmarshal(raw, &e)
		c.logger.Info(ctx, "backend_transition_rejected", "Backend rejected the request", map[string]any{
			"status_code": resp.StatusCode,
			"detail":      e.Detail,
			"path":        path,
		})
		return fmt.Errorf("%w: %s", ErrConflict, e.Detail)

	default:
		var e errorDTO
		_ = json.Unmarshal(raw, &e)
		detail := e.Detail
		if detail == "" {
			detail = strings.TrimSpace(string(raw))
		}
		return fmt.Errorf("backend: %s %s: status %d: %s", method, path, resp.StatusCode, detail)
	}
}
