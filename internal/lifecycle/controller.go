package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"seryvo/internal/domain/booking"
	"seryvo/internal/domain/driver"
	"seryvo/internal/domain/offer"
	"seryvo/internal/domain/user"
	"seryvo/internal/general/logger"
	"seryvo/internal/ports"
)

var (
	ErrOperationInFlight  = errors.New("operation already in flight")
	ErrNoActiveTrip       = errors.New("no active trip")
	ErrTripNotAdvanceable = errors.New("trip status has no successor")
	ErrOfferNotFound      = errors.New("offer not found")
	ErrOfferExpired       = errors.New("offer has expired")
	ErrRatingNotPending   = errors.New("no rating capture pending")
	ErrNotSolicitable     = errors.New("driver is not soliciting offers")
)

// Sink receives confirmed state changes for side effects the controller
// itself must not own: audit rows, MQ signals, metrics, shift bookkeeping.
// Sink calls happen outside the controller mutex and must not call back in.
type Sink interface {
	AvailabilityChanged(ctx context.Context, driverID string, state driver.Availability, shiftEdge ShiftEdge)
	OfferResolved(ctx context.Context, driverID string, o offer.Offer, outcome OfferOutcome)
	StatusChanged(ctx context.Context, driverID string, b *booking.Booking, prev booking.Status)
	TripClosed(ctx context.Context, driverID string, b *booking.Booking, rating int, skipped bool)
}

// ShiftEdge tells the sink whether an availability change opens or closes a
// shift, so shift rows are driven by confirmed transitions only.
type ShiftEdge int

const (
	ShiftNone ShiftEdge = iota
	ShiftOpens
	ShiftCloses
)

// OfferOutcome is how an offer left the local offer set.
type OfferOutcome string

const (
	OutcomeAccepted OfferOutcome = "accepted"
	OutcomeDeclined OfferOutcome = "declined"
	OutcomeExpired  OfferOutcome = "expired"
	OutcomeCleared  OfferOutcome = "cleared" // removed because a sibling offer was accepted
)

// Controller owns one driver's runtime lifecycle state: availability, the
// offer set, the active trip snapshot, and the pending rating gate. All
// booking state is backend-owned; the controller mutates its copy only after
// a confirmed backend response or an observed realtime snapshot.
type Controller struct {
	driverID string
	backend  ports.BookingBackend
	sink     Sink
	logger   *logger.Logger

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time

	mu            sync.Mutex
	availability  driver.Availability
	offers        map[string]offer.Offer
	active        *booking.Booking
	pendingRating bool
	connected     bool
	inflight      map[string]bool

	// reloadGen invalidates in-flight reconciles; bumped on every realtime
	// edge (connect, disconnect, push) so a stale fetch can never win.
	reloadGen atomic.Uint64
	reloadCh  chan struct{}
}

// NewController builds a controller starting offline with an empty feed.
func NewController(driverID string, backend ports.BookingBackend, sink Sink, log *logger.Logger) *Controller {
	return &Controller{
		driverID:     driverID,
		backend:      backend,
		sink:         sink,
		logger:       log,
		now:          func() time.Time { return time.Now().UTC() },
		availability: driver.AvailabilityOffline,
		offers:       make(map[string]offer.Offer),
		inflight:     make(map[string]bool),
		reloadCh:     make(chan struct{}, 1),
	}
}

// DriverID returns the driver this controller belongs to.
func (c *Controller) DriverID() string { return c.driverID }

// Availability returns the current presence state.
func (c *Controller) Availability() driver.Availability {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.availability
}

// Connected reports whether the driver's realtime channel is up.
func (c *Controller) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// ActiveBookingID returns the active trip's booking ID, if any.
func (c *Controller) ActiveBookingID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return "", false
	}
	return c.active.ID, true
}

// StreamsLocation reports whether live location frames should be forwarded
// right now, and for which booking. The gate is purely status-driven.
func (c *Controller) StreamsLocation() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || !c.active.Status.StreamsLocation() {
		return "", false
	}
	return c.active.ID, true
}

// actor returns the acting identity attached to every backend mutation.
func (c *Controller) actor() user.Actor {
	return user.Actor{ID: c.driverID, Role: user.RoleDriver}
}

// beginOp marks a named operation in flight. Re-entrant calls for the same
// name fail fast instead of double-submitting to the backend.
func (c *Controller) beginOp(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[name] {
		return ErrOperationInFlight
	}
	c.inflight[name] = true
	return nil
}

// endOp clears the in-flight marker regardless of outcome.
func (c *Controller) endOp(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, name)
}
