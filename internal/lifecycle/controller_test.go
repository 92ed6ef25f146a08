package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"seryvo/internal/backend"
	"seryvo/internal/domain/booking"
	"seryvo/internal/domain/driver"
	"seryvo/internal/domain/offer"
	"seryvo/internal/domain/user"
	"seryvo/internal/general/logger"
	"seryvo/internal/ports"
)

// --- fakes ---

type fakeBackend struct {
	mu         sync.Mutex
	calls      []string
	listResult []*booking.Booking
	listErr    error
	updateErr  error
	availErr   error
	earnings   float64
	onList     func()        // invoked before each ListForDriver returns
	availGate  chan struct{} // when set, SetAvailability blocks until closed
	availIn    chan struct{} // signals that SetAvailability was entered
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeBackend) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) ListForDriver(ctx context.Context, driverID string) ([]*booking.Booking, error) {
	f.record("list")
	if f.onList != nil {
		f.onList()
	}
	return f.listResult, f.listErr
}

func (f *fakeBackend) UpdateStatus(ctx context.Context, bookingID string, target booking.Status, actor user.Actor) (*booking.Booking, error) {
	f.record("update:" + bookingID + ":" + target.String())
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	driverID := actor.ID
	return &booking.Booking{
		ID:       bookingID,
		DriverID: &driverID,
		Status:   target,
		Price:    booking.PriceBreakdown{DriverEarnings: f.earnings},
	}, nil
}

func (f *fakeBackend) SubmitRating(ctx context.Context, bookingID string, rating int, comment string, actor user.Actor) error {
	f.record(fmt.Sprintf("rate:%s:%d", bookingID, rating))
	return nil
}

func (f *fakeBackend) SetAvailability(ctx context.Context, driverID string, state driver.Availability, actor user.Actor) error {
	f.record("avail:" + state.String())
	if f.availIn != nil {
		f.availIn <- struct{}{}
	}
	if f.availGate != nil {
		<-f.availGate
	}
	return f.availErr
}

func (f *fakeBackend) Earnings(ctx context.Context, driverID string) (ports.EarningsSnapshot, error) {
	f.record("earnings")
	return ports.EarningsSnapshot{}, nil
}

type sunkOffer struct {
	bookingID string
	outcome   OfferOutcome
}

type recordSink struct {
	mu           sync.Mutex
	availability []driver.Availability
	edges        []ShiftEdge
	offers       []sunkOffer
	statuses     []booking.Status
	closedTrips  []bool // skipped flag per TripClosed call
}

func (s *recordSink) AvailabilityChanged(ctx context.Context, driverID string, state driver.Availability, edge ShiftEdge) {
	s.mu.Lock()
	s.availability = append(s.availability, state)
	s.edges = append(s.edges, edge)
	s.mu.Unlock()
}

func (s *recordSink) OfferResolved(ctx context.Context, driverID string, o offer.Offer, outcome OfferOutcome) {
	s.mu.Lock()
	s.offers = append(s.offers, sunkOffer{bookingID: o.BookingID, outcome: outcome})
	s.mu.Unlock()
}

func (s *recordSink) StatusChanged(ctx context.Context, driverID string, b *booking.Booking, prev booking.Status) {
	s.mu.Lock()
	s.statuses = append(s.statuses, b.Status)
	s.mu.Unlock()
}

func (s *recordSink) TripClosed(ctx context.Context, driverID string, b *booking.Booking, rating int, skipped bool) {
	s.mu.Lock()
	s.closedTrips = append(s.closedTrips, skipped)
	s.mu.Unlock()
}

func (s *recordSink) outcomes(outcome OfferOutcome) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, o := range s.offers {
		if o.outcome == outcome {
			ids = append(ids, o.bookingID)
		}
	}
	return ids
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestController(t *testing.T) (*Controller, *fakeBackend, *recordSink, *fakeClock) {
	t.Helper()
	be := &fakeBackend{}
	sink := &recordSink{}
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewController("driver-1", be, sink, logger.New("test"))
	c.now = clk.Now
	return c, be, sink, clk
}

func mustOffer(t *testing.T, id string, expiresAt time.Time) offer.Offer {
	t.Helper()
	o, err := offer.New(id, expiresAt)
	if err != nil {
		t.Fatalf("offer.New(%s): %v", id, err)
	}
	return o
}

func activeBooking(id string, status booking.Status) *booking.Booking {
	driverID := "driver-1"
	return &booking.Booking{ID: id, DriverID: &driverID, Status: status}
}

// --- availability ---

func TestToggleOnlineOpensShift(t *testing.T) {
	c, be, sink, _ := newTestController(t)
	ctx := context.Background()

	state, err := c.ToggleOnline(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != driver.AvailabilityAvailable {
		t.Fatalf("expected available, got %s", state)
	}
	if got := be.callLog(); len(got) != 1 || got[0] != "avail:available" {
		t.Fatalf("backend calls: %v", got)
	}
	if len(sink.edges) != 1 || sink.edges[0] != ShiftOpens {
		t.Fatalf("expected a ShiftOpens edge, got %v", sink.edges)
	}
}

func TestToggleOnlineBackendFailureLeavesStateUntouched(t *testing.T) {
	c, be, sink, _ := newTestController(t)
	be.availErr = fmt.Errorf("backend down")

	if _, err := c.ToggleOnline(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := c.Availability(); got != driver.AvailabilityOffline {
		t.Fatalf("availability mutated on failed call: %s", got)
	}
	if len(sink.availability) != 0 {
		t.Fatalf("sink notified despite failure: %v", sink.availability)
	}
}

func TestToggleRejectedWhileOnBreak(t *testing.T) {
	c, be, _, _ := newTestController(t)
	c.availability = driver.AvailabilityOnBreak

	if _, err := c.ToggleOnline(context.Background()); err != driver.ErrInvalidAvailabilitySwitch {
		t.Fatalf("expected ErrInvalidAvailabilitySwitch, got %v", err)
	}
	if len(be.callLog()) != 0 {
		t.Fatalf("backend called for a rejected toggle: %v", be.callLog())
	}
}

func TestGoOnBreakDropsOfferFeed(t *testing.T) {
	c, _, sink, clk := newTestController(t)
	ctx := context.Background()
	c.availability = driver.AvailabilityAvailable
	if err := c.AddOffer(ctx, mustOffer(t, "b-1", clk.Now().Add(30*time.Second))); err != nil {
		t.Fatalf("add offer: %v", err)
	}

	state, err := c.GoOnBreak(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != driver.AvailabilityOnBreak {
		t.Fatalf("expected on_break, got %s", state)
	}
	if live := c.Offers(ctx); len(live) != 0 {
		t.Fatalf("offer feed survived a break: %v", live)
	}
	if ids := sink.outcomes(OutcomeCleared); len(ids) != 1 || ids[0] != "b-1" {
		t.Fatalf("expected b-1 cleared, got %v", ids)
	}
}

func TestEndBreakOnlyFromBreak(t *testing.T) {
	c, _, _, _ := newTestController(t)
	if _, err := c.EndBreak(context.Background()); err != driver.ErrInvalidAvailabilitySwitch {
		t.Fatalf("expected ErrInvalidAvailabilitySwitch, got %v", err)
	}

	c.availability = driver.AvailabilityOnBreak
	state, err := c.EndBreak(context.Background())
	if err != nil || state != driver.AvailabilityAvailable {
		t.Fatalf("end break: got (%s, %v)", state, err)
	}
}

func TestAvailabilityOperationInFlightGuard(t *testing.T) {
	c, be, _, _ := newTestController(t)
	be.availGate = make(chan struct{})
	be.availIn = make(chan struct{}, 1)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.ToggleOnline(context.Background())
		errCh <- err
	}()
	<-be.availIn // first toggle is inside the backend call

	if _, err := c.ToggleOnline(context.Background()); err != ErrOperationInFlight {
		t.Fatalf("expected ErrOperationInFlight, got %v", err)
	}

	close(be.availGate)
	if err := <-errCh; err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
}

// --- offers ---

func TestOfferCountdownRecomputedFromAbsoluteExpiry(t *testing.T) {
	c, _, sink, clk := newTestController(t)
	ctx := context.Background()
	c.availability = driver.AvailabilityAvailable

	base := clk.Now()
	if err := c.AddOffer(ctx, mustOffer(t, "b-long", base.Add(30*time.Second))); err != nil {
		t.Fatalf("add offer: %v", err)
	}
	if err := c.AddOffer(ctx, mustOffer(t, "b-short", base.Add(5*time.Second))); err != nil {
		t.Fatalf("add offer: %v", err)
	}

	clk.Advance(6 * time.Second)

	live := c.Offers(ctx)
	if len(live) != 1 || live[0].BookingID != "b-long" {
		t.Fatalf("expected only b-long to survive, got %v", live)
	}
	if got := live[0].RemainingSeconds(clk.Now()); got != 24 {
		t.Fatalf("remaining = %d, want 24", got)
	}
	if ids := sink.outcomes(OutcomeExpired); len(ids) != 1 || ids[0] != "b-short" {
		t.Fatalf("expected b-short expired, got %v", ids)
	}
}

func TestExpirySweepRunsWithoutFeedReads(t *testing.T) {
	c, _, sink, clk := newTestController(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.availability = driver.AvailabilityAvailable

	if err := c.AddOffer(ctx, mustOffer(t, "b-1", clk.Now().Add(5*time.Second))); err != nil {
		t.Fatalf("add offer: %v", err)
	}
	clk.Advance(10 * time.Second)

	// nobody reads the feed; the sweep loop alone must expire the offer
	go c.RunExpiryLoop(ctx, 5*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for {
		if ids := sink.outcomes(OutcomeExpired); len(ids) == 1 && ids[0] == "b-1" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("expired offer never left the feed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	c.mu.Lock()
	left := len(c.offers)
	c.mu.Unlock()
	if left != 0 {
		t.Fatalf("feed still holds %d offers after the sweep", left)
	}
}

func TestAddOfferRejectedWhenNotSoliciting(t *testing.T) {
	c, _, _, clk := newTestController(t)
	ctx := context.Background()
	o := mustOffer(t, "b-1", clk.Now().Add(30*time.Second))

	// offline
	if err := c.AddOffer(ctx, o); err != ErrNotSolicitable {
		t.Fatalf("offline: expected ErrNotSolicitable, got %v", err)
	}

	// active trip
	c.availability = driver.AvailabilityAvailable
	c.active = activeBooking("b-active", booking.StatusInProgress)
	if err := c.AddOffer(ctx, o); err != ErrNotSolicitable {
		t.Fatalf("on trip: expected ErrNotSolicitable, got %v", err)
	}

	// dead on arrival
	c.active = nil
	doa := mustOffer(t, "b-doa", clk.Now().Add(time.Second))
	clk.Advance(2 * time.Second)
	if err := c.AddOffer(ctx, doa); err != ErrOfferExpired {
		t.Fatalf("expired: expected ErrOfferExpired, got %v", err)
	}
}

func TestAcceptOfferClearsEntireFeed(t *testing.T) {
	c, be, sink, clk := newTestController(t)
	ctx := context.Background()
	c.availability = driver.AvailabilityAvailable

	base := clk.Now()
	for _, id := range []string{"b-1", "b-2", "b-3"} {
		if err := c.AddOffer(ctx, mustOffer(t, id, base.Add(30*time.Second))); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	confirmed, err := c.AcceptOffer(ctx, "b-2")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if confirmed.Status != booking.StatusDriverAssigned {
		t.Fatalf("expected driver_assigned snapshot, got %s", confirmed.Status)
	}
	if got := be.callLog(); len(got) != 1 || got[0] != "update:b-2:driver_assigned" {
		t.Fatalf("backend calls: %v", got)
	}
	if live := c.Offers(ctx); len(live) != 0 {
		t.Fatalf("siblings survived an accept: %v", live)
	}
	if got := c.Availability(); got != driver.AvailabilityOnTrip {
		t.Fatalf("expected on_trip, got %s", got)
	}
	if id, ok := c.ActiveBookingID(); !ok || id != "b-2" {
		t.Fatalf("active booking = (%s, %v)", id, ok)
	}
	if ids := sink.outcomes(OutcomeAccepted); len(ids) != 1 || ids[0] != "b-2" {
		t.Fatalf("accepted outcomes: %v", ids)
	}
	if ids := sink.outcomes(OutcomeCleared); len(ids) != 2 {
		t.Fatalf("expected both siblings cleared, got %v", ids)
	}
}

func TestAcceptOfferConflictRemovesOnlyThatOffer(t *testing.T) {
	c, be, sink, clk := newTestController(t)
	ctx := context.Background()
	c.availability = driver.AvailabilityAvailable
	be.updateErr = fmt.Errorf("patch rejected: %w", backend.ErrConflict)

	base := clk.Now()
	for _, id := range []string{"b-lost", "b-other"} {
		if err := c.AddOffer(ctx, mustOffer(t, id, base.Add(30*time.Second))); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	if _, err := c.AcceptOffer(ctx, "b-lost"); err == nil {
		t.Fatal("expected conflict error")
	}
	live := c.Offers(ctx)
	if len(live) != 1 || live[0].BookingID != "b-other" {
		t.Fatalf("feed after conflict: %v", live)
	}
	if got := c.Availability(); got != driver.AvailabilityAvailable {
		t.Fatalf("availability mutated on conflict: %s", got)
	}
	if ids := sink.outcomes(OutcomeCleared); len(ids) != 1 || ids[0] != "b-lost" {
		t.Fatalf("cleared outcomes: %v", ids)
	}
}

func TestDeclineRemovesExactlyOne(t *testing.T) {
	c, be, sink, clk := newTestController(t)
	ctx := context.Background()
	c.availability = driver.AvailabilityAvailable

	base := clk.Now()
	for _, id := range []string{"b-1", "b-2"} {
		if err := c.AddOffer(ctx, mustOffer(t, id, base.Add(30*time.Second))); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	remaining, err := c.DeclineOffer(ctx, "b-1")
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("remaining = %d, want 1", remaining)
	}
	if len(be.callLog()) != 0 {
		t.Fatalf("decline must not call the backend booking API: %v", be.callLog())
	}
	if ids := sink.outcomes(OutcomeDeclined); len(ids) != 1 || ids[0] != "b-1" {
		t.Fatalf("declined outcomes: %v", ids)
	}

	if _, err := c.DeclineOffer(ctx, "b-gone"); err != ErrOfferNotFound {
		t.Fatalf("expected ErrOfferNotFound, got %v", err)
	}
}

// --- trip progression ---

func TestAdvanceHappyStep(t *testing.T) {
	c, be, sink, _ := newTestController(t)
	c.availability = driver.AvailabilityOnTrip
	c.active = activeBooking("b-1", booking.StatusDriverAssigned)

	res, err := c.AdvanceTrip(context.Background())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !res.Applied || res.Status != booking.StatusDriverEnRoutePickup {
		t.Fatalf("result = %+v", res)
	}
	if got := be.callLog(); len(got) != 1 || got[0] != "update:b-1:driver_en_route_pickup" {
		t.Fatalf("backend calls: %v", got)
	}
	if len(sink.statuses) != 1 || sink.statuses[0] != booking.StatusDriverEnRoutePickup {
		t.Fatalf("sink statuses: %v", sink.statuses)
	}
}

func TestAdvanceArmsRatingAtCompletionGate(t *testing.T) {
	c, be, _, _ := newTestController(t)
	c.availability = driver.AvailabilityOnTrip
	c.active = activeBooking("b-1", booking.StatusInProgress)

	res, err := c.AdvanceTrip(context.Background())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !res.RatingRequired || res.Applied {
		t.Fatalf("result = %+v", res)
	}
	if res.Status != booking.StatusInProgress {
		t.Fatalf("booking must stay in_progress, got %s", res.Status)
	}
	if len(be.callLog()) != 0 {
		t.Fatalf("completion gate must issue no backend call: %v", be.callLog())
	}
	if !c.RatingPending() {
		t.Fatal("rating capture not armed")
	}
}

func TestAdvanceBackendFailureLeavesStateUntouched(t *testing.T) {
	c, be, sink, _ := newTestController(t)
	c.availability = driver.AvailabilityOnTrip
	c.active = activeBooking("b-1", booking.StatusDriverArrived)
	be.updateErr = fmt.Errorf("timeout")

	if _, err := c.AdvanceTrip(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if c.active.Status != booking.StatusDriverArrived {
		t.Fatalf("status mutated on failure: %s", c.active.Status)
	}
	if len(sink.statuses) != 0 {
		t.Fatalf("sink notified despite failure: %v", sink.statuses)
	}
}

func TestAdvanceWithoutActiveTrip(t *testing.T) {
	c, _, _, _ := newTestController(t)
	if _, err := c.AdvanceTrip(context.Background()); err != ErrNoActiveTrip {
		t.Fatalf("expected ErrNoActiveTrip, got %v", err)
	}
}

// --- rating ---

func TestSubmitRatingCompletesThenRates(t *testing.T) {
	c, be, sink, _ := newTestController(t)
	c.availability = driver.AvailabilityOnTrip
	c.active = activeBooking("b-1", booking.StatusInProgress)
	c.pendingRating = true
	be.earnings = 18.50

	res, err := c.SubmitRating(context.Background(), 5, "great passenger", false)
	if err != nil {
		t.Fatalf("submit rating: %v", err)
	}
	if res.Status != booking.StatusCompleted || res.Earnings != 18.50 {
		t.Fatalf("result = %+v", res)
	}
	want := []string{"update:b-1:completed", "rate:b-1:5"}
	got := be.callLog()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("backend calls = %v, want %v", got, want)
	}
	if _, ok := c.ActiveBookingID(); ok {
		t.Fatal("active trip not released")
	}
	if got := c.Availability(); got != driver.AvailabilityAvailable {
		t.Fatalf("expected available after completion, got %s", got)
	}
	if len(sink.closedTrips) != 1 || sink.closedTrips[0] {
		t.Fatalf("TripClosed calls: %v", sink.closedTrips)
	}
}

func TestSkipRatingClosesLocally(t *testing.T) {
	c, be, sink, _ := newTestController(t)
	c.availability = driver.AvailabilityOnTrip
	c.active = activeBooking("b-1", booking.StatusInProgress)
	c.pendingRating = true

	res, err := c.SubmitRating(context.Background(), 0, "", true)
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if !res.Skipped || res.Status != booking.StatusInProgress {
		t.Fatalf("result = %+v", res)
	}
	if len(be.callLog()) != 0 {
		t.Fatalf("skip must issue no backend calls: %v", be.callLog())
	}
	if c.RatingPending() {
		t.Fatal("rating capture still armed after skip")
	}
	if len(sink.closedTrips) != 1 || !sink.closedTrips[0] {
		t.Fatalf("TripClosed calls: %v", sink.closedTrips)
	}
}

func TestSkipRatingRejectedWhenTripAlreadyReleased(t *testing.T) {
	c, be, sink, _ := newTestController(t)
	// a reconcile can release the trip while the capture is still armed on
	// the app's side; the skip must refuse instead of closing a nil trip
	c.pendingRating = true
	c.active = nil

	if _, err := c.SubmitRating(context.Background(), 0, "", true); err != ErrRatingNotPending {
		t.Fatalf("expected ErrRatingNotPending, got %v", err)
	}
	if len(be.callLog()) != 0 {
		t.Fatalf("backend called for a released trip: %v", be.callLog())
	}
	if len(sink.closedTrips) != 0 {
		t.Fatalf("TripClosed called for a released trip: %v", sink.closedTrips)
	}
}

func TestSubmitRatingWithoutPendingCapture(t *testing.T) {
	c, _, _, _ := newTestController(t)
	if _, err := c.SubmitRating(context.Background(), 5, "", false); err != ErrRatingNotPending {
		t.Fatalf("expected ErrRatingNotPending, got %v", err)
	}
}

// --- reconciliation ---

func TestReconcileAdoptsBackendActiveTrip(t *testing.T) {
	c, be, _, clk := newTestController(t)
	ctx := context.Background()
	c.availability = driver.AvailabilityAvailable
	if err := c.AddOffer(ctx, mustOffer(t, "b-offer", clk.Now().Add(30*time.Second))); err != nil {
		t.Fatalf("add offer: %v", err)
	}
	be.listResult = []*booking.Booking{activeBooking("b-remote", booking.StatusDriverEnRoutePickup)}

	if err := c.Reconcile(ctx); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if id, ok := c.ActiveBookingID(); !ok || id != "b-remote" {
		t.Fatalf("active = (%s, %v)", id, ok)
	}
	if got := c.Availability(); got != driver.AvailabilityOnTrip {
		t.Fatalf("expected forced on_trip, got %s", got)
	}
	if live := c.Offers(ctx); len(live) != 0 {
		t.Fatalf("offer feed survived adoption: %v", live)
	}
}

func TestReconcileReleasesVanishedTrip(t *testing.T) {
	c, be, _, _ := newTestController(t)
	c.availability = driver.AvailabilityOnTrip
	c.active = activeBooking("b-1", booking.StatusInProgress)
	c.pendingRating = true
	be.listResult = nil // trip gone remotely

	if err := c.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if _, ok := c.ActiveBookingID(); ok {
		t.Fatal("vanished trip still active")
	}
	if c.RatingPending() {
		t.Fatal("rating capture survived the release")
	}
	if got := c.Availability(); got != driver.AvailabilityAvailable {
		t.Fatalf("expected available, got %s", got)
	}
}

func TestReconcileRetriesWhenGenerationBumps(t *testing.T) {
	c, be, _, _ := newTestController(t)
	listCalls := 0
	be.onList = func() {
		listCalls++
		if listCalls == 1 {
			// a realtime push races the first fetch
			c.BumpReload("test_race")
		}
	}

	if err := c.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if listCalls != 2 {
		t.Fatalf("expected a second fetch after the stale one, got %d", listCalls)
	}
}

func TestSetConnectedBumpsGeneration(t *testing.T) {
	c, _, _, _ := newTestController(t)
	before := c.ReloadGeneration()

	c.SetConnected(true)
	if !c.Connected() {
		t.Fatal("connected flag not set")
	}
	c.SetConnected(false)
	if c.Connected() {
		t.Fatal("connected flag not cleared")
	}
	if got := c.ReloadGeneration(); got != before+2 {
		t.Fatalf("generation = %d, want %d", got, before+2)
	}
}

// --- forced adoption via realtime push ---

func TestAdoptBookingForcesOnTripThenReleases(t *testing.T) {
	c, _, sink, clk := newTestController(t)
	ctx := context.Background()
	c.availability = driver.AvailabilityAvailable
	if err := c.AddOffer(ctx, mustOffer(t, "b-offer", clk.Now().Add(30*time.Second))); err != nil {
		t.Fatalf("add offer: %v", err)
	}

	c.AdoptBooking(ctx, activeBooking("b-push", booking.StatusDriverAssigned))
	if got := c.Availability(); got != driver.AvailabilityOnTrip {
		t.Fatalf("expected forced on_trip, got %s", got)
	}
	if live := c.Offers(ctx); len(live) != 0 {
		t.Fatalf("offer feed survived adoption: %v", live)
	}

	// the same trip ends remotely
	c.AdoptBooking(ctx, activeBooking("b-push", booking.StatusCanceledByClient))
	if _, ok := c.ActiveBookingID(); ok {
		t.Fatal("canceled trip still active")
	}
	if got := c.Availability(); got != driver.AvailabilityAvailable {
		t.Fatalf("expected available after remote cancel, got %s", got)
	}
	if ids := sink.outcomes(OutcomeCleared); len(ids) != 1 || ids[0] != "b-offer" {
		t.Fatalf("cleared outcomes: %v", ids)
	}
}

func TestAdoptBookingIgnoresUnrelatedSnapshots(t *testing.T) {
	c, _, sink, _ := newTestController(t)
	other := "driver-2"
	c.AdoptBooking(context.Background(), &booking.Booking{
		ID:       "b-foreign",
		DriverID: &other,
		Status:   booking.StatusInProgress,
	})
	if got := c.Availability(); got != driver.AvailabilityOffline {
		t.Fatalf("availability mutated by a foreign booking: %s", got)
	}
	if len(sink.statuses) != 0 || len(sink.availability) != 0 {
		t.Fatal("sink notified for a foreign booking")
	}
}
