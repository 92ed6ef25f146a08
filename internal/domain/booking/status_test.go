package booking

import "testing"

func TestNextFollowsFixedProgression(t *testing.T) {
	steps := []struct {
		from Status
		want Status
	}{
		{StatusDriverAssigned, StatusDriverEnRoutePickup},
		{StatusDriverEnRoutePickup, StatusDriverArrived},
		{StatusDriverArrived, StatusInProgress},
		{StatusInProgress, StatusCompleted},
	}
	for _, step := range steps {
		next, ok := step.from.Next()
		if !ok {
			t.Fatalf("%s: expected a successor", step.from)
		}
		if next != step.want {
			t.Fatalf("%s: expected %s, got %s", step.from, step.want, next)
		}
	}
}

func TestNextRejectsNonAdvanceableStates(t *testing.T) {
	for _, status := range []Status{
		StatusDraft, StatusRequested, StatusCompleted,
		StatusCanceledByClient, StatusCanceledByDriver, StatusCanceledBySystem,
		StatusNoShowClient, StatusNoShowDriver, StatusDisputed, StatusRefunded,
	} {
		if _, ok := status.Next(); ok {
			t.Fatalf("%s: expected no successor", status)
		}
	}
}

func TestParseStatusNormalizes(t *testing.T) {
	got, err := ParseStatus("  In_Progress ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusInProgress {
		t.Fatalf("expected %s, got %s", StatusInProgress, got)
	}

	if _, err := ParseStatus("teleporting"); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestStreamsLocationOnlyDuringActiveMovement(t *testing.T) {
	streaming := map[Status]bool{
		StatusDriverAssigned:      false,
		StatusDriverEnRoutePickup: true,
		StatusDriverArrived:       true,
		StatusInProgress:          true,
		StatusCompleted:           false,
		StatusRequested:           false,
	}
	for status, want := range streaming {
		if got := status.StreamsLocation(); got != want {
			t.Fatalf("%s: StreamsLocation = %v, want %v", status, got, want)
		}
	}
}

func TestDriverActive(t *testing.T) {
	for _, status := range []Status{StatusDriverAssigned, StatusDriverEnRoutePickup, StatusDriverArrived, StatusInProgress} {
		if !status.DriverActive() {
			t.Fatalf("%s: expected DriverActive", status)
		}
	}
	for _, status := range []Status{StatusRequested, StatusCompleted, StatusCanceledByClient} {
		if status.DriverActive() {
			t.Fatalf("%s: expected not DriverActive", status)
		}
	}
}

func TestAssignedTo(t *testing.T) {
	driverID := "driver-1"
	b := &Booking{ID: "b-1", DriverID: &driverID, Status: StatusDriverAssigned}
	if !b.AssignedTo("driver-1") {
		t.Fatal("expected booking assigned to driver-1")
	}
	if b.AssignedTo("driver-2") {
		t.Fatal("expected booking not assigned to driver-2")
	}
	if (&Booking{ID: "b-2"}).AssignedTo("driver-1") {
		t.Fatal("unassigned booking should match nobody")
	}
}
