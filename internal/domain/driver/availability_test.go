package driver

import "testing"

func TestToggledOnlyBetweenOfflineAndAvailable(t *testing.T) {
	next, err := AvailabilityOffline.Toggled()
	if err != nil || next != AvailabilityAvailable {
		t.Fatalf("offline toggle: got (%s, %v)", next, err)
	}
	next, err = AvailabilityAvailable.Toggled()
	if err != nil || next != AvailabilityOffline {
		t.Fatalf("available toggle: got (%s, %v)", next, err)
	}

	for _, state := range []Availability{AvailabilityOnTrip, AvailabilityOnBreak} {
		if _, err := state.Toggled(); err != ErrInvalidAvailabilitySwitch {
			t.Fatalf("%s toggle: expected ErrInvalidAvailabilitySwitch, got %v", state, err)
		}
	}
}

func TestBreakTransitions(t *testing.T) {
	if !AvailabilityAvailable.CanGoOnBreak() {
		t.Fatal("available should allow break")
	}
	for _, state := range []Availability{AvailabilityOffline, AvailabilityOnTrip, AvailabilityOnBreak} {
		if state.CanGoOnBreak() {
			t.Fatalf("%s should not allow break", state)
		}
	}
	if !AvailabilityOnBreak.CanEndBreak() {
		t.Fatal("on_break should allow ending the break")
	}
	if AvailabilityAvailable.CanEndBreak() {
		t.Fatal("available has no break to end")
	}
}

func TestSolicitsOffers(t *testing.T) {
	if !AvailabilityAvailable.SolicitsOffers() {
		t.Fatal("available should solicit offers")
	}
	for _, state := range []Availability{AvailabilityOffline, AvailabilityOnTrip, AvailabilityOnBreak} {
		if state.SolicitsOffers() {
			t.Fatalf("%s should not solicit offers", state)
		}
	}
}

func TestParseAvailability(t *testing.T) {
	got, err := ParseAvailability(" ON_TRIP ")
	if err != nil || got != AvailabilityOnTrip {
		t.Fatalf("got (%s, %v)", got, err)
	}
	if _, err := ParseAvailability("asleep"); err != ErrInvalidAvailability {
		t.Fatalf("expected ErrInvalidAvailability, got %v", err)
	}
}
