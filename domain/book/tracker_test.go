package book

import (
	"errors"
	"testing"
)

func TestTrackerFill(t *testing.T) {
	trk := NewTracker(limitOrder(1, true, 10, 100))
	if trk.OpenQty() != 10 || trk.FilledQty() != 0 || trk.Filled() {
		t.Fatal("fresh tracker must be fully open")
	}

	if err := trk.Fill(4); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if trk.OpenQty() != 6 || trk.FilledQty() != 4 {
		t.Errorf("open=%d filled=%d, want 6/4", trk.OpenQty(), trk.FilledQty())
	}

	if err := trk.Fill(6); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !trk.Filled() {
		t.Error("tracker should report filled")
	}
}

func TestTrackerOverFill(t *testing.T) {
	trk := NewTracker(limitOrder(1, true, 10, 100))
	if err := trk.Fill(11); !errors.Is(err, ErrOverFill) {
		t.Errorf("got %v, want ErrOverFill", err)
	}
	if trk.OpenQty() != 10 {
		t.Error("failed fill must not consume quantity")
	}
}

func TestTrackerChangeQty(t *testing.T) {
	trk := NewTracker(limitOrder(1, true, 10, 100))
	if err := trk.ChangeQty(-3); err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if trk.OpenQty() != 7 {
		t.Errorf("open=%d, want 7", trk.OpenQty())
	}
	if err := trk.ChangeQty(5); err != nil {
		t.Fatalf("increase: %v", err)
	}
	if trk.OpenQty() != 12 {
		t.Errorf("open=%d, want 12", trk.OpenQty())
	}
	if err := trk.ChangeQty(-13); !errors.Is(err, ErrInvalidAmendment) {
		t.Errorf("got %v, want ErrInvalidAmendment", err)
	}
}
