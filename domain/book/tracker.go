package book

import "errors"

var (
	// ErrOverFill reports a fill larger than the tracker's open quantity.
	ErrOverFill = errors.New("book: fill size larger than open quantity")

	// ErrInvalidAmendment reports a size reduction larger than the
	// tracker's open quantity.
	ErrInvalidAmendment = errors.New("book: size reduction larger than open quantity")
)

// Tracker wraps a resting order reference with the quantity still open
// on the book. Order bookkeeping (filled quantity, cost, state) belongs
// to the order's owner; the tracker only tracks what is left to match.
type Tracker struct {
	order   Order
	openQty Quantity
}

func NewTracker(o Order) *Tracker {
	return &Tracker{order: o, openQty: o.OrderQty()}
}

// ChangeQty adjusts the open quantity by delta. A reduction larger than
// the open quantity is an invalid amendment.
func (t *Tracker) ChangeQty(delta int64) error {
	if delta < 0 && int64(t.openQty) < -delta {
		return ErrInvalidAmendment
	}
	t.openQty += Quantity(delta)
	return nil
}

// Fill consumes qty of the open quantity.
func (t *Tracker) Fill(qty Quantity) error {
	if qty > t.openQty {
		return ErrOverFill
	}
	t.openQty -= qty
	return nil
}

func (t *Tracker) Filled() bool { return t.openQty == 0 }

func (t *Tracker) FilledQty() Quantity { return t.order.OrderQty() - t.openQty }

func (t *Tracker) OpenQty() Quantity { return t.openQty }

func (t *Tracker) Order() Order { return t.order }
