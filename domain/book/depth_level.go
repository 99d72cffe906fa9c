package book

import "fmt"

// DepthLevel is one aggregated price level in a depth view: the price,
// the number of resting orders at it, their combined open quantity, and
// the change stamp of the last mutation that touched the level.
//
// A level can live in the visible window or in the overflow store; the
// excess flag records which, and survives slot-to-slot copies.
type DepthLevel struct {
	price        Price
	orderCount   int
	aggregateQty Quantity
	excess       bool
	lastChange   ChangeID
}

func (l *DepthLevel) GetPrice() Price         { return l.price }
func (l *DepthLevel) OrderCount() int         { return l.orderCount }
func (l *DepthLevel) AggregateQty() Quantity  { return l.aggregateQty }
func (l *DepthLevel) IsExcess() bool          { return l.excess }
func (l *DepthLevel) LastChange() ChangeID    { return l.lastChange }
func (l *DepthLevel) SetLastChange(c ChangeID) { l.lastChange = c }

// ChangedSince reports whether the level mutated after the given
// published stamp.
func (l *DepthLevel) ChangedSince(published ChangeID) bool {
	return l.lastChange > published
}

func (l *DepthLevel) init(price Price, excess bool) {
	l.price = price
	l.orderCount = 0
	l.aggregateQty = 0
	l.excess = excess
}

// Set overwrites the level wholesale. Used when rebuilding a depth view
// from a snapshot.
func (l *DepthLevel) Set(price Price, qty Quantity, orderCount int, lastChange ChangeID) {
	l.price = price
	l.aggregateQty = qty
	l.orderCount = orderCount
	l.lastChange = lastChange
}

// copyFrom moves another level's contents into this slot. The change
// stamp carries over only from an occupied source, and the excess flag
// always describes the destination slot, never the source.
func (l *DepthLevel) copyFrom(rhs *DepthLevel) {
	l.price = rhs.price
	l.orderCount = rhs.orderCount
	l.aggregateQty = rhs.aggregateQty
	if rhs.price != InvalidLevelPrice {
		l.lastChange = rhs.lastChange
	}
}

func (l *DepthLevel) addOrder(qty Quantity) {
	l.orderCount++
	l.aggregateQty += qty
}

func (l *DepthLevel) increaseQty(qty Quantity) { l.aggregateQty += qty }
func (l *DepthLevel) decreaseQty(qty Quantity) { l.aggregateQty -= qty }

// closeOrder removes one order and its open quantity from the level,
// reporting whether the level emptied. A close against an empty level,
// or one that would drive the aggregate negative, means the book and
// its depth view have diverged; that state is unrecoverable.
func (l *DepthLevel) closeOrder(qty Quantity) bool {
	switch {
	case l.orderCount == 0:
		panic(fmt.Sprintf("book: close on empty depth level %d", l.price))
	case l.orderCount == 1:
		l.orderCount = 0
		l.aggregateQty = 0
		return true
	default:
		l.orderCount--
		if l.aggregateQty < qty {
			panic(fmt.Sprintf("book: depth level %d quantity under %d", l.price, qty))
		}
		l.aggregateQty -= qty
		return false
	}
}
