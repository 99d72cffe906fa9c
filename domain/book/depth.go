package book

import "fmt"

// Depth maintains an aggregated market-by-level view of one book: the
// best n bid and ask levels in a flat window, with deeper levels parked
// in overflow maps so they can be promoted when a visible level drains.
//
// Every visible mutation advances a monotonic change stamp; publishers
// diff per-level stamps against the last published watermark to send
// only the levels that moved.
type Depth struct {
	levels []DepthLevel // bids in [0:size), asks in [size:2*size)
	size   int

	lastChange    ChangeID
	lastPublished ChangeID

	ignoreBidFillQty Quantity
	ignoreAskFillQty Quantity

	excessBids map[Price]*DepthLevel
	excessAsks map[Price]*DepthLevel
}

// NewDepth builds a depth view with the given number of visible levels
// per side. A window of less than one level cannot represent a market;
// such a size is a construction bug, not an input error.
func NewDepth(size int) *Depth {
	if size < 1 {
		panic(fmt.Sprintf("book: depth size %d, must be at least 1", size))
	}
	return &Depth{
		levels:     make([]DepthLevel, size*2),
		size:       size,
		excessBids: make(map[Price]*DepthLevel),
		excessAsks: make(map[Price]*DepthLevel),
	}
}

// Bids returns the visible bid window, best price first. Unused slots
// carry InvalidLevelPrice.
func (d *Depth) Bids() []DepthLevel { return d.levels[:d.size] }

// Asks returns the visible ask window, best price first.
func (d *Depth) Asks() []DepthLevel { return d.levels[d.size:] }

// AddOrder accounts for a new resting order. Only mutations inside the
// visible window advance the change stamp; overflow levels accumulate
// silently until promoted.
func (d *Depth) AddOrder(price Price, qty Quantity, isBid bool) {
	stamp := d.lastChange
	level := d.findLevel(price, isBid, true)
	if level == nil {
		return
	}
	level.addOrder(qty)
	if !level.IsExcess() {
		d.lastChange = stamp + 1
		level.SetLastChange(stamp + 1)
	}
}

// IgnoreFillQty arms a one-shot suppression of the next fill reports
// totalling qty on a side. Used for orders that trade completely on
// entry and therefore never rest: their accept skipped AddOrder, so
// their fills must skip accounting too. Arming twice is a sequencing
// bug in the caller.
func (d *Depth) IgnoreFillQty(qty Quantity, isBid bool) {
	if isBid {
		if d.ignoreBidFillQty != 0 {
			panic("book: bid ignore fill qty already armed")
		}
		d.ignoreBidFillQty = qty
	} else {
		if d.ignoreAskFillQty != 0 {
			panic("book: ask ignore fill qty already armed")
		}
		d.ignoreAskFillQty = qty
	}
}

// FillOrder accounts for a trade against a resting order: either
// consumes the armed ignore quantity, closes the order out of its
// level, or shrinks the level's aggregate.
func (d *Depth) FillOrder(price Price, fillQty Quantity, filled bool, isBid bool) {
	switch {
	case isBid && d.ignoreBidFillQty != 0:
		d.ignoreBidFillQty -= fillQty
	case !isBid && d.ignoreAskFillQty != 0:
		d.ignoreAskFillQty -= fillQty
	case filled:
		d.CloseOrder(price, fillQty, isBid)
	default:
		d.ChangeQtyOrder(price, -int64(fillQty), isBid)
	}
}

// CloseOrder removes an order's remaining open quantity from its level,
// erasing and backfilling the level if it empties. Reports whether the
// level was erased.
func (d *Depth) CloseOrder(price Price, openQty Quantity, isBid bool) bool {
	level := d.findLevel(price, isBid, false)
	if level == nil {
		return false
	}
	if level.closeOrder(openQty) {
		d.eraseLevel(level, isBid)
		return true
	}
	d.lastChange++
	level.SetLastChange(d.lastChange)
	return false
}

// ChangeQtyOrder adjusts a level's aggregate quantity without touching
// its order count. A price beyond the tracked depth is silently
// ignored.
func (d *Depth) ChangeQtyOrder(price Price, qtyDelta int64, isBid bool) {
	level := d.findLevel(price, isBid, false)
	if level == nil || qtyDelta == 0 {
		return
	}
	if qtyDelta > 0 {
		level.increaseQty(Quantity(qtyDelta))
	} else {
		level.decreaseQty(Quantity(-qtyDelta))
	}
	d.lastChange++
	level.SetLastChange(d.lastChange)
}

// ReplaceOrder moves an order between levels (or resizes it in place
// when the price is unchanged). Reports whether a level was erased.
func (d *Depth) ReplaceOrder(currentPrice, newPrice Price, currentQty, newQty Quantity, isBid bool) bool {
	if currentPrice == newPrice {
		d.ChangeQtyOrder(currentPrice, int64(newQty)-int64(currentQty), isBid)
		return false
	}
	d.AddOrder(newPrice, newQty, isBid)
	return d.CloseOrder(currentPrice, currentQty, isBid)
}

// NeedsBidRestoration reports whether the bid window lost its deepest
// level and, if so, the price at or below which orders must be
// re-walked to refill it.
func (d *Depth) NeedsBidRestoration() (Price, bool) {
	if d.size > 1 {
		price := d.levels[d.size-2].GetPrice()
		return price, price != InvalidLevelPrice
	}
	return MarketBidRestorePrice, true
}

// NeedsAskRestoration is NeedsBidRestoration for the ask window.
func (d *Depth) NeedsAskRestoration() (Price, bool) {
	if d.size > 1 {
		price := d.levels[d.size*2-2].GetPrice()
		return price, price != InvalidLevelPrice
	}
	return MarketAskRestorePrice, true
}

// Changed reports whether any visible level mutated since the last
// Published call.
func (d *Depth) Changed() bool { return d.lastChange > d.lastPublished }

func (d *Depth) LastChange() ChangeID          { return d.lastChange }
func (d *Depth) LastPublishedChange() ChangeID { return d.lastPublished }

// Published advances the watermark to the current change stamp.
func (d *Depth) Published() { d.lastPublished = d.lastChange }

func (d *Depth) sideWindow(isBid bool) []DepthLevel {
	if isBid {
		return d.levels[:d.size]
	}
	return d.levels[d.size:]
}

func (d *Depth) excessSide(isBid bool) map[Price]*DepthLevel {
	if isBid {
		return d.excessBids
	}
	return d.excessAsks
}

// findLevel locates the level for a price, walking the visible window
// best-first and falling back to the overflow map. With shouldCreate
// set, a missing level is created in place: inside the window by
// shifting worse levels down (spilling the displaced worst into
// overflow), beyond it directly in overflow.
func (d *Depth) findLevel(price Price, isBid bool, shouldCreate bool) *DepthLevel {
	window := d.sideWindow(isBid)
	for i := range window {
		level := &window[i]
		switch {
		case level.GetPrice() == price:
			return level
		case shouldCreate && level.GetPrice() == InvalidLevelPrice:
			level.init(price, false)
			return level
		case shouldCreate && isBid && level.GetPrice() < price:
			d.insertLevelBefore(window, i, isBid, price)
			return level
		case shouldCreate && !isBid && level.GetPrice() > price:
			d.insertLevelBefore(window, i, isBid, price)
			return level
		}
	}
	excess := d.excessSide(isBid)
	if level, ok := excess[price]; ok {
		return level
	}
	if shouldCreate {
		level := &DepthLevel{}
		level.init(price, true)
		excess[price] = level
		return level
	}
	return nil
}

// insertLevelBefore opens slot i in the window by shifting worse levels
// one slot down. An occupied deepest level spills into overflow first;
// every occupied level that moved gets the new change stamp.
func (d *Depth) insertLevelBefore(window []DepthLevel, i int, isBid bool, price Price) {
	last := &window[len(window)-1]
	if last.GetPrice() != InvalidLevelPrice {
		spilled := &DepthLevel{}
		spilled.init(0, true)
		spilled.copyFrom(last)
		d.excessSide(isBid)[last.GetPrice()] = spilled
	}
	d.lastChange++
	for j := len(window) - 2; j >= i; j-- {
		window[j+1].copyFrom(&window[j])
		if window[j].GetPrice() != InvalidLevelPrice {
			window[j+1].SetLastChange(d.lastChange)
		}
	}
	window[i].init(price, false)
}

// eraseLevel removes an emptied level. An overflow level just leaves
// its map; a visible level is closed up by shifting deeper levels one
// slot toward the top, then the vacated deepest slot is refilled from
// the best overflow level if one exists.
func (d *Depth) eraseLevel(level *DepthLevel, isBid bool) {
	if level.IsExcess() {
		delete(d.excessSide(isBid), level.GetPrice())
		return
	}

	window := d.sideWindow(isBid)
	i := d.windowIndex(window, level)
	lastIdx := len(window) - 1
	d.lastChange++
	for j := i; j < lastIdx; j++ {
		if window[j].GetPrice() != InvalidLevelPrice || j == i {
			window[j].copyFrom(&window[j+1])
			window[j].SetLastChange(d.lastChange)
		}
	}

	last := &window[lastIdx]
	if i == lastIdx || last.GetPrice() != InvalidLevelPrice {
		if promoted, price, ok := d.bestExcess(isBid); ok {
			last.copyFrom(promoted)
			delete(d.excessSide(isBid), price)
		} else {
			last.init(InvalidLevelPrice, false)
		}
		last.SetLastChange(d.lastChange)
	}
}

func (d *Depth) windowIndex(window []DepthLevel, level *DepthLevel) int {
	for i := range window {
		if &window[i] == level {
			return i
		}
	}
	panic("book: depth level not in visible window")
}

// bestExcess picks the overflow level closest to the top of book:
// highest price for bids, lowest for asks.
func (d *Depth) bestExcess(isBid bool) (*DepthLevel, Price, bool) {
	excess := d.excessSide(isBid)
	var (
		best      *DepthLevel
		bestPrice Price
	)
	for price, level := range excess {
		if best == nil || (isBid && price > bestPrice) || (!isBid && price < bestPrice) {
			best = level
			bestPrice = price
		}
	}
	return best, bestPrice, best != nil
}
