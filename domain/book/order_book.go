package book

import "fmt"

// OrderBook is the matching engine for one instrument: two side
// containers ordered by ComparablePrice, a last-traded-price register,
// and the price-time-priority matching loop.
//
// Outbound events accumulate in a callback buffer and are drained after
// every public operation. The drain loop is guarded so that a listener
// which re-enters the book only appends to the pending buffer instead
// of starting a nested drain.
type OrderBook struct {
	symbol Symbol
	bids   *sideTree
	asks   *sideTree

	marketPrice    Price
	hasMarketPrice bool

	nextFillID FillID

	callbacks         []Callback
	working           []Callback
	handlingCallbacks bool

	listener Listener
	hooks    bookHooks
}

// bookHooks are the lifecycle hook points a composing view (the depth
// tracker) attaches to. All hooks run before the external listener sees
// the corresponding event.
type bookHooks interface {
	acceptHook(o Order, filledOnAccept Quantity)
	fillHook(inbound, matched Order, qty Quantity, inboundFilled, matchedFilled bool)
	cancelHook(o Order, openQty Quantity)
	replaceHook(o Order, openQty Quantity, delta int64, newPrice Price)
	bookChangeHook()
}

func NewOrderBook(symbol Symbol) *OrderBook {
	return &OrderBook{
		symbol: symbol,
		bids:   newSideTree(),
		asks:   newSideTree(),
	}
}

func (b *OrderBook) GetSymbol() Symbol       { return b.symbol }
func (b *OrderBook) SetSymbol(symbol Symbol) { b.symbol = symbol }

// SetListener registers the collaborator that consumes the book's
// events. Passing nil detaches it.
func (b *OrderBook) SetListener(l Listener) { b.listener = l }

// MarketPrice returns the last traded price, and whether any trade has
// established one.
func (b *OrderBook) MarketPrice() (Price, bool) {
	return b.marketPrice, b.hasMarketPrice
}

// SetMarketPrice seeds the last traded price, e.g. after a restore.
func (b *OrderBook) SetMarketPrice(p Price) {
	b.marketPrice = p
	b.hasMarketPrice = true
}

// Add submits an order. It returns true when the order traded against
// resting liquidity on entry (fully or partially). Orders with a
// non-positive quantity, and limit orders with a non-positive price,
// are rejected through the callback channel.
func (b *OrderBook) Add(order Order) bool {
	matched := false
	switch {
	case order.OrderQty() <= 0:
		b.callbacks = append(b.callbacks, cbReject(order, "size must be positive"))
	case order.IsLimit() && order.GetPrice() <= 0:
		b.callbacks = append(b.callbacks, cbReject(order, "limit price must be positive"))
	default:
		// The accept callback is patched after matching so it carries
		// the quantity filled at acceptance.
		acceptIdx := len(b.callbacks)
		b.callbacks = append(b.callbacks, cbAccept(order))
		inbound := NewTracker(order)
		matched = b.submitOrder(inbound)
		b.callbacks[acceptIdx].Qty = inbound.FilledQty()
		b.callbacks = append(b.callbacks, cbBookUpdate(b))
	}
	b.callbackNow()
	return matched
}

// Cancel removes a resting order. Cancelling an order that is not on
// the book reports a cancel-reject and changes nothing.
func (b *OrderBook) Cancel(order Order) {
	if q, i, ok := b.findOnMarket(order); ok {
		openQty := q.trackers[i].OpenQty()
		q.removeAt(i)
		if q.empty() {
			b.sideFor(order.IsBuy()).delete(q.key)
		}
		b.callbacks = append(b.callbacks, cbCancel(order, openQty))
		b.callbacks = append(b.callbacks, cbBookUpdate(b))
	} else {
		b.callbacks = append(b.callbacks, cbCancelReject(order, "not found"))
	}
	b.callbackNow()
}

// Replace is the amendment seam. Amendment semantics (price/size
// changes, time-priority loss) are not supported; every request is
// rejected through the callback channel.
func (b *OrderBook) Replace(order Order, sizeDelta int64, newPrice Price) {
	_ = sizeDelta
	_ = newPrice
	b.callbacks = append(b.callbacks, cbReplaceReject(order, "replace not supported"))
	b.callbackNow()
}

// StopLossTriggered is the stop-order seam: it reports a triggered stop
// for an order id through the callback channel. Nothing in the matching
// core arms stops.
func (b *OrderBook) StopLossTriggered(id OrderID) {
	b.callbacks = append(b.callbacks, cbStopLossTriggered(id))
	b.callbackNow()
}

// FindOnMarket locates an order's resting tracker. Only the run of
// price-equal trackers is scanned; the container ordering bounds
// the search.
func (b *OrderBook) FindOnMarket(order Order) (*Tracker, bool) {
	if q, i, ok := b.findOnMarket(order); ok {
		return q.trackers[i], true
	}
	return nil, false
}

// AllOrderCancel cancels every resting order on both sides and returns
// the cancelled order ids. Used when a symbol's book is torn down.
func (b *OrderBook) AllOrderCancel() []OrderID {
	var ids []OrderID
	cancelSide := func(t *sideTree) {
		t.eachBestFirst(func(q *levelQueue) bool {
			for _, trk := range q.trackers {
				ids = append(ids, trk.Order().ID())
				b.callbacks = append(b.callbacks, cbCancel(trk.Order(), trk.OpenQty()))
			}
			return true
		})
		t.clear()
	}
	cancelSide(b.bids)
	cancelSide(b.asks)
	b.callbacks = append(b.callbacks, cbBookUpdate(b))
	b.callbackNow()
	return ids
}

// BidsEach visits resting bid trackers in matching order (best price
// first, arrival order within a level) until fn returns false.
func (b *OrderBook) BidsEach(fn func(key ComparablePrice, t *Tracker) bool) {
	eachTracker(b.bids, fn)
}

// AsksEach is BidsEach for the ask side.
func (b *OrderBook) AsksEach(fn func(key ComparablePrice, t *Tracker) bool) {
	eachTracker(b.asks, fn)
}

// BidCount and AskCount return the number of resting orders per side.
func (b *OrderBook) BidCount() int { return countTrackers(b.bids) }
func (b *OrderBook) AskCount() int { return countTrackers(b.asks) }

func eachTracker(t *sideTree, fn func(key ComparablePrice, trk *Tracker) bool) {
	t.eachBestFirst(func(q *levelQueue) bool {
		for _, trk := range q.trackers {
			if !fn(q.key, trk) {
				return false
			}
		}
		return true
	})
}

func countTrackers(t *sideTree) int {
	n := 0
	t.eachBestFirst(func(q *levelQueue) bool {
		n += len(q.trackers)
		return true
	})
	return n
}

//
// ──────────────────────────────────────────────────────────
// Matching
// ──────────────────────────────────────────────────────────
//

func (b *OrderBook) sideFor(isBuy bool) *sideTree {
	if isBuy {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) submitOrder(inbound *Tracker) bool {
	order := inbound.Order()
	key := KeyFor(order)
	matched := b.MatchOrder(inbound, key, b.sideFor(!order.IsBuy()))
	if !inbound.Filled() {
		// Remainder rests on its own side. Ties at a price break by
		// arrival: the new tracker queues after existing ones.
		b.sideFor(order.IsBuy()).upsert(key).push(inbound)
	}
	return matched
}

// MatchOrder routes an inbound tracker against the opposite side.
func (b *OrderBook) MatchOrder(inbound *Tracker, inboundKey ComparablePrice, opposite *sideTree) bool {
	return b.MatchRegularOrder(inbound, inboundKey, opposite)
}

// MatchRegularOrder walks the opposite side's levels from the best
// price outward, trading in arrival order within each level, and stops
// at the first level that no longer crosses the inbound key. Exhausted
// levels are erased after the walk.
func (b *OrderBook) MatchRegularOrder(inbound *Tracker, inboundKey ComparablePrice, opposite *sideTree) bool {
	matched := false
	var exhausted []ComparablePrice

	opposite.eachBestFirst(func(q *levelQueue) bool {
		if !q.key.Matches(inboundKey) {
			return false
		}
		i := 0
		for i < len(q.trackers) && !inbound.Filled() {
			resting := q.trackers[i]
			traded := b.CreateTrade(inbound, resting, inbound.OpenQty())
			if traded > 0 {
				matched = true
				if resting.Filled() {
					q.removeAt(i)
					continue
				}
			}
			i++
		}
		if q.empty() {
			exhausted = append(exhausted, q.key)
		}
		return !inbound.Filled()
	})

	for _, key := range exhausted {
		opposite.delete(key)
	}
	return matched
}

// CreateTrade computes and applies a fill between the inbound and a
// resting tracker, capped at maxQty. The crossing price resolves as:
// resting limit price, else inbound limit price, else the last traded
// price. When none yields a concrete price the pairing trades zero
// quantity; that is a deliberate no-trade case, not an error.
func (b *OrderBook) CreateTrade(inbound, resting *Tracker, maxQty Quantity) Quantity {
	crossPrice, ok := b.crossingPrice(inbound, resting)
	if !ok {
		return 0
	}

	fillQty := min(maxQty, min(inbound.OpenQty(), resting.OpenQty()))
	if fillQty <= 0 {
		return 0
	}

	if err := inbound.Fill(fillQty); err != nil {
		panic(fmt.Sprintf("book: inbound fill: %v", err))
	}
	if err := resting.Fill(fillQty); err != nil {
		panic(fmt.Sprintf("book: resting fill: %v", err))
	}
	b.SetMarketPrice(crossPrice)

	flags := FillNeitherFilled
	if inbound.Filled() {
		flags |= FillInboundFilled
	}
	if resting.Filled() {
		flags |= FillMatchedFilled
	}
	b.nextFillID++
	b.callbacks = append(b.callbacks,
		cbFill(inbound.Order(), resting.Order(), fillQty, crossPrice, flags, b.nextFillID))
	return fillQty
}

func (b *OrderBook) crossingPrice(inbound, resting *Tracker) (Price, bool) {
	if o := resting.Order(); o.IsLimit() {
		return o.GetPrice(), true
	}
	if o := inbound.Order(); o.IsLimit() {
		return o.GetPrice(), true
	}
	if b.hasMarketPrice {
		return b.marketPrice, true
	}
	return 0, false
}

func (b *OrderBook) findOnMarket(order Order) (*levelQueue, int, bool) {
	q := b.sideFor(order.IsBuy()).find(KeyFor(order))
	if q == nil {
		return nil, 0, false
	}
	for i, trk := range q.trackers {
		if trk.Order().ID() == order.ID() {
			return q, i, true
		}
	}
	return nil, 0, false
}

//
// ──────────────────────────────────────────────────────────
// Callback drainage
// ──────────────────────────────────────────────────────────
//

// CallbackNow drains pending callbacks. Re-entrant calls (a listener
// mutating the book mid-drain) enqueue into the same buffer; the outer
// drain picks the new events up on its next sweep.
func (b *OrderBook) CallbackNow() { b.callbackNow() }

func (b *OrderBook) callbackNow() {
	if b.handlingCallbacks {
		return
	}
	b.handlingCallbacks = true
	for len(b.callbacks) > 0 {
		b.working, b.callbacks = b.callbacks, b.working[:0]
		for i := range b.working {
			b.PerformCallback(&b.working[i])
		}
	}
	b.handlingCallbacks = false
}

// PerformCallback dispatches one event to the composed hooks and then
// to the listener.
func (b *OrderBook) PerformCallback(cb *Callback) {
	switch cb.Type {
	case CbAccept:
		if b.hooks != nil {
			b.hooks.acceptHook(cb.Order, cb.Qty)
		}
		if b.listener != nil {
			b.listener.OnAccept(cb.Order, cb.Qty)
		}
	case CbReject:
		if b.listener != nil {
			b.listener.OnReject(cb.Order, cb.Reason)
		}
	case CbFill:
		inboundFilled := cb.Flags&FillInboundFilled != 0
		matchedFilled := cb.Flags&FillMatchedFilled != 0
		if b.hooks != nil {
			b.hooks.fillHook(cb.Order, cb.MatchedOrder, cb.Qty, inboundFilled, matchedFilled)
		}
		if b.listener != nil {
			cost := Cost(int64(cb.Qty) * int64(cb.Price))
			b.listener.OnFill(cb.Order, cb.MatchedOrder, cb.Qty, cost, cb.FillID)
		}
	case CbCancel:
		if b.hooks != nil {
			b.hooks.cancelHook(cb.Order, cb.Qty)
		}
		if b.listener != nil {
			b.listener.OnCancel(cb.Order, cb.Qty)
		}
	case CbCancelReject:
		if b.listener != nil {
			b.listener.OnCancelReject(cb.Order, cb.Reason)
		}
	case CbReplace:
		if b.hooks != nil {
			b.hooks.replaceHook(cb.Order, cb.Qty, cb.Delta, cb.Price)
		}
		if b.listener != nil {
			b.listener.OnReplace(cb.Order, cb.Qty, cb.Delta, cb.Price)
		}
	case CbReplaceReject:
		if b.listener != nil {
			b.listener.OnReplaceReject(cb.Order, cb.Reason)
		}
	case CbBookUpdate:
		if b.hooks != nil {
			b.hooks.bookChangeHook()
		}
		if b.listener != nil {
			b.listener.OnBookUpdate(b)
		}
	case CbStopLossTriggered:
		if b.listener != nil {
			b.listener.OnStopLossTriggered(cb.OrderID)
		}
	}
}
