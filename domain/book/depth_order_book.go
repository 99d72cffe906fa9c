package book

// DepthListener consumes aggregated depth updates. It fires after every
// book change that moved a visible level, before the depth's published
// watermark advances, so implementations can diff per-level change
// stamps against LastPublishedChange to find exactly what moved.
type DepthListener interface {
	OnDepthChange(b *DepthOrderBook, d *Depth)
}

// DepthOrderBook couples a matching book with a Depth view, keeping the
// two in sync through the book's lifecycle hooks. Market orders never
// appear in the depth; only limit orders carry a price level.
type DepthOrderBook struct {
	*OrderBook
	depth         *Depth
	depthListener DepthListener
}

func NewDepthOrderBook(symbol Symbol, depthSize int) *DepthOrderBook {
	d := &DepthOrderBook{
		OrderBook: NewOrderBook(symbol),
		depth:     NewDepth(depthSize),
	}
	d.OrderBook.hooks = d
	return d
}

func (d *DepthOrderBook) GetDepth() *Depth { return d.depth }

// SetDepthListener registers the consumer of depth updates. Passing nil
// detaches it.
func (d *DepthOrderBook) SetDepthListener(l DepthListener) { d.depthListener = l }

// acceptHook seeds the depth for a newly accepted limit order. An order
// that traded its full quantity on entry never rests, so instead of
// adding it the hook arms the depth to swallow that quantity's worth of
// upcoming fill reports.
func (d *DepthOrderBook) acceptHook(o Order, filledOnAccept Quantity) {
	if !o.IsLimit() {
		return
	}
	if filledOnAccept == o.OrderQty() {
		d.depth.IgnoreFillQty(filledOnAccept, o.IsBuy())
	} else {
		d.depth.AddOrder(o.GetPrice(), o.OrderQty(), o.IsBuy())
	}
}

func (d *DepthOrderBook) fillHook(inbound, matched Order, qty Quantity, inboundFilled, matchedFilled bool) {
	if matched.IsLimit() {
		d.depth.FillOrder(matched.GetPrice(), qty, matchedFilled, matched.IsBuy())
	}
	if inbound.IsLimit() {
		d.depth.FillOrder(inbound.GetPrice(), qty, inboundFilled, inbound.IsBuy())
	}
}

func (d *DepthOrderBook) cancelHook(o Order, openQty Quantity) {
	if o.IsLimit() {
		d.depth.CloseOrder(o.GetPrice(), openQty, o.IsBuy())
	}
}

func (d *DepthOrderBook) replaceHook(o Order, openQty Quantity, delta int64, newPrice Price) {
	if o.IsLimit() {
		newQty := Quantity(int64(openQty) + delta)
		d.depth.ReplaceOrder(o.GetPrice(), newPrice, openQty, newQty, o.IsBuy())
	}
}

func (d *DepthOrderBook) bookChangeHook() {
	if !d.depth.Changed() {
		return
	}
	if d.depthListener != nil {
		d.depthListener.OnDepthChange(d, d.depth)
	}
	d.depth.Published()
}
