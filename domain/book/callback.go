package book

// CallbackType tags the kind of engine-observable event a Callback
// describes.
type CallbackType int16

const (
	CbUnknown CallbackType = iota
	CbAccept
	CbReject
	CbFill
	CbCancel
	CbCancelReject
	CbReplace
	CbReplaceReject
	CbBookUpdate
	CbStopLossTriggered
)

// FillFlags marks which side(s) of a fill became fully filled.
type FillFlags uint8

const (
	FillNeitherFilled FillFlags = 0
	FillInboundFilled FillFlags = 1 << 0
	FillMatchedFilled FillFlags = 1 << 1
	FillBothFilled              = FillInboundFilled | FillMatchedFilled
)

// Callback is a tagged variant describing one engine event. Each kind
// carries exactly the fields relevant to it; the rest are zero. It is
// the sole notification surface the core exposes to collaborators.
type Callback struct {
	Type         CallbackType
	Order        Order
	MatchedOrder Order
	Qty          Quantity
	Price        Price
	Flags        FillFlags
	Delta        int64
	OrderID      OrderID
	FillID       FillID
	Reason       string
	Book         *OrderBook
}

func cbAccept(o Order) Callback {
	return Callback{Type: CbAccept, Order: o}
}

func cbReject(o Order, reason string) Callback {
	return Callback{Type: CbReject, Order: o, Reason: reason}
}

func cbFill(inbound, matched Order, qty Quantity, price Price, flags FillFlags, fillID FillID) Callback {
	return Callback{
		Type:         CbFill,
		Order:        inbound,
		MatchedOrder: matched,
		Qty:          qty,
		Price:        price,
		Flags:        flags,
		FillID:       fillID,
	}
}

func cbCancel(o Order, openQty Quantity) Callback {
	return Callback{Type: CbCancel, Order: o, Qty: openQty}
}

func cbCancelReject(o Order, reason string) Callback {
	return Callback{Type: CbCancelReject, Order: o, Reason: reason}
}

func cbReplace(o Order, openQty Quantity, delta int64, newPrice Price) Callback {
	return Callback{Type: CbReplace, Order: o, Qty: openQty, Delta: delta, Price: newPrice}
}

func cbReplaceReject(o Order, reason string) Callback {
	return Callback{Type: CbReplaceReject, Order: o, Reason: reason}
}

func cbBookUpdate(b *OrderBook) Callback {
	return Callback{Type: CbBookUpdate, Book: b}
}

func cbStopLossTriggered(id OrderID) Callback {
	return Callback{Type: CbStopLossTriggered, OrderID: id}
}

// Listener receives the engine's events, one typed method per callback
// kind. The market layer implements it to apply order state changes,
// publish trades, and log.
type Listener interface {
	OnAccept(o Order, filledOnAccept Quantity)
	OnReject(o Order, reason string)
	OnFill(inbound, matched Order, qty Quantity, cost Cost, fillID FillID)
	OnCancel(o Order, openQty Quantity)
	OnCancelReject(o Order, reason string)
	OnReplace(o Order, openQty Quantity, delta int64, newPrice Price)
	OnReplaceReject(o Order, reason string)
	OnBookUpdate(b *OrderBook)
	OnStopLossTriggered(id OrderID)
}
