package market

import (
	"fmt"

	"freyr/domain/book"
)

// State is an order's lifecycle position. Transitions append to the
// order's history rather than overwrite, so the full path an order took
// stays queryable.
type State int

const (
	StateUnknown State = iota
	StateSubmitted
	StateRejected
	StateAccepted
	StateFilled
	StateCancelRequested
	StateCancelRejected
	StateCancelled
	StateModifyRequested
	StateModifyRejected
	StateModified
)

func (s State) String() string {
	switch s {
	case StateSubmitted:
		return "submitted"
	case StateRejected:
		return "rejected"
	case StateAccepted:
		return "accepted"
	case StateFilled:
		return "filled"
	case StateCancelRequested:
		return "cancel_requested"
	case StateCancelRejected:
		return "cancel_rejected"
	case StateCancelled:
		return "cancelled"
	case StateModifyRequested:
		return "modify_requested"
	case StateModifyRejected:
		return "modify_rejected"
	case StateModified:
		return "modified"
	default:
		return "unknown"
	}
}

// StateChange is one history entry: the state entered and an optional
// free-form description.
type StateChange struct {
	State       State
	Description string
}

// MatchedTrade records one execution from this order's perspective.
type MatchedTrade struct {
	MatchedOrderID   book.OrderID
	FillCost         book.Cost
	Quantity         book.Quantity
	QuantityOnMarket book.Quantity
	Price            book.Price
	FillID           book.FillID
}

// Order is the concrete order the market layer owns. It satisfies the
// matching core's order contract and additionally tracks lifecycle
// state, cumulative fills, and per-trade history.
//
// Market orders carry an explicit flag; a zero price is never used as a
// market sentinel.
type Order struct {
	id      book.OrderID
	buySide bool
	symbol  book.Symbol
	qty     book.Quantity
	price   book.Price
	limit   bool

	qtyFilled   book.Quantity
	qtyOnMarket book.Quantity
	fillCost    book.Cost

	history []StateChange
	trades  []MatchedTrade
}

func NewLimitOrder(id book.OrderID, buySide bool, symbol book.Symbol, qty book.Quantity, price book.Price) *Order {
	return &Order{id: id, buySide: buySide, symbol: symbol, qty: qty, price: price, limit: true}
}

func NewMarketOrder(id book.OrderID, buySide bool, symbol book.Symbol, qty book.Quantity) *Order {
	return &Order{id: id, buySide: buySide, symbol: symbol, qty: qty}
}

func (o *Order) ID() book.OrderID        { return o.id }
func (o *Order) IsBuy() bool             { return o.buySide }
func (o *Order) GetSymbol() book.Symbol  { return o.symbol }
func (o *Order) IsLimit() bool           { return o.limit }
func (o *Order) GetPrice() book.Price    { return o.price }
func (o *Order) OrderQty() book.Quantity { return o.qty }

func (o *Order) QuantityOnMarket() book.Quantity { return o.qtyOnMarket }
func (o *Order) QuantityFilled() book.Quantity   { return o.qtyFilled }
func (o *Order) FillCost() book.Cost             { return o.fillCost }

func (o *Order) History() []StateChange  { return o.history }
func (o *Order) Trades() []MatchedTrade  { return o.trades }

// CurrentState returns the most recent history entry, if any.
func (o *Order) CurrentState() (StateChange, bool) {
	if len(o.history) == 0 {
		return StateChange{}, false
	}
	return o.history[len(o.history)-1], true
}

func (o *Order) OnSubmitted() {
	side := "SELL"
	if o.buySide {
		side = "BUY"
	}
	px := "MKT"
	if o.limit {
		px = fmt.Sprintf("%d", o.price)
	}
	o.history = append(o.history, StateChange{
		State:       StateSubmitted,
		Description: fmt.Sprintf("%s %d %d @%s", side, o.qty, o.symbol, px),
	})
}

func (o *Order) OnAccepted() {
	o.qtyOnMarket = o.qty
	o.history = append(o.history, StateChange{State: StateAccepted})
}

func (o *Order) OnRejected(reason string) {
	o.history = append(o.history, StateChange{State: StateRejected, Description: reason})
}

func (o *Order) OnFilled(fillQty book.Quantity, fillCost book.Cost) {
	o.qtyOnMarket -= fillQty
	o.fillCost += fillCost
	o.qtyFilled += fillQty
	o.history = append(o.history, StateChange{
		State:       StateFilled,
		Description: fmt.Sprintf("%d for %d", fillQty, fillCost),
	})
}

// AddTradeHistory records one execution against a counterparty.
func (o *Order) AddTradeHistory(fillQty, remainingQty book.Quantity, fillCost book.Cost,
	matchedID book.OrderID, price book.Price, fillID book.FillID) {
	o.trades = append(o.trades, MatchedTrade{
		MatchedOrderID:   matchedID,
		FillCost:         fillCost,
		Quantity:         fillQty,
		QuantityOnMarket: remainingQty,
		Price:            price,
		FillID:           fillID,
	})
}

func (o *Order) OnCancelRequested() {
	o.history = append(o.history, StateChange{State: StateCancelRequested})
}

func (o *Order) OnCancelled() {
	o.qtyOnMarket = 0
	o.history = append(o.history, StateChange{State: StateCancelled})
}

func (o *Order) OnCancelRejected(reason string) {
	o.history = append(o.history, StateChange{State: StateCancelRejected, Description: reason})
}

func (o *Order) OnReplaceRequested(sizeDelta int64, newPrice book.Price) {
	o.history = append(o.history, StateChange{
		State:       StateModifyRequested,
		Description: fmt.Sprintf("delta %d new price %d", sizeDelta, newPrice),
	})
}

func (o *Order) OnReplaceRejected(reason string) {
	o.history = append(o.history, StateChange{State: StateModifyRejected, Description: reason})
}

func (o *Order) String() string {
	side := "SELL"
	if o.buySide {
		side = "BUY"
	}
	px := "MKT"
	if o.limit {
		px = fmt.Sprintf("$%d", o.price)
	}
	s := fmt.Sprintf("[#%d %s %d %d %s", o.id, side, o.qty, o.symbol, px)
	if o.qtyOnMarket != 0 {
		s += fmt.Sprintf(" open:%d", o.qtyOnMarket)
	}
	if o.qtyFilled != 0 {
		s += fmt.Sprintf(" filled:%d", o.qtyFilled)
	}
	if o.fillCost != 0 {
		s += fmt.Sprintf(" cost:%d", o.fillCost)
	}
	if st, ok := o.CurrentState(); ok {
		s += " " + st.State.String()
	}
	return s + "]"
}

// Data flattens the order into its stream record.
func (o *Order) Data(reason string) OrderData {
	d := OrderData{
		ID:               o.id,
		BuySide:          o.buySide,
		Symbol:           o.symbol,
		Quantity:         o.qty,
		Price:            o.price,
		IsLimit:          o.limit,
		QuantityFilled:   o.qtyFilled,
		QuantityOnMarket: o.qtyOnMarket,
		FillCost:         o.fillCost,
		Reason:           reason,
	}
	if st, ok := o.CurrentState(); ok {
		d.State = st.State
	}
	return d
}
