package market

import (
	"fmt"

	"github.com/rs/zerolog"

	"freyr/domain/book"
)

// Market routes order flow to per-symbol books and owns the order
// objects for their time on the market. It listens to every book it
// creates and forwards the resulting stream records to its publisher.
//
// The market is not safe for concurrent use; callers serialize access,
// one dispatcher per market.
type Market struct {
	log       zerolog.Logger
	depthSize int
	pub       Publisher

	orders map[book.OrderID]*Order
	books  map[book.Symbol]*book.DepthOrderBook
}

func NewMarket(log zerolog.Logger, depthSize int) *Market {
	if depthSize <= 0 {
		depthSize = book.DefaultDepth
	}
	return &Market{
		log:       log,
		depthSize: depthSize,
		orders:    make(map[book.OrderID]*Order),
		books:     make(map[book.Symbol]*book.DepthOrderBook),
	}
}

// SetPublisher attaches the consumer of the market's outbound stream.
func (m *Market) SetPublisher(p Publisher) { m.pub = p }

// AddBook creates the depth order book for a symbol. Returns false if
// the symbol already has one; the existing book and its resting orders
// are left untouched, since replacing the book would strand their
// index entries.
func (m *Market) AddBook(symbol book.Symbol) bool {
	if _, existed := m.books[symbol]; existed {
		m.log.Warn().Uint64("symbol", uint64(symbol)).Msg("book already exists")
		return false
	}
	m.log.Info().Uint64("symbol", uint64(symbol)).Msg("creating depth order book")
	b := book.NewDepthOrderBook(symbol, m.depthSize)
	b.SetListener(m)
	b.SetDepthListener(m)
	m.books[symbol] = b
	return true
}

// RemoveBook tears down a symbol's book, cancelling every resting
// order on it.
func (m *Market) RemoveBook(symbol book.Symbol) bool {
	b, ok := m.books[symbol]
	if !ok {
		return false
	}
	ids := b.AllOrderCancel()
	delete(m.books, symbol)
	for _, id := range ids {
		m.RemoveOrder(id)
	}
	return true
}

func (m *Market) FindBook(symbol book.Symbol) (*book.DepthOrderBook, bool) {
	b, ok := m.books[symbol]
	return b, ok
}

// Symbols lists every symbol with a live book, in no particular order.
func (m *Market) Symbols() []book.Symbol {
	symbols := make([]book.Symbol, 0, len(m.books))
	for s := range m.books {
		symbols = append(symbols, s)
	}
	return symbols
}

// OrderSubmit enters an order into its symbol's book. Returns false
// when the order is nil, the symbol has no book, or the id is already
// in use. Orders that leave the market during the submit (traded out,
// rejected) are released before returning.
func (m *Market) OrderSubmit(order *Order) bool {
	if order == nil {
		m.log.Error().Msg("nil order submitted")
		return false
	}
	b, ok := m.books[order.GetSymbol()]
	if !ok {
		m.log.Error().Uint64("symbol", uint64(order.GetSymbol())).Msg("no book for symbol")
		return false
	}
	if _, dup := m.orders[order.ID()]; dup {
		m.log.Error().Uint64("order_id", uint64(order.ID())).Msg("duplicate order id")
		return false
	}

	m.orders[order.ID()] = order
	order.OnSubmitted()
	m.log.Info().Uint64("order_id", uint64(order.ID())).Stringer("order", order).Msg("submitting order")

	if b.Add(order) {
		// Executions may have taken counterparties off the market.
		for _, trade := range order.Trades() {
			if matched, ok := m.orders[trade.MatchedOrderID]; ok && matched.QuantityOnMarket() == 0 {
				m.RemoveOrder(matched.ID())
			}
		}
	}
	if order.QuantityOnMarket() == 0 {
		m.RemoveOrder(order.ID())
	}
	return true
}

// OrderCancel requests cancellation by order id. Unknown ids report
// false and change nothing.
func (m *Market) OrderCancel(id book.OrderID) bool {
	order, b, ok := m.FindExistingOrder(id)
	if !ok {
		return false
	}
	order.OnCancelRequested()
	m.log.Info().Uint64("order_id", uint64(id)).Msg("requesting cancel")
	b.Cancel(order)
	return m.RemoveOrder(id)
}

// RemoveOrder releases an order from the market's index.
func (m *Market) RemoveOrder(id book.OrderID) bool {
	if _, ok := m.orders[id]; !ok {
		return false
	}
	delete(m.orders, id)
	return true
}

// FindExistingOrder resolves an order id to the order and its book.
func (m *Market) FindExistingOrder(id book.OrderID) (*Order, *book.DepthOrderBook, bool) {
	order, ok := m.orders[id]
	if !ok {
		m.log.Warn().Uint64("order_id", uint64(id)).Msg("order not found")
		return nil, nil, false
	}
	b, ok := m.books[order.GetSymbol()]
	if !ok {
		m.log.Warn().Uint64("symbol", uint64(order.GetSymbol())).Msg("no book for symbol")
		return nil, nil, false
	}
	return order, b, true
}

// Snapshot aggregates a symbol's resting orders into a depth-capped
// book record.
func (m *Market) Snapshot(symbol book.Symbol) (BookData, error) {
	b, ok := m.books[symbol]
	if !ok {
		return BookData{}, fmt.Errorf("market: no book for symbol %d", symbol)
	}

	snap := BookData{Symbol: symbol}
	appendLevel := func(levels []LevelData, price book.Price, qty book.Quantity) []LevelData {
		if n := len(levels); n > 0 && levels[n-1].Price == price {
			levels[n-1].Quantity += qty
			return levels
		}
		if len(levels) == m.depthSize {
			return levels
		}
		return append(levels, LevelData{Price: price, Quantity: qty})
	}
	b.BidsEach(func(key book.ComparablePrice, trk *book.Tracker) bool {
		if !key.IsMarket() {
			snap.Bids = appendLevel(snap.Bids, key.GetPrice(), trk.OpenQty())
		}
		return true
	})
	b.AsksEach(func(key book.ComparablePrice, trk *book.Tracker) bool {
		if !key.IsMarket() {
			snap.Asks = appendLevel(snap.Asks, key.GetPrice(), trk.OpenQty())
		}
		return true
	})
	return snap, nil
}

//
// book.Listener
//

func (m *Market) OnAccept(o book.Order, filledOnAccept book.Quantity) {
	order, ok := m.orders[o.ID()]
	if !ok {
		return
	}
	order.OnAccepted()
	m.log.Debug().Uint64("order_id", uint64(o.ID())).
		Int64("filled_on_accept", int64(filledOnAccept)).Msg("accepted")
	m.publishOrder(order, "")
}

func (m *Market) OnReject(o book.Order, reason string) {
	order, ok := m.orders[o.ID()]
	if !ok {
		return
	}
	order.OnRejected(reason)
	m.log.Warn().Uint64("order_id", uint64(o.ID())).Str("reason", reason).Msg("rejected")
	m.publishOrder(order, reason)
	m.RemoveOrder(o.ID())
}

func (m *Market) OnFill(inbound, matched book.Order, qty book.Quantity, cost book.Cost, fillID book.FillID) {
	in, okIn := m.orders[inbound.ID()]
	mt, okMt := m.orders[matched.ID()]
	if !okIn || !okMt {
		return
	}

	in.OnFilled(qty, cost)
	mt.OnFilled(qty, cost)
	in.AddTradeHistory(qty, mt.QuantityOnMarket(), cost, mt.ID(), mt.GetPrice(), fillID)
	mt.AddTradeHistory(qty, in.QuantityOnMarket(), cost, in.ID(), in.GetPrice(), fillID)

	m.log.Info().
		Uint64("inbound", uint64(in.ID())).
		Uint64("matched", uint64(mt.ID())).
		Int64("qty", int64(qty)).
		Int64("cost", int64(cost)).
		Uint64("fill_id", uint64(fillID)).
		Msg("fill")

	buyer, seller := in, mt
	if !in.IsBuy() {
		buyer, seller = mt, in
	}
	if m.pub != nil {
		m.pub.PublishTrade(TradeData{
			BuyerID:    buyer.ID(),
			SellerID:   seller.ID(),
			Symbol:     in.GetSymbol(),
			Quantity:   qty,
			Price:      book.Price(int64(cost) / int64(qty)),
			BuyerMaker: mt.IsBuy(),
			FillID:     fillID,
		})
	}
	m.publishOrder(in, "")
	m.publishOrder(mt, "")
}

func (m *Market) OnCancel(o book.Order, openQty book.Quantity) {
	order, ok := m.orders[o.ID()]
	if !ok {
		return
	}
	order.OnCancelled()
	m.log.Info().Uint64("order_id", uint64(o.ID())).Int64("open_qty", int64(openQty)).Msg("cancelled")
	m.publishOrder(order, "")
}

func (m *Market) OnCancelReject(o book.Order, reason string) {
	order, ok := m.orders[o.ID()]
	if !ok {
		return
	}
	order.OnCancelRejected(reason)
	m.log.Warn().Uint64("order_id", uint64(o.ID())).Str("reason", reason).Msg("cancel rejected")
	m.publishOrder(order, reason)
}

func (m *Market) OnReplace(o book.Order, openQty book.Quantity, delta int64, newPrice book.Price) {
	// Amendment is a rejected seam; the book never emits this today.
}

func (m *Market) OnReplaceReject(o book.Order, reason string) {
	order, ok := m.orders[o.ID()]
	if !ok {
		return
	}
	order.OnReplaceRejected(reason)
	m.log.Warn().Uint64("order_id", uint64(o.ID())).Str("reason", reason).Msg("replace rejected")
	m.publishOrder(order, reason)
}

func (m *Market) OnBookUpdate(b *book.OrderBook) {
	if m.pub != nil {
		m.pub.PublishBookChange(BookChange{Symbol: b.GetSymbol()})
	}
}

func (m *Market) OnStopLossTriggered(id book.OrderID) {
	m.log.Warn().Uint64("order_id", uint64(id)).Msg("stop loss triggered")
}

//
// book.DepthListener
//

func (m *Market) OnDepthChange(b *book.DepthOrderBook, d *book.Depth) {
	if m.pub == nil {
		return
	}
	snap := BookData{Symbol: b.GetSymbol()}
	for _, l := range d.Bids() {
		if l.GetPrice() == book.InvalidLevelPrice {
			break
		}
		snap.Bids = append(snap.Bids, LevelData{Price: l.GetPrice(), Quantity: l.AggregateQty()})
	}
	for _, l := range d.Asks() {
		if l.GetPrice() == book.InvalidLevelPrice {
			break
		}
		snap.Asks = append(snap.Asks, LevelData{Price: l.GetPrice(), Quantity: l.AggregateQty()})
	}
	m.pub.PublishBook(snap)
}

func (m *Market) publishOrder(o *Order, reason string) {
	if m.pub != nil {
		m.pub.PublishOrder(o.Data(reason))
	}
}
