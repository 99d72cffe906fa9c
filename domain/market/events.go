package market

import "freyr/domain/book"

// TickType tags a stream record.
type TickType byte

const (
	TickOrder      TickType = 'O'
	TickTrade      TickType = 'T'
	TickBook       TickType = 'B'
	TickBookChange TickType = 'C'
)

// StreamHeader prefixes every outbound record with its sequence number
// and record tag. Sequence numbers are assigned by the publisher, not
// the market layer.
type StreamHeader struct {
	SeqNo uint64
	Type  TickType
}

// OrderData is the stream record for an order lifecycle event.
type OrderData struct {
	Header           StreamHeader
	ID               book.OrderID
	BuySide          bool
	Symbol           book.Symbol
	Quantity         book.Quantity
	Price            book.Price
	IsLimit          bool
	QuantityFilled   book.Quantity
	QuantityOnMarket book.Quantity
	FillCost         book.Cost
	State            State
	Reason           string
}

// TradeData is the stream record for one execution.
type TradeData struct {
	Header     StreamHeader
	BuyerID    book.OrderID
	SellerID   book.OrderID
	Symbol     book.Symbol
	Quantity   book.Quantity
	Price      book.Price
	BuyerMaker bool
	FillID     book.FillID
}

// LevelData is one aggregated price level in a book snapshot.
type LevelData struct {
	Price    book.Price
	Quantity book.Quantity
}

// BookData is the stream record for a depth snapshot: the visible
// window of both sides, best price first.
type BookData struct {
	Header StreamHeader
	Symbol book.Symbol
	Bids   []LevelData
	Asks   []LevelData
}

// BookChange is the lightweight notification that a book mutated,
// without carrying the new state.
type BookChange struct {
	Header StreamHeader
	Symbol book.Symbol
}

// Publisher consumes the market's outbound stream. Implementations
// stamp the header sequence and deliver downstream; a nil publisher on
// the market simply drops the stream.
type Publisher interface {
	PublishOrder(OrderData)
	PublishTrade(TradeData)
	PublishBook(BookData)
	PublishBookChange(BookChange)
}
