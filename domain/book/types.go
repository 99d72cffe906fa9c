package book

import "math"

type (
	Price    int64
	Quantity int64
	Cost     int64
	OrderID  uint64
	FillID   uint64
	ChangeID uint64
	Symbol   uint64
)

const (
	// InvalidLevelPrice marks an empty depth window slot. Limit orders
	// with a non-positive price are rejected at entry, so no resting
	// level can ever carry this value.
	InvalidLevelPrice Price = 0

	// MarketBidRestorePrice and MarketAskRestorePrice are the sort-price
	// sentinels a single-slot depth window reports through its
	// restoration queries: they tell the collaborator to re-derive the
	// level from the resting orders rather than from the window.
	MarketBidRestorePrice Price = math.MaxInt64
	MarketAskRestorePrice Price = 0
)

// DefaultDepth is the window size used when a book is created without
// an explicit depth.
const DefaultDepth = 10

// Order is the minimal capability contract the matching core requires
// from caller-supplied orders. The book never constructs or destroys
// orders; it borrows references for the order's lifetime on the book.
type Order interface {
	ID() OrderID
	IsBuy() bool
	GetSymbol() Symbol
	// IsLimit distinguishes limit orders from market orders. Market-ness
	// is explicit; a zero price never stands in for "no price".
	IsLimit() bool
	GetPrice() Price
	OrderQty() Quantity
}
