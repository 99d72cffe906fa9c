package snapshot

import "time"

// Snapshot is a point-in-time capture of the market: every live book,
// its resting orders with their open quantities, and the last traded
// price per symbol. Together with the journal sequence it was taken
// at, it bounds how much of the journal a restart must replay.
type Snapshot struct {
	Seq     uint64
	Created time.Time
	Books   []BookEntry
	Orders  []OrderEntry
}

type BookEntry struct {
	Symbol         uint64
	HasMarketPrice bool
	MarketPrice    int64
}

type OrderEntry struct {
	ID      uint64
	BuySide bool
	Limit   bool
	Symbol  uint64
	Price   int64
	OpenQty int64
}
