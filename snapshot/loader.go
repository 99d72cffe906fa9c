package snapshot

import (
	"encoding/gob"
	"fmt"
	"os"

	"freyr/domain/book"
	"freyr/domain/market"
)

// Load restores a market from the snapshot at path and returns the
// journal sequence it was taken at. A missing snapshot is not an
// error; the market starts empty and the journal replays from zero.
//
// Orders are resubmitted before the last traded price is restored so
// that resting market orders on both sides stay resting, exactly as
// they were when the snapshot was cut.
func Load(path string, m *market.Market) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, fmt.Errorf("snapshot: decode %s: %w", path, err)
	}

	for _, b := range s.Books {
		m.AddBook(book.Symbol(b.Symbol))
	}

	for _, e := range s.Orders {
		var o *market.Order
		if e.Limit {
			o = market.NewLimitOrder(book.OrderID(e.ID), e.BuySide, book.Symbol(e.Symbol),
				book.Quantity(e.OpenQty), book.Price(e.Price))
		} else {
			o = market.NewMarketOrder(book.OrderID(e.ID), e.BuySide, book.Symbol(e.Symbol),
				book.Quantity(e.OpenQty))
		}
		if !m.OrderSubmit(o) {
			return 0, fmt.Errorf("snapshot: resubmit of order %d failed", e.ID)
		}
	}

	for _, b := range s.Books {
		if !b.HasMarketPrice {
			continue
		}
		if ob, ok := m.FindBook(book.Symbol(b.Symbol)); ok {
			ob.SetMarketPrice(book.Price(b.MarketPrice))
		}
	}

	return s.Seq, nil
}
