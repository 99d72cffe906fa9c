package book

import "fmt"

// ComparablePrice is the side-aware ordering key for resting orders.
// It defines two distinct relations over the same pair:
//
//   - Less is a strict total order used by the side containers. Market
//     keys sort strictly ahead of every limit key; buy-side keys sort
//     descending by price, sell-side keys ascending.
//   - Matches is the broader "would trade" predicate the matcher uses
//     to decide whether a resting key crosses an inbound key.
type ComparablePrice struct {
	price   Price
	buySide bool
	market  bool
}

// LimitKey builds the key for a limit order resting at price.
func LimitKey(buySide bool, price Price) ComparablePrice {
	return ComparablePrice{price: price, buySide: buySide}
}

// MarketKey builds the key for a market order, which crosses first on
// either side.
func MarketKey(buySide bool) ComparablePrice {
	return ComparablePrice{buySide: buySide, market: true}
}

// KeyFor derives the container key for an order.
func KeyFor(o Order) ComparablePrice {
	if o.IsLimit() {
		return LimitKey(o.IsBuy(), o.GetPrice())
	}
	return MarketKey(o.IsBuy())
}

// Matches reports whether a resting order with this key is marketable
// against an inbound order keyed by rhs. A market key on either end
// always crosses; otherwise a buy crosses at or above the opposing
// price and a sell at or below it.
func (k ComparablePrice) Matches(rhs ComparablePrice) bool {
	if k.market || rhs.market {
		return true
	}
	if k.price == rhs.price {
		return true
	}
	if k.buySide {
		return rhs.price < k.price
	}
	return k.price < rhs.price
}

// Less reports whether k sorts strictly ahead of rhs within one side's
// container (better price first, market best of all).
func (k ComparablePrice) Less(rhs ComparablePrice) bool {
	if k.market {
		return !rhs.market
	}
	if rhs.market {
		return false
	}
	if k.buySide {
		return rhs.price < k.price
	}
	return k.price < rhs.price
}

// Equal reports whether the two keys occupy the same price level.
func (k ComparablePrice) Equal(rhs ComparablePrice) bool {
	if k.market || rhs.market {
		return k.market == rhs.market
	}
	return k.price == rhs.price
}

func (k ComparablePrice) IsBuy() bool    { return k.buySide }
func (k ComparablePrice) IsMarket() bool { return k.market }

// GetPrice returns the key's limit price; meaningless for market keys.
func (k ComparablePrice) GetPrice() Price { return k.price }

func (k ComparablePrice) String() string {
	side := "Sell"
	if k.buySide {
		side = "Buy"
	}
	if k.market {
		return side + " at Market"
	}
	return fmt.Sprintf("%s at %d", side, k.price)
}
