package book

import "testing"

func TestLessOrdersBuySideDescending(t *testing.T) {
	hi := LimitKey(true, 105)
	lo := LimitKey(true, 100)
	if !hi.Less(lo) {
		t.Error("higher bid must sort first")
	}
	if lo.Less(hi) {
		t.Error("lower bid sorted first")
	}
}

func TestLessOrdersSellSideAscending(t *testing.T) {
	hi := LimitKey(false, 105)
	lo := LimitKey(false, 100)
	if !lo.Less(hi) {
		t.Error("lower ask must sort first")
	}
	if hi.Less(lo) {
		t.Error("higher ask sorted first")
	}
}

func TestMarketKeySortsAheadOfAllLimits(t *testing.T) {
	mkt := MarketKey(true)
	best := LimitKey(true, 1<<40)
	if !mkt.Less(best) {
		t.Error("market key must sort ahead of every limit key")
	}
	if best.Less(mkt) {
		t.Error("limit key sorted ahead of market key")
	}
	if mkt.Less(MarketKey(true)) {
		t.Error("market key is not less than itself")
	}
}

func TestMatchesIsBroaderThanLess(t *testing.T) {
	cases := []struct {
		name     string
		resting  ComparablePrice
		inbound  ComparablePrice
		crosses  bool
	}{
		{"equal prices cross", LimitKey(true, 100), LimitKey(false, 100), true},
		{"bid above ask crosses", LimitKey(true, 101), LimitKey(false, 100), true},
		{"bid below ask does not", LimitKey(true, 99), LimitKey(false, 100), false},
		{"ask below bid crosses", LimitKey(false, 99), LimitKey(true, 100), true},
		{"ask above bid does not", LimitKey(false, 101), LimitKey(true, 100), false},
		{"market resting always crosses", MarketKey(true), LimitKey(false, 1), true},
		{"market inbound always crosses", LimitKey(false, 1 << 40), MarketKey(true), true},
		{"market against market crosses", MarketKey(true), MarketKey(false), true},
	}
	for _, c := range cases {
		if got := c.resting.Matches(c.inbound); got != c.crosses {
			t.Errorf("%s: Matches=%v, want %v", c.name, got, c.crosses)
		}
	}
}

func TestEqualComparesLevels(t *testing.T) {
	if !LimitKey(true, 100).Equal(LimitKey(true, 100)) {
		t.Error("same price keys must be equal")
	}
	if LimitKey(true, 100).Equal(LimitKey(true, 101)) {
		t.Error("different price keys must differ")
	}
	if LimitKey(true, 100).Equal(MarketKey(true)) {
		t.Error("limit and market keys never share a level")
	}
	if !MarketKey(false).Equal(MarketKey(false)) {
		t.Error("market keys share the market level")
	}
}

func TestKeyFor(t *testing.T) {
	k := KeyFor(limitOrder(1, true, 5, 100))
	if k.IsMarket() || k.GetPrice() != 100 || !k.IsBuy() {
		t.Errorf("unexpected limit key %v", k)
	}
	if !KeyFor(marketOrder(2, false, 5)).IsMarket() {
		t.Error("market order must map to the market key")
	}
}
