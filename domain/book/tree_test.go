package book

import "testing"

func treeKeys(tr *sideTree) []ComparablePrice {
	var keys []ComparablePrice
	tr.eachBestFirst(func(q *levelQueue) bool {
		keys = append(keys, q.key)
		return true
	})
	return keys
}

func TestSideTreeOrdering(t *testing.T) {
	tr := newSideTree()
	for _, p := range []Price{100, 104, 98, 102, 96} {
		tr.upsert(LimitKey(true, p))
	}
	tr.upsert(MarketKey(true))

	keys := treeKeys(tr)
	want := []ComparablePrice{
		MarketKey(true),
		LimitKey(true, 104), LimitKey(true, 102), LimitKey(true, 100),
		LimitKey(true, 98), LimitKey(true, 96),
	}
	if len(keys) != len(want) {
		t.Fatalf("got %d levels, want %d", len(keys), len(want))
	}
	for i := range want {
		if !keys[i].Equal(want[i]) {
			t.Errorf("level %d = %v, want %v", i, keys[i], want[i])
		}
	}
}

func TestSideTreeUpsertReusesLevel(t *testing.T) {
	tr := newSideTree()
	q1 := tr.upsert(LimitKey(false, 100))
	q2 := tr.upsert(LimitKey(false, 100))
	if q1 != q2 {
		t.Error("upsert of an existing key must return the same queue")
	}
	if tr.Size() != 1 {
		t.Errorf("size=%d, want 1", tr.Size())
	}
}

func TestSideTreeDelete(t *testing.T) {
	tr := newSideTree()
	prices := []Price{10, 20, 30, 40, 50, 60, 70, 80}
	for _, p := range prices {
		tr.upsert(LimitKey(false, p))
	}
	for _, p := range []Price{30, 10, 80, 50} {
		if !tr.delete(LimitKey(false, p)) {
			t.Fatalf("delete of %d failed", p)
		}
	}
	if tr.delete(LimitKey(false, 30)) {
		t.Error("double delete must fail")
	}

	keys := treeKeys(tr)
	want := []Price{20, 40, 60, 70}
	if len(keys) != len(want) {
		t.Fatalf("got %d levels, want %d", len(keys), len(want))
	}
	for i, p := range want {
		if keys[i].GetPrice() != p {
			t.Errorf("level %d = %v, want %d", i, keys[i], p)
		}
	}
}

func TestSideTreeBestQueue(t *testing.T) {
	tr := newSideTree()
	if tr.bestQueue() != nil {
		t.Error("empty tree has no best queue")
	}
	tr.upsert(LimitKey(false, 105))
	tr.upsert(LimitKey(false, 101))
	if best := tr.bestQueue(); best == nil || best.key.GetPrice() != 101 {
		t.Errorf("best ask should be 101, got %v", best)
	}
}

func TestSideTreeClear(t *testing.T) {
	tr := newSideTree()
	for p := Price(1); p <= 20; p++ {
		tr.upsert(LimitKey(true, p))
	}
	tr.clear()
	if tr.Size() != 0 || len(treeKeys(tr)) != 0 {
		t.Error("clear must drop every level")
	}
}

func TestSideTreeRandomizedShape(t *testing.T) {
	tr := newSideTree()
	// Insert and delete in an adversarial pattern; ordering must hold
	// throughout.
	for p := Price(1); p <= 64; p++ {
		tr.upsert(LimitKey(false, p*7%65))
	}
	for p := Price(1); p <= 64; p += 2 {
		tr.delete(LimitKey(false, p))
	}
	keys := treeKeys(tr)
	for i := 1; i < len(keys); i++ {
		if !keys[i-1].Less(keys[i]) {
			t.Fatalf("ordering violated at %d: %v !< %v", i, keys[i-1], keys[i])
		}
	}
}
