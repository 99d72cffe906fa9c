package snapshot

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freyr/domain/book"
	"freyr/domain/market"
)

func TestWriteAndLoadRoundTrip(t *testing.T) {
	m := market.NewMarket(zerolog.Nop(), 5)
	require.True(t, m.AddBook(1))
	require.True(t, m.AddBook(2))

	require.True(t, m.OrderSubmit(market.NewLimitOrder(1, true, 1, 5, 100)))
	require.True(t, m.OrderSubmit(market.NewLimitOrder(2, false, 1, 3, 105)))
	require.True(t, m.OrderSubmit(market.NewMarketOrder(3, true, 2, 7)))
	// A trade both establishes the last traded price and leaves a
	// partially filled remainder to capture.
	require.True(t, m.OrderSubmit(market.NewLimitOrder(4, false, 1, 2, 100)))

	dir := t.TempDir()
	w := &Writer{Dir: dir}
	require.NoError(t, w.Write(42, m))

	restored := market.NewMarket(zerolog.Nop(), 5)
	seq, err := Load(Path(dir), restored)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), seq)

	snap, err := restored.Snapshot(1)
	require.NoError(t, err)
	require.Len(t, snap.Bids, 1)
	assert.Equal(t, market.LevelData{Price: 100, Quantity: 3}, snap.Bids[0])
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, market.LevelData{Price: 105, Quantity: 3}, snap.Asks[0])

	b, ok := restored.FindBook(1)
	require.True(t, ok)
	px, has := b.MarketPrice()
	assert.True(t, has)
	assert.Equal(t, book.Price(100), px)

	// The resting market order on symbol 2 survived with its identity.
	b2, ok := restored.FindBook(2)
	require.True(t, ok)
	trk, found := b2.FindOnMarket(market.NewMarketOrder(3, true, 2, 7))
	require.True(t, found)
	assert.Equal(t, book.Quantity(7), trk.OpenQty())
}

func TestLoadMissingSnapshotStartsEmpty(t *testing.T) {
	m := market.NewMarket(zerolog.Nop(), 5)
	seq, err := Load(Path(t.TempDir()), m)
	require.NoError(t, err)
	assert.Zero(t, seq)
	assert.Empty(t, m.Symbols())
}
