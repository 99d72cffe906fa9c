package service

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freyr/domain/book"
	"freyr/domain/market"
	"freyr/infra/outbox"
	"freyr/infra/sequence"
	"freyr/infra/wal/entry"
)

func newTestEngine(t *testing.T, walDir string, box *outbox.Outbox) *Engine {
	t.Helper()
	var w *entry.WAL
	if walDir != "" {
		var err error
		w, err = entry.Open(entry.Config{Dir: walDir, SyncEvery: true})
		require.NoError(t, err)
		t.Cleanup(func() { w.Close() })
	}
	m := market.NewMarket(zerolog.Nop(), book.DefaultDepth)
	return NewEngine(zerolog.Nop(), m, w, sequence.New(0), box, nil)
}

func TestEngineJournalsEveryCommand(t *testing.T) {
	walDir := t.TempDir()
	e := newTestEngine(t, walDir, nil)

	require.NoError(t, e.AddBook(1))
	require.NoError(t, e.SubmitLimit(100, true, 1, 10, 1000))
	require.NoError(t, e.SubmitMarket(101, false, 1, 5))
	ok, err := e.Cancel(100)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, e.wal.Sync())

	var types []entry.RecordType
	last, err := entry.Replay(walDir, func(rec *entry.Record) error {
		types = append(types, rec.Type)
		return nil
	})
	require.NoError(t, err)
	assert.NotZero(t, last)
	assert.Equal(t, []entry.RecordType{
		entry.RecordAddBook,
		entry.RecordSubmit,
		entry.RecordSubmit,
		entry.RecordCancel,
	}, types)
}

func TestEngineCancelUnknownJournaledButRefused(t *testing.T) {
	walDir := t.TempDir()
	e := newTestEngine(t, walDir, nil)
	require.NoError(t, e.AddBook(1))

	ok, err := e.Cancel(555)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, e.wal.Sync())

	count := 0
	_, err = entry.Replay(walDir, func(rec *entry.Record) error {
		if rec.Type == entry.RecordCancel {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "refused cancel still journaled")
}

func TestEngineAddBookDuplicateRefused(t *testing.T) {
	walDir := t.TempDir()
	e := newTestEngine(t, walDir, nil)

	require.NoError(t, e.AddBook(1))
	require.NoError(t, e.SubmitLimit(1, true, 1, 5, 1000))
	assert.Error(t, e.AddBook(1))
	require.NoError(t, e.wal.Sync())

	o, _, found := e.Market().FindExistingOrder(1)
	require.True(t, found, "resting order survives the refused add")
	assert.Equal(t, book.Quantity(5), o.QuantityOnMarket())

	count := 0
	_, err := entry.Replay(walDir, func(rec *entry.Record) error {
		if rec.Type == entry.RecordAddBook {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "refused add never journaled")
}

func TestEngineSubmitUnknownBookFails(t *testing.T) {
	e := newTestEngine(t, t.TempDir(), nil)
	assert.Error(t, e.SubmitLimit(1, true, 9, 10, 100))
}

func TestRecoverFromJournalOnly(t *testing.T) {
	walDir := t.TempDir()
	snapDir := t.TempDir()

	e := newTestEngine(t, walDir, nil)
	require.NoError(t, e.AddBook(1))
	require.NoError(t, e.SubmitLimit(1, true, 1, 10, 1000))
	require.NoError(t, e.SubmitLimit(2, false, 1, 4, 1000)) // trades 4
	require.NoError(t, e.SubmitLimit(3, true, 1, 7, 990))
	_, err := e.Cancel(3)
	require.NoError(t, err)
	require.NoError(t, e.wal.Sync())

	r := newTestEngine(t, walDir, nil)
	resume, err := r.Recover(snapDir, walDir)
	require.NoError(t, err)
	assert.NotZero(t, resume)

	o, _, found := r.Market().FindExistingOrder(1)
	require.True(t, found)
	assert.Equal(t, book.Quantity(6), o.QuantityOnMarket())
	assert.Equal(t, book.Quantity(4), o.QuantityFilled())

	_, _, found = r.Market().FindExistingOrder(3)
	assert.False(t, found, "cancelled order must not survive recovery")

	bd, err := r.Snapshot(1)
	require.NoError(t, err)
	require.Len(t, bd.Bids, 1)
	assert.Equal(t, book.Price(1000), bd.Bids[0].Price)
	assert.Equal(t, book.Quantity(6), bd.Bids[0].Quantity)
}

func TestRecoverFromSnapshotPlusTail(t *testing.T) {
	walDir := t.TempDir()
	snapDir := t.TempDir()

	e := newTestEngine(t, walDir, nil)
	require.NoError(t, e.AddBook(1))
	require.NoError(t, e.SubmitLimit(1, true, 1, 10, 1000))
	require.NoError(t, e.SubmitLimit(2, false, 1, 4, 1000))
	require.NoError(t, e.SnapshotOnce(snapDir))

	// Tail past the snapshot.
	require.NoError(t, e.SubmitLimit(3, false, 1, 8, 1005))
	require.NoError(t, e.wal.Sync())

	r := newTestEngine(t, walDir, nil)
	resume, err := r.Recover(snapDir, walDir)
	require.NoError(t, err)
	assert.NotZero(t, resume)

	o, _, found := r.Market().FindExistingOrder(1)
	require.True(t, found)
	assert.Equal(t, book.Quantity(6), o.QuantityOnMarket())

	bd, err := r.Snapshot(1)
	require.NoError(t, err)
	require.Len(t, bd.Asks, 1)
	assert.Equal(t, book.Price(1005), bd.Asks[0].Price)
	assert.Equal(t, book.Quantity(8), bd.Asks[0].Quantity)
}

func TestRecoverRestoresLastTradedPrice(t *testing.T) {
	walDir := t.TempDir()
	snapDir := t.TempDir()

	e := newTestEngine(t, walDir, nil)
	require.NoError(t, e.AddBook(1))
	require.NoError(t, e.SubmitLimit(1, true, 1, 5, 1000))
	require.NoError(t, e.SubmitLimit(2, false, 1, 5, 1000))
	require.NoError(t, e.wal.Sync())

	r := newTestEngine(t, walDir, nil)
	_, err := r.Recover(snapDir, walDir)
	require.NoError(t, err)

	// Two resting market orders can only cross at the last traded
	// price, so a trade here proves the price survived recovery.
	require.NoError(t, r.SubmitMarket(3, true, 1, 2))
	require.NoError(t, r.SubmitMarket(4, false, 1, 2))

	_, _, found := r.Market().FindExistingOrder(3)
	assert.False(t, found, "market orders should have traded out")
	_, _, found = r.Market().FindExistingOrder(4)
	assert.False(t, found)
}

func TestPublisherStagesStreamInOutbox(t *testing.T) {
	box, err := outbox.Open(filepath.Join(t.TempDir(), "outbox"))
	require.NoError(t, err)
	defer box.Close()

	e := newTestEngine(t, "", box)
	require.NoError(t, e.AddBook(1))
	require.NoError(t, e.SubmitLimit(1, true, 1, 10, 1000))
	require.NoError(t, e.SubmitLimit(2, false, 1, 10, 1000))

	kinds := map[byte]int{}
	var seqs []uint64
	require.NoError(t, box.ScanPending(func(rec outbox.Record) error {
		kinds[rec.Kind]++
		seqs = append(seqs, rec.Seq)
		return nil
	}))

	assert.Equal(t, 4, kinds[byte(market.TickOrder)], "two accepts plus both filled states")
	assert.Equal(t, 1, kinds[byte(market.TickTrade)])
	assert.NotZero(t, kinds[byte(market.TickBook)])
	assert.NotZero(t, kinds[byte(market.TickBookChange)])
	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1], "staged records keep sequence order")
	}
}

func TestRecoverIsMuted(t *testing.T) {
	walDir := t.TempDir()

	e := newTestEngine(t, walDir, nil)
	require.NoError(t, e.AddBook(1))
	require.NoError(t, e.SubmitLimit(1, true, 1, 10, 1000))
	require.NoError(t, e.wal.Sync())

	box, err := outbox.Open(filepath.Join(t.TempDir(), "outbox"))
	require.NoError(t, err)
	defer box.Close()

	r := newTestEngine(t, "", box)
	_, err = r.Recover(t.TempDir(), walDir)
	require.NoError(t, err)

	staged := 0
	require.NoError(t, box.ScanPending(func(outbox.Record) error {
		staged++
		return nil
	}))
	assert.Zero(t, staged, "replayed commands must not restage events")
}

func TestRecoverResumesPastStagedStream(t *testing.T) {
	walDir := t.TempDir()
	box, err := outbox.Open(filepath.Join(t.TempDir(), "outbox"))
	require.NoError(t, err)
	defer box.Close()

	e := newTestEngine(t, walDir, box)
	require.NoError(t, e.AddBook(1))
	require.NoError(t, e.SubmitLimit(1, true, 1, 10, 1000))
	require.NoError(t, e.wal.Sync())

	before := map[uint64][]byte{}
	require.NoError(t, box.ScanPending(func(rec outbox.Record) error {
		before[rec.Seq] = rec.Payload
		return nil
	}))
	require.NotEmpty(t, before)
	var stagedMax uint64
	for seq := range before {
		if seq > stagedMax {
			stagedMax = seq
		}
	}

	r := newTestEngine(t, "", box)
	resume, err := r.Recover(t.TempDir(), walDir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, resume, stagedMax,
		"sequencer must resume past records staged before the crash")

	// New commands must stage at fresh sequences, never on top of an
	// undelivered record.
	require.NoError(t, r.SubmitLimit(2, false, 1, 3, 1001))

	after := map[uint64][]byte{}
	require.NoError(t, box.ScanPending(func(rec outbox.Record) error {
		after[rec.Seq] = rec.Payload
		return nil
	}))
	for seq, payload := range before {
		assert.Equal(t, payload, after[seq], "staged record %d overwritten", seq)
	}
	assert.Greater(t, len(after), len(before))
}

func TestSnapshotOnceTruncatesJournal(t *testing.T) {
	walDir := t.TempDir()
	snapDir := t.TempDir()

	// Tiny segments so every command rotates.
	w, err := entry.Open(entry.Config{Dir: walDir, SegmentSize: 32, SyncEvery: true})
	require.NoError(t, err)
	defer w.Close()
	m := market.NewMarket(zerolog.Nop(), book.DefaultDepth)
	e := NewEngine(zerolog.Nop(), m, w, sequence.New(0), nil, nil)

	require.NoError(t, e.AddBook(1))
	for i := 1; i <= 5; i++ {
		require.NoError(t, e.SubmitLimit(book.OrderID(i), true, 1, 10, book.Price(990+i)))
	}
	require.NoError(t, e.SnapshotOnce(snapDir))

	// Replay of what remains must not regress below the snapshot once
	// combined with it.
	r := newTestEngine(t, "", nil)
	resume, err := r.Recover(snapDir, walDir)
	require.NoError(t, err)
	assert.NotZero(t, resume)

	bd, err := r.Snapshot(1)
	require.NoError(t, err)
	assert.Len(t, bd.Bids, 5)
}
