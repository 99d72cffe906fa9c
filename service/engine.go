package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"freyr/domain/book"
	"freyr/domain/market"
	"freyr/infra/outbox"
	"freyr/infra/sequence"
	"freyr/infra/wal/entry"
)

// Engine is the single writer over one market: every command is
// journaled before it is applied, so the journal plus the last
// snapshot always reproduce the live state. Callers serialize access;
// the engine adds no locking of its own.
type Engine struct {
	log    zerolog.Logger
	market *market.Market
	wal    *entry.WAL
	seq    *sequence.Sequencer
	pub    *streamPublisher
}

// NewEngine assembles an engine. box and trades may be nil: a nil
// outbox drops the outbound stream, a nil trade sink skips the direct
// trade feed.
func NewEngine(log zerolog.Logger, m *market.Market, wal *entry.WAL,
	seq *sequence.Sequencer, box *outbox.Outbox, trades TradeSink) *Engine {

	e := &Engine{
		log:    log,
		market: m,
		wal:    wal,
		seq:    seq,
		pub:    newStreamPublisher(log, seq, box, trades),
	}
	m.SetPublisher(e.pub)
	return e
}

func (e *Engine) Market() *market.Market { return e.market }

// Sequence is the last sequence number handed out.
func (e *Engine) Sequence() uint64 { return e.seq.Current() }

// AddBook journals and applies a book creation. A duplicate symbol is
// refused before touching the journal.
func (e *Engine) AddBook(symbol book.Symbol) error {
	if _, ok := e.market.FindBook(symbol); ok {
		return fmt.Errorf("service: book for symbol %d already exists", symbol)
	}
	if err := e.journal(entry.RecordAddBook, entry.EncodeBookCmd(entry.BookCmd{Symbol: symbol})); err != nil {
		return err
	}
	e.market.AddBook(symbol)
	return nil
}

// RemoveBook journals and applies a book teardown.
func (e *Engine) RemoveBook(symbol book.Symbol) error {
	if err := e.journal(entry.RecordRemoveBook, entry.EncodeBookCmd(entry.BookCmd{Symbol: symbol})); err != nil {
		return err
	}
	if !e.market.RemoveBook(symbol) {
		return fmt.Errorf("service: no book for symbol %d", symbol)
	}
	return nil
}

// SubmitLimit journals and applies a limit order submission.
func (e *Engine) SubmitLimit(id book.OrderID, buySide bool, symbol book.Symbol,
	qty book.Quantity, price book.Price) error {
	return e.submit(entry.Submit{
		ID: id, BuySide: buySide, Symbol: symbol,
		Quantity: qty, Price: price, Limit: true,
	})
}

// SubmitMarket journals and applies a market order submission.
func (e *Engine) SubmitMarket(id book.OrderID, buySide bool, symbol book.Symbol,
	qty book.Quantity) error {
	return e.submit(entry.Submit{ID: id, BuySide: buySide, Symbol: symbol, Quantity: qty})
}

func (e *Engine) submit(s entry.Submit) error {
	if err := e.journal(entry.RecordSubmit, entry.EncodeSubmit(s)); err != nil {
		return err
	}
	if !e.market.OrderSubmit(orderFromSubmit(s)) {
		return fmt.Errorf("service: submit of order %d not accepted", s.ID)
	}
	return nil
}

// Cancel journals and applies a cancel request. An unknown id is
// journaled anyway: the journal records what was asked, not what
// succeeded.
func (e *Engine) Cancel(id book.OrderID) (bool, error) {
	if err := e.journal(entry.RecordCancel, entry.EncodeCancel(entry.Cancel{ID: id})); err != nil {
		return false, err
	}
	return e.market.OrderCancel(id), nil
}

// Snapshot exposes the aggregated book for a symbol.
func (e *Engine) Snapshot(symbol book.Symbol) (market.BookData, error) {
	return e.market.Snapshot(symbol)
}

func (e *Engine) journal(t entry.RecordType, payload []byte) error {
	if e.wal == nil {
		return nil
	}
	rec := entry.NewRecord(t, e.seq.Next(), payload)
	if err := e.wal.Append(rec); err != nil {
		return fmt.Errorf("service: journal append: %w", err)
	}
	return nil
}

func orderFromSubmit(s entry.Submit) *market.Order {
	if s.Limit {
		return market.NewLimitOrder(s.ID, s.BuySide, s.Symbol, s.Quantity, s.Price)
	}
	return market.NewMarketOrder(s.ID, s.BuySide, s.Symbol, s.Quantity)
}
