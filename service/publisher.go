package service

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/rs/zerolog"

	"freyr/domain/market"
	"freyr/infra/outbox"
	"freyr/infra/sequence"
)

// TradeSink is the direct low-latency trade feed, satisfied by the
// kafka producer. It runs alongside the outbox path: the outbox copy
// is the durable one.
type TradeSink interface {
	Send(ctx context.Context, key, value []byte) error
}

// streamPublisher stamps stream headers and stages every record in the
// outbox. Encoding failures and sink errors are logged and dropped;
// the market must never stall on the outbound path.
type streamPublisher struct {
	log    zerolog.Logger
	seq    *sequence.Sequencer
	box    *outbox.Outbox
	trades TradeSink
	muted  bool
}

func newStreamPublisher(log zerolog.Logger, seq *sequence.Sequencer,
	box *outbox.Outbox, trades TradeSink) *streamPublisher {
	return &streamPublisher{log: log, seq: seq, box: box, trades: trades}
}

// mute suppresses publication during journal replay: the outbox
// already holds everything staged before the crash.
func (p *streamPublisher) mute(on bool) { p.muted = on }

func (p *streamPublisher) PublishOrder(d market.OrderData) {
	if p.muted {
		return
	}
	d.Header = market.StreamHeader{SeqNo: p.seq.Next(), Type: market.TickOrder}
	p.stage(d.Header, d)
}

func (p *streamPublisher) PublishTrade(d market.TradeData) {
	if p.muted {
		return
	}
	d.Header = market.StreamHeader{SeqNo: p.seq.Next(), Type: market.TickTrade}
	payload := p.stage(d.Header, d)

	if p.trades != nil && payload != nil {
		key := []byte(strconv.FormatUint(uint64(d.Symbol), 10))
		if err := p.trades.Send(context.Background(), key, payload); err != nil {
			p.log.Warn().Err(err).Uint64("seq", d.Header.SeqNo).Msg("trade feed send failed")
		}
	}
}

func (p *streamPublisher) PublishBook(d market.BookData) {
	if p.muted {
		return
	}
	d.Header = market.StreamHeader{SeqNo: p.seq.Next(), Type: market.TickBook}
	p.stage(d.Header, d)
}

func (p *streamPublisher) PublishBookChange(d market.BookChange) {
	if p.muted {
		return
	}
	d.Header = market.StreamHeader{SeqNo: p.seq.Next(), Type: market.TickBookChange}
	p.stage(d.Header, d)
}

func (p *streamPublisher) stage(h market.StreamHeader, v any) []byte {
	payload, err := json.Marshal(v)
	if err != nil {
		p.log.Error().Err(err).Uint64("seq", h.SeqNo).Msg("stream encode failed")
		return nil
	}
	if p.box != nil {
		if err := p.box.Put(h.SeqNo, byte(h.Type), payload); err != nil {
			p.log.Error().Err(err).Uint64("seq", h.SeqNo).Msg("outbox stage failed")
		}
	}
	return payload
}
