package broadcaster

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"freyr/infra/outbox"
)

const (
	drainInterval = 250 * time.Millisecond
	sweepEvery    = 40 // drain passes between acked-record sweeps
)

// Broadcaster drains the outbox into the event stream topic. Records
// are marked SENT before the publish and ACKED after the broker
// confirms, so a crash between the two re-sends rather than drops:
// delivery is at-least-once.
type Broadcaster struct {
	box      *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	log      zerolog.Logger
}

func New(box *outbox.Outbox, brokers []string, topic string, log zerolog.Logger) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		box:      box,
		producer: producer,
		topic:    topic,
		log:      log,
	}, nil
}

// Start runs the drain loop until ctx is cancelled.
func (b *Broadcaster) Start(ctx context.Context) {
	b.log.Info().Str("topic", b.topic).Msg("broadcaster started")

	go func() {
		ticker := time.NewTicker(drainInterval)
		defer ticker.Stop()

		passes := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.drainOnce()
				passes++
				if passes%sweepEvery == 0 {
					if n, err := b.box.SweepAcked(); err == nil && n > 0 {
						b.log.Debug().Int("swept", n).Msg("outbox sweep")
					}
				}
			}
		}
	}()
}

func (b *Broadcaster) drainOnce() {
	err := b.box.ScanPending(func(rec outbox.Record) error {
		if err := b.box.MarkSent(rec.Seq); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.ByteEncoder{rec.Kind},
			Value: sarama.ByteEncoder(rec.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			b.log.Warn().Err(err).Uint64("seq", rec.Seq).Msg("publish failed, will retry")
			_ = b.box.MarkFailed(rec.Seq, rec.Retries+1)
			return nil
		}

		return b.box.MarkAcked(rec.Seq)
	})
	if err != nil {
		b.log.Error().Err(err).Msg("outbox drain failed")
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
