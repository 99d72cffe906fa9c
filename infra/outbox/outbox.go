package outbox

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// State tracks an outbound record through the publish pipeline.
type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Record is one durably staged outbound event. Kind is the stream tick
// tag; Payload is the encoded event body.
type Record struct {
	Seq         uint64
	State       State
	Kind        byte
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

// value encoding: [state:1][kind:1][retries:4][lastAttempt:8][payload]
const valueHeaderLen = 14

func encodeValue(r Record) []byte {
	buf := make([]byte, valueHeaderLen+len(r.Payload))
	buf[0] = byte(r.State)
	buf[1] = r.Kind
	binary.BigEndian.PutUint32(buf[2:6], r.Retries)
	binary.BigEndian.PutUint64(buf[6:14], uint64(r.LastAttempt))
	copy(buf[valueHeaderLen:], r.Payload)
	return buf
}

func decodeValue(seq uint64, b []byte) (Record, error) {
	if len(b) < valueHeaderLen {
		return Record{}, errors.New("outbox: short record")
	}
	payload := make([]byte, len(b)-valueHeaderLen)
	copy(payload, b[valueHeaderLen:])
	return Record{
		Seq:         seq,
		State:       State(b[0]),
		Kind:        b[1],
		Retries:     binary.BigEndian.Uint32(b[2:6]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[6:14])),
		Payload:     payload,
	}, nil
}

// Outbox durably stages outbound stream records until the broadcaster
// has delivered them. Records move NEW -> SENT -> ACKED and are swept
// once acknowledged; failed sends fall back to FAILED and are retried.
type Outbox struct {
	db *pebble.DB
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false,
	})
	if err != nil {
		return nil, err
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// Put stages a new record under its stream sequence.
func (o *Outbox) Put(seq uint64, kind byte, payload []byte) error {
	rec := Record{Seq: seq, State: StateNew, Kind: kind, Payload: payload}
	return o.db.Set(keyFor(seq), encodeValue(rec), pebble.Sync)
}

// MarkSent flags a record as handed to the broker, before the ack.
func (o *Outbox) MarkSent(seq uint64) error {
	return o.transition(seq, StateSent, 0)
}

// MarkAcked flags a record as delivered.
func (o *Outbox) MarkAcked(seq uint64) error {
	return o.transition(seq, StateAcked, 0)
}

// MarkFailed flags a failed delivery attempt with its retry count.
func (o *Outbox) MarkFailed(seq uint64, retries uint32) error {
	return o.transition(seq, StateFailed, retries)
}

func (o *Outbox) transition(seq uint64, state State, retries uint32) error {
	rec, err := o.Get(seq)
	if err != nil {
		return err
	}
	rec.State = state
	if retries != 0 {
		rec.Retries = retries
	}
	rec.LastAttempt = time.Now().UnixNano()
	return o.db.Set(keyFor(seq), encodeValue(rec), pebble.Sync)
}

// Delete removes a record, normally after it was acked and swept.
func (o *Outbox) Delete(seq uint64) error {
	return o.db.Delete(keyFor(seq), pebble.Sync)
}

func (o *Outbox) Get(seq uint64) (Record, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if err != nil {
		return Record{}, err
	}
	defer closer.Close()
	return decodeValue(seq, val)
}

// ScanPending visits NEW and FAILED records in sequence order.
func (o *Outbox) ScanPending(fn func(rec Record) error) error {
	return o.scan(func(rec Record) error {
		if rec.State != StateNew && rec.State != StateFailed {
			return nil
		}
		return fn(rec)
	})
}

// MaxSeq returns the highest staged sequence, or zero if the outbox is
// empty. Recovery resumes the sequencer past it so fresh records never
// reuse a staged record's number.
func (o *Outbox) MaxSeq() (uint64, error) {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	return parseKey(iter.Key())
}

// SweepAcked deletes every acked record and returns how many it
// removed.
func (o *Outbox) SweepAcked() (int, error) {
	var acked []uint64
	err := o.scan(func(rec Record) error {
		if rec.State == StateAcked {
			acked = append(acked, rec.Seq)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, seq := range acked {
		if err := o.Delete(seq); err != nil {
			return 0, err
		}
	}
	return len(acked), nil
}

func (o *Outbox) scan(fn func(rec Record) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeValue(seq, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

const keyPrefix = "rec/"

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	if _, err := fmt.Sscanf(string(b), keyPrefix+"%d", &seq); err != nil {
		return 0, fmt.Errorf("outbox: bad key %q: %w", b, err)
	}
	return seq, nil
}
