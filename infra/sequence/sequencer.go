package sequence

import "sync/atomic"

// Sequencer issues the strictly monotonic sequence ids that order the
// command journal and the outbound stream. Ids are never reused;
// a recovered process resumes from the last journaled id.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer that issues start+1 first. A fresh system
// starts from zero, a recovered one from the last replayed sequence.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next sequence id.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence id.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}

// Reset repositions the sequencer. Only used after journal replay.
func (s *Sequencer) Reset(v uint64) {
	s.next.Store(v)
}
