package service

import (
	"freyr/snapshot"
)

// SnapshotOnce writes a snapshot at the current sequence and truncates
// journal segments the snapshot covers. Call it from the same thread
// that drives the engine; the writer walks live book state.
func (e *Engine) SnapshotOnce(dir string) error {
	seq := e.seq.Current()
	w := &snapshot.Writer{Dir: dir}
	if err := w.Write(seq, e.market); err != nil {
		return err
	}
	if e.wal != nil {
		_ = e.wal.TruncateBefore(seq)
	}
	return nil
}
