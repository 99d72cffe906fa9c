package outbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestOutbox(t *testing.T) *Outbox {
	t.Helper()
	o, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Close() })
	return o
}

func TestPutAndGet(t *testing.T) {
	o := openTestOutbox(t)
	require.NoError(t, o.Put(1, 'T', []byte("payload")))

	rec, err := o.Get(1)
	require.NoError(t, err)
	assert.Equal(t, StateNew, rec.State)
	assert.Equal(t, byte('T'), rec.Kind)
	assert.Equal(t, []byte("payload"), rec.Payload)
	assert.Zero(t, rec.Retries)
}

func TestStateTransitions(t *testing.T) {
	o := openTestOutbox(t)
	require.NoError(t, o.Put(1, 'O', []byte("x")))

	require.NoError(t, o.MarkSent(1))
	rec, _ := o.Get(1)
	assert.Equal(t, StateSent, rec.State)
	assert.NotZero(t, rec.LastAttempt)

	require.NoError(t, o.MarkFailed(1, 2))
	rec, _ = o.Get(1)
	assert.Equal(t, StateFailed, rec.State)
	assert.Equal(t, uint32(2), rec.Retries)

	require.NoError(t, o.MarkAcked(1))
	rec, _ = o.Get(1)
	assert.Equal(t, StateAcked, rec.State)
}

func TestScanPendingOrderAndFilter(t *testing.T) {
	o := openTestOutbox(t)
	require.NoError(t, o.Put(3, 'T', []byte("c")))
	require.NoError(t, o.Put(1, 'T', []byte("a")))
	require.NoError(t, o.Put(2, 'T', []byte("b")))
	require.NoError(t, o.MarkAcked(2))
	require.NoError(t, o.MarkFailed(3, 1))

	var seqs []uint64
	require.NoError(t, o.ScanPending(func(rec Record) error {
		seqs = append(seqs, rec.Seq)
		return nil
	}))
	assert.Equal(t, []uint64{1, 3}, seqs, "new and failed, in sequence order")
}

func TestSweepAcked(t *testing.T) {
	o := openTestOutbox(t)
	require.NoError(t, o.Put(1, 'T', []byte("a")))
	require.NoError(t, o.Put(2, 'T', []byte("b")))
	require.NoError(t, o.MarkAcked(1))

	n, err := o.SweepAcked()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = o.Get(1)
	assert.Error(t, err, "swept record is gone")
	_, err = o.Get(2)
	assert.NoError(t, err)
}

func TestMaxSeq(t *testing.T) {
	o := openTestOutbox(t)

	seq, err := o.MaxSeq()
	require.NoError(t, err)
	assert.Zero(t, seq, "empty outbox has no high water mark")

	require.NoError(t, o.Put(3, 'O', []byte("a")))
	require.NoError(t, o.Put(12, 'T', []byte("b")))
	require.NoError(t, o.Put(7, 'B', []byte("c")))

	seq, err = o.MaxSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(12), seq)
}
