package grpcserver

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freyr/api/pb"
	"freyr/domain/book"
	"freyr/domain/market"
	"freyr/infra/sequence"
	"freyr/service"
	"freyr/snapshot"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m := market.NewMarket(zerolog.Nop(), book.DefaultDepth)
	e := service.NewEngine(zerolog.Nop(), m, nil, sequence.New(0), nil, nil)
	return NewServer(zerolog.Nop(), e)
}

func TestCreateBook(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.CreateBook(ctx, &pb.CreateBookRequest{Symbol: 1})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Created)

	resp, err = s.CreateBook(ctx, &pb.CreateBookRequest{Symbol: 1})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Created, "second create leaves the existing book")
}

func TestSubmitAndGetBook(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.CreateBook(ctx, &pb.CreateBookRequest{Symbol: 1})
	require.NoError(t, err)

	resp, err := s.SubmitOrder(ctx, &pb.SubmitOrderRequest{
		OrderId: 1, Side: pb.Side_BUY, Symbol: 1, Quantity: 10, Price: 1000, Limit: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)

	_, err = s.SubmitOrder(ctx, &pb.SubmitOrderRequest{
		OrderId: 2, Side: pb.Side_SELL, Symbol: 1, Quantity: 4, Price: 1000, Limit: true,
	})
	require.NoError(t, err)

	bk, err := s.GetBook(ctx, &pb.BookRequest{Symbol: 1})
	require.NoError(t, err)
	require.Len(t, bk.Bids, 1)
	assert.Equal(t, int64(1000), bk.Bids[0].Price)
	assert.Equal(t, int64(6), bk.Bids[0].Quantity)
	assert.Empty(t, bk.Asks)
}

func TestSubmitRejectedWithoutBook(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.SubmitOrder(context.Background(), &pb.SubmitOrderRequest{
		OrderId: 1, Side: pb.Side_BUY, Symbol: 9, Quantity: 10, Price: 1000, Limit: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.Status)
}

func TestCancelOrder(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.CreateBook(ctx, &pb.CreateBookRequest{Symbol: 1})
	require.NoError(t, err)
	_, err = s.SubmitOrder(ctx, &pb.SubmitOrderRequest{
		OrderId: 1, Side: pb.Side_BUY, Symbol: 1, Quantity: 10, Price: 1000, Limit: true,
	})
	require.NoError(t, err)

	resp, err := s.CancelOrder(ctx, &pb.CancelOrderRequest{OrderId: 1})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Found)

	resp, err = s.CancelOrder(ctx, &pb.CancelOrderRequest{OrderId: 77})
	require.NoError(t, err)
	assert.False(t, resp.Found)
}

func TestSnapshotNowHoldsCommandSlot(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()

	// While a command holds the slot, a snapshot must wait, not walk
	// the books concurrently.
	require.NoError(t, s.acquire(context.Background()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.SnapshotNow(ctx, dir), context.Canceled)
	s.release()

	require.NoError(t, s.SnapshotNow(context.Background(), dir))
	_, err := os.Stat(snapshot.Path(dir))
	require.NoError(t, err)
}

func TestAcquireHonorsContext(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.acquire(context.Background()))
	defer s.release()

	_, err := s.GetBook(ctx, &pb.BookRequest{Symbol: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
