package pb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecSubmitRoundTrip(t *testing.T) {
	c := codec{}
	in := &SubmitOrderRequest{
		OrderId: 42, Side: Side_SELL, Symbol: 7,
		Quantity: 100, Price: 5000, Limit: true,
	}

	raw, err := c.Marshal(in)
	require.NoError(t, err)

	out := new(SubmitOrderRequest)
	require.NoError(t, c.Unmarshal(raw, out))
	assert.Equal(t, in, out)
}

func TestCodecZeroValuesOmitted(t *testing.T) {
	c := codec{}
	raw, err := c.Marshal(&CancelOrderRequest{})
	require.NoError(t, err)
	assert.Empty(t, raw, "proto3 zero values take no bytes")

	out := new(CancelOrderRequest)
	require.NoError(t, c.Unmarshal(nil, out))
	assert.Zero(t, out.OrderId)
}

func TestCodecNestedBookResponse(t *testing.T) {
	c := codec{}
	in := &BookResponse{
		Symbol: 3,
		Bids:   []*PriceLevel{{Price: 101, Quantity: 5}, {Price: 100, Quantity: 9}},
		Asks:   []*PriceLevel{{Price: 102, Quantity: 4}},
	}

	raw, err := c.Marshal(in)
	require.NoError(t, err)

	out := new(BookResponse)
	require.NoError(t, c.Unmarshal(raw, out))
	assert.Equal(t, in, out)
}

func TestCodecRejectsForeignTypes(t *testing.T) {
	c := codec{}
	_, err := c.Marshal("not a message")
	assert.Error(t, err)
	assert.Error(t, c.Unmarshal([]byte{0x08, 0x01}, &struct{}{}))
}

func TestCodecSkipsUnknownFields(t *testing.T) {
	c := codec{}
	raw, err := c.Marshal(&SubmitOrderRequest{OrderId: 9, Quantity: 1})
	require.NoError(t, err)

	// A field number we never assigned.
	raw = appendUint(raw, 99, 12345)

	out := new(SubmitOrderRequest)
	require.NoError(t, c.Unmarshal(raw, out))
	assert.Equal(t, uint64(9), out.OrderId)
}
