// Package pb holds the wire messages for the engine's gRPC surface.
// The messages are hand framed with protowire and served through a
// registered codec, so no generated code is checked in. Dial with
// grpc.CallContentSubtype(pb.CodecName) to select it.
package pb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Side mirrors the proto enum: BUY = 0, SELL = 1.
type Side int32

const (
	Side_BUY  Side = 0
	Side_SELL Side = 1
)

func (s Side) String() string {
	if s == Side_SELL {
		return "SELL"
	}
	return "BUY"
}

type SubmitOrderRequest struct {
	OrderId  uint64
	Side     Side
	Symbol   uint64
	Quantity int64
	Price    int64
	Limit    bool
}

type SubmitOrderResponse struct {
	Status string
	SeqNo  uint64
}

type CancelOrderRequest struct {
	OrderId uint64
}

type CancelOrderResponse struct {
	Status string
	Found  bool
}

type CreateBookRequest struct {
	Symbol uint64
}

type CreateBookResponse struct {
	Status  string
	Created bool
}

type BookRequest struct {
	Symbol uint64
}

type PriceLevel struct {
	Price    int64
	Quantity int64
}

type BookResponse struct {
	Symbol uint64
	Bids   []*PriceLevel
	Asks   []*PriceLevel
}

// Field numbers. Zero values are omitted on the wire, proto3 style.

func appendUint(b []byte, field protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, field, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, field protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, field, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendString(b []byte, field protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, field, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendMessage(b []byte, field protowire.Number, m []byte) []byte {
	b = protowire.AppendTag(b, field, protowire.BytesType)
	return protowire.AppendBytes(b, m)
}

// eachField walks the tag/value pairs of buf, handing every varint or
// bytes field to fn. Unknown fields are skipped.
func eachField(buf []byte, fn func(num protowire.Number, u uint64, s []byte) error) error {
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return protowire.ParseError(n)
		}
		buf = buf[n:]

		switch typ {
		case protowire.VarintType:
			u, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := fn(num, u, nil); err != nil {
				return err
			}
			buf = buf[n:]
		case protowire.BytesType:
			s, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := fn(num, 0, s); err != nil {
				return err
			}
			buf = buf[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return protowire.ParseError(n)
			}
			buf = buf[n:]
		}
	}
	return nil
}

func (m *SubmitOrderRequest) marshal() []byte {
	var b []byte
	b = appendUint(b, 1, m.OrderId)
	b = appendUint(b, 2, uint64(m.Side))
	b = appendUint(b, 3, m.Symbol)
	b = appendUint(b, 4, uint64(m.Quantity))
	b = appendUint(b, 5, uint64(m.Price))
	b = appendBool(b, 6, m.Limit)
	return b
}

func (m *SubmitOrderRequest) unmarshal(buf []byte) error {
	*m = SubmitOrderRequest{}
	return eachField(buf, func(num protowire.Number, u uint64, _ []byte) error {
		switch num {
		case 1:
			m.OrderId = u
		case 2:
			m.Side = Side(u)
		case 3:
			m.Symbol = u
		case 4:
			m.Quantity = int64(u)
		case 5:
			m.Price = int64(u)
		case 6:
			m.Limit = u != 0
		}
		return nil
	})
}

func (m *SubmitOrderResponse) marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Status)
	b = appendUint(b, 2, m.SeqNo)
	return b
}

func (m *SubmitOrderResponse) unmarshal(buf []byte) error {
	*m = SubmitOrderResponse{}
	return eachField(buf, func(num protowire.Number, u uint64, s []byte) error {
		switch num {
		case 1:
			m.Status = string(s)
		case 2:
			m.SeqNo = u
		}
		return nil
	})
}

func (m *CancelOrderRequest) marshal() []byte {
	return appendUint(nil, 1, m.OrderId)
}

func (m *CancelOrderRequest) unmarshal(buf []byte) error {
	*m = CancelOrderRequest{}
	return eachField(buf, func(num protowire.Number, u uint64, _ []byte) error {
		if num == 1 {
			m.OrderId = u
		}
		return nil
	})
}

func (m *CancelOrderResponse) marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Status)
	b = appendBool(b, 2, m.Found)
	return b
}

func (m *CancelOrderResponse) unmarshal(buf []byte) error {
	*m = CancelOrderResponse{}
	return eachField(buf, func(num protowire.Number, u uint64, s []byte) error {
		switch num {
		case 1:
			m.Status = string(s)
		case 2:
			m.Found = u != 0
		}
		return nil
	})
}

func (m *CreateBookRequest) marshal() []byte {
	return appendUint(nil, 1, m.Symbol)
}

func (m *CreateBookRequest) unmarshal(buf []byte) error {
	*m = CreateBookRequest{}
	return eachField(buf, func(num protowire.Number, u uint64, _ []byte) error {
		if num == 1 {
			m.Symbol = u
		}
		return nil
	})
}

func (m *CreateBookResponse) marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Status)
	b = appendBool(b, 2, m.Created)
	return b
}

func (m *CreateBookResponse) unmarshal(buf []byte) error {
	*m = CreateBookResponse{}
	return eachField(buf, func(num protowire.Number, u uint64, s []byte) error {
		switch num {
		case 1:
			m.Status = string(s)
		case 2:
			m.Created = u != 0
		}
		return nil
	})
}

func (m *BookRequest) marshal() []byte {
	return appendUint(nil, 1, m.Symbol)
}

func (m *BookRequest) unmarshal(buf []byte) error {
	*m = BookRequest{}
	return eachField(buf, func(num protowire.Number, u uint64, _ []byte) error {
		if num == 1 {
			m.Symbol = u
		}
		return nil
	})
}

func (m *PriceLevel) marshal() []byte {
	var b []byte
	b = appendUint(b, 1, uint64(m.Price))
	b = appendUint(b, 2, uint64(m.Quantity))
	return b
}

func (m *PriceLevel) unmarshal(buf []byte) error {
	*m = PriceLevel{}
	return eachField(buf, func(num protowire.Number, u uint64, _ []byte) error {
		switch num {
		case 1:
			m.Price = int64(u)
		case 2:
			m.Quantity = int64(u)
		}
		return nil
	})
}

func (m *BookResponse) marshal() []byte {
	var b []byte
	b = appendUint(b, 1, m.Symbol)
	for _, l := range m.Bids {
		b = appendMessage(b, 2, l.marshal())
	}
	for _, l := range m.Asks {
		b = appendMessage(b, 3, l.marshal())
	}
	return b
}

func (m *BookResponse) unmarshal(buf []byte) error {
	*m = BookResponse{}
	return eachField(buf, func(num protowire.Number, u uint64, s []byte) error {
		switch num {
		case 1:
			m.Symbol = u
		case 2, 3:
			l := new(PriceLevel)
			if err := l.unmarshal(s); err != nil {
				return err
			}
			if num == 2 {
				m.Bids = append(m.Bids, l)
			} else {
				m.Asks = append(m.Asks, l)
			}
		}
		return nil
	})
}

type message interface {
	marshal() []byte
	unmarshal([]byte) error
}

var _ = []message{
	(*SubmitOrderRequest)(nil), (*SubmitOrderResponse)(nil),
	(*CancelOrderRequest)(nil), (*CancelOrderResponse)(nil),
	(*CreateBookRequest)(nil), (*CreateBookResponse)(nil),
	(*BookRequest)(nil), (*BookResponse)(nil),
	(*PriceLevel)(nil),
}

func marshalAny(v any) ([]byte, error) {
	m, ok := v.(message)
	if !ok {
		return nil, fmt.Errorf("pb: cannot marshal %T", v)
	}
	return m.marshal(), nil
}

func unmarshalAny(data []byte, v any) error {
	m, ok := v.(message)
	if !ok {
		return fmt.Errorf("pb: cannot unmarshal into %T", v)
	}
	return m.unmarshal(data)
}
