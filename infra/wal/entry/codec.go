package entry

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"freyr/domain/book"
)

// Submit is the journaled form of an order submission.
type Submit struct {
	ID       book.OrderID
	BuySide  bool
	Symbol   book.Symbol
	Quantity book.Quantity
	Price    book.Price
	Limit    bool
}

// Cancel is the journaled form of a cancel request.
type Cancel struct {
	ID book.OrderID
}

// BookCmd is the journaled form of a book add or remove.
type BookCmd struct {
	Symbol book.Symbol
}

// Payload field numbers are part of the on-disk format and must not be
// renumbered.
const (
	fieldID      = 1
	fieldBuySide = 2
	fieldSymbol  = 3
	fieldQty     = 4
	fieldPrice   = 5
	fieldLimit   = 6
)

func appendBool(buf []byte, num protowire.Number, v bool) []byte {
	if !v {
		return buf
	}
	buf = protowire.AppendTag(buf, num, protowire.VarintType)
	return protowire.AppendVarint(buf, 1)
}

func appendUint(buf []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return buf
	}
	buf = protowire.AppendTag(buf, num, protowire.VarintType)
	return protowire.AppendVarint(buf, v)
}

func EncodeSubmit(s Submit) []byte {
	var buf []byte
	buf = appendUint(buf, fieldID, uint64(s.ID))
	buf = appendBool(buf, fieldBuySide, s.BuySide)
	buf = appendUint(buf, fieldSymbol, uint64(s.Symbol))
	buf = appendUint(buf, fieldQty, uint64(s.Quantity))
	buf = appendUint(buf, fieldPrice, uint64(s.Price))
	buf = appendBool(buf, fieldLimit, s.Limit)
	return buf
}

func EncodeCancel(c Cancel) []byte {
	return appendUint(nil, fieldID, uint64(c.ID))
}

func EncodeBookCmd(c BookCmd) []byte {
	return appendUint(nil, fieldSymbol, uint64(c.Symbol))
}

func decodeFields(b []byte, fn func(num protowire.Number, v uint64)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if typ != protowire.VarintType {
			return fmt.Errorf("entry: unexpected wire type %d for field %d", typ, num)
		}
		v, m := protowire.ConsumeVarint(b)
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
		fn(num, v)
	}
	return nil
}

func DecodeSubmit(b []byte) (Submit, error) {
	var s Submit
	err := decodeFields(b, func(num protowire.Number, v uint64) {
		switch num {
		case fieldID:
			s.ID = book.OrderID(v)
		case fieldBuySide:
			s.BuySide = v != 0
		case fieldSymbol:
			s.Symbol = book.Symbol(v)
		case fieldQty:
			s.Quantity = book.Quantity(v)
		case fieldPrice:
			s.Price = book.Price(v)
		case fieldLimit:
			s.Limit = v != 0
		}
	})
	return s, err
}

func DecodeCancel(b []byte) (Cancel, error) {
	var c Cancel
	err := decodeFields(b, func(num protowire.Number, v uint64) {
		if num == fieldID {
			c.ID = book.OrderID(v)
		}
	})
	return c, err
}

func DecodeBookCmd(b []byte) (BookCmd, error) {
	var c BookCmd
	err := decodeFields(b, func(num protowire.Number, v uint64) {
		if num == fieldSymbol {
			c.Symbol = book.Symbol(v)
		}
	})
	return c, err
}
