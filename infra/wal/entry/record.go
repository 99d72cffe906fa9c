package entry

import "time"

type RecordType uint8

const (
	RecordSubmit RecordType = iota
	RecordCancel
	RecordAddBook
	RecordRemoveBook
)

// Record is one journaled command. Data holds the type-specific
// payload produced by the codecs in this package.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, data []byte) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}
