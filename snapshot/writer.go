package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"freyr/domain/book"
	"freyr/domain/market"
)

const fileName = "snapshot.bin"

type Writer struct {
	Dir string
}

// Write captures the market as of journal sequence seq. The file is
// written to a temp name and renamed so a crash mid-write never leaves
// a half snapshot behind.
func (w *Writer) Write(seq uint64, m *market.Market) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
	}

	for _, symbol := range m.Symbols() {
		b, ok := m.FindBook(symbol)
		if !ok {
			continue
		}
		entry := BookEntry{Symbol: uint64(symbol)}
		if px, has := b.MarketPrice(); has {
			entry.HasMarketPrice = true
			entry.MarketPrice = int64(px)
		}
		s.Books = append(s.Books, entry)

		collect := func(key book.ComparablePrice, trk *book.Tracker) bool {
			o := trk.Order()
			s.Orders = append(s.Orders, OrderEntry{
				ID:      uint64(o.ID()),
				BuySide: o.IsBuy(),
				Limit:   o.IsLimit(),
				Symbol:  uint64(symbol),
				Price:   int64(o.GetPrice()),
				OpenQty: int64(trk.OpenQty()),
			})
			return true
		}
		b.BidsEach(collect)
		b.AsksEach(collect)
	}

	tmp := filepath.Join(w.Dir, fileName+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(&s); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(w.Dir, fileName))
}

// Path returns where the active snapshot lives under dir.
func Path(dir string) string {
	return filepath.Join(dir, fileName)
}
