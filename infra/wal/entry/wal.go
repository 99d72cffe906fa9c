package entry

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type Config struct {
	Dir         string
	SegmentSize int64
	// SyncEvery forces an fsync after every append when true. Replay
	// correctness does not depend on it; durability of the tail does.
	SyncEvery bool
}

const defaultSegmentSize = 64 << 20

// WAL is a segmented append-only journal. Frames are
// [type:1][seq:8][time:8][len:4][payload][crc:4], big-endian, with the
// checksum covering header and payload.
type WAL struct {
	dir        string
	segSize    int64
	syncEvery  bool
	current    *segment
	segIndex   int
	lastRotate time.Time
}

func Open(cfg Config) (*WAL, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = defaultSegmentSize
	}

	// Resume on the newest existing segment so appended sequences stay
	// ordered across the segment files.
	index, err := newestSegmentIndex(cfg.Dir)
	if err != nil {
		return nil, err
	}
	seg, err := openSegment(cfg.Dir, index)
	if err != nil {
		return nil, err
	}

	return &WAL{
		dir:        cfg.Dir,
		segSize:    cfg.SegmentSize,
		syncEvery:  cfg.SyncEvery,
		current:    seg,
		segIndex:   index,
		lastRotate: time.Now(),
	}, nil
}

func (w *WAL) Append(r *Record) error {
	payloadLen := uint32(len(r.Data))

	buf := make([]byte, frameHeaderLen+int(payloadLen)+4)
	buf[0] = byte(r.Type)
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[frameHeaderLen:], r.Data)

	crc := crcSum(buf[:frameHeaderLen+int(payloadLen)])
	binary.BigEndian.PutUint32(buf[frameHeaderLen+int(payloadLen):], crc)

	if err := w.current.append(buf); err != nil {
		return err
	}
	if w.syncEvery {
		if err := w.current.sync(); err != nil {
			return err
		}
	}

	if w.current.offset >= w.segSize {
		return w.rotate()
	}
	return nil
}

func (w *WAL) Sync() error {
	return w.current.sync()
}

func (w *WAL) Close() error {
	return w.current.close()
}

func (w *WAL) rotate() error {
	_ = w.current.close()
	w.segIndex++

	seg, err := openSegment(w.dir, w.segIndex)
	if err != nil {
		return err
	}
	w.current = seg
	w.lastRotate = time.Now()
	return nil
}

// TruncateBefore drops whole segments whose records are all covered by
// a snapshot at seq. The active segment is never removed.
func (w *WAL) TruncateBefore(seq uint64) error {
	files, err := segmentFiles(w.dir)
	if err != nil {
		return err
	}

	current := w.current.file.Name()
	for _, path := range files {
		if path == current {
			continue
		}
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			_ = os.Remove(path)
		}
	}
	return nil
}

func segmentFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "segment-*.wal"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func newestSegmentIndex(dir string) (int, error) {
	files, err := segmentFiles(dir)
	if err != nil || len(files) == 0 {
		return 0, err
	}
	var index int
	if _, err := fmt.Sscanf(filepath.Base(files[len(files)-1]), "segment-%06d.wal", &index); err != nil {
		return 0, fmt.Errorf("entry: bad segment name %q: %w", files[len(files)-1], err)
	}
	return index, nil
}
