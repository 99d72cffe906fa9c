package grpcserver

import (
	"context"
	"time"
)

// SnapshotNow writes a snapshot, holding the command slot so the walk
// never observes a half-applied submit.
func (s *Server) SnapshotNow(ctx context.Context, dir string) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	return s.svc.SnapshotOnce(dir)
}

// StartSnapshotJob snapshots on an interval until ctx is cancelled.
// Ticks queue behind in-flight commands like any other request.
func (s *Server) StartSnapshotJob(ctx context.Context, dir string, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := s.SnapshotNow(ctx, dir); err != nil && ctx.Err() == nil {
					s.log.Warn().Err(err).Msg("snapshot failed")
				}
			}
		}
	}()
}
