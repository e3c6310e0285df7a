package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/QRKeeper/internal/models"
)

// Prune removes entries created before cutoff and reports how many were
// removed.
func (s *HistoryService) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	kept := make([]models.SavedEntry, 0, len(entries))
	for _, e := range entries {
		if !e.CreatedAt.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	removed := len(entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.store.SaveAll(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// StartPruner drops entries older than retention every interval until ctx is
// cancelled. The returned channel is closed once the pruner has stopped.
func StartPruner(
	ctx context.Context,
	h *HistoryService,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := h.Prune(ctx, h.now().Add(-retention))
				if err != nil {
					log.Error("failed to prune history", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("pruned history", zap.Int("removed", removed))
				}
			}
		}
	}()
	return done
}
