package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/citizendesk/grievance-server/internal/logging"
	"github.com/citizendesk/grievance-server/internal/server/objstore"
	"github.com/citizendesk/grievance-server/internal/server/repositories/repomanager"
)

const (
	sweepBatchSize   = 100
	sweepParallelism = 4
)

// Seam so tests can run the sweep without real backoff delays.
var sweepBackoff = func() retry.Backoff {
	return retry.WithMaxRetries(2, retry.NewExponential(time.Second))
}

// CleanupService retries deletion of objects whose delete failed during case
// removal. The queue makes the paired deletion at-least-once: the ledger row
// is gone, the object follows eventually.
type CleanupService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	store    objstore.Gateway
	interval time.Duration
	logger   logging.Logger
}

func NewCleanupService(db *sql.DB, repos repomanager.RepositoryManager, store objstore.Gateway, interval time.Duration, logger logging.Logger) *CleanupService {
	return &CleanupService{
		db:       db,
		repos:    repos,
		store:    store,
		interval: interval,
		logger:   logger.With("service", "cleanup"),
	}
}

// Run sweeps the orphan queue on a fixed interval until ctx is cancelled.
func (s *CleanupService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error(ctx, "sweep failed", "error", err.Error())
			}
		}
	}
}

// Sweep processes one batch of orphaned keys with bounded parallelism.
// Each delete is retried with backoff; keys that still fail stay queued
// with a bumped attempt counter.
func (s *CleanupService) Sweep(ctx context.Context) error {
	orphanRepo := s.repos.Orphans(s.db)

	batch, err := orphanRepo.List(ctx, sweepBatchSize)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepParallelism)

	for _, orphan := range batch {
		key := orphan.StorageKey
		g.Go(func() error {
			err := retry.Do(ctx, sweepBackoff(), func(ctx context.Context) error {
				if derr := s.store.Delete(ctx, key); derr != nil {
					return retry.RetryableError(derr)
				}
				return nil
			})
			if err != nil {
				s.logger.Warn(ctx, "orphan delete still failing", "key", key, "error", err.Error())
				if rerr := orphanRepo.Record(ctx, key, err.Error()); rerr != nil {
					s.logger.Error(ctx, "failed to bump orphan attempt", "key", key, "error", rerr.Error())
				}
				return nil // keep sweeping other keys
			}

			if rerr := orphanRepo.Remove(ctx, key); rerr != nil {
				s.logger.Error(ctx, "failed to dequeue deleted orphan", "key", key, "error", rerr.Error())
				return nil
			}
			s.logger.Info(ctx, "orphaned object deleted", "key", key)
			return nil
		})
	}

	return g.Wait()
}
