package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/citizendesk/grievance-server/internal/common"
	"github.com/citizendesk/grievance-server/internal/dbx"
	"github.com/citizendesk/grievance-server/internal/logging"
	"github.com/citizendesk/grievance-server/internal/server/objstore"
	"github.com/citizendesk/grievance-server/internal/server/repositories/repomanager"
)

// GrievanceService covers the slice of case management the attachment
// subsystem owns: deleting cases together with their attachment rows and
// stored objects.
type GrievanceService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	store  objstore.Gateway
	logger logging.Logger
}

func NewGrievanceService(db *sql.DB, repos repomanager.RepositoryManager, store objstore.Gateway, logger logging.Logger) *GrievanceService {
	return &GrievanceService{
		db:     db,
		repos:  repos,
		store:  store,
		logger: logger.With("service", "grievances"),
	}
}

// DeleteGrievances removes the given cases, their attachment rows, and —
// best-effort — their objects in the store. Object deletes and the ledger
// delete are not atomic: a failed object delete is queued for the cleanup
// sweeper instead of blocking the batch.
func (s *GrievanceService) DeleteGrievances(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("empty grievance id list: %w", common.ErrNotFound)
	}

	found, err := s.repos.Grievances(s.db).GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return fmt.Errorf("one or more grievances: %w", common.ErrNotFound)
	}

	keys, err := s.repos.Attachments(s.db).ListKeysByGrievances(ctx, ids)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn(ctx, "object delete failed, queueing for cleanup", "key", key, "error", err.Error())
			if rerr := s.repos.Orphans(s.db).Record(ctx, key, err.Error()); rerr != nil {
				s.logger.Error(ctx, "failed to queue orphaned key", "key", key, "error", rerr.Error())
			}
		}
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Attachments(tx).DeleteByGrievances(ctx, ids); err != nil {
			return err
		}
		return s.repos.Grievances(tx).DeleteByIDs(ctx, ids)
	})
}
