package orphans

import (
	"context"

	"github.com/citizendesk/grievance-server/internal/server/models"
)

// Repository tracks storage keys whose object delete failed, so the cleanup
// sweeper can retry them later. Deletion across the ledger and the object
// store is not atomic; this queue is what makes it at-least-once.
type Repository interface {
	// Record upserts an orphaned key, bumping the attempt counter and
	// remembering the last error.
	Record(ctx context.Context, storageKey, lastError string) error

	// List returns up to limit orphans, oldest first.
	List(ctx context.Context, limit int) ([]*models.OrphanedObject, error)

	// Remove drops a key from the queue after a successful delete.
	Remove(ctx context.Context, storageKey string) error
}
