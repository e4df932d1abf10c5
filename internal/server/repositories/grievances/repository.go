package grievances

import (
	"context"

	"github.com/citizendesk/grievance-server/internal/server/models"
)

// Repository is the minimal view of the case-record store needed by the
// attachment subsystem: parent resolution and deletion. Full case CRUD lives
// in the case-management layer.
type Repository interface {
	// Exists reports whether the case record is present.
	Exists(ctx context.Context, grievanceID int64) (bool, error)

	// GetByIDs returns the cases found among ids; callers compare lengths to
	// detect missing ones.
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Grievance, error)

	// DeleteByIDs removes the case rows. Attachment rows go via ON DELETE
	// CASCADE, but the coordinator deletes them explicitly first so the
	// object cleanup sees their storage keys.
	DeleteByIDs(ctx context.Context, ids []int64) error

	// Create inserts a case record (used by intake, kept here for the
	// subsystem's integration tests).
	Create(ctx context.Context, g *models.Grievance) error
}
