package attachments

import (
	"context"

	"github.com/citizendesk/grievance-server/internal/server/models"
)

// Repository is the attachment ledger: the authoritative record of every
// upload, keyed by (grievance_id, upload_id).
type Repository interface {
	// FindOrCreate inserts the row if no attachment exists for the
	// (GrievanceID, UploadID) pair, otherwise returns the existing row
	// untouched. The storage key of a pre-existing row is never regenerated.
	// Safe under concurrent identical requests: the unique constraint on
	// the pair guarantees a single row.
	FindOrCreate(ctx context.Context, a *models.Attachment) (*models.Attachment, error)

	// GetByUploadID looks an attachment up by its upload token alone.
	GetByUploadID(ctx context.Context, uploadID string) (*models.Attachment, error)

	// MarkUploaded transitions the row to UPLOADED with the probed size and
	// recomputed public URL. Keyed by primary key so rows in other grievances
	// that happen to share an upload id stay untouched. Idempotent: re-marking
	// an UPLOADED row rewrites the same state and keeps the first
	// confirmation time.
	MarkUploaded(ctx context.Context, attachmentID int64, fileSize int64, publicURL string) error

	// Create inserts a fully-populated row (the synchronous fallback path,
	// which starts directly in UPLOADED).
	Create(ctx context.Context, a *models.Attachment) error

	// ListByGrievance returns all attachments of one case.
	ListByGrievance(ctx context.Context, grievanceID int64) ([]*models.Attachment, error)

	// ListKeysByGrievances collects the storage keys of every attachment
	// belonging to the given cases, for object cleanup before deletion.
	ListKeysByGrievances(ctx context.Context, grievanceIDs []int64) ([]string, error)

	// DeleteByGrievances removes all attachment rows of the given cases.
	DeleteByGrievances(ctx context.Context, grievanceIDs []int64) error
}
