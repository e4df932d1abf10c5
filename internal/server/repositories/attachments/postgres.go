package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/citizendesk/grievance-server/internal/common"
	"github.com/citizendesk/grievance-server/internal/dbx"
	"github.com/citizendesk/grievance-server/internal/server/models"
)

const attachmentColumns = `attachment_id, grievance_id, upload_id, storage_key, public_url, file_name, file_type, file_size, status, uploaded_at, confirmed_at`

// PostgresRepository implements the ledger over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanAttachment(row interface{ Scan(dest ...any) error }) (*models.Attachment, error) {
	a := &models.Attachment{}
	var confirmedAt sql.NullTime
	err := row.Scan(&a.AttachmentID, &a.GrievanceID, &a.UploadID, &a.StorageKey, &a.PublicURL,
		&a.FileName, &a.FileType, &a.FileSize, &a.Status, &a.UploadedAt, &confirmedAt)
	if err != nil {
		return nil, err
	}
	if confirmedAt.Valid {
		a.ConfirmedAt = &confirmedAt.Time
	}
	return a, nil
}

// FindOrCreate relies on the UNIQUE (grievance_id, upload_id) constraint.
// The insert is attempted first with ON CONFLICT DO NOTHING; when another
// request already owns the pair, the existing row is read back instead. Two
// concurrent identical requests therefore converge on a single row.
func (r *PostgresRepository) FindOrCreate(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	insert := `
		INSERT INTO grievance_attachments (grievance_id, upload_id, storage_key, public_url, file_name, file_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (grievance_id, upload_id) DO NOTHING
		RETURNING ` + attachmentColumns

	created, err := scanAttachment(r.db.QueryRowContext(ctx, insert,
		a.GrievanceID, a.UploadID, a.StorageKey, a.PublicURL, a.FileName, a.FileType, a.Status))
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("insert attachment: %w", err)
	}

	// Conflict: the pair already exists, fetch the original row.
	query := `SELECT ` + attachmentColumns + ` FROM grievance_attachments WHERE grievance_id=$1 AND upload_id=$2`
	existing, err := scanAttachment(r.db.QueryRowContext(ctx, query, a.GrievanceID, a.UploadID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The competing insert has not committed yet; let the caller retry.
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("select attachment: %w", err)
	}
	return existing, nil
}

func (r *PostgresRepository) GetByUploadID(ctx context.Context, uploadID string) (*models.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM grievance_attachments WHERE upload_id=$1`

	a, err := scanAttachment(r.db.QueryRowContext(ctx, query, uploadID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("select attachment: %w", err)
	}
	return a, nil
}

// MarkUploaded is keyed by primary key, not upload_id: upload ids are unique
// only per grievance, so an upload_id predicate could rewrite a sibling
// grievance's row. COALESCE keeps the first confirmation time on re-confirms.
func (r *PostgresRepository) MarkUploaded(ctx context.Context, attachmentID int64, fileSize int64, publicURL string) error {
	query := `
		UPDATE grievance_attachments
		SET status=$2, file_size=$3, public_url=$4, confirmed_at=COALESCE(confirmed_at, now())
		WHERE attachment_id=$1`

	result, err := r.db.ExecContext(ctx, query, attachmentID, models.AttachmentUploaded, fileSize, publicURL)
	if err != nil {
		return fmt.Errorf("mark uploaded: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Attachment) error {
	query := `
		INSERT INTO grievance_attachments (grievance_id, upload_id, storage_key, public_url, file_name, file_type, file_size, status, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		RETURNING attachment_id, uploaded_at`

	err := r.db.QueryRowContext(ctx, query,
		a.GrievanceID, a.UploadID, a.StorageKey, a.PublicURL, a.FileName, a.FileType, a.FileSize, a.Status).
		Scan(&a.AttachmentID, &a.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByGrievance(ctx context.Context, grievanceID int64) ([]*models.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM grievance_attachments WHERE grievance_id=$1 ORDER BY attachment_id`

	rows, err := r.db.QueryContext(ctx, query, grievanceID)
	if err != nil {
		return nil, fmt.Errorf("select attachments: %w", err)
	}
	defer rows.Close()

	var result []*models.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ListKeysByGrievances(ctx context.Context, grievanceIDs []int64) ([]string, error) {
	if len(grievanceIDs) == 0 {
		return nil, nil
	}
	query := `SELECT storage_key FROM grievance_attachments WHERE grievance_id IN (` + placeholders(len(grievanceIDs)) + `)`

	rows, err := r.db.QueryContext(ctx, query, int64Args(grievanceIDs)...)
	if err != nil {
		return nil, fmt.Errorf("select storage keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *PostgresRepository) DeleteByGrievances(ctx context.Context, grievanceIDs []int64) error {
	if len(grievanceIDs) == 0 {
		return nil
	}
	query := `DELETE FROM grievance_attachments WHERE grievance_id IN (` + placeholders(len(grievanceIDs)) + `)`

	if _, err := r.db.ExecContext(ctx, query, int64Args(grievanceIDs)...); err != nil {
		return fmt.Errorf("delete attachments: %w", err)
	}
	return nil
}

// placeholders renders "$1, $2, ..., $n" for dynamic IN lists.
func placeholders(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", i)
	}
	return b.String()
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
