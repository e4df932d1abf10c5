// Package services contains the business logic of the grievance server.
// Services own transaction boundaries and orchestrate repositories and the
// object store; they hold no HTTP concerns.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/citizendesk/grievance-server/internal/common"
	"github.com/citizendesk/grievance-server/internal/filex"
	"github.com/citizendesk/grievance-server/internal/logging"
	sc "github.com/citizendesk/grievance-server/internal/server/config"
	"github.com/citizendesk/grievance-server/internal/server/models"
	"github.com/citizendesk/grievance-server/internal/server/objstore"
	"github.com/citizendesk/grievance-server/internal/server/repositories/repomanager"
)

// UploadRequest describes one file a client wants to upload.
type UploadRequest struct {
	GrievanceID int64
	// UploadID is the optional client-supplied idempotency token. When
	// empty, the server generates one.
	UploadID    string
	FileName    string
	FileType    string // logical category: PHOTO / DOCUMENT / OTHER
	ContentType string
}

// UploadGrant is what the client needs to upload one file: a presigned PUT
// URL plus the ledger row's identity. The key and row are idempotent across
// retries; the signed URL is freshly minted every time.
type UploadGrant struct {
	UploadID  string
	Key       string
	SignedURL string
	FileName  string
	FileType  string
}

// BulkUploadItem is the per-file outcome of a bulk presign. Exactly one of
// Grant and Err is set. Bulk presign is not transactional: earlier files
// keep their grants even when a later file fails.
type BulkUploadItem struct {
	FileName string
	Grant    *UploadGrant
	Err      error
}

// ConfirmResult reports whether the object was found in the store.
// Uploaded=false is a normal, retryable outcome, not an error.
type ConfirmResult struct {
	UploadID string
	Uploaded bool
}

// RawFile is a file carried in a synchronous (fallback) upload request.
type RawFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ServerUploadItem describes one attachment stored via the fallback path.
type ServerUploadItem struct {
	AttachmentID int64
	UploadID     string
	FileName     string
	FileType     string
	FileSize     int64
	PublicURL    string
	Status       models.AttachmentStatus
}

// AttachmentService coordinates the presign, confirm, and fallback upload
// flows between the ledger and the object store.
type AttachmentService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	store  objstore.Gateway
	config *sc.Config
	logger logging.Logger
}

func NewAttachmentService(db *sql.DB, repos repomanager.RepositoryManager, store objstore.Gateway, config *sc.Config, logger logging.Logger) *AttachmentService {
	return &AttachmentService{
		db:     db,
		repos:  repos,
		store:  store,
		config: config,
		logger: logger.With("service", "attachments"),
	}
}

// RequestUpload validates the file, resolves the parent grievance, finds or
// creates the ledger row for (grievance, uploadId), and mints a presigned
// PUT URL for the row's storage key.
//
// Calling it again with the same uploadId returns the same key and row but a
// new signed URL.
func (s *AttachmentService) RequestUpload(ctx context.Context, req UploadRequest) (*UploadGrant, error) {
	if err := filex.ValidateContentType(req.FileName, req.ContentType); err != nil {
		return nil, err
	}

	exists, err := s.repos.Grievances(s.db).Exists(ctx, req.GrievanceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("grievance %d: %w", req.GrievanceID, common.ErrNotFound)
	}

	return s.requestUploadResolved(ctx, req)
}

// requestUploadResolved is RequestUpload after the parent check; the bulk
// flow calls it directly so the parent is resolved only once.
func (s *AttachmentService) requestUploadResolved(ctx context.Context, req UploadRequest) (*UploadGrant, error) {
	uploadID := req.UploadID
	if uploadID == "" {
		uploadID = uuid.New().String()
	}

	key := filex.BuildKey(req.GrievanceID, uploadID, req.FileName)

	candidate := &models.Attachment{
		GrievanceID: req.GrievanceID,
		UploadID:    uploadID,
		StorageKey:  key,
		PublicURL:   s.store.PublicURL(key),
		FileName:    req.FileName,
		FileType:    req.FileType,
		Status:      models.AttachmentPending,
	}

	// FindOrCreate can report ErrNotFound in the short window where a
	// concurrent identical request inserted the row but has not committed.
	// Retrying converges on that row.
	var row *models.Attachment
	backoff := retry.WithMaxRetries(3, retry.NewExponential(10*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var ferr error
		row, ferr = s.repos.Attachments(s.db).FindOrCreate(ctx, candidate)
		if errors.Is(ferr, common.ErrNotFound) {
			return retry.RetryableError(ferr)
		}
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("find or create attachment: %w", err)
	}

	signedURL, err := s.store.PresignPut(ctx, row.StorageKey, req.ContentType, s.config.PresignTTL)
	if err != nil {
		return nil, err
	}

	return &UploadGrant{
		UploadID:  row.UploadID,
		Key:       row.StorageKey,
		SignedURL: signedURL,
		FileName:  row.FileName,
		FileType:  row.FileType,
	}, nil
}

// RequestBulkUpload resolves the parent once and then presigns each file in
// order, collecting per-file outcomes. A failure on one file does not roll
// back the grants already issued.
func (s *AttachmentService) RequestBulkUpload(ctx context.Context, grievanceID int64, files []UploadRequest) ([]BulkUploadItem, error) {
	exists, err := s.repos.Grievances(s.db).Exists(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("grievance %d: %w", grievanceID, common.ErrNotFound)
	}

	items := make([]BulkUploadItem, 0, len(files))
	for _, f := range files {
		f.GrievanceID = grievanceID

		if err := filex.ValidateContentType(f.FileName, f.ContentType); err != nil {
			items = append(items, BulkUploadItem{FileName: f.FileName, Err: err})
			continue
		}

		grant, err := s.requestUploadResolved(ctx, f)
		if err != nil {
			s.logger.Warn(ctx, "bulk presign item failed", "grievance_id", grievanceID, "file_name", f.FileName, "error", err.Error())
			items = append(items, BulkUploadItem{FileName: f.FileName, Err: err})
			continue
		}
		items = append(items, BulkUploadItem{FileName: f.FileName, Grant: grant})
	}

	return items, nil
}

// ConfirmUpload probes the object store for the attachment's key. When the
// object is present, the row transitions to UPLOADED with the probed size;
// when absent, the row stays PENDING and Uploaded=false is returned.
// Confirming an already-UPLOADED row is idempotent.
func (s *AttachmentService) ConfirmUpload(ctx context.Context, uploadID string) (*ConfirmResult, error) {
	attachmentRepo := s.repos.Attachments(s.db)

	row, err := attachmentRepo.GetByUploadID(ctx, uploadID)
	if err != nil {
		return nil, err
	}

	info, err := s.store.Probe(ctx, row.StorageKey)
	if err != nil {
		return nil, err
	}
	if !info.Exists {
		return &ConfirmResult{UploadID: uploadID, Uploaded: false}, nil
	}

	publicURL := s.store.PublicURL(row.StorageKey)
	if err := attachmentRepo.MarkUploaded(ctx, row.AttachmentID, info.Size, publicURL); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "upload confirmed", "upload_id", uploadID, "key", row.StorageKey, "size", info.Size)
	return &ConfirmResult{UploadID: uploadID, Uploaded: true}, nil
}

// UploadServerSide pushes the payloads through the server itself and creates
// ledger rows directly in UPLOADED. No confirm round trip is needed because
// the server holds the bytes. Used by privileged callers only.
func (s *AttachmentService) UploadServerSide(ctx context.Context, grievanceID int64, files []RawFile, fileType string) ([]ServerUploadItem, error) {
	exists, err := s.repos.Grievances(s.db).Exists(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("grievance %d: %w", grievanceID, common.ErrNotFound)
	}

	attachmentRepo := s.repos.Attachments(s.db)

	var result []ServerUploadItem
	for _, f := range files {
		if err := filex.ValidatePayload(f.FileName, f.ContentType, int64(len(f.Data))); err != nil {
			return nil, err
		}

		uploadID := uuid.New().String()
		key := filex.BuildKey(grievanceID, uploadID, f.FileName)

		publicURL, err := s.store.PutBytes(ctx, key, f.ContentType, f.Data)
		if err != nil {
			return nil, err
		}

		a := &models.Attachment{
			GrievanceID: grievanceID,
			UploadID:    uploadID,
			StorageKey:  key,
			PublicURL:   publicURL,
			FileName:    f.FileName,
			FileType:    fileType,
			FileSize:    int64(len(f.Data)),
			Status:      models.AttachmentUploaded,
		}
		if err := attachmentRepo.Create(ctx, a); err != nil {
			return nil, err
		}

		result = append(result, ServerUploadItem{
			AttachmentID: a.AttachmentID,
			UploadID:     a.UploadID,
			FileName:     a.FileName,
			FileType:     a.FileType,
			FileSize:     a.FileSize,
			PublicURL:    a.PublicURL,
			Status:       a.Status,
		})
	}

	return result, nil
}

// ListAttachments returns the ledger rows of one grievance.
func (s *AttachmentService) ListAttachments(ctx context.Context, grievanceID int64) ([]*models.Attachment, error) {
	exists, err := s.repos.Grievances(s.db).Exists(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("grievance %d: %w", grievanceID, common.ErrNotFound)
	}
	return s.repos.Attachments(s.db).ListByGrievance(ctx, grievanceID)
}
