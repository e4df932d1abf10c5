// Package models defines server-side data models persisted in the database.
package models

import "time"

// AttachmentStatus is the lifecycle state of an attachment row.
type AttachmentStatus string

const (
	// AttachmentPending means a presigned URL was issued but the upload has
	// not been confirmed against the object store yet.
	AttachmentPending AttachmentStatus = "PENDING"
	// AttachmentUploaded means the object was confirmed present in the
	// store. Terminal: rows never transition back.
	AttachmentUploaded AttachmentStatus = "UPLOADED"
)

// Attachment is the ledger row for one piece of uploaded evidence. The rows
// are the source of truth reconciled against the object store; the bytes
// themselves live only in the store.
type Attachment struct {
	// AttachmentID is the surrogate key, assigned on first persistence.
	AttachmentID int64
	// GrievanceID references the owning case record. Immutable.
	GrievanceID int64
	// UploadID is the idempotency token for the upload. Unique per
	// grievance, not globally.
	UploadID string

	// StorageKey is the deterministic object-store key. Never regenerated
	// for an existing row.
	StorageKey string
	// PublicURL is a derived convenience URL. Recomputed, never hand-edited,
	// and not authoritative for access control.
	PublicURL string

	FileName string
	// FileType is the logical category (PHOTO / DOCUMENT / OTHER), not a
	// MIME type.
	FileType string
	// FileSize in bytes. Only trustworthy once Status is UPLOADED.
	FileSize int64

	Status AttachmentStatus

	// UploadedAt is stamped when the row is created (presign time), matching
	// the source system's behavior.
	UploadedAt time.Time
	// ConfirmedAt records when the object was actually confirmed present,
	// nil while the row is still pending.
	ConfirmedAt *time.Time
}
