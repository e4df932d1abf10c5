package models

import "time"

// Grievance is the minimal projection of the parent case record needed by
// the attachment subsystem. The full case entity (triage fields, reporter
// data, audit trail) is owned by the case-management layer.
type Grievance struct {
	GrievanceID int64
	Title       string
	CreatedAt   time.Time
}

// OrphanedObject records a storage key whose object delete failed during a
// case deletion. The cleanup sweeper retries these at least once.
type OrphanedObject struct {
	StorageKey string
	Attempts   int
	LastError  string
	CreatedAt  time.Time
}
