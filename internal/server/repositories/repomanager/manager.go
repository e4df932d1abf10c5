package repomanager

import (
	"context"
	"database/sql"

	"github.com/citizendesk/grievance-server/internal/dbx"
	"github.com/citizendesk/grievance-server/internal/server/repositories/attachments"
	"github.com/citizendesk/grievance-server/internal/server/repositories/grievances"
	"github.com/citizendesk/grievance-server/internal/server/repositories/orphans"
)

// RepositoryManager hands out repositories bound to a DB handle — either the
// pool itself or an open transaction — so services can run several repos
// inside one transaction via dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Grievances(db dbx.DBTX) grievances.Repository
	Attachments(db dbx.DBTX) attachments.Repository
	Orphans(db dbx.DBTX) orphans.Repository
}
