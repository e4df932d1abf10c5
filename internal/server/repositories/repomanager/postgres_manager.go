package repomanager

import (
	"context"
	"database/sql"

	"github.com/citizendesk/grievance-server/internal/dbx"
	"github.com/citizendesk/grievance-server/internal/server/migrations"
	"github.com/citizendesk/grievance-server/internal/server/repositories/attachments"
	"github.com/citizendesk/grievance-server/internal/server/repositories/grievances"
	"github.com/citizendesk/grievance-server/internal/server/repositories/orphans"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Grievances(db dbx.DBTX) grievances.Repository {
	return grievances.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Attachments(db dbx.DBTX) attachments.Repository {
	return attachments.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Orphans(db dbx.DBTX) orphans.Repository {
	return orphans.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}
