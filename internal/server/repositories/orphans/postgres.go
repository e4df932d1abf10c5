package orphans

import (
	"context"
	"fmt"

	"github.com/citizendesk/grievance-server/internal/dbx"
	"github.com/citizendesk/grievance-server/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, storageKey, lastError string) error {
	query := `
		INSERT INTO orphaned_objects (storage_key, attempts, last_error)
		VALUES ($1, 1, $2)
		ON CONFLICT (storage_key)
		DO UPDATE SET attempts = orphaned_objects.attempts + 1, last_error = EXCLUDED.last_error`

	if _, err := r.db.ExecContext(ctx, query, storageKey, lastError); err != nil {
		return fmt.Errorf("record orphan: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*models.OrphanedObject, error) {
	query := `
		SELECT storage_key, attempts, last_error, created_at FROM orphaned_objects
		ORDER BY created_at
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select orphans: %w", err)
	}
	defer rows.Close()

	var result []*models.OrphanedObject
	for rows.Next() {
		o := &models.OrphanedObject{}
		if err := rows.Scan(&o.StorageKey, &o.Attempts, &o.LastError, &o.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, storageKey string) error {
	query := `DELETE FROM orphaned_objects WHERE storage_key=$1`

	if _, err := r.db.ExecContext(ctx, query, storageKey); err != nil {
		return fmt.Errorf("remove orphan: %w", err)
	}
	return nil
}
