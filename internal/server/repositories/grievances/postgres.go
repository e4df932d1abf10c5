package grievances

import (
	"context"
	"fmt"
	"strings"

	"github.com/citizendesk/grievance-server/internal/dbx"
	"github.com/citizendesk/grievance-server/internal/server/models"
)

// PostgresRepository implements case-record lookups over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Exists(ctx context.Context, grievanceID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM grievances WHERE grievance_id=$1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, grievanceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("select grievance: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Grievance, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT grievance_id, title, created_at FROM grievances WHERE grievance_id IN (` + placeholders(len(ids)) + `)`

	rows, err := r.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("select grievances: %w", err)
	}
	defer rows.Close()

	var result []*models.Grievance
	for rows.Next() {
		g := &models.Grievance{}
		if err := rows.Scan(&g.GrievanceID, &g.Title, &g.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM grievances WHERE grievance_id IN (` + placeholders(len(ids)) + `)`

	if _, err := r.db.ExecContext(ctx, query, int64Args(ids)...); err != nil {
		return fmt.Errorf("delete grievances: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, g *models.Grievance) error {
	query := `INSERT INTO grievances (title) VALUES ($1) RETURNING grievance_id, created_at`

	if err := r.db.QueryRowContext(ctx, query, g.Title).Scan(&g.GrievanceID, &g.CreatedAt); err != nil {
		return fmt.Errorf("insert grievance: %w", err)
	}
	return nil
}

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
