package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ttani03/inetnums/internal/models"
)

//go:embed schema.sql
var schema string

var DB *pgxpool.Pool

func Connect(ctx context.Context, dbURL string) error {
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	DB = pool
	return nil
}

func Migrate(ctx context.Context) error {
	if _, err := DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("unable to apply schema: %w", err)
	}
	return nil
}

func Close() {
	if DB != nil {
		DB.Close()
	}
}

// Store persists emitted rows. It satisfies query.Store.
type Store struct{}

// SaveRows upserts rows for org, keyed on (org_id, network).
func (Store) SaveRows(ctx context.Context, org string, family models.Family, rows []models.Row) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		mntBy := r.MntBy
		if mntBy == nil {
			mntBy = []string{}
		}
		batch.Queue(`INSERT INTO allocations (org_id, family, network, netname, status, mnt_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (org_id, network) DO UPDATE
			SET family = EXCLUDED.family, netname = EXCLUDED.netname, status = EXCLUDED.status,
				mnt_by = EXCLUDED.mnt_by, fetched_at = now()`,
			org, int(family), r.Network, r.NetName, r.Status, mntBy)
	}

	if err := DB.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("unable to save rows for %s: %w", org, err)
	}
	return nil
}

// ListAllocations returns the stored rows for org ordered by family and network.
func ListAllocations(ctx context.Context, org string) ([]models.Allocation, error) {
	rows, err := DB.Query(ctx,
		`SELECT id, org_id, family, network, netname, status, mnt_by, fetched_at
		FROM allocations WHERE org_id = $1 ORDER BY family, network`, org)
	if err != nil {
		return nil, fmt.Errorf("unable to list allocations: %w", err)
	}
	defer rows.Close()

	var out []models.Allocation
	for rows.Next() {
		var a models.Allocation
		var family int
		if err := rows.Scan(&a.ID, &a.OrgID, &family, &a.Network, &a.NetName, &a.Status, &a.MntBy, &a.FetchedAt); err != nil {
			return nil, fmt.Errorf("unable to scan allocation: %w", err)
		}
		a.Family = models.Family(family)
		out = append(out, a)
	}
	return out, rows.Err()
}
