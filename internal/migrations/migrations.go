package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Migration struct {
	ID    string
	UpSQL string
}

// Pool - методы пула соединений, нужные для применения миграций.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

var allMigrations = []Migration{
	{
		ID: "020240301120000_create_seen_items_table",
		UpSQL: `
		CREATE TABLE seen_items(
		source_key TEXT NOT NULL,
		item_id TEXT NOT NULL,
		seen_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (source_key, item_id)
		);`,
	},
	{
		ID: "020240301120100_create_emitted_items_table",
		UpSQL: `
		CREATE TABLE emitted_items(
		id serial PRIMARY KEY,
		run_id TEXT NOT NULL,
		emit_index INT NOT NULL,
		source_key TEXT NOT NULL,
		item_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		link TEXT NOT NULL,
		categories TEXT[] NOT NULL DEFAULT '{}',
		matched_keywords TEXT[],
		published_at TIMESTAMPTZ NOT NULL,
		source_url TEXT NOT NULL,
		emitted_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
	{
		ID:    "020240301120200_index_emitted_items_emitted_at",
		UpSQL: `CREATE INDEX emitted_items_emitted_at_idx ON emitted_items (emitted_at DESC);`,
	},
}

// Apply применяет все необходимые миграции к базе данных в одной транзакции.
func Apply(ctx context.Context, log *slog.Logger, pool Pool) error {
	log = log.With(slog.String("component", "migrations"))
	log.Info("Starting database migrations check...")
	_, err := pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
	id TEXT PRIMARY KEY
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	rows, err := pool.Query(ctx, "SELECT id FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	applied, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to scan migration id: %w", err)
	}
	appliedMigrations := make(map[string]bool, len(applied))
	for _, id := range applied {
		appliedMigrations[id] = true
	}
	pending := make([]Migration, len(allMigrations))
	copy(pending, allMigrations)
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].ID < pending[j].ID
	})
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	appliedCount := 0
	for _, m := range pending {
		if appliedMigrations[m.ID] {
			continue
		}
		log.Info("Applying migration", slog.String("id", m.ID))
		if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (id) VALUES ($1)", m.ID); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
		appliedCount++
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations transaction: %w", err)
	}
	if appliedCount > 0 {
		log.Info("Database migrations applied successfully", slog.Int("count", appliedCount))
	} else {
		log.Info("Database is up to date, no new migrations found.")
	}
	return nil
}
