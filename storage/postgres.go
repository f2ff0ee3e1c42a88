package storage

import (
	"context"
	"fmt"
	"log/slog"
	"multifeed/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool - подмножество методов *pgxpool.Pool, используемое хранилищем.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

type PostgresStore struct {
	pool              DBPool
	log               *slog.Logger
	sourceKey         string
	defaultItemsLimit int
}

// NewPostgresStore создает хранилище поверх пула соединений.
// sourceKey проставляется в журнале выдачи для каждой записи.
func NewPostgresStore(pool DBPool, sourceKey string, defaultItemsLimit int, log *slog.Logger) *PostgresStore {
	log.Info("Initializing Postgres storage", slog.String("component", "storage"))
	return &PostgresStore{
		pool:              pool,
		log:               log.With(slog.String("component", "storage")),
		sourceKey:         sourceKey,
		defaultItemsLimit: defaultItemsLimit,
	}
}

func (db *PostgresStore) Close() {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
}

// LoadSeenIDs читает все ранее выданные идентификаторы источника.
func (db *PostgresStore) LoadSeenIDs(ctx context.Context, sourceKey string) (map[string]struct{}, error) {
	const op = "storage.postgres.LoadSeenIDs"
	log := db.log.With(slog.String("op", op), slog.String("source", sourceKey))
	rows, err := db.pool.Query(ctx, `SELECT item_id FROM seen_items WHERE source_key = $1`, sourceKey)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	log.Debug("Loaded seen ids", slog.Int("count", len(seen)))
	return seen, nil
}

// PersistSeenIDs добавляет идентификаторы к множеству источника одним запросом.
// Уже существующие идентификаторы пропускаются.
func (db *PostgresStore) PersistSeenIDs(ctx context.Context, sourceKey string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const op = "storage.postgres.PersistSeenIDs"
	query := `
	INSERT INTO seen_items (source_key, item_id)
	SELECT $1, unnest($2::text[])
	ON CONFLICT (source_key, item_id) DO NOTHING;
	`
	tag, err := db.pool.Exec(ctx, query, sourceKey, ids)
	if err != nil {
		db.log.Error("Failed to persist seen ids",
			slog.String("op", op),
			slog.Int("count", len(ids)),
			slog.Any("error", err),
		)
		return fmt.Errorf("%s: failed to insert: %w", op, err)
	}
	db.log.Debug("Seen ids persisted",
		slog.String("op", op),
		slog.Int("count", len(ids)),
		slog.Int64("inserted", tag.RowsAffected()),
	)
	return nil
}

// Emit записывает выданную запись в журнал.
func (db *PostgresStore) Emit(ctx context.Context, item domain.FeedItem, meta domain.EmitMeta) error {
	const op = "storage.postgres.Emit"
	query := `
	INSERT INTO emitted_items
	(run_id, emit_index, source_key, item_id, title, description, link,
	 categories, matched_keywords, published_at, source_url)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	categories := item.Categories
	if categories == nil {
		categories = []string{}
	}
	_, err := db.pool.Exec(ctx, query,
		meta.RunID,
		meta.Index,
		db.sourceKey,
		item.ID,
		item.Title,
		item.Description,
		item.Link,
		categories,
		item.MatchedKeywords,
		item.PublishedAt,
		item.SourceURL,
	)
	if err != nil {
		db.log.Error("Failed to insert emitted item",
			slog.String("op", op),
			slog.String("item_id", item.ID),
			slog.Any("error", err),
		)
		return fmt.Errorf("%s: failed to insert: %w", op, err)
	}
	return nil
}

// GetItems возвращает последние n выданных записей, новые первыми.
func (db *PostgresStore) GetItems(ctx context.Context, n int) ([]domain.EmittedItem, error) {
	limit := n
	if limit <= 0 {
		limit = db.defaultItemsLimit
	}
	const op = "storage.postgres.GetItems"
	log := db.log.With(slog.String("op", op), slog.Int("limit", limit))
	query := `
	SELECT item_id, title, description, link, categories, matched_keywords,
	       published_at, source_url, run_id, emit_index, emitted_at
	FROM emitted_items
	ORDER BY emitted_at DESC, id DESC
	LIMIT $1;
	`
	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.EmittedItem, error) {
		var item domain.EmittedItem
		err := row.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.Link,
			&item.Categories,
			&item.MatchedKeywords,
			&item.PublishedAt,
			&item.SourceURL,
			&item.RunID,
			&item.Index,
			&item.EmittedAt,
		)
		return item, err
	})
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	log.Info("Successfully retrieved emitted items", slog.Int("count", len(items)))
	return items, nil
}
