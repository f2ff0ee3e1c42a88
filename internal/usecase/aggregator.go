package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"multifeed/internal/domain"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Aggregator реализует параллельную загрузку всех лент источника.
// Каждая лента обрезается до maxPerFeed записей и по необходимости фильтруется,
// затем результаты склеиваются в порядке конфигурации.
type Aggregator struct {
	fetcher   FeedFetcher
	parser    FeedParser
	filter    *KeywordFilter
	log       *slog.Logger
	feedNames map[string]string
}

// NewAggregator создает агрегатор лент.
// filter может быть nil, тогда записи не фильтруются.
func NewAggregator(
	fetcher FeedFetcher,
	parser FeedParser,
	filter *KeywordFilter,
	log *slog.Logger,
	feedNames map[string]string,
) *Aggregator {
	return &Aggregator{
		fetcher:   fetcher,
		parser:    parser,
		filter:    filter,
		log:       log,
		feedNames: feedNames,
	}
}

// Aggregate загружает все ленты параллельно и возвращает объединенный список записей.
// Первая же ошибка загрузки отменяет остальные запросы и возвращается как *domain.FetchError.
func (a *Aggregator) Aggregate(ctx context.Context, urls []string, maxPerFeed int) ([]domain.FeedItem, error) {
	results := make([][]domain.FeedItem, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		g.Go(func() error {
			items, err := a.FetchFeed(gctx, url)
			if err != nil {
				return err
			}
			items = capItems(items, maxPerFeed)
			a.log.Info("Retrieved items from feed",
				slog.String("component", "aggregator"),
				slog.String("feed", a.extractFeedName(url)),
				slog.String("url", url),
				slog.Int("count", len(items)),
			)
			if a.filter.Enabled() {
				items = a.filter.Apply(items)
				a.log.Info("Items matched keywords",
					slog.String("component", "aggregator"),
					slog.String("url", url),
					slog.Int("count", len(items)),
				)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	total := 0
	for _, items := range results {
		total += len(items)
	}
	merged := make([]domain.FeedItem, 0, total)
	for _, items := range results {
		merged = append(merged, items...)
	}
	return merged, nil
}

// FetchFeed загружает и разбирает одну ленту.
// Каждая запись получает SourceURL. Ошибки оборачиваются в *domain.FetchError.
func (a *Aggregator) FetchFeed(ctx context.Context, url string) ([]domain.FeedItem, error) {
	start := time.Now()
	log := a.log.With(
		slog.String("component", "feed-fetcher"),
		slog.String("feed", a.extractFeedName(url)),
		slog.String("url", url),
	)
	reader, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Error("Feed fetch failed",
			slog.String("stage", "fetch"),
			slog.Any("error", err),
		)
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("fetch failed: %w", err)}
	}
	defer reader.Close()

	feed, err := a.parser.Parse(ctx, reader)
	if err != nil {
		log.Error("Feed parsing failed",
			slog.String("stage", "parse"),
			slog.Any("error", err),
		)
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("parse failed: %w", err)}
	}
	items := make([]domain.FeedItem, len(feed.Items))
	for i, item := range feed.Items {
		item.SourceURL = url
		items[i] = item
	}
	log.Debug("Feed parsed successfully",
		slog.String("stage", "parse"),
		slog.Int("items_parsed", len(items)),
		slog.Duration("duration", time.Since(start)),
	)
	return items, nil
}

// capItems возвращает первые limit записей в порядке, выданном лентой.
func capItems(items []domain.FeedItem, limit int) []domain.FeedItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// extractFeedName извлекает читаемое имя фида из URL.
// Использует предопределенный маппинг или извлекает домен из URL как fallback.
func (a *Aggregator) extractFeedName(url string) string {
	if name, ok := a.feedNames[url]; ok && name != "" {
		return name
	}
	parts := strings.Split(url, "/")
	if len(parts) >= 3 {
		return strings.TrimPrefix(parts[2], "www.")
	}
	return "Unknown"
}
