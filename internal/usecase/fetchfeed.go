package usecase

import (
	"context"
	"io"
	"multifeed/internal/domain"
)

// FeedFetcher определяет интерфейс для загрузки данных RSS-лент из внешних источников.
// Возвращает io.ReadCloser который должен быть закрыт после использования.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// FeedParser определяет интерфейс для парсинга RSS/Atom-данных в доменную модель.
type FeedParser interface {
	Parse(ctx context.Context, reader io.Reader) (*domain.Feed, error)
}

// KeywordMatcher - лингвистический примитив: присутствует ли ключевое слово в тексте.
type KeywordMatcher interface {
	Match(text, keyword string) (bool, error)
}

// SeenStore хранит идентификаторы уже выданных записей по ключу источника.
type SeenStore interface {
	LoadSeenIDs(ctx context.Context, sourceKey string) (map[string]struct{}, error)
	PersistSeenIDs(ctx context.Context, sourceKey string, ids []string) error
}

// Sink принимает выданные записи по одной.
type Sink interface {
	Emit(ctx context.Context, item domain.FeedItem, meta domain.EmitMeta) error
}
