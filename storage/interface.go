package storage

import (
	"context"
	"multifeed/internal/domain"
)

// SeenStore хранит множество идентификаторов уже выданных записей
// для каждого логического источника.
type SeenStore interface {
	LoadSeenIDs(ctx context.Context, sourceKey string) (map[string]struct{}, error)
	PersistSeenIDs(ctx context.Context, sourceKey string, ids []string) error
	Close()
}

// ItemLog - журнал выданных записей: принимает их от конвейера и отдает API.
type ItemLog interface {
	Emit(ctx context.Context, item domain.FeedItem, meta domain.EmitMeta) error
	GetItems(ctx context.Context, n int) ([]domain.EmittedItem, error)
}

// Storage объединяет состояние дедупликации и журнал выдачи в одном бэкенде.
type Storage interface {
	SeenStore
	ItemLog
}
