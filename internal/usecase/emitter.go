package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"multifeed/internal/domain"
)

// Emitter передает записи получателю по одной, в порядке выдачи.
type Emitter struct {
	sink Sink
	log  *slog.Logger
}

// NewEmitter создает Emitter поверх получателя sink.
func NewEmitter(sink Sink, log *slog.Logger) *Emitter {
	return &Emitter{
		sink: sink,
		log:  log.With(slog.String("component", "emitter")),
	}
}

// Emit выдает записи по порядку и возвращает число успешно выданных.
// Ошибка получателя прерывает выдачу; уже выданные записи остаются выданными.
func (e *Emitter) Emit(ctx context.Context, runID string, items []domain.FeedItem) (int, error) {
	for i, item := range items {
		meta := NewMeta(runID, i, item)
		if err := e.sink.Emit(ctx, item, meta); err != nil {
			e.log.Error("Emit failed",
				slog.String("run_id", runID),
				slog.String("item_id", item.ID),
				slog.Int("index", i),
				slog.Any("error", err),
			)
			return i, fmt.Errorf("emit item %s: %w", item.ID, err)
		}
	}
	return len(items), nil
}

// NewMeta строит метаданные выдачи для записи.
func NewMeta(runID string, index int, item domain.FeedItem) domain.EmitMeta {
	return domain.EmitMeta{
		ID:        item.ID,
		Summary:   item.Title,
		Timestamp: item.PublishedAt,
		SourceURL: item.SourceURL,
		Index:     index,
		RunID:     runID,
	}
}
