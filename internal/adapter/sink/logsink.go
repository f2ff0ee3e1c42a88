package sink

import (
	"context"
	"log/slog"
	"multifeed/internal/domain"
)

// Emitter - получатель выданных записей.
type Emitter interface {
	Emit(ctx context.Context, item domain.FeedItem, meta domain.EmitMeta) error
}

// LogSink пишет каждую выданную запись в лог и передает ее следующему получателю.
type LogSink struct {
	next Emitter
	log  *slog.Logger
}

// NewLogSink создает LogSink. next может быть nil.
func NewLogSink(log *slog.Logger, next Emitter) *LogSink {
	return &LogSink{
		next: next,
		log:  log.With(slog.String("component", "sink")),
	}
}

func (s *LogSink) Emit(ctx context.Context, item domain.FeedItem, meta domain.EmitMeta) error {
	s.log.Info("Item emitted",
		slog.String("run_id", meta.RunID),
		slog.Int("index", meta.Index),
		slog.String("item_id", meta.ID),
		slog.String("title", meta.Summary),
		slog.String("url", meta.SourceURL),
		slog.Time("published_at", meta.Timestamp),
		slog.Any("matched_keywords", item.MatchedKeywords),
	)
	if s.next == nil {
		return nil
	}
	return s.next.Emit(ctx, item, meta)
}
