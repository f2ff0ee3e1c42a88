package storage

import (
	"context"
	"multifeed/internal/domain"
	"sync"
	"time"
)

// MemoryStore хранит состояние дедупликации и журнал выдачи в памяти процесса.
// Состояние теряется при перезапуске.
type MemoryStore struct {
	mu                sync.RWMutex
	seen              map[string]map[string]struct{}
	emitted           []domain.EmittedItem
	maxEmitted        int
	defaultItemsLimit int
}

// NewMemoryStore создает хранилище; журнал выдачи ограничен maxEmitted записями.
func NewMemoryStore(defaultItemsLimit, maxEmitted int) *MemoryStore {
	return &MemoryStore{
		seen:              make(map[string]map[string]struct{}),
		maxEmitted:        maxEmitted,
		defaultItemsLimit: defaultItemsLimit,
	}
}

func (s *MemoryStore) LoadSeenIDs(ctx context.Context, sourceKey string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{}, len(s.seen[sourceKey]))
	for id := range s.seen[sourceKey] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *MemoryStore) PersistSeenIDs(ctx context.Context, sourceKey string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.seen[sourceKey]
	if !ok {
		set = make(map[string]struct{}, len(ids))
		s.seen[sourceKey] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) Emit(ctx context.Context, item domain.FeedItem, meta domain.EmitMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitted = append(s.emitted, domain.EmittedItem{
		FeedItem:  item,
		RunID:     meta.RunID,
		Index:     meta.Index,
		EmittedAt: time.Now(),
	})
	if s.maxEmitted > 0 && len(s.emitted) > s.maxEmitted {
		s.emitted = s.emitted[len(s.emitted)-s.maxEmitted:]
	}
	return nil
}

// GetItems возвращает последние n выданных записей, новые первыми.
func (s *MemoryStore) GetItems(ctx context.Context, n int) ([]domain.EmittedItem, error) {
	if n <= 0 {
		n = s.defaultItemsLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.emitted) {
		n = len(s.emitted)
	}
	out := make([]domain.EmittedItem, 0, n)
	for i := len(s.emitted) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.emitted[i])
	}
	return out, nil
}

func (s *MemoryStore) Close() {}
