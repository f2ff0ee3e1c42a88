package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"multifeed/internal/domain"
	"strings"
	"sync"
	"time"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return t0.Add(time.Duration(minutes) * time.Minute) }

func item(id string, minutes int) domain.FeedItem {
	return domain.FeedItem{ID: id, Title: id, PublishedAt: at(minutes)}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource реализует FeedFetcher и FeedParser: читатель содержит URL,
// парсер возвращает заранее заданные записи этого URL.
type fakeSource struct {
	mu    sync.Mutex
	feeds map[string][]domain.FeedItem
	fail  map[string]error
	delay map[string]time.Duration
	calls map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		feeds: map[string][]domain.FeedItem{},
		fail:  map[string]error{},
		delay: map[string]time.Duration{},
		calls: map[string]int{},
	}
}

func (s *fakeSource) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	s.mu.Lock()
	s.calls[url]++
	err := s.fail[url]
	d := s.delay[url]
	s.mu.Unlock()
	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(url)), nil
}

func (s *fakeSource) Parse(ctx context.Context, r io.Reader) (*domain.Feed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := s.feeds[string(data)]
	if !ok {
		return nil, fmt.Errorf("unknown feed %s", data)
	}
	out := make([]domain.FeedItem, len(items))
	copy(out, items)
	return &domain.Feed{Items: out}, nil
}

// substringMatcher - регистронезависимое вхождение подстроки.
// Ключевое слово "panic" имитирует сбой примитива.
type substringMatcher struct{}

func (substringMatcher) Match(text, keyword string) (bool, error) {
	if keyword == "panic" {
		return false, errors.New("malformed input")
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(keyword)), nil
}

type memSeenStore struct {
	ids       map[string]map[string]struct{}
	loadErr   error
	saveErr   error
	saveCalls int
}

func newMemSeenStore() *memSeenStore {
	return &memSeenStore{ids: map[string]map[string]struct{}{}}
}

func (s *memSeenStore) LoadSeenIDs(ctx context.Context, key string) (map[string]struct{}, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(map[string]struct{}, len(s.ids[key]))
	for id := range s.ids[key] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *memSeenStore) PersistSeenIDs(ctx context.Context, key string, ids []string) error {
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.ids[key] == nil {
		s.ids[key] = map[string]struct{}{}
	}
	for _, id := range ids {
		s.ids[key][id] = struct{}{}
	}
	return nil
}

func (s *memSeenStore) set(key string) []string {
	var out []string
	for id := range s.ids[key] {
		out = append(out, id)
	}
	return out
}

type recordingSink struct {
	items  []domain.FeedItem
	metas  []domain.EmitMeta
	failAt int
}

func newRecordingSink() *recordingSink { return &recordingSink{failAt: -1} }

func (s *recordingSink) Emit(ctx context.Context, item domain.FeedItem, meta domain.EmitMeta) error {
	if s.failAt >= 0 && len(s.items) == s.failAt {
		return errors.New("sink unavailable")
	}
	s.items = append(s.items, item)
	s.metas = append(s.metas, meta)
	return nil
}

func (s *recordingSink) ids() []string {
	out := make([]string, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.ID)
	}
	return out
}
