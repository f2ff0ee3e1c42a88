package usecase

import (
	"multifeed/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupGate_SuppressesSeen(t *testing.T) {
	seen := map[string]struct{}{"a": {}}
	gate := NewDedupGate(seen)

	fresh, newIDs := gate.Filter([]domain.FeedItem{item("a", 1), item("b", 2)})

	assert.Equal(t, []string{"b"}, ids(fresh))
	assert.Equal(t, []string{"b"}, newIDs)
	assert.Len(t, seen, 1, "loaded set must not be mutated")
}

func TestDedupGate_InRunFirstWins(t *testing.T) {
	first := domain.FeedItem{ID: "dup", Title: "first", SourceURL: "https://a.test"}
	second := domain.FeedItem{ID: "dup", Title: "second", SourceURL: "https://b.test"}
	gate := NewDedupGate(nil)

	fresh, newIDs := gate.Filter([]domain.FeedItem{first, item("x", 0), second})

	assert.Equal(t, []string{"dup", "x"}, ids(fresh))
	assert.Equal(t, "first", fresh[0].Title)
	assert.Equal(t, []string{"dup", "x"}, newIDs)
}
