package usecase

import (
	"multifeed/internal/domain"
	"slices"
)

// SortChronological возвращает новый срез, упорядоченный по PublishedAt от старых к новым.
// Сортировка стабильна: записи с равным временем сохраняют порядок слияния.
func SortChronological(items []domain.FeedItem) []domain.FeedItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b domain.FeedItem) int {
		return a.PublishedAt.Compare(b.PublishedAt)
	})
	return sorted
}
