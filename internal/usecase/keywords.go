package usecase

import (
	"errors"
	"log/slog"
	"multifeed/internal/domain"
	"strings"
)

// KeywordFilter отбирает записи, в тексте которых найдено хотя бы одно
// из настроенных ключевых слов, и помечает их найденными словами.
type KeywordFilter struct {
	matcher  KeywordMatcher
	keywords []string
	log      *slog.Logger
}

// NewKeywordFilter создает фильтр. Пустой список ключевых слов
// превращает Apply в тождественное преобразование.
func NewKeywordFilter(matcher KeywordMatcher, keywords []string, log *slog.Logger) *KeywordFilter {
	kws := make([]string, len(keywords))
	copy(kws, keywords)
	return &KeywordFilter{
		matcher:  matcher,
		keywords: kws,
		log:      log.With(slog.String("component", "keyword-filter")),
	}
}

// Enabled сообщает, включена ли фильтрация.
func (f *KeywordFilter) Enabled() bool {
	return f != nil && len(f.keywords) > 0
}

// Apply возвращает новый срез с записями, совпавшими хотя бы с одним ключевым словом.
// У каждой записи MatchedKeywords содержит совпавшие слова в порядке конфигурации.
// Запись, на которой примитив вернул ошибку, исключается.
func (f *KeywordFilter) Apply(items []domain.FeedItem) []domain.FeedItem {
	if !f.Enabled() {
		return items
	}
	out := make([]domain.FeedItem, 0, len(items))
	for _, item := range items {
		matched, err := f.match(item)
		if err != nil {
			f.log.Warn("Keyword match failed, item excluded",
				slog.String("item_id", item.ID),
				slog.String("url", item.SourceURL),
				slog.Any("error", err),
			)
			continue
		}
		if len(matched) == 0 {
			continue
		}
		item.Categories = cloneStrings(item.Categories)
		item.MatchedKeywords = matched
		out = append(out, item)
	}
	return out
}

func (f *KeywordFilter) match(item domain.FeedItem) ([]string, error) {
	text := MatchText(item)
	var matched []string
	for _, kw := range f.keywords {
		ok, err := f.matcher.Match(text, kw)
		if err != nil {
			var matchErr *domain.MatchError
			if errors.As(err, &matchErr) {
				return nil, err
			}
			return nil, &domain.MatchError{Keyword: kw, Err: err}
		}
		if ok {
			matched = append(matched, kw)
		}
	}
	return matched, nil
}

// MatchText собирает текст записи для сопоставления:
// заголовок, описание и категории через запятую.
func MatchText(item domain.FeedItem) string {
	var b strings.Builder
	b.WriteString(item.Title)
	b.WriteString("\n\n")
	b.WriteString(item.Description)
	b.WriteString("\n\ntags: ")
	b.WriteString(strings.Join(item.Categories, ", "))
	b.WriteString(".")
	return b.String()
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
