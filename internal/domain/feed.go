package domain

import "time"

// FeedItem представляет нормализованную запись RSS/Atom-ленты,
// проходящую через конвейер агрегации.
// MatchedKeywords равен nil, если фильтрация по ключевым словам не запрошена.
type FeedItem struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Link            string    `json:"link"`
	Categories      []string  `json:"categories"`
	PublishedAt     time.Time `json:"published_at"`
	SourceURL       string    `json:"source_url"`
	MatchedKeywords []string  `json:"matched_keywords,omitempty"`
}

// Feed представляет полную RSS-ленту с метаданными и списком записей
// в том порядке, в котором их вернул источник.
type Feed struct {
	Title       string
	Link        string
	Description string
	Items       []FeedItem
}

// EmitMeta содержит метаданные выдачи, передаваемые получателю вместе с записью.
// Позволяет получателю самостоятельно вести учет порядка и дубликатов.
type EmitMeta struct {
	ID        string    `json:"id"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"ts"`
	SourceURL string    `json:"source_url"`
	Index     int       `json:"index"`
	RunID     string    `json:"run_id"`
}

// EmittedItem - запись из журнала выданных элементов.
type EmittedItem struct {
	FeedItem
	RunID     string    `json:"run_id"`
	Index     int       `json:"index"`
	EmittedAt time.Time `json:"emitted_at"`
}
