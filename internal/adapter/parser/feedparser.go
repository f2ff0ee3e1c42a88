package parser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"multifeed/internal/domain"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedParser разбирает RSS, Atom и JSON Feed через gofeed
// и нормализует записи в domain.FeedItem.
type FeedParser struct {
	log *slog.Logger
	now func() time.Time
}

func NewFeedParser(log *slog.Logger) *FeedParser {
	return &FeedParser{
		log: log.With(slog.String("component", "parser")),
		now: time.Now,
	}
}

// Parse реализует метод интерфейса FeedParser.
// Порядок записей сохраняется таким, каким его отдала лента.
func (p *FeedParser) Parse(ctx context.Context, reader io.Reader) (*domain.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := gofeed.NewParser().Parse(reader)
	if err != nil {
		p.log.Error("Error decoding feed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}
	fetchedAt := p.now()
	feed := domain.Feed{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
		Items:       make([]domain.FeedItem, 0, len(parsed.Items)),
	}
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		feed.Items = append(feed.Items, convertItem(it, fetchedAt))
	}
	return &feed, nil
}

func convertItem(it *gofeed.Item, fetchedAt time.Time) domain.FeedItem {
	description := it.Description
	if description == "" {
		description = it.Content
	}
	categories := make([]string, 0, len(it.Categories))
	for _, c := range it.Categories {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	published := fetchedAt
	if it.PublishedParsed != nil {
		published = *it.PublishedParsed
	} else if it.UpdatedParsed != nil {
		published = *it.UpdatedParsed
	}
	link := it.Link
	if link == "" && len(it.Links) > 0 {
		link = it.Links[0]
	}
	return domain.FeedItem{
		ID:          itemID(it.GUID, link, it.Title, description),
		Title:       it.Title,
		Description: description,
		Link:        link,
		Categories:  categories,
		PublishedAt: published,
	}
}

// itemID возвращает GUID, ссылку или хэш заголовка и описания.
func itemID(guid, link, title, description string) string {
	if guid = strings.TrimSpace(guid); guid != "" {
		return guid
	}
	if link = strings.TrimSpace(link); link != "" {
		return link
	}
	hash := sha256.Sum256([]byte(title + "\n" + description))
	return hex.EncodeToString(hash[:])[:16]
}
