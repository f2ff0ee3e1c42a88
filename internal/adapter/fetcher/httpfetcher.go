package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const userAgent = "multifeed/1.0 (+rss aggregator)"

// HTTPFetcher реализует интерфейс FeedFetcher для загрузки RSS-лент по HTTP.
// Таймаут клиента ограничивает каждый запрос; отдельной логики повторов нет.
type HTTPFetcher struct {
	client *http.Client
	log    *slog.Logger
}

// NewHTTPFetcher создает новый экземпляр HTTPFetcher для загрузки RSS-лент.
// Неположительный timeout означает запрос без ограничения по времени.
func NewHTTPFetcher(log *slog.Logger, timeout time.Duration) *HTTPFetcher {
	client := &http.Client{}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &HTTPFetcher{
		client: client,
		log:    log.With(slog.String("component", "http-fetcher")),
	}
}

// Fetch выполняет HTTP-запрос для получения RSS-ленты по указанному URL.
// Возвращает тело ответа как io.ReadCloser, которое должно быть закрыто после использования.
// Любой статус кроме 200 считается ошибкой.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	log := f.log.With(slog.String("url", url))
	log.Debug("Fetching URL")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create request for url %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")
	resp, err := f.client.Do(req)
	if err != nil {
		log.Error("HTTP request failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch url %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		log.Error("Unexpected status code", slog.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("unexpected status code: %d for url %s", resp.StatusCode, url)
	}
	log.Debug("Successfully fetched URL")
	return resp.Body, nil
}
