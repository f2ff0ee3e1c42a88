package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"multifeed/internal/domain"
	"multifeed/internal/usecase"
	"net/http"
	"strconv"
	"sync/atomic"
)

type itemsGetter interface {
	GetItems(ctx context.Context, limit int) ([]domain.EmittedItem, error)
}

type runTrigger interface {
	Run(ctx context.Context) (*usecase.RunReport, error)
}

type Handler struct {
	log          *slog.Logger
	items        itemsGetter
	runner       runTrigger
	defaultLimit int
	requestSeq   atomic.Uint64
}

func NewHandler(log *slog.Logger, items itemsGetter, runner runTrigger, defaultLimit int) *Handler {
	return &Handler{
		log:          log,
		items:        items,
		runner:       runner,
		defaultLimit: defaultLimit,
	}
}

// getItems - хендлер для эндпоинта GET /api/items
func (h *Handler) getItems(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getItems"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", h.requestID()),
	)
	if r.Method != http.MethodGet {
		log.Warn("method not allowed")
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			log.Warn("invalid limit parameter", slog.String("limit", limitStr))
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
	}
	items, err := h.items.GetItems(r.Context(), limit)
	if err != nil {
		log.Error("Failed to get items", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if items == nil {
		items = []domain.EmittedItem{}
	}
	respondWithJSON(w, http.StatusOK, items)
}

// triggerRun - хендлер для эндпоинта POST /api/run, выполняет один запуск синхронно.
func (h *Handler) triggerRun(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/triggerRun"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", h.requestID()),
	)
	if r.Method != http.MethodPost {
		log.Warn("method not allowed")
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	report, err := h.runner.Run(r.Context())
	switch {
	case err == nil:
		respondWithJSON(w, http.StatusOK, report)
	case errors.Is(err, usecase.ErrRunInProgress):
		respondWithError(w, http.StatusConflict, "Run already in progress")
	default:
		log.Error("Triggered run failed", slog.Any("error", err))
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			respondWithError(w, http.StatusBadGateway, err.Error())
			return
		}
		if report != nil {
			// Запуск успел выдать часть записей: отчет нужен вызывающему.
			respondWithJSON(w, http.StatusInternalServerError, runFailure{Error: err.Error(), Report: report})
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

// runFailure - тело ответа для запуска, завершившегося ошибкой после выдачи.
type runFailure struct {
	Error  string             `json:"error"`
	Report *usecase.RunReport `json:"report"`
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) requestID() string {
	return "req-" + strconv.FormatUint(h.requestSeq.Add(1), 10)
}

// Вспомогательные функции для ответов
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
