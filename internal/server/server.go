// Package server публикует реестр инструментов по HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/cloud-ru/mcp-realty-go/internal/logger"
	"github.com/cloud-ru/mcp-realty-go/internal/tools"
)

const maxBodyBytes = 1 << 20

// Handler обслуживает запросы к инструментам
type Handler struct {
	registry *tools.Registry
}

// NewHandler собирает маршруты: /healthz, /tools, /tools/{name}, /metrics.
// rps <= 0 отключает ограничение частоты запросов.
func NewHandler(registry *tools.Registry, rps float64, burst int) http.Handler {
	h := &Handler{registry: registry}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /tools", h.ListTools)
	mux.HandleFunc("POST /tools/{name}", h.CallTool)
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	if rps > 0 {
		handler = rateLimitMiddleware(rate.NewLimiter(rate.Limit(rps), max(burst, 1)), handler)
	}
	return loggingMiddleware(handler)
}

// NewServer создает http.Server с таймаутами
func NewServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Tools())
}

func (h *Handler) CallTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	params := map[string]interface{}{}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.registry.Call(r.Context(), name, params)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.L.Error("Ошибка инструмента", "tool", name, "error", err)
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tools.ErrUnknownTool):
		return http.StatusNotFound
	case tools.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON кодирует ответ до записи статуса, чтобы ошибка кодирования не превращалась в пустой 200
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.L.Error("Не удалось закодировать ответ", "error", err)
		buf.Reset()
		buf.WriteString(`{"error":"не удалось закодировать ответ"}` + "\n")
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.L.Warn("Не удалось записать ответ", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
