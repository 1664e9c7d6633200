package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RSO-bookstore/bookstore-cart/internal/config"
)

type ctxKey int

const ctxKeyRequestID ctxKey = iota

// RequestID returns the correlation id assigned to this request, or ""
// outside a request scope.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

type statusRecorder struct {
	h  http.ResponseWriter
	st int
}

func (w *statusRecorder) Header() http.Header { return w.h.Header() }
func (w *statusRecorder) WriteHeader(code int) {
	w.st = code
	w.h.WriteHeader(code)
}
func (w *statusRecorder) Write(b []byte) (int, error) { return w.h.Write(b) }

// logRequests assigns a fresh correlation id to every inbound request and
// logs entry and exit, including elapsed wall-clock time and the resulting
// status. It never alters the response and logs regardless of status.
func (a *App) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := uuid.NewString()
		cfg := a.cfg.Current()

		log.Info().
			Str("method", r.Method).
			Str("rid", rid).
			Str("app", cfg.AppName).
			Str("version", config.Version).
			Str("path", r.URL.Path).
			Msg("START_REQUEST")

		start := time.Now()
		sr := &statusRecorder{h: w, st: http.StatusOK}
		next.ServeHTTP(sr, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, rid)))
		elapsed := float64(time.Since(start).Microseconds()) / 1000.0

		log.Info().
			Str("method", r.Method).
			Str("rid", rid).
			Str("app", cfg.AppName).
			Str("version", config.Version).
			Str("completed_in", fmt.Sprintf("%.2fms", elapsed)).
			Int("status_code", sr.st).
			Msg("END_REQUEST")
	})
}
