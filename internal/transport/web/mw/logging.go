package mw

import (
	"log"
	"net/http"
	"time"
)

// Logging — middleware: одна строка на запрос — статус, размер, длительность.
// Ответы 5xx поднимаются до lvl=error, чтобы не тонуть в публичных чтениях.
func Logging(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			mw := &metaWriter{ResponseWriter: w}

			next.ServeHTTP(mw, r)

			status := mw.status
			if status == 0 {
				// хендлер ничего не писал (204, HEAD)
				status = http.StatusOK
			}
			lvl := "info"
			if status >= http.StatusInternalServerError {
				lvl = "error"
			}
			l.Printf("lvl=%s req_id=%s method=%s path=%q status=%d size=%d duration_ms=%d",
				lvl, RequestIDFromCtx(r.Context()), r.Method, r.URL.Path,
				status, mw.size, time.Since(start).Milliseconds())
		})
	}
}
