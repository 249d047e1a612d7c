package http

import (
	"log/slog"
	"net/http"
	"time"
)

// logRequest emits one line per handled request, after the handler returns,
// carrying the final status code. The request ID attached by requestID is
// included so log lines can be correlated with responses.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := newResponseWriterWrapper(w)
		next.ServeHTTP(wrapper, r)

		s.log.Info("request handled",
			slog.String("request_id", getRequestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", wrapper.statusCode),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("duration", time.Since(start).String()),
		)
	})
}
