package logging

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/intern-assistant/platform/internal/shared/middleware"
)

// New builds the process logger. Development gets the console writer,
// everything else structured JSON on stdout.
func New(env string) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

// RequestLogger logs one line per HTTP request.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.statusCode).
				Dur("duration", time.Since(start)).
				Str("ip", middleware.GetClientIP(r)).
				Msg("request")
		})
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
