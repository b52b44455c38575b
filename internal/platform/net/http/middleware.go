package http

import (
	"encoding/json"
	stdhttp "net/http"
	"runtime/debug"
	"time"

	perr "reviewpipe/internal/platform/errors"
	"reviewpipe/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// captureWriter wraps the original ResponseWriter and records status & bytes
type captureWriter struct {
	stdhttp.ResponseWriter
	status int
	bytes  int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	n, err := cw.ResponseWriter.Write(b)
	cw.bytes += n
	return n, err
}

// AccessLog logs method, path, status, elapsed, and bytes written
// requests taking >= slow log at warn; 0 disables slow marking
func AccessLog(slow time.Duration) func(stdhttp.Handler) stdhttp.Handler {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			cw := &captureWriter{ResponseWriter: w, status: stdhttp.StatusOK}
			start := time.Now()

			next.ServeHTTP(cw, r)

			elapsed := time.Since(start)
			log := logger.Named("http")
			evt := log.Info()
			if slow > 0 && elapsed >= slow {
				evt = log.Warn()
			}
			evt.Str("request_id", chimw.GetReqID(r.Context())).
				Int("status", cw.status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("bytes", cw.bytes).
				Msg("request done")
		})
	}
}

// RecoverJSON converts panics into a JSON 500 envelope and logs the stack
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			if v := recover(); v != nil {
				reqID := chimw.GetReqID(r.Context())
				logger.Named("http").Error().
					Str("request_id", reqID).
					Interface("panic", v).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				if reqID != "" {
					w.Header().Set("X-Request-ID", reqID)
				}
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(stdhttp.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(Envelope{
					StatusCode: stdhttp.StatusInternalServerError,
					Status:     stdhttp.StatusText(stdhttp.StatusInternalServerError),
					Code:       perr.ErrorCodePanic,
					Kind:       perr.ErrorCodePanic.String(),
					Error:      "panic recovered",
					RequestID:  reqID,
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
