package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/walletclient/pkg/logger"
)

const maxLoggedBody = 4 << 10

// boundedBuffer keeps at most maxLoggedBody bytes
type boundedBuffer struct {
	bytes.Buffer
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if room := maxLoggedBody - b.Len(); room > 0 {
		if len(p) > room {
			b.Buffer.Write(p[:room])
		} else {
			b.Buffer.Write(p)
		}
	}
	return len(p), nil
}

// Logger logs one line per request. The request id is exposed in the
// X-Request-Id header and, for failed requests, the envelope's message is
// logged as the error.
func Logger(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			if reqID := chimiddleware.GetReqID(r.Context()); reqID != "" {
				r = r.WithContext(context.WithValue(r.Context(), logger.RequestIDKey, reqID))
				w.Header().Set("X-Request-Id", reqID)
			}

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			var body boundedBuffer
			ww.Tee(&body)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			}
			if status >= http.StatusBadRequest {
				if msg := envelopeMessage(body.Bytes()); msg != "" {
					attrs = append(attrs, "error", msg)
				}
			}

			reqLog := log.WithContext(r.Context())
			switch {
			case status >= http.StatusInternalServerError:
				reqLog.Error("HTTP request", attrs...)
			case status >= http.StatusBadRequest:
				reqLog.Warn("HTTP request", attrs...)
			default:
				reqLog.Info("HTTP request", attrs...)
			}
		})
	}
}

func envelopeMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &env) != nil {
		return ""
	}
	return env.Message
}
