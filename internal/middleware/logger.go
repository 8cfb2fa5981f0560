package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Logger logs requests through logrus. Only errors are logged at warn or
// above; successful requests stay at debug to keep the output quiet.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		entry := logrus.WithFields(logrus.Fields{
			"status":  ww.Status(),
			"latency": time.Since(start),
			"method":  r.Method,
			"path":    r.URL.Path,
		})

		switch {
		case ww.Status() >= 500:
			entry.Error("server error")
		case ww.Status() >= 400:
			entry.Warn("client error")
		default:
			entry.Debug("request served")
		}
	})
}
