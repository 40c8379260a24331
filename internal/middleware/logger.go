package middleware

import (
	"log"
	"net/http"
	"time"
)

// Logger emits one access-log line per request. Payment and webhook traffic
// flows through here too, so the line carries only method, path, status and
// duration: never bodies, which may hold card data.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Printf("%s %s %d %s",
			r.Method,
			r.URL.Path,
			rec.status,
			time.Since(start).Round(time.Millisecond),
		)
	})
}

// statusRecorder captures the status code written by the handler chain.
// The default matches net/http: a handler that never calls WriteHeader
// implicitly sends 200.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
