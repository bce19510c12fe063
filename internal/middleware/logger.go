package middleware

import (
	"log"
	"net/http"
	"time"
)

// Logger writes one line per request: client IP, method, path, status,
// response size, and duration. Query strings are deliberately left out of the
// line since download tokens and buyer emails travel there.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		log.Printf("%s %s %s %d %dB %s",
			extractClientIP(r),
			r.Method,
			r.URL.Path,
			ww.status,
			ww.written,
			time.Since(start).Round(time.Millisecond),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}
