package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/pratijat22/LetsEarn/internal/domain"
	"github.com/pratijat22/LetsEarn/internal/handler"
)

// Recovery turns a handler panic into a 500 response. A panic mid-checkout must
// never take the process down with in-flight webhook deliveries on other
// connections.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				log.Printf("panic on %s %s: %v\n%s", r.Method, r.URL.Path, v, debug.Stack())
				handler.Error(w, domain.ErrInternal("internal server error", fmt.Errorf("panic: %v", v)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
