package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pratijat22/LetsEarn/internal/contextkeys"
	"github.com/pratijat22/LetsEarn/internal/handler"
	"github.com/pratijat22/LetsEarn/internal/service"
)

// AdminAuth gates the admin console: a valid bearer token whose subject is on
// the allow-list. The verified email lands in the request context.
func AdminAuth(authSvc *service.AuthService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "no token provided"})
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization header"})
				return
			}

			email, err := authSvc.VerifyToken(parts[1])
			if err != nil {
				handler.Error(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), contextkeys.AdminEmail, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
