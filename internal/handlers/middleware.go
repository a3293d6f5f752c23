package handlers

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/stefanomitello/links-tracker/internal/config"
)

// AuthMiddleware gates administrative routes behind HTTP basic auth.
func AuthMiddleware(username, password string) func(http.Handler) http.Handler {
	return chimiddleware.BasicAuth("links-tracker", map[string]string{username: password})
}

// CORSMiddleware admits the configured parent domain and its subdomains
// with credentials, the API's methods only, and a bounded preflight cache.
func CORSMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return cfg.IsOriginAllowed(origin)
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
