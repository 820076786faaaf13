package middleware

import (
	"net/http"
	"time"

	"github.com/rs/cors"
)

// CORS allows browser clients from origins. Preflight results are cached for maxAge.
func CORS(origins []string, exposedHeaders []string, maxAge time.Duration) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   exposedHeaders,
		MaxAge:           int(maxAge / time.Second),
		AllowCredentials: false,
	})

	return handler.Handler
}
