package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the browser front end at origins to call the API. A "*"
// origin disables credentials.
func CORS(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-Id",
			"X-Test-User-ID",
			"X-Test-User-Email",
		},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	for _, o := range origins {
		if o == "*" {
			opts.AllowCredentials = false
			break
		}
	}

	return cors.Handler(opts)
}
