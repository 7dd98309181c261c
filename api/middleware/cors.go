package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// local dev console
var defaultCORSOrigins = []string{"http://localhost:3000"}

// CORS returns middleware that applies the operator console's allowed origin
// policy. The chat bot talks server to server and never hits this path.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
