package api

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
)

// defaultAllowedOrigins is used when ALLOWED_ORIGINS is not set.
var defaultAllowedOrigins = []string{
	"http://localhost",
	"http://127.0.0.1",
}

// AllowedOrigins returns the CORS origin allow-list from the environment,
// falling back to the defaults.
func AllowedOrigins() []string {
	raw := os.Getenv("ALLOWED_ORIGINS")
	if raw == "" {
		return defaultAllowedOrigins
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// CORSConfig builds the shared CORS policy: the configured origin
// allow-list plus browser-extension origins. Anything else gets no CORS
// headers at all.
func CORSConfig() cors.Config {
	allowed := AllowedOrigins()
	return cors.Config{
		AllowOriginFunc: func(origin string) bool {
			for _, a := range allowed {
				if origin == a {
					return true
				}
			}
			return strings.HasPrefix(origin, "chrome-extension://") ||
				strings.HasPrefix(origin, "moz-extension://")
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-User-Id", "X-User-Email", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
}
