package websocket

import (
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/websocket"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow specific origins for WebSocket connections
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		allowedOrigins := []string{
			"http://localhost:3000", // Frontend dev server
			"https://localhost:3000",
			"http://localhost", // Nginx proxy (Docker)
			"https://localhost",
			"http://127.0.0.1:3000",
			"http://127.0.0.1",
		}

		// Add custom origins from environment variable if set
		if customOrigins := os.Getenv("ALLOWED_ORIGINS"); customOrigins != "" {
			for _, customOrigin := range strings.Split(customOrigins, ",") {
				allowedOrigins = append(allowedOrigins, strings.TrimSpace(customOrigin))
			}
		}

		// Non-browser clients send no Origin header
		if origin == "" {
			return true
		}

		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				return true
			}
		}

		// Loopback origins on any port are fine for development. The
		// comparison is against the parsed host, so a domain that merely
		// contains "localhost" never matches.
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := u.Hostname()
		return host == "localhost" || host == "127.0.0.1"
	},
}
