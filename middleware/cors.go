package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns a configured CORS middleware. origins is a comma-separated
// list; empty falls back to common local dev servers.
func CORS(origins string) gin.HandlerFunc {
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = strings.Split(origins, ",")
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type"}

	return cors.New(config)
}
