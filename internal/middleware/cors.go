package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS answers preflights and stamps the response for allowed origins.
// An empty allow-list reflects any origin, which suits local development;
// production deployments list the frontend origin explicitly.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	reflectAny := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimSpace(origin)] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			_, ok := allowed[origin]
			if reflectAny || ok {
				header := c.Writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				// Credentials are only granted to explicitly listed
				// origins; reflect-any stays cookie-less.
				if ok {
					header.Set("Access-Control-Allow-Credentials", "true")
				}
				header.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				header.Set("Access-Control-Max-Age", "600")
			}
			c.Writer.Header().Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
