package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// requestTimeout bounds the request context so store calls give up after d.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
