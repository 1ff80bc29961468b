package httpx

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// TimeoutMiddleware — ограничивает время обработки запроса дедлайном
// контекста. Нулевая длительность отключает ограничение.
func TimeoutMiddleware(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
