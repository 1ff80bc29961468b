package httpx

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ClampInt — ограничение значения v в диапазоне [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParseBoardView — читает ?status= из query: active (по умолчанию) или completed.
// Неизвестное значение → ("", false).
func ParseBoardView(c *gin.Context) (string, bool) {
	switch v := c.DefaultQuery("status", "active"); v {
	case "active", "completed":
		return v, true
	default:
		return "", false
	}
}

// ParseLimit — читает limit из query с дефолтом и верхней границей.
func ParseLimit(c *gin.Context, defaultLimit, maxLimit int) int {
	limit := defaultLimit
	if v, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit))); err == nil {
		limit = ClampInt(v, 1, maxLimit)
	}
	return limit
}
