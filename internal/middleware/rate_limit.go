package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront_back_end/internal/cache"
)

const (
	// Fenêtre de comptage des créations de commande
	CheckoutWindow = 1 * time.Minute
	checkoutPrefix = "checkout_requests:"
)

// CheckoutRateLimit limite les créations de commande par IP (anti-spam).
// Si Redis est indisponible, la requête passe.
func CheckoutRateLimit(client redis.Cmdable, limit int, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		key := checkoutPrefix + c.ClientIP()
		requests, err := cache.IncrementRateLimit(c.Request.Context(), client, key, CheckoutWindow)
		if err != nil {
			log.Warn("⚠️ Rate limit indisponible", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(limit) - requests
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if requests > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de commandes. Réessayez dans %d secondes", int(CheckoutWindow.Seconds())),
				"retry_after": int(CheckoutWindow.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
