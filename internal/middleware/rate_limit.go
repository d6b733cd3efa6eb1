package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"atelier_back_end/internal/database"
)

const (
	// Limites par endpoint
	CheckoutMaxRequests = 10 // Par minute et par IP sur les endpoints de paiement
	APIMaxRequests      = 100

	// Durées de cooldown
	CheckoutCooldown = 1 * time.Minute
	APICooldown      = 1 * time.Minute
)

// CheckoutRateLimit limite les créations de commande et de paiement par IP
func CheckoutRateLimit() gin.HandlerFunc {
	return rateLimit("checkout", CheckoutMaxRequests, CheckoutCooldown)
}

// APIRateLimit limite les endpoints généraux par IP
func APIRateLimit() gin.HandlerFunc {
	return rateLimit("api", APIMaxRequests, APICooldown)
}

func rateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if database.Redis == nil {
			c.Next()
			return
		}

		ctx := context.Background()
		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())

		count, err := database.Redis.Incr(ctx, key).Result()
		if err != nil {
			// Redis indisponible : on laisse passer plutôt que de bloquer la vente
			c.Next()
			return
		}
		if count == 1 {
			database.Redis.Expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			ttl := database.Redis.TTL(ctx, key).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Trop de requêtes, réessayez plus tard",
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
