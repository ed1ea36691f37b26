package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimit ограничивает количество запросов с одного IP к эндпоинту
// в пределах окна window (фиксированное окно на счетчиках Redis).
// Если Redis недоступен, запросы пропускаются без ограничений, так же
// как сервис в целом продолжает работу без кэша.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", c.ClientIP(), c.FullPath())

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("Ошибка Redis при проверке лимита запросов: %v", err)
			c.Next()
			return
		}

		// Первый запрос в окне задает срок жизни счетчика
		if count == 1 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				log.Printf("Ошибка установки TTL для счетчика лимита: %v", err)
			}
		}

		if count > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Слишком много запросов, попробуйте позже"})
			c.Abort()
			return
		}

		c.Next()
	}
}
