package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// cachedResponse is what a completed request leaves behind: the exact
// status and body, so a replay is indistinguishable from the original.
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Idempotency dedupes retried POSTs carrying an Idempotency-Key header.
// The submission endpoint is unauthenticated, so the key is scoped by
// client address instead of a user id.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")

		if rdb == nil || idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), c.ClientIP(), idempKey)
		lockKey := cacheKey + ":lock"

		// replay the recorded response when the same key already completed
		val, err := rdb.Get(c.Request.Context(), cacheKey).Result()
		if err == nil {
			var cached cachedResponse
			if json.Unmarshal([]byte(val), &cached) == nil {
				c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
				c.Abort()
				return
			}
		}

		// short-lived SetNX lock so a crashed request releases itself
		isNew, _ := rdb.SetNX(c.Request.Context(), lockKey, "locked", 30*time.Second).Result()

		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "PROCESSING",
				"message": "Permintaan Anda sedang diproses, mohon tunggu sebentar.",
			})
			return
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer}
		c.Writer = writer

		c.Next()

		rdb.Del(c.Request.Context(), lockKey)

		if writer.Status() >= 200 && writer.Status() < 300 && json.Valid(writer.body) {
			payload, err := json.Marshal(cachedResponse{
				Status: writer.Status(),
				Body:   writer.body,
			})
			if err == nil {
				rdb.Set(c.Request.Context(), cacheKey, payload, 24*time.Hour)
			}
		}
	}
}

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}
