package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/salonhq/salon-api/internal/handler"
)

const idempotencyTTL = 24 * time.Hour

// Idempotency guards mutating endpoints against duplicate submissions.
// When a request carries an Idempotency-Key header the key is claimed in
// redis for the TTL; a second request with the same key is rejected with a
// conflict. Requests without the header pass through.
type Idempotency struct {
	client *redis.Client
}

func NewIdempotency(client *redis.Client) *Idempotency {
	return &Idempotency{client: client}
}

func (m *Idempotency) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" || m.client == nil {
			c.Next()
			return
		}

		claimed, err := m.client.SetNX(c.Request.Context(), "idem:"+key, 1, idempotencyTTL).Result()
		if err != nil {
			// Redis being down must not take bookings down with it.
			c.Next()
			return
		}
		if !claimed {
			c.AbortWithStatusJSON(http.StatusConflict, handler.NewErrorResponse("duplicate request"))
			return
		}
		c.Next()
	}
}
