package httpgin

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	redisrepo "github.com/kirinyoku/busseat/internal/repository/redis"
)

const idemLockTTL = 60 * time.Second

// idempotent runs fn once per Idempotency-Key. A repeated key replays
// the stored response; a key still being processed gets 409. Without a
// key, or without a store, fn simply runs.
func idempotent(
	c *gin.Context,
	idem *redisrepo.IdempotencyStore,
	keyFn func(sessionID, idemKey string) string,
	status int,
	fn func() (any, error),
) {
	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if idem == nil || idemKey == "" {
		v, err := fn()
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(status, v)
		return
	}

	ctx := c.Request.Context()
	storageKey := keyFn(sessionID(c), idemKey)

	replay := func() bool {
		payload, ok, _ := idem.GetResult(ctx, storageKey)
		if !ok {
			return false
		}
		c.Header("Idempotency-Key", idemKey)
		c.Data(status, "application/json; charset=utf-8", []byte(payload))
		return true
	}

	if replay() {
		return
	}

	locked, err := idem.AcquireLock(ctx, storageKey, idemLockTTL)
	if err != nil {
		respondErr(c, err)
		return
	}
	if !locked {
		if replay() {
			return
		}
		c.Header("Retry-After", "1")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
		return
	}

	v, err := fn()
	if err != nil {
		_ = idem.Release(ctx, storageKey)
		respondErr(c, err)
		return
	}

	b, err := json.Marshal(v)
	if err == nil {
		err = idem.SaveResult(ctx, storageKey, string(b))
	}
	if err != nil {
		_ = idem.Release(ctx, storageKey)
		_ = c.Error(fmt.Errorf("idempotency result not stored: %w", err))
	}

	c.Header("Idempotency-Key", idemKey)
	c.JSON(status, v)
}
