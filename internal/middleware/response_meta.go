package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seminary-calendar/pkg/middleware/requestid"
)

const (
	responseMetaKey = "calendar.response_meta"
	startedAtKey    = "calendar.started_at"

	sourceCache   = "cache"
	sourceBackend = "backend"
)

// WithResponseMeta marks the start of a read request so ResponseMeta can report
// how long the gateway spent on it.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(startedAtKey, time.Now())
		c.Next()
	}
}

// MarkCacheHit records where the payload of the current response came from.
func MarkCacheHit(c *gin.Context, hit bool) {
	meta := metaFor(c)
	meta["cache_hit"] = hit
	if hit {
		meta["source"] = sourceCache
	} else {
		meta["source"] = sourceBackend
	}
}

// ResponseMeta returns the metadata collected for the request, stamped with
// the request ID and the elapsed time so far. It is nil when nothing was
// recorded.
func ResponseMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	raw, ok := c.Get(responseMetaKey)
	if !ok {
		return nil
	}
	meta, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	if started, ok := c.Get(startedAtKey); ok {
		if at, ok := started.(time.Time); ok {
			meta["processing_time_ms"] = time.Since(at).Milliseconds()
		}
	}
	if id := requestid.Value(c); id != "" {
		meta["request_id"] = id
	}
	return meta
}

func metaFor(c *gin.Context) map[string]interface{} {
	if raw, ok := c.Get(responseMetaKey); ok {
		if meta, ok := raw.(map[string]interface{}); ok {
			return meta
		}
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}
