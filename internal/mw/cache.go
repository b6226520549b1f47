package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type teeWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w teeWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w teeWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache serves repeated GET requests from an in-memory cache keyed by request
// URI. Reports and fleet-state queries are identical for every user, so the
// key carries no identity. Clients can force a recomputation with
// Cache-Control: no-cache.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if c.GetHeader("Cache-Control") != "no-cache" {
			if resp, found := store.Get(key); found {
				cached := resp.(cachedResponse)
				for k, v := range cached.headers {
					c.Writer.Header()[k] = v
				}
				c.Writer.WriteHeader(cached.status)
				c.Writer.Write(cached.body)
				c.Abort()
				return
			}
		}

		tee := &teeWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = tee

		c.Next()

		// Only successful responses are worth replaying.
		if tee.Status() >= 200 && tee.Status() < 300 {
			store.Set(key, cachedResponse{
				status:  tee.Status(),
				headers: tee.Header().Clone(),
				body:    tee.body.Bytes(),
			}, ttl)
		}
	}
}
