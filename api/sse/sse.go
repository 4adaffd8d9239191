// Package sse streams interpreter and asset events to debugging clients.
package sse

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/rmmvinterp/cache"
	"github.com/kasuganosora/rmmvinterp/game/asset"
	"go.uber.org/zap"
)

// InterpChannel carries interpreter failures and status changes.
const InterpChannel = "interp"

const defaultKeepalive = 30 * time.Second

// streamable lists the channels a client may subscribe to.
var streamable = map[string]bool{
	InterpChannel: true,
	asset.Channel: true,
}

// Handler handles the SSE endpoint.
type Handler struct {
	pubsub    cache.PubSub
	adminKey  string
	keepalive time.Duration
	logger    *zap.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(pubsub cache.PubSub, adminKey string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{pubsub: pubsub, adminKey: adminKey, keepalive: defaultKeepalive, logger: logger}
}

// SetKeepalive changes the interval between keepalive comments.
func (h *Handler) SetKeepalive(d time.Duration) {
	if d > 0 {
		h.keepalive = d
	}
}

// authorized accepts the admin key from the X-Admin-Key header or, since
// EventSource cannot set headers, the key query parameter.
func (h *Handler) authorized(c *gin.Context) bool {
	key := c.GetHeader("X-Admin-Key")
	if key == "" {
		key = c.Query("key")
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.adminKey)) == 1
}

// channels parses ?channels=a,b. Unknown names are dropped; none selects all.
func channels(raw string) []string {
	var out []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if streamable[name] {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		out = []string{InterpChannel, asset.Channel}
	}
	return out
}

// ServeSSE handles GET /api/debug/events?key=<admin key>&channels=interp,asset.
// Each pub/sub message is sent as an event named after its channel.
func (h *Handler) ServeSSE(c *gin.Context) {
	if h.adminKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
		return
	}
	if !h.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	subCtx, subCancel := context.WithCancel(c.Request.Context())
	defer subCancel()

	msgCh, unsub, err := h.pubsub.Subscribe(subCtx, channels(c.Query("channels"))...)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subscribe failed"})
		return
	}
	defer unsub()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	fmt.Fprintf(c.Writer, "event: connected\ndata: {}\n\n")
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", msg.Channel, msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}

// Publish sends v as JSON to every subscriber of channel.
func (h *Handler) Publish(ctx context.Context, channel string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("sse: marshal %s event: %w", channel, err)
	}
	return h.pubsub.Publish(ctx, channel, string(payload))
}
