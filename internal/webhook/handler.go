// Package webhook validates and ingests out-of-band call events pushed by
// the voice platform. Validated events flow into the monitor through the
// same deduplicating ingestion path the poll sweep uses.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"voicewatch/internal/monitor"
	"voicewatch/pkg/logger"
	"voicewatch/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	maxBodyBytes = 1 << 20

	// replayTTL bounds the redis replay-suppression window. Redeliveries
	// after expiry are still harmless: per-call event dedup catches them.
	replayTTL = 24 * time.Hour
)

// Ingestor is the slice of the monitor the webhook needs.
type Ingestor interface {
	Watch(id string, metadata map[string]string) (monitor.CallRecord, error)
	Ingest(callID string, events []monitor.CallEvent) error
}

// ReplayGuard suppresses duplicate deliveries across process replicas.
type ReplayGuard interface {
	FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisReplayGuard backs ReplayGuard with redis SET NX.
type RedisReplayGuard struct {
	RDB *redis.Client
}

func (g RedisReplayGuard) FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return utils.FirstSeen(ctx, g.RDB, "webhook:seen:"+key, ttl)
}

// payload is the platform's webhook envelope.
type payload struct {
	CallID   string              `json:"call_id"`
	Metadata map[string]string   `json:"metadata,omitempty"`
	Events   []monitor.CallEvent `json:"events"`
}

// Handler receives platform webhooks.
type Handler struct {
	Secret  string
	Monitor Ingestor
	Replay  ReplayGuard // optional; nil skips cross-replica suppression
}

// HandleEvents is the gin handler for POST /webhooks/voice.
//
// Order matters: the signature covers the raw body, so the body is read
// before any JSON parsing; an invalid signature is rejected without looking
// at the payload.
func (h Handler) HandleEvents(c *gin.Context) {
	log := logger.FromGin(c)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if !Verify(h.Secret, body, c.GetHeader(SignatureHeader)) {
		log.Warn("webhook signature rejected")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if p.CallID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call_id required"})
		return
	}

	if h.Replay != nil {
		first, err := h.Replay.FirstSeen(c.Request.Context(), Sign(h.Secret, body), replayTTL)
		if err != nil {
			// Redis being down must not drop events; fall through to the
			// in-memory dedup.
			log.Warn("replay guard unavailable", "err", err)
		} else if !first {
			c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
			return
		}
	}

	// Webhooks may arrive before anyone watches the call explicitly.
	if _, err := h.Monitor.Watch(p.CallID, p.Metadata); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call_id required"})
		return
	}
	if err := h.Monitor.Ingest(p.CallID, p.Events); err != nil && !errors.Is(err, monitor.ErrNotWatched) {
		log.Error("webhook ingestion failed", "call_id", p.CallID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "events": len(p.Events)})
}
