package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"voicewatch/internal/assistants"
	"voicewatch/internal/auth"
	"voicewatch/internal/monitor"
	"voicewatch/internal/platform"
	"voicewatch/internal/reporting"

	"github.com/gin-gonic/gin"
)

// PlatformDirectory is the slice of the platform client the handlers call
// directly, without a caching service in between.
type PlatformDirectory interface {
	ListPhoneNumbers(ctx context.Context) ([]platform.PhoneNumber, error)
	GetCall(ctx context.Context, id string) (platform.CallSnapshot, error)
}

// RecordingFetcher downloads a call recording and reports the local path.
type RecordingFetcher interface {
	Download(ctx context.Context, callID, recordingURL string) (string, error)
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth       *auth.Manager
	Monitor    *monitor.Monitor
	Assistants *assistants.Service
	Platform   PlatformDirectory
	Recordings RecordingFetcher
	Reports    *reporting.Service
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This endpoint does not validate credentials; deployments front it
// with their identity provider and exchange verified identities for tokens.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	if req.Role != auth.RoleAdmin && req.Role != auth.RoleObserver {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Calls ---

type watchRequest struct {
	CallID   string            `json:"call_id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (h Handlers) WatchCall(c *gin.Context) {
	var req watchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	rec, err := h.Monitor.Watch(req.CallID, req.Metadata)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h Handlers) ListCalls(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"calls": h.Monitor.List()})
}

func (h Handlers) GetCall(c *gin.Context) {
	rec, ok := h.Monitor.Get(c.Param("call_id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not tracked"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h Handlers) UnwatchCall(c *gin.Context) {
	if !h.Monitor.Unwatch(c.Param("call_id")) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not tracked"})
		return
	}
	c.Status(http.StatusNoContent)
}

type ingestRequest struct {
	Events []monitor.CallEvent `json:"events"`
}

// IngestEvents feeds events for an already tracked call, the same path the
// webhook uses, for operators replaying history by hand.
func (h Handlers) IngestEvents(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Monitor.Ingest(c.Param("call_id"), req.Events); err != nil {
		if errors.Is(err, monitor.ErrNotWatched) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not tracked"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// --- Assistants ---

func (h Handlers) ListAssistants(c *gin.Context) {
	out, err := h.Assistants.List(c.Request.Context())
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assistants": out})
}

func (h Handlers) GetAssistant(c *gin.Context) {
	out, err := h.Assistants.Get(c.Request.Context(), c.Param("assistant_id"))
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CreateAssistant(c *gin.Context) {
	var req platform.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Assistants.Create(c.Request.Context(), req)
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) UpdateAssistant(c *gin.Context) {
	var req platform.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Assistants.Update(c.Request.Context(), c.Param("assistant_id"), req)
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) DeleteAssistant(c *gin.Context) {
	if err := h.Assistants.Delete(c.Request.Context(), c.Param("assistant_id")); err != nil {
		abortUpstream(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Phone numbers ---

func (h Handlers) ListNumbers(c *gin.Context) {
	out, err := h.Platform.ListPhoneNumbers(c.Request.Context())
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"numbers": out})
}

// --- Recordings ---

func (h Handlers) DownloadRecording(c *gin.Context) {
	callID := c.Param("call_id")
	snap, err := h.Platform.GetCall(c.Request.Context(), callID)
	if err != nil {
		abortUpstream(c, err)
		return
	}
	if snap.RecordingURL == "" {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no recording for call"})
		return
	}
	path, err := h.Recordings.Download(c.Request.Context(), callID, snap.RecordingURL)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "recording download failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"call_id": callID, "path": path})
}

// --- Reports ---

func (h Handlers) CallsSummary(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
		return
	}
	out, err := h.Reports.CallsSummary(c.Request.Context(), reporting.CallsSummaryRequest{
		Range: reporting.TimeRange{From: from, To: to},
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// abortUpstream maps platform client failures to HTTP statuses.
func abortUpstream(c *gin.Context, err error) {
	if errors.Is(err, platform.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var apiErr *platform.APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": apiErr.Message})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "upstream request failed"})
}
