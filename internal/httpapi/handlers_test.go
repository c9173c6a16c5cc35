package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voicewatch/internal/archive"
	"voicewatch/internal/assistants"
	"voicewatch/internal/monitor"
	"voicewatch/internal/platform"
	"voicewatch/internal/reporting"

	"github.com/gin-gonic/gin"
)

type fakeDirectory struct {
	numbers []platform.PhoneNumber
	snaps   map[string]platform.CallSnapshot
}

func (f *fakeDirectory) ListPhoneNumbers(context.Context) ([]platform.PhoneNumber, error) {
	return f.numbers, nil
}

func (f *fakeDirectory) GetCall(_ context.Context, id string) (platform.CallSnapshot, error) {
	snap, ok := f.snaps[id]
	if !ok {
		return platform.CallSnapshot{}, fmt.Errorf("get call %s: %w", id, platform.ErrNotFound)
	}
	return snap, nil
}

type fakeRecordings struct {
	paths map[string]string
}

func (f *fakeRecordings) Download(_ context.Context, callID, _ string) (string, error) {
	return f.paths[callID], nil
}

type fakeAssistantAPI struct {
	items map[string]platform.Assistant
}

func (f *fakeAssistantAPI) ListAssistants(context.Context) ([]platform.Assistant, error) {
	var out []platform.Assistant
	for _, a := range f.items {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAssistantAPI) GetAssistant(_ context.Context, id string) (platform.Assistant, error) {
	a, ok := f.items[id]
	if !ok {
		return platform.Assistant{}, fmt.Errorf("get assistant %s: %w", id, platform.ErrNotFound)
	}
	return a, nil
}

func (f *fakeAssistantAPI) CreateAssistant(_ context.Context, req platform.AssistantRequest) (platform.Assistant, error) {
	a := platform.Assistant{ID: "asst-new", Name: req.Name}
	f.items[a.ID] = a
	return a, nil
}

func (f *fakeAssistantAPI) UpdateAssistant(_ context.Context, id string, req platform.AssistantRequest) (platform.Assistant, error) {
	a, ok := f.items[id]
	if !ok {
		return platform.Assistant{}, fmt.Errorf("update assistant %s: %w", id, platform.ErrNotFound)
	}
	a.Name = req.Name
	f.items[id] = a
	return a, nil
}

func (f *fakeAssistantAPI) DeleteAssistant(_ context.Context, id string) error {
	delete(f.items, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRouter(t *testing.T) (*gin.Engine, Handlers) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := monitor.New(nil, monitor.Config{Interval: time.Hour}, testLogger(), nil)
	t.Cleanup(m.Stop)

	h := Handlers{
		Monitor:    m,
		Assistants: assistants.NewService(&fakeAssistantAPI{items: map[string]platform.Assistant{}}, nil, testLogger()),
		Platform:   &fakeDirectory{snaps: map[string]platform.CallSnapshot{}},
		Recordings: &fakeRecordings{paths: map[string]string{}},
		Reports:    reporting.NewService(archive.NewMemoryStore()),
	}

	r := gin.New()
	r.POST("/v1/calls", h.WatchCall)
	r.GET("/v1/calls", h.ListCalls)
	r.GET("/v1/calls/:call_id", h.GetCall)
	r.DELETE("/v1/calls/:call_id", h.UnwatchCall)
	r.POST("/v1/calls/:call_id/events", h.IngestEvents)
	r.GET("/v1/assistants", h.ListAssistants)
	r.POST("/v1/assistants", h.CreateAssistant)
	r.GET("/v1/assistants/:assistant_id", h.GetAssistant)
	r.GET("/v1/numbers", h.ListNumbers)
	r.POST("/v1/calls/:call_id/recording", h.DownloadRecording)
	r.GET("/v1/reports/calls", h.CallsSummary)
	return r, h
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWatchAndGetCall(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/calls", gin.H{"call_id": "call-1", "metadata": gin.H{"team": "support"}})
	if w.Code != http.StatusOK {
		t.Fatalf("watch: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/v1/calls/call-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	var rec monitor.CallRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.ID != "call-1" || rec.Status != monitor.StatusInitializing {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Metadata["team"] != "support" {
		t.Fatalf("metadata lost: %+v", rec.Metadata)
	}
}

func TestWatchCall_RequiresCallID(t *testing.T) {
	r, _ := testRouter(t)
	if w := doJSON(t, r, http.MethodPost, "/v1/calls", gin.H{}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetCall_NotTracked(t *testing.T) {
	r, _ := testRouter(t)
	if w := doJSON(t, r, http.MethodGet, "/v1/calls/ghost", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUnwatchCall(t *testing.T) {
	r, _ := testRouter(t)
	doJSON(t, r, http.MethodPost, "/v1/calls", gin.H{"call_id": "call-1"})

	if w := doJSON(t, r, http.MethodDelete, "/v1/calls/call-1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("unwatch: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/v1/calls/call-1", nil); w.Code != http.StatusNotFound {
		t.Fatalf("second unwatch: %d", w.Code)
	}
}

func TestIngestEvents(t *testing.T) {
	r, _ := testRouter(t)
	doJSON(t, r, http.MethodPost, "/v1/calls", gin.H{"call_id": "call-1"})

	events := gin.H{"events": []gin.H{{
		"id":        "ev-1",
		"type":      "answered",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}}}
	if w := doJSON(t, r, http.MethodPost, "/v1/calls/call-1/events", events); w.Code != http.StatusAccepted {
		t.Fatalf("ingest: %d %s", w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodGet, "/v1/calls/call-1", nil)
	var rec monitor.CallRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Status != monitor.StatusInProgress {
		t.Fatalf("status = %s, want in_progress", rec.Status)
	}

	if w := doJSON(t, r, http.MethodPost, "/v1/calls/ghost/events", events); w.Code != http.StatusNotFound {
		t.Fatalf("ingest untracked: %d", w.Code)
	}
}

func TestAssistantsCRUD(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/assistants", gin.H{"name": "support bot"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created platform.Assistant
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if w := doJSON(t, r, http.MethodGet, "/v1/assistants/"+created.ID, nil); w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/v1/assistants/ghost", nil); w.Code != http.StatusNotFound {
		t.Fatalf("get missing: %d", w.Code)
	}
}

func TestListNumbers(t *testing.T) {
	r, h := testRouter(t)
	h.Platform.(*fakeDirectory).numbers = []platform.PhoneNumber{{ID: "n1", Number: "+15550100"}}

	w := doJSON(t, r, http.MethodGet, "/v1/numbers", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("numbers: %d", w.Code)
	}
	var resp struct {
		Numbers []platform.PhoneNumber `json:"numbers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Numbers) != 1 || resp.Numbers[0].Number != "+15550100" {
		t.Fatalf("unexpected numbers: %+v", resp.Numbers)
	}
}

func TestDownloadRecording(t *testing.T) {
	r, h := testRouter(t)
	dir := h.Platform.(*fakeDirectory)
	dir.snaps["call-1"] = platform.CallSnapshot{ID: "call-1", RecordingURL: "https://cdn.example.com/r.wav"}
	dir.snaps["call-2"] = platform.CallSnapshot{ID: "call-2"}
	h.Recordings.(*fakeRecordings).paths["call-1"] = "/tmp/rec/call-1.wav"

	w := doJSON(t, r, http.MethodPost, "/v1/calls/call-1/recording", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download: %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/calls/call-2/recording", nil); w.Code != http.StatusNotFound {
		t.Fatalf("no recording url: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/calls/ghost/recording", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown call: %d", w.Code)
	}
}

func TestCallsSummaryEndpoint(t *testing.T) {
	r, _ := testRouter(t)

	from := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	to := time.Now().UTC().Format(time.RFC3339)
	w := doJSON(t, r, http.MethodGet, "/v1/reports/calls?from="+from+"&to="+to, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary: %d %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, r, http.MethodGet, "/v1/reports/calls?from=bogus&to="+to, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad from: %d", w.Code)
	}
}
