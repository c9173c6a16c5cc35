package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("client init: %v", err)
	}
	return c, srv
}

func TestGetCall_SendsBearerAndDecodes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if r.URL.Path != "/call/c1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(CallSnapshot{
			ID:     "c1",
			Status: "in_progress",
			Events: []Event{{ID: "e1", Type: "answered"}},
		})
	})

	snap, err := c.GetCall(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if snap.Status != "in_progress" || len(snap.Events) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestGetCall_404IsErrNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"call not found"}`, http.StatusNotFound)
	})

	_, err := c.GetCall(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetCall_ServerErrorIsAPIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"upstream exploded"}`, http.StatusBadGateway)
	})

	_, err := c.GetCall(context.Background(), "c1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "upstream exploded" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}

func TestCreateAssistant_PostsJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/assistant" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req AssistantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Assistant{ID: "a1", Name: req.Name})
	})

	a, err := c.CreateAssistant(context.Background(), AssistantRequest{Name: "support"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a.ID != "a1" || a.Name != "support" {
		t.Fatalf("unexpected assistant: %+v", a)
	}
}

func TestDownloadRecording_StreamsBody(t *testing.T) {
	payload := []byte("RIFF....fake-wav-bytes")
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	})

	var buf bytes.Buffer
	n, err := c.DownloadRecording(context.Background(), srv.URL+"/recordings/c1.wav", &buf)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n != int64(len(payload)) || !bytes.Equal(buf.Bytes(), payload) {
		t.Fatalf("expected %d bytes streamed, got %d", len(payload), n)
	}
}
