package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/swapdeck/swapdeck/internal/orchestrator"
	"github.com/swapdeck/swapdeck/internal/workspace"
)

type fakeController struct {
	snap   orchestrator.Snapshot
	paused bool
}

func (f *fakeController) Snapshot() orchestrator.Snapshot { return f.snap }
func (f *fakeController) Pause()                          { f.paused = true }
func (f *fakeController) Resume()                         { f.paused = false }
func (f *fakeController) IsPaused() bool                  { return f.paused }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServerConfig(t *testing.T, ctrl Controller) ServerConfig {
	t.Helper()
	layout, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	if err := layout.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	return ServerConfig{
		Port:       0,
		Controller: ctrl,
		Layout:     layout,
		Logger:     discardLogger(),
		StartTime:  time.Now(),
		Version:    "test",
	}
}

func doRequest(router http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router := NewRouter(testServerConfig(t, &fakeController{}))

	rec := doRequest(router, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "test" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestStatusEndpoint(t *testing.T) {
	ctrl := &fakeController{snap: orchestrator.Snapshot{
		State:        orchestrator.StateWatching,
		CurrentVideo: "clip.mp4",
		Succeeded:    2,
		Failed:       1,
	}}
	cfg := testServerConfig(t, ctrl)
	if err := os.WriteFile(filepath.Join(cfg.Layout.Input(), "a.mp4"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	router := NewRouter(cfg)

	rec := doRequest(router, http.MethodGet, "/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.State != "watching" || resp.CurrentVideo != "clip.mp4" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Succeeded != 2 || resp.Failed != 1 {
		t.Errorf("counts = %+v", resp)
	}
	if resp.Workspace["input"] != 1 {
		t.Errorf("workspace counts = %v, want input: 1", resp.Workspace)
	}
	if !resp.Engine.Ready {
		t.Errorf("engine should be ready when no preflight probe is configured")
	}
}

func TestStatusEndpoint_PreflightFailure(t *testing.T) {
	cfg := testServerConfig(t, &fakeController{})
	cfg.Preflight = func() error { return errors.New("engine script missing") }
	router := NewRouter(cfg)

	rec := doRequest(router, http.MethodGet, "/status")
	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Engine.Ready {
		t.Error("engine reported ready despite failing preflight")
	}
	if resp.Engine.Error != "engine script missing" {
		t.Errorf("engine error = %q", resp.Engine.Error)
	}
}

func TestPauseResumeEndpoints(t *testing.T) {
	ctrl := &fakeController{}
	router := NewRouter(testServerConfig(t, ctrl))

	rec := doRequest(router, http.MethodPost, "/pause")
	if rec.Code != http.StatusOK {
		t.Fatalf("pause status = %d", rec.Code)
	}
	if !ctrl.paused {
		t.Error("controller not paused")
	}
	var resp PauseResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Paused {
		t.Error("response should report paused")
	}

	rec = doRequest(router, http.MethodPost, "/resume")
	if rec.Code != http.StatusOK {
		t.Fatalf("resume status = %d", rec.Code)
	}
	if ctrl.paused {
		t.Error("controller still paused after resume")
	}

	// Paused state shows up in /status.
	ctrl.paused = true
	rec = doRequest(router, http.MethodGet, "/status")
	var status StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Paused {
		t.Error("/status does not reflect paused state")
	}
}

func TestUnknownRoute(t *testing.T) {
	router := NewRouter(testServerConfig(t, &fakeController{}))
	if rec := doRequest(router, http.MethodGet, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServerBindsLoopback(t *testing.T) {
	srv := NewServer(testServerConfig(t, &fakeController{}))
	if got := srv.Addr(); got != "127.0.0.1:0" {
		t.Errorf("Addr = %q, want loopback binding", got)
	}
}
