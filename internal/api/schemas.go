package api

import "github.com/swapdeck/swapdeck/internal/orchestrator"

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	State        string         `json:"state"`
	Paused       bool           `json:"paused"`
	CurrentVideo string         `json:"current_video,omitempty"`
	LastError    string         `json:"last_error,omitempty"`
	Succeeded    int            `json:"succeeded"`
	Failed       int            `json:"failed"`
	TimedOut     int            `json:"timed_out"`
	Workspace    map[string]int `json:"workspace"`
	Engine       EngineStatus   `json:"engine"`
}

type EngineStatus struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

type PauseResponse struct {
	Paused bool `json:"paused"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func snapshotToResponse(s orchestrator.Snapshot) StatusResponse {
	return StatusResponse{
		State:        s.State,
		CurrentVideo: s.CurrentVideo,
		LastError:    s.LastError,
		Succeeded:    s.Succeeded,
		Failed:       s.Failed,
		TimedOut:     s.TimedOut,
	}
}
