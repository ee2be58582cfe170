// Package orchestrator drives the run: it discovers assets, asks the matcher
// for pairs, invokes the engine sequentially, relocates files by outcome, and
// journals every event. Batch mode processes everything once; watch mode polls
// the input directory on a fixed interval until cancelled.
package orchestrator

import (
	"context"
	"time"

	"github.com/swapdeck/swapdeck/internal/engine"
)

// Invoker runs the external engine for one pair. Satisfied by *engine.Runner.
type Invoker interface {
	Invoke(ctx context.Context, facePath, videoPath, outputPath string) engine.Outcome
}

// VideoOutcome is the terminal result for one input video.
type VideoOutcome struct {
	Video    string `json:"video"`
	Face     string `json:"face"`
	Kind     string `json:"kind"`
	Reason   string `json:"reason,omitempty"`
	Output   string `json:"output,omitempty"`
	Attempts int    `json:"attempts"`
}

// Summary is the machine-readable result of a batch run.
type Summary struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	TimedOut  int            `json:"timed_out"`
	Outcomes  []VideoOutcome `json:"outcomes"`
}

func (s *Summary) add(out VideoOutcome) {
	s.Outcomes = append(s.Outcomes, out)
	switch out.Kind {
	case engine.OutcomeSuccess:
		s.Succeeded++
	case engine.OutcomeTimeout:
		s.TimedOut++
	default:
		s.Failed++
	}
}

// Options tunes a run.
type Options struct {
	MaxRetries    int               // engine retries per video before errors/ routing
	WatchInterval time.Duration     // poll interval for watch mode
	FaceMappings  map[string]string // explicit video -> face overrides
	DefaultFace   string            // face key used when no filename match exists
}

// Run states exposed through Snapshot.
const (
	StateIdle       = "idle"
	StateProcessing = "processing"
	StateWatching   = "watching"
	StatePaused     = "paused"
)

// Snapshot is a point-in-time view of the orchestrator for the status API.
type Snapshot struct {
	State        string `json:"state"`
	CurrentVideo string `json:"current_video,omitempty"`
	LastError    string `json:"last_error,omitempty"`
	Succeeded    int    `json:"succeeded"`
	Failed       int    `json:"failed"`
	TimedOut     int    `json:"timed_out"`
}
