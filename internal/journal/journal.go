// Package journal appends one JSON line per significant processing event
// (pair discovered, outcome, run start/finish) to the workspace's append-only
// run log. The journal is the operator-facing record; diagnostic logging goes
// to stderr separately.
package journal

import (
	"fmt"
	"log/slog"
	"os"
)

// Journal writes events to an append-only file. A nil *Journal is valid and
// discards all events.
type Journal struct {
	f   *os.File
	log *slog.Logger
}

// Open opens (creating if needed) the journal file at path. Every event line
// carries the given run id.
func Open(path, runID string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("cannot open journal %s: %w", path, err)
	}
	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})
	return &Journal{
		f:   f,
		log: slog.New(handler).With("run_id", runID),
	}, nil
}

func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.f.Close()
}

// RunStarted records the start of a batch or watch run.
func (j *Journal) RunStarted(mode string) {
	if j == nil {
		return
	}
	j.log.Info("run started", "event", "run_started", "mode", mode)
}

// RunFinished records the end of a run with its outcome counts.
func (j *Journal) RunFinished(mode string, succeeded, failed, timedOut int) {
	if j == nil {
		return
	}
	j.log.Info("run finished", "event", "run_finished", "mode", mode,
		"succeeded", succeeded, "failed", failed, "timed_out", timedOut)
}

// PairDiscovered records a video/face pairing produced by the matcher.
func (j *Journal) PairDiscovered(video, face string) {
	if j == nil {
		return
	}
	j.log.Info("pair discovered", "event", "pair", "video", video, "face", face)
}

// Outcome records the terminal result for one video. reason is empty on
// success and already truncated for operator readability.
func (j *Journal) Outcome(video, face, kind, reason string, attempts int) {
	if j == nil {
		return
	}
	if reason != "" {
		j.log.Info("outcome", "event", "outcome", "video", video, "face", face,
			"kind", kind, "attempts", attempts, "reason", reason)
		return
	}
	j.log.Info("outcome", "event", "outcome", "video", video, "face", face,
		"kind", kind, "attempts", attempts)
}
