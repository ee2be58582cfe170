package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	var events []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("journal line is not JSON: %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestJournal_OneLinePerEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swapdeck.log")
	j, err := Open(path, "run1234")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	j.RunStarted("batch")
	j.PairDiscovered("alice_meeting.mp4", "alice")
	j.Outcome("alice_meeting.mp4", "alice", "success", "", 1)
	j.Outcome("broken.mp4", "bob", "failure", "model load failed", 2)
	j.RunFinished("batch", 1, 1, 0)
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	events := readLines(t, path)
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}
	for i, ev := range events {
		if ev["run_id"] != "run1234" {
			t.Errorf("event %d missing run_id: %v", i, ev)
		}
	}
	if events[0]["event"] != "run_started" || events[0]["mode"] != "batch" {
		t.Errorf("first event = %v", events[0])
	}
	if events[2]["kind"] != "success" {
		t.Errorf("success outcome = %v", events[2])
	}
	if _, ok := events[2]["reason"]; ok {
		t.Error("success outcome should not carry a reason")
	}
	if events[3]["reason"] != "model load failed" {
		t.Errorf("failure outcome = %v", events[3])
	}
	if events[4]["succeeded"] != float64(1) || events[4]["failed"] != float64(1) {
		t.Errorf("run_finished counts = %v", events[4])
	}
}

func TestJournal_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swapdeck.log")

	j1, err := Open(path, "run1")
	if err != nil {
		t.Fatal(err)
	}
	j1.RunStarted("batch")
	j1.Close()

	j2, err := Open(path, "run2")
	if err != nil {
		t.Fatal(err)
	}
	j2.RunStarted("watch")
	j2.Close()

	events := readLines(t, path)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0]["run_id"] != "run1" || events[1]["run_id"] != "run2" {
		t.Errorf("run ids = %v, %v", events[0]["run_id"], events[1]["run_id"])
	}
}

func TestJournal_NilSafe(t *testing.T) {
	var j *Journal
	j.RunStarted("batch")
	j.PairDiscovered("a.mp4", "alice")
	j.Outcome("a.mp4", "alice", "success", "", 1)
	j.RunFinished("batch", 1, 0, 0)
	if err := j.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}
