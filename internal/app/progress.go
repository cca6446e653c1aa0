package app

import (
	"context"
	"sync"

	"github.com/specialistvlad/parsegrid/internal/engine"
)

// progress tracks the current run for the report endpoint.
type progress struct {
	mu        sync.RWMutex
	runID     string
	total     int
	completed int
	failed    int
	report    *engine.Report
}

// progressSnapshot is the JSON shape served while a job is running.
type progressSnapshot struct {
	RunID     string `json:"run_id"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	Finished  bool   `json:"finished"`
}

func (p *progress) JobStarted(_ context.Context, runID string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runID, p.total, p.completed, p.failed, p.report = runID, total, 0, 0, nil
}

func (p *progress) ResultRecorded(_ context.Context, _ string, res engine.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	if !res.Outcome.Succeeded() {
		p.failed++
	}
}

func (p *progress) JobFinished(_ context.Context, report *engine.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.report = report
}

// snapshot returns the final report once available, otherwise the live
// counters. ok is false before any job started.
func (p *progress) snapshot() (v any, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.report != nil {
		return p.report, true
	}
	if p.runID == "" {
		return nil, false
	}
	return progressSnapshot{
		RunID:     p.runID,
		Total:     p.total,
		Completed: p.completed,
		Failed:    p.failed,
	}, true
}
