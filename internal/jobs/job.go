// Package jobs runs searches as background jobs and keeps their state for polling.
package jobs

import (
	"sync"
	"time"

	"github.com/jonathan/newslens/internal/pipeline/steps"
	"github.com/jonathan/newslens/internal/trends"
	"github.com/jonathan/newslens/internal/types"
)

// Status is the coarse lifecycle state of a job.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
)

// Progress is the current pipeline position of a job.
type Progress struct {
	Phase   steps.Phase `json:"phase"`
	Current int         `json:"current"`
	Total   int         `json:"total"`
}

// Job is one search. Only its background goroutine mutates it, and never
// after it completes.
type Job struct {
	ID        string
	Terms     []string
	CreatedAt time.Time

	mu          sync.RWMutex
	status      Status
	progress    Progress
	results     []types.EnrichedArticle
	summary     types.Summary
	trend       *trends.Report
	errMsg      string
	completedAt time.Time
}

func newJob(id string, terms []string, now time.Time) *Job {
	return &Job{
		ID:        id,
		Terms:     append([]string(nil), terms...),
		CreatedAt: now,
		status:    StatusProcessing,
		progress:  Progress{Phase: steps.Starting},
		results:   []types.EnrichedArticle{},
		summary:   types.Summarize(nil),
	}
}

// SetProgress moves the job forward. Backward phase moves, a decreasing
// Current within a phase and any update after completion are ignored.
func (j *Job) SetProgress(phase steps.Phase, current, total int) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status == StatusComplete || phase == steps.Complete {
		return false
	}
	if !steps.Advances(j.progress.Phase, phase) {
		return false
	}
	if phase == j.progress.Phase && current < j.progress.Current {
		return false
	}
	j.progress = Progress{Phase: phase, Current: current, Total: total}
	return true
}

func (j *Job) complete(results []types.EnrichedArticle, summary types.Summary, trend *trends.Report, errMsg string, now time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status == StatusComplete {
		return
	}
	if results == nil {
		results = []types.EnrichedArticle{}
	}
	j.status = StatusComplete
	j.results = results
	j.summary = summary
	j.trend = trend
	j.errMsg = errMsg
	j.progress = Progress{Phase: steps.Complete, Current: len(results), Total: len(results)}
	j.completedAt = now
}

// Done reports whether the job has completed.
func (j *Job) Done() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status == StatusComplete
}

func (j *Job) expired(cutoff time.Time) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status == StatusComplete && j.completedAt.Before(cutoff)
}

// Snapshot is the poll payload. While the job runs Results is empty.
type Snapshot struct {
	SearchID    string                  `json:"search_id"`
	Terms       []string                `json:"terms"`
	Status      Status                  `json:"status"`
	Ready       bool                    `json:"ready"`
	Progress    Progress                `json:"progress"`
	Results     []types.EnrichedArticle `json:"results"`
	Summary     types.Summary           `json:"summary"`
	Trend       *trends.Report          `json:"trend,omitempty"`
	Error       string                  `json:"error,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
}

// Snapshot returns the current state. Completed jobs always yield the same payload.
func (j *Job) Snapshot() Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()

	s := Snapshot{
		SearchID:  j.ID,
		Terms:     j.Terms,
		Status:    j.status,
		Ready:     j.status == StatusComplete,
		Progress:  j.progress,
		Results:   j.results,
		Summary:   j.summary,
		Trend:     j.trend,
		Error:     j.errMsg,
		CreatedAt: j.CreatedAt,
	}
	if s.Ready {
		t := j.completedAt
		s.CompletedAt = &t
	}
	return s
}
