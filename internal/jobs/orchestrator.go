package jobs

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/newslens/internal/pipeline"
	"github.com/jonathan/newslens/internal/trends"
	"github.com/jonathan/newslens/internal/types"
)

// Runner executes one search. *pipeline.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, req types.SearchRequest, onProgress pipeline.ProgressCallback) (*pipeline.Result, error)
}

// TrendReporter produces a trend report for a keyword. *trends.Service implements it.
type TrendReporter interface {
	Configured() bool
	Report(ctx context.Context, q trends.Query) (*trends.Report, error)
}

// Orchestrator accepts searches and runs each on its own goroutine.
type Orchestrator struct {
	store   *Store
	runner  Runner
	trends  TrendReporter
	timeout time.Duration
	wg      sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTrends attaches a trend report for the joined terms to every job.
func WithTrends(t TrendReporter) Option {
	return func(o *Orchestrator) { o.trends = t }
}

// WithTimeout bounds each job. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(store *Store, runner Runner, opts ...Option) *Orchestrator {
	o := &Orchestrator{store: store, runner: runner}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit validates req, registers the job and starts it in the background.
// The job is visible to Poll before Submit returns.
func (o *Orchestrator) Submit(_ context.Context, req types.SearchRequest) (string, error) {
	req.Terms = cleanTerms(req.Terms)
	if len(req.Terms) == 0 {
		return "", &ErrValidation{Message: "at least one non-empty term is required"}
	}
	if err := req.Validate(); err != nil {
		return "", &ErrValidation{Message: "request failed validation", Cause: err}
	}

	job := newJob(uuid.NewString(), req.Terms, o.store.now())
	o.store.Put(job)
	log.Printf("[jobs] %s submitted: %q", job.ID, strings.Join(req.Terms, ", "))

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(job, req)
	}()
	return job.ID, nil
}

// Poll returns the current snapshot of a job.
func (o *Orchestrator) Poll(id string) (Snapshot, error) {
	job, ok := o.store.Get(id)
	if !ok {
		return Snapshot{}, &ErrJobNotFound{ID: id}
	}
	return job.Snapshot(), nil
}

// Wait blocks until every submitted job has completed.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) run(job *Job, req types.SearchRequest) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[jobs] %s panicked: %v", job.ID, r)
			job.complete(nil, types.Summarize(nil), nil, fmt.Sprintf("search failed: %v", r), o.store.now())
		}
	}()

	ctx := context.Background()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	trendCh := make(chan *trends.Report, 1)
	if o.trends != nil && o.trends.Configured() {
		go func() { trendCh <- o.trend(ctx, job.ID, req.Terms) }()
	} else {
		trendCh <- nil
	}

	res, err := o.runner.Run(ctx, req, func(ev pipeline.ProgressEvent) {
		job.SetProgress(ev.Phase, ev.Current, ev.Total)
	})
	report := <-trendCh

	if err != nil {
		log.Printf("[jobs] %s failed: %v", job.ID, err)
		job.complete(nil, types.Summarize(nil), report, err.Error(), o.store.now())
		return
	}
	job.complete(res.Articles, res.Summary, report, "", o.store.now())
	log.Printf("[jobs] %s complete: %d results in %s", job.ID, len(res.Articles), time.Since(start).Round(time.Millisecond))
}

func (o *Orchestrator) trend(ctx context.Context, id string, terms []string) (report *trends.Report) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[jobs] %s trend analysis panicked: %v", id, r)
			report = nil
		}
	}()
	report, err := o.trends.Report(ctx, trends.Query{Keyword: strings.Join(terms, " ")})
	if err != nil {
		log.Printf("[jobs] %s trend analysis unavailable: %v", id, err)
		return nil
	}
	return report
}

func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
