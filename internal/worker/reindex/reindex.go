// Package reindex rebuilds the course search index on a cron schedule so that
// best-effort index writes that failed during course edits are eventually
// repaired.
package reindex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"LearnForge/internal/models"
	"LearnForge/pkg/logger"

	"github.com/juju/clock"
	"github.com/robfig/cron/v3"
)

const runTimeout = 2 * time.Minute

type courseSource interface {
	AllSummaries(ctx context.Context) ([]models.CourseSummary, error)
}

type searchIndex interface {
	Reindex(ctx context.Context, courses []models.CourseSummary) error
}

type recorder interface {
	ReindexSucceeded(courses int)
	ReindexFailed()
}

type Worker struct {
	log     logger.Log
	clock   clock.Clock
	source  courseSource
	index   searchIndex
	metrics recorder

	cron    *cron.Cron
	rebuilt []func(startedAt time.Time)
	// running guards against overlapping runs when one outlasts the interval.
	running sync.Mutex
}

func New(log logger.Log, clk clock.Clock, source courseSource, index searchIndex, metrics recorder) *Worker {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Worker{
		log:     log,
		clock:   clk,
		source:  source,
		index:   index,
		metrics: metrics,
		cron:    cron.New(),
	}
}

// OnRebuilt registers fn to run after each successful rebuild with the time
// the rebuild started. Must be called before Start.
func (w *Worker) OnRebuilt(fn func(startedAt time.Time)) {
	w.rebuilt = append(w.rebuilt, fn)
}

// Start schedules the job and also runs it once immediately in the background.
func (w *Worker) Start(schedule string) error {
	if _, err := w.cron.AddFunc(schedule, w.tick); err != nil {
		return fmt.Errorf("invalid reindex schedule %q: %w", schedule, err)
	}
	w.cron.Start()
	go w.tick()
	w.log.Info("search reindex scheduled", "schedule", schedule)
	return nil
}

// Stop waits for a running job to finish.
func (w *Worker) Stop() {
	<-w.cron.Stop().Done()
	w.running.Lock()
	defer w.running.Unlock()
}

func (w *Worker) tick() {
	if !w.running.TryLock() {
		w.log.Warn("previous reindex still running, skipping")
		return
	}
	defer w.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	if _, err := w.Run(ctx); err != nil {
		w.log.ErrorErr("search reindex failed", err)
	}
}

// Run copies every course, drafts included, into the search index and returns
// how many were written.
func (w *Worker) Run(ctx context.Context) (int, error) {
	startedAt := w.clock.Now()
	courses, err := w.source.AllSummaries(ctx)
	if err != nil {
		w.metrics.ReindexFailed()
		return 0, fmt.Errorf("load courses: %w", err)
	}
	if err := w.index.Reindex(ctx, courses); err != nil {
		w.metrics.ReindexFailed()
		return 0, err
	}
	w.metrics.ReindexSucceeded(len(courses))
	for _, fn := range w.rebuilt {
		fn(startedAt)
	}
	w.log.Debug("search index rebuilt", "courses", len(courses))
	return len(courses), nil
}
