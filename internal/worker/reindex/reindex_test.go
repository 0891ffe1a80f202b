package reindex

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"LearnForge/internal/models"
	"LearnForge/pkg/logger"

	"github.com/google/uuid"
	"github.com/juju/clock/testclock"
)

type fakeSource struct {
	courses []models.CourseSummary
	err     error
}

func (f *fakeSource) AllSummaries(ctx context.Context) ([]models.CourseSummary, error) {
	return f.courses, f.err
}

type fakeIndex struct {
	mu      sync.Mutex
	calls   int
	got     []models.CourseSummary
	err     error
	started chan struct{}
	block   chan struct{}
}

func (f *fakeIndex) Reindex(ctx context.Context, courses []models.CourseSummary) error {
	f.mu.Lock()
	f.calls++
	f.got = courses
	started, block := f.started, f.block
	f.mu.Unlock()
	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		<-block
	}
	return f.err
}

type fakeRecorder struct {
	mu        sync.Mutex
	succeeded []int
	failed    int
}

func (r *fakeRecorder) ReindexSucceeded(courses int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded = append(r.succeeded, courses)
}

func (r *fakeRecorder) ReindexFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
}

func TestRun_WritesEveryCourse(t *testing.T) {
	src := &fakeSource{courses: []models.CourseSummary{
		{ID: uuid.New(), Title: "Published", Published: true},
		{ID: uuid.New(), Title: "Draft"},
	}}
	idx := &fakeIndex{}
	rec := &fakeRecorder{}
	w := New(logger.Discard(), nil, src, idx, rec)

	n, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 2 || len(idx.got) != 2 {
		t.Fatalf("expected 2 courses indexed, got %d/%d", n, len(idx.got))
	}
	if len(rec.succeeded) != 1 || rec.succeeded[0] != 2 || rec.failed != 0 {
		t.Fatalf("unexpected metrics: %+v", rec)
	}
}

func TestRun_RecordsFailures(t *testing.T) {
	rec := &fakeRecorder{}

	w := New(logger.Discard(), nil, &fakeSource{err: errors.New("db down")}, &fakeIndex{}, rec)
	if _, err := w.Run(context.Background()); err == nil {
		t.Fatalf("expected source error")
	}

	idx := &fakeIndex{err: errors.New("cluster red")}
	w = New(logger.Discard(), nil, &fakeSource{}, idx, rec)
	if _, err := w.Run(context.Background()); err == nil {
		t.Fatalf("expected index error")
	}
	if rec.failed != 2 || len(rec.succeeded) != 0 {
		t.Fatalf("unexpected metrics: %+v", rec)
	}
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	w := New(logger.Discard(), nil, &fakeSource{}, &fakeIndex{}, &fakeRecorder{})
	if err := w.Start("every so often"); err == nil {
		t.Fatalf("expected schedule error")
	}
}

func TestTick_SkipsWhileRunning(t *testing.T) {
	idx := &fakeIndex{started: make(chan struct{}, 1), block: make(chan struct{})}
	w := New(logger.Discard(), nil, &fakeSource{}, idx, &fakeRecorder{})

	done := make(chan struct{})
	go func() {
		w.tick()
		close(done)
	}()
	select {
	case <-idx.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("first run never started")
	}

	// returns at once instead of queueing behind the blocked run
	w.tick()
	close(idx.block)
	<-done

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.calls != 1 {
		t.Fatalf("expected 1 run, got %d", idx.calls)
	}
}

func TestRun_NotifiesRebuiltWithStartTime(t *testing.T) {
	clk := testclock.NewClock(time.Date(2025, 5, 1, 3, 0, 0, 0, time.UTC))
	var calls []time.Time
	w := New(logger.Discard(), clk, &fakeSource{}, &fakeIndex{}, &fakeRecorder{})
	w.OnRebuilt(func(startedAt time.Time) { calls = append(calls, startedAt) })

	if _, err := w.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(calls) != 1 || !calls[0].Equal(clk.Now()) {
		t.Fatalf("expected one notification at %v, got %v", clk.Now(), calls)
	}

	failing := New(logger.Discard(), clk, &fakeSource{}, &fakeIndex{err: errors.New("cluster red")}, &fakeRecorder{})
	failing.OnRebuilt(func(startedAt time.Time) { calls = append(calls, startedAt) })
	if _, err := failing.Run(context.Background()); err == nil {
		t.Fatalf("expected index error")
	}
	if len(calls) != 1 {
		t.Fatalf("failed rebuild notified: %v", calls)
	}
}
