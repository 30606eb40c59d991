package pipeline

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultDebounce collapses trigger bursts into one scan.
	DefaultDebounce = 300 * time.Millisecond
	// DefaultInitialDelay lets the host page settle before the first scan.
	DefaultInitialDelay = 500 * time.Millisecond
)

// Trigger identifies what asked for a scan.
type Trigger int

const (
	TriggerInitial Trigger = iota
	TriggerMutation
	TriggerScroll
	TriggerNavigation
)

func (t Trigger) String() string {
	switch t {
	case TriggerInitial:
		return "initial"
	case TriggerMutation:
		return "mutation"
	case TriggerScroll:
		return "scroll"
	case TriggerNavigation:
		return "navigation"
	default:
		return "unknown"
	}
}

// Scheduler funnels every trigger source through one debounced scan. Repeated
// triggers within the debounce window collapse into a single scan scheduled
// just after the window closes; a scan under way does not block the next
// window, the pipeline's dedup sets make overlap safe.
type Scheduler struct {
	pipeline *Pipeline
	doc      Document
	debounce time.Duration
	initial  time.Duration

	mu    sync.Mutex
	timer *time.Timer
	done  bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.debounce = d }
}

// WithInitialDelay overrides the delay before the first scan.
func WithInitialDelay(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.initial = d }
}

// NewScheduler creates a scheduler driving the pipeline against one document.
func NewScheduler(p *Pipeline, doc Document, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		pipeline: p,
		doc:      doc,
		debounce: DefaultDebounce,
		initial:  DefaultInitialDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules the initial scan.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(ctx, s.initial)
}

// Notify records a trigger. Navigation resets the pipeline before the
// rescheduled scan; everything else just (re)arms the debounce timer.
func (s *Scheduler) Notify(ctx context.Context, trigger Trigger) {
	if trigger == TriggerNavigation {
		s.pipeline.ResetNavigation()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(ctx, s.debounce)
}

// Stop cancels any pending scan. In-flight pipeline work is unaffected; use
// Pipeline.Wait to drain it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// scheduleLocked (re)arms the scan timer; caller holds s.mu.
func (s *Scheduler) scheduleLocked(ctx context.Context, after time.Duration) {
	if s.done {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(after, func() {
		if ctx.Err() != nil {
			return
		}
		s.pipeline.Scan(ctx, s.doc)
	})
}
