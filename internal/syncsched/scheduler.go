// Package syncsched schedules vault regeneration after document
// commits. The scheduler debounces: a burst of commits to one project
// collapses into a single regeneration run, fired a quiet interval
// after the last commit. The invoker runs the regeneration process
// out-of-band with a hard timeout; its failures are logged, never
// raised into the mutation path that triggered them.
package syncsched

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// DefaultDelay is the debounce window after the last commit.
	DefaultDelay = 2 * time.Second
	// DebounceTimeout bounds a debounce-triggered regeneration run.
	DebounceTimeout = 30 * time.Second
	// SyncTimeout bounds an explicit, on-demand regeneration run.
	SyncTimeout = 60 * time.Second
)

// Runner runs the regeneration process for one project ("" = all).
type Runner interface {
	Run(ctx context.Context, project string) Result
}

// Scheduler converts commit notifications into debounced regeneration
// runs, one pending timer per project. Timers for different projects
// are independent.
type Scheduler struct {
	runner Runner
	delay  time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewScheduler creates a scheduler that fires delay after the last
// notification for a project.
func NewScheduler(runner Runner, delay time.Duration) *Scheduler {
	return &Scheduler{
		runner: runner,
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Notify (re)arms the project's debounce timer. An already-pending
// timer is cancelled and replaced, so N rapid commits produce exactly
// one run, delay after the Nth. The caller never waits on the run.
func (s *Scheduler) Notify(project string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[project]; ok {
		t.Stop()
	}
	s.timers[project] = time.AfterFunc(s.delay, func() {
		s.fire(project)
	})
}

// fire clears the pending-timer slot and runs regeneration. Failures
// are logged and swallowed: derived-artifact freshness is a separate
// failure domain from document correctness.
func (s *Scheduler) fire(project string) {
	s.mu.Lock()
	delete(s.timers, project)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), DebounceTimeout)
	defer cancel()

	result := s.runner.Run(ctx, project)
	if result.Status == StatusSuccess {
		log.Printf("Vault synced for %s (run %s)", project, result.RunID)
	} else {
		log.Printf("ERROR: vault sync failed for %s (run %s): %s", project, result.RunID, result.Error)
	}
}

// Stop cancels all pending timers. Runs already started are not
// interrupted (they carry their own timeout).
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for project, t := range s.timers {
		t.Stop()
		delete(s.timers, project)
	}
}
