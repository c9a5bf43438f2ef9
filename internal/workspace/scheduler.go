package workspace

import (
	"runtime"
	"sync"

	"github.com/oakwood-commons/tbx/internal/query"
	"github.com/oakwood-commons/tbx/internal/table"
)

// Result is one completed pipeline evaluation, tagged with the identity and
// generation it was requested under. Exactly one of View/Err is set.
type Result struct {
	TabID      int
	Generation uint64
	View       *table.Table
	Err        error
}

// Scheduler runs pipeline evaluations on a bounded worker pool and delivers
// results over a channel the main loop polls alongside terminal events.
// Cancellation is cooperative-by-supersession: superseded evaluations run to
// completion and their results are dropped at install time by the
// generation check, so no locking ever touches a view table.
type Scheduler struct {
	requests chan request
	results  chan Result
	wg       sync.WaitGroup
	once     sync.Once
}

type request struct {
	tabID      int
	generation uint64
	base       *table.Table
	steps      []query.Step
}

// NewScheduler starts workers workers (GOMAXPROCS when <= 0). The results
// channel is buffered so workers never block on a slow UI.
func NewScheduler(workers int) *Scheduler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	s := &Scheduler{
		requests: make(chan request, workers*4),
		results:  make(chan Result, workers*4),
	}
	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker()
	}
	return s
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for req := range s.requests {
		view, err := query.Apply(req.base, req.steps)
		s.results <- Result{
			TabID:      req.tabID,
			Generation: req.generation,
			View:       view,
			Err:        err,
		}
	}
}

// Submit enqueues a full re-evaluation of the tab's pipeline under the
// given generation. The step list is snapshotted by the caller (Pipeline.
// Clone), so later edits cannot race the running evaluation.
func (s *Scheduler) Submit(tab *Tab, generation uint64, steps []query.Step) {
	s.requests <- request{
		tabID:      tab.ID,
		generation: generation,
		base:       tab.Base(),
		steps:      steps,
	}
}

// Results exposes the completion channel for the main loop to poll.
func (s *Scheduler) Results() <-chan Result { return s.results }

// Close stops accepting work and waits for in-flight evaluations, then
// closes the results channel.
func (s *Scheduler) Close() {
	s.once.Do(func() {
		close(s.requests)
		s.wg.Wait()
		close(s.results)
	})
}
