package pool

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/jward/lucien/internal/catalog"
)

const (
	hangSlowThreshold = 120 * time.Second
	hangThreshold     = 600 * time.Second

	sweepIntervalBusy = 50 * time.Millisecond
	sweepIntervalIdle = 100 * time.Millisecond
)

// Options configures one extraction pool run.
type Options struct {
	Workers           int
	MaxTasksPerWorker int
	SidecarRoot       string
	MaxChars          int
	SkipExtensions    []string
	// Force reprocesses files that already have a successful extraction,
	// instead of skipping them.
	Force bool
}

// workerSlot is one logical position in the round-robin table. The worker
// process behind it may be replaced over the slot's lifetime (recycling,
// hang abandonment) without the slot's identity changing.
type workerSlot struct {
	idx         int
	proc        *worker
	busy        bool
	task        catalog.WorkItem
	submittedAt time.Time
}

// Supervisor drives the extractor chain, via worker processes, across the
// catalog's extraction backlog for one run.
type Supervisor struct {
	cat        *catalog.Catalog
	binaryPath string
	opts       Options
	queue      *workQueue
	slots      []*workerSlot
}

// New returns a Supervisor ready to Run. binaryPath is the executable to
// re-exec for each worker (normally os.Args[0]).
func New(cat *catalog.Catalog, binaryPath string, opts Options) *Supervisor {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxTasksPerWorker <= 0 {
		opts.MaxTasksPerWorker = 200
	}

	slots := make([]*workerSlot, opts.Workers)
	for i := range slots {
		slots[i] = &workerSlot{idx: i}
	}

	return &Supervisor{
		cat:        cat,
		binaryPath: binaryPath,
		opts:       opts,
		queue:      newWorkQueue(cat, opts.SkipExtensions, opts.Force),
		slots:      slots,
	}
}

// Run executes one extraction run to completion: it creates a run row,
// drains the catalog's extraction backlog through the worker pool, and
// completes the run. It returns once every dispatched task has resolved
// (success, failure, or hang) and no more work remains.
func (s *Supervisor) Run(ctx context.Context) (int64, error) {
	runID, err := s.cat.CreateRun(catalog.RunExtract, map[string]any{
		"workers":              s.opts.Workers,
		"max_tasks_per_worker": s.opts.MaxTasksPerWorker,
	})
	if err != nil {
		return 0, fmt.Errorf("pool: create run: %w", err)
	}

	if err := s.prefill(3 * s.opts.Workers); err != nil {
		_ = s.cat.CompleteRun(runID, err)
		return runID, err
	}

	runErr := s.drain(ctx, runID)
	s.shutdownAll()

	if err := s.cat.CompleteRun(runID, runErr); err != nil {
		return runID, err
	}
	return runID, runErr
}

func (s *Supervisor) prefill(target int) error {
	for s.queue.len() < target && !s.queue.exhausted {
		if err := s.queue.refill(); err != nil {
			return fmt.Errorf("pool: prefill queue: %w", err)
		}
	}
	return nil
}

// drain runs the dispatch/sweep loop until every slot is idle and the
// backlog is exhausted, or ctx is cancelled.
func (s *Supervisor) drain(ctx context.Context, runID int64) error {
	for {
		if ctx.Err() != nil {
			return s.cancelAndDrain(ctx, runID)
		}

		if s.queue.len() < 2*s.opts.Workers {
			if err := s.queue.refill(); err != nil {
				return err
			}
		}

		s.dispatchAvailable(runID)

		progressed, err := s.sweep(runID)
		if err != nil {
			return err
		}

		if s.queue.drained() && !s.anyBusy() {
			return nil
		}

		if progressed {
			time.Sleep(sweepIntervalBusy)
		} else {
			time.Sleep(sweepIntervalIdle)
		}
	}
}

// cancelAndDrain stops submitting new work but keeps sweeping outstanding
// handles (same hang policy) until they all resolve, per spec's
// cancellation semantics.
func (s *Supervisor) cancelAndDrain(ctx context.Context, runID int64) error {
	for s.anyBusy() {
		if _, err := s.sweep(runID); err != nil {
			return err
		}
		time.Sleep(sweepIntervalIdle)
	}
	return fmt.Errorf("pool: run cancelled")
}

func (s *Supervisor) anyBusy() bool {
	for _, slot := range s.slots {
		if slot.busy {
			return true
		}
	}
	return false
}

func (s *Supervisor) dispatchAvailable(runID int64) {
	for _, slot := range s.slots {
		if slot.busy {
			continue
		}
		item, ok := s.queue.pop()
		if !ok {
			return
		}
		if err := s.dispatch(slot, item); err != nil {
			s.recordFailure(runID, item, fmt.Sprintf("Worker error: %v", err))
			continue
		}
	}
}

func (s *Supervisor) dispatch(slot *workerSlot, item catalog.WorkItem) error {
	if slot.proc == nil {
		proc, err := spawnWorker(s.binaryPath)
		if err != nil {
			return err
		}
		slot.proc = proc
	}
	if err := slot.proc.submit(Task{
		FileID:      item.FileID,
		Path:        item.Path,
		Digest:      item.Digest,
		SidecarRoot: s.opts.SidecarRoot,
		MaxChars:    s.opts.MaxChars,
	}); err != nil {
		slot.proc.abandon()
		slot.proc = nil
		return err
	}
	slot.busy = true
	slot.task = item
	slot.submittedAt = time.Now()
	return nil
}

// sweep polls every busy slot once, persisting any ready result and
// freeing its slot, and fails as hung any slot busy for more than 600s
// (hangThreshold). No separate 120s "slow" state is tracked.
// It returns whether any slot made progress this tick (used to choose the
// next sleep interval).
func (s *Supervisor) sweep(runID int64) (bool, error) {
	progressed := false

	for _, slot := range s.slots {
		if !slot.busy {
			continue
		}

		select {
		case res := <-slot.proc.resultCh:
			if err := s.recordResult(runID, slot.task, res); err != nil {
				return progressed, err
			}
			slot.proc.tasksDone++
			s.freeOrRecycle(slot)
			progressed = true
			continue
		case err := <-slot.proc.errCh:
			s.recordFailure(runID, slot.task, fmt.Sprintf("Worker error: %v", err))
			slot.proc = nil
			slot.busy = false
			progressed = true
			continue
		default:
		}

		elapsed := time.Since(slot.submittedAt)
		if elapsed > hangThreshold {
			s.recordFailure(runID, slot.task, fmt.Sprintf("Worker hung after %ds", int(elapsed.Seconds())))
			slot.proc.abandon()
			slot.proc = nil
			slot.busy = false
			progressed = true
		}
	}
	return progressed, nil
}

func (s *Supervisor) freeOrRecycle(slot *workerSlot) {
	slot.busy = false
	if slot.proc != nil && slot.proc.tasksDone >= s.opts.MaxTasksPerWorker {
		slot.proc.stop()
		slot.proc = nil
	}
}

func (s *Supervisor) recordResult(runID int64, item catalog.WorkItem, res TaskResult) error {
	var sidecarPath *string
	if res.SidecarPath != "" {
		sidecarPath = &res.SidecarPath
	}
	var errPtr *string
	if res.Error != "" {
		errPtr = &res.Error
	}
	_, err := s.cat.RecordExtraction(&catalog.Extraction{
		FileID:          item.FileID,
		Method:          res.Method,
		Status:          catalog.ExtractionStatus(res.Status),
		SidecarPath:     sidecarPath,
		Error:           errPtr,
		ExtractionRunID: runID,
	})
	return err
}

func (s *Supervisor) recordFailure(runID int64, item catalog.WorkItem, message string) {
	_, _ = s.cat.RecordExtraction(&catalog.Extraction{
		FileID:          item.FileID,
		Method:          "",
		Status:          catalog.ExtractionFailed,
		Error:           &message,
		ExtractionRunID: runID,
	})
}

func (s *Supervisor) shutdownAll() {
	for _, slot := range s.slots {
		if slot.proc != nil {
			slot.proc.stop()
		}
	}
}

// DefaultBinaryPath returns os.Args[0], the path supervisors re-exec for
// each worker process.
func DefaultBinaryPath() string {
	return os.Args[0]
}
