package tracker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/obielum/doctrack/internal/entity"
	"github.com/obielum/doctrack/internal/transport"
)

// Tracker drives asynchronous processing jobs to a terminal state. It owns
// the job registry, a single shared poll timer, and the grace-period pruner.
// Instances are independent; nothing here is package-global.
type Tracker struct {
	processor  transport.Processor
	projection *Projection
	registry   *registry
	pruner     *pruner
	logger     *slog.Logger

	pollInterval   time.Duration
	gracePeriod    time.Duration
	queryTimeout   time.Duration
	maxConcurrency int

	seq atomic.Uint64

	mu       sync.Mutex
	polling  bool
	pollStop chan struct{}
	stopped  bool

	pollerStarts atomic.Int64
	tickWG       sync.WaitGroup
}

type Option func(*Tracker)

func WithPollInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.pollInterval = d
		}
	}
}

func WithGracePeriod(d time.Duration) Option {
	return func(t *Tracker) {
		if d >= 0 {
			t.gracePeriod = d
		}
	}
}

func WithQueryTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.queryTimeout = d
		}
	}
}

func WithMaxConcurrency(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.maxConcurrency = n
		}
	}
}

func New(processor transport.Processor, store DocumentStore, logger *slog.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		processor:      processor,
		projection:     NewProjection(store, logger),
		registry:       newRegistry(),
		pruner:         newPruner(),
		logger:         logger,
		pollInterval:   2 * time.Second,
		gracePeriod:    5 * time.Second,
		queryTimeout:   10 * time.Second,
		maxConcurrency: 8,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// StartJob requests processing for documentID and begins tracking it. It
// returns false without contacting the server when an active job for the
// document already exists, and false with the server's error when the request
// is rejected (nothing is tracked in that case).
func (t *Tracker) StartJob(ctx context.Context, documentID string, req transport.ProcessRequest) (bool, error) {
	if t.isStopped() {
		return false, nil
	}

	ok, replaced := t.registry.reserve(documentID, t.seq.Load())
	if !ok {
		t.logger.Warn("processing already in flight, ignoring start", "document_id", documentID)
		return false, nil
	}
	if replaced {
		// A terminal entry awaiting prune was replaced by this retry.
		t.pruner.cancel(documentID)
	}

	acc, err := t.processor.StartProcessing(ctx, documentID, req)
	if err != nil {
		t.registry.remove(documentID)
		t.logger.Error("processing request rejected", "document_id", documentID, "error", err)
		return false, err
	}
	t.registry.activate(documentID)
	t.logger.Info("job started", "document_id", documentID, "memory_items", len(acc.MemoryItemIDs))

	t.ensurePolling()
	return true, nil
}

// GetStatus is a pure read of the registry entry for documentID, nil when the
// document is not tracked (never started, or already pruned).
func (t *Tracker) GetStatus(documentID string) *entity.ProcessingJob {
	return t.registry.get(documentID)
}

// NotifyDeleted removes tracking state for a deleted document immediately,
// bypassing the grace period.
func (t *Tracker) NotifyDeleted(documentID string) {
	t.pruner.cancel(documentID)
	if t.registry.remove(documentID) {
		t.logger.Info("dropped job for deleted document", "document_id", documentID)
	}
}

// Shutdown cancels the poll timer and all pending prune tasks, then waits for
// in-flight ticks up to ctx. No tick runs after Shutdown returns.
func (t *Tracker) Shutdown(ctx context.Context) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	if t.polling {
		close(t.pollStop)
		t.polling = false
	}
	t.mu.Unlock()

	t.pruner.stop()

	done := make(chan struct{})
	go func() { defer close(done); t.tickWG.Wait() }()
	select {
	case <-ctx.Done():
		t.logger.Warn("tracker shutdown interrupted by context")
	case <-done:
		t.logger.Info("tracker shutdown complete")
	}
}

func (t *Tracker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// ensurePolling lazily starts the single poll loop. At most one loop runs at
// a time regardless of how many documents are in flight.
func (t *Tracker) ensurePolling() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.polling || t.stopped {
		return
	}
	t.polling = true
	t.pollStop = make(chan struct{})
	t.pollerStarts.Add(1)
	go t.pollLoop(t.pollStop)
}

func (t *Tracker) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()
	t.logger.Info("poller started", "interval", t.pollInterval)

	for {
		select {
		case <-stop:
			t.logger.Info("poller cancelled")
			return
		case <-ticker.C:
			ids := t.registry.activeIDs()
			if len(ids) == 0 {
				t.mu.Lock()
				// Re-check under the lock so a StartJob racing with shutdown
				// of this loop is picked up by the loop it starts next.
				if t.registry.activeCount() == 0 {
					t.polling = false
					t.mu.Unlock()
					t.logger.Info("poller stopped, no active jobs")
					return
				}
				t.mu.Unlock()
				continue
			}
			seq := t.seq.Add(1)
			t.mu.Lock()
			if t.stopped {
				t.mu.Unlock()
				return
			}
			// Under the lock so the Add can never race Shutdown's Wait.
			t.tickWG.Add(1)
			t.mu.Unlock()
			go t.tick(ids, seq)
		}
	}
}

// tick queries the status collaborator for every active document. Queries
// are independent: they fan out with bounded concurrency, each with its own
// timeout, and results are applied as they arrive so one slow document never
// blocks the others.
func (t *Tracker) tick(ids []string, seq uint64) {
	defer t.tickWG.Done()
	if t.isStopped() {
		return
	}

	var g errgroup.Group
	g.SetLimit(t.maxConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(context.Background(), t.queryTimeout)
			defer cancel()

			rep, err := t.processor.GetStatus(qctx, id)
			if err != nil {
				// Skip this document for this tick; its entry keeps the last
				// known state and the next tick retries.
				t.logger.Warn("status query failed", "document_id", id, "tick", seq, "error", err)
				return nil
			}
			if t.isStopped() {
				return nil
			}
			if res := t.registry.apply(id, seq, rep); res != nil && res.transitioned {
				t.finalize(res)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// finalize runs once per job, on the tick that observed its terminal state:
// project into the document model, then schedule the grace-period removal.
func (t *Tracker) finalize(res *applyResult) {
	t.projection.Apply(context.Background(), res.job, res.summary)

	id := res.job.DocumentID
	t.pruner.schedule(id, t.gracePeriod, func() {
		if t.registry.remove(id) {
			t.logger.Info("pruned terminal job", "document_id", id)
		}
	})
}
