package tracker

import (
	"sync"
	"time"
)

// pruner is a delayed-task scheduler keyed by document id, used for
// grace-period removal of terminal registry entries. Scheduling for an id
// replaces any earlier task for it, and tasks are individually cancellable so
// an early document deletion can skip the grace period.
type pruner struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

func newPruner() *pruner {
	return &pruner{timers: make(map[string]*time.Timer)}
}

func (p *pruner) schedule(id string, d time.Duration, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	if t, found := p.timers[id]; found {
		t.Stop()
	}
	p.timers[id] = time.AfterFunc(d, func() {
		p.mu.Lock()
		if p.stopped {
			p.mu.Unlock()
			return
		}
		delete(p.timers, id)
		p.mu.Unlock()
		fn()
	})
}

func (p *pruner) cancel(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, found := p.timers[id]
	if !found {
		return false
	}
	delete(p.timers, id)
	return t.Stop()
}

func (p *pruner) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	for id, t := range p.timers {
		t.Stop()
		delete(p.timers, id)
	}
}
