package tracker

import (
	"sync"
	"time"

	"github.com/obielum/doctrack/constants"
	"github.com/obielum/doctrack/internal/entity"
	"github.com/obielum/doctrack/internal/transport"
)

// trackedJob pairs a job with the sequence number of the last poll result
// applied to it, so a slow query from an older tick can never overwrite
// fresher state.
type trackedJob struct {
	job     entity.ProcessingJob
	lastSeq uint64
}

// registry is the in-memory keyed store of in-flight jobs. It is owned by the
// Tracker; all writes funnel through reserve/activate/apply/remove.
type registry struct {
	mu   sync.Mutex
	jobs map[string]*trackedJob
}

func newRegistry() *registry {
	return &registry{jobs: make(map[string]*trackedJob)}
}

// reserve inserts a pending entry for documentID. It refuses when an active
// (non-terminal) entry exists, keeping at most one concurrent job per
// document. A terminal entry awaiting prune is replaced; replaced reports
// that so the caller can cancel the scheduled removal. seqFloor is the latest
// tick sequence issued so far: queries still in flight from ticks at or below
// it belong to the previous run and must not touch the new entry.
func (r *registry) reserve(documentID string, seqFloor uint64) (ok, replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, found := r.jobs[documentID]; found {
		if !existing.job.Terminal() {
			return false, false
		}
		replaced = true
	}
	r.jobs[documentID] = &trackedJob{
		job: entity.ProcessingJob{
			DocumentID: documentID,
			Status:     constants.JobStatusPending,
			StartedAt:  time.Now().UTC(),
		},
		lastSeq: seqFloor,
	}
	return true, replaced
}

// activate moves a reserved entry into processing once the server accepts.
func (r *registry) activate(documentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, found := r.jobs[documentID]; found && !j.job.Terminal() {
		j.job.Status = constants.JobStatusProcessing
		j.job.Progress = 0
	}
}

func (r *registry) get(documentID string) *entity.ProcessingJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, found := r.jobs[documentID]; found {
		return j.job.Clone()
	}
	return nil
}

func (r *registry) remove(documentID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, found := r.jobs[documentID]; !found {
		return false
	}
	delete(r.jobs, documentID)
	return true
}

// activeIDs snapshots the documents still awaiting a terminal transition.
// Terminal entries kept around for the grace period are excluded: they must
// not keep the poll timer alive.
func (r *registry) activeIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.jobs))
	for id, j := range r.jobs {
		if !j.job.Terminal() {
			out = append(out, id)
		}
	}
	return out
}

func (r *registry) activeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, j := range r.jobs {
		if !j.job.Terminal() {
			n++
		}
	}
	return n
}

// applyResult describes the outcome of folding one poll answer into the
// registry.
type applyResult struct {
	transitioned bool // this apply moved the job into a terminal state
	job          entity.ProcessingJob
	summary      *string
}

// statusRank orders states so that out-of-order poll answers can never move a
// job backwards.
func statusRank(s constants.JobStatus) int {
	switch s {
	case constants.JobStatusPending:
		return 0
	case constants.JobStatusProcessing:
		return 1
	case constants.JobStatusCompleted, constants.JobStatusFailed:
		return 2
	}
	return -1
}

// apply folds a status-collaborator answer into the entry for documentID.
// Results at or below the last applied tick (or the entry's reservation
// floor) are discarded, as are answers for unknown or already-terminal
// entries. Progress never decreases.
func (r *registry) apply(documentID string, seq uint64, rep *transport.StatusReport) *applyResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, found := r.jobs[documentID]
	if !found || j.job.Terminal() {
		return nil
	}
	if seq <= j.lastSeq {
		return nil // stale answer from an overlapping earlier tick or a previous run
	}
	if !rep.Status.IsValid() || statusRank(rep.Status) < statusRank(j.job.Status) {
		return nil
	}
	j.lastSeq = seq

	j.job.Status = rep.Status
	if rep.Progress > j.job.Progress {
		j.job.Progress = rep.Progress
	}

	if !rep.Status.IsTerminal() {
		return &applyResult{job: *j.job.Clone()}
	}

	now := time.Now().UTC()
	j.job.FinishedAt = &now
	switch rep.Status {
	case constants.JobStatusCompleted:
		j.job.Progress = 100
	case constants.JobStatusFailed:
		msg := "processing failed"
		if rep.Error != nil && *rep.Error != "" {
			msg = *rep.Error
		}
		j.job.ErrorMessage = &msg
	}
	return &applyResult{transitioned: true, job: *j.job.Clone(), summary: rep.Summary}
}
