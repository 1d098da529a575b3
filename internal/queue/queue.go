// Package queue runs article processing one item at a time on a single
// background worker, independent of which client submitted the work.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/logging"
)

// Status is the lifecycle state of a queued item.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// DefaultLinger is how long a completed item stays visible before removal.
const DefaultLinger = 2 * time.Second

// Item is a snapshot of one queued article.
type Item struct {
	ID          string     `json:"id"`
	GuardianID  string     `json:"guardianId"`
	Title       string     `json:"title"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	DeleteAfter bool       `json:"deleteAfterProcessing"`
	EnqueuedAt  time.Time  `json:"enqueuedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}

// Processor handles a single article.
type Processor interface {
	ProcessOne(ctx context.Context, guardianID string, deleteAfter bool) domain.Outcome
}

// ArticleLookup resolves titles for display.
type ArticleLookup interface {
	GetArticle(ctx context.Context, id string) (domain.Article, error)
}

// Prober reports whether the generation backend is reachable.
type Prober interface {
	Available(ctx context.Context) bool
}

// Options tunes queue behaviour. Zero values pick defaults.
type Options struct {
	Articles ArticleLookup
	Probe    Prober // checked once per Enqueue, not per item
	Linger   time.Duration
	Logger   *slog.Logger
}

type entry struct {
	Item
	done chan domain.Outcome
}

// Queue is a FIFO of articles drained by exactly one worker.
type Queue struct {
	proc     Processor
	articles ArticleLookup
	probe    Prober
	linger   time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	items   []*entry
	wake    chan struct{}
	running atomic.Bool
}

// ErrWorkerRunning is returned when Run is called while a worker is active.
var ErrWorkerRunning = errors.New("queue worker already running")

func New(proc Processor, opts Options) *Queue {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	linger := opts.Linger
	if linger <= 0 {
		linger = DefaultLinger
	}
	return &Queue{
		proc:     proc,
		articles: opts.Articles,
		probe:    opts.Probe,
		linger:   linger,
		logger:   logger,
		now:      time.Now,
		wake:     make(chan struct{}, 1),
	}
}

// Enqueue appends ids behind any existing work and returns their snapshots.
// Ids are trimmed and de-duplicated. It refuses new work when the generation
// backend is down.
func (q *Queue) Enqueue(ctx context.Context, ids []string, deleteAfter bool) ([]Item, error) {
	ids = domain.CompactIDs(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no article ids provided", domain.ErrValidation)
	}
	if q.probe != nil && !q.probe.Available(ctx) {
		return nil, domain.ErrGeneratorUnavailable
	}

	_, items := q.add(ctx, ids, deleteAfter)
	return items, nil
}

// Submit enqueues ids and blocks until every one of them has finished, was
// cancelled, or ctx is done. Outcomes are returned in input order.
func (q *Queue) Submit(ctx context.Context, ids []string, deleteAfter bool) []domain.Outcome {
	added, _ := q.add(ctx, ids, deleteAfter)
	outcomes := make([]domain.Outcome, len(added))

	for i, e := range added {
		select {
		case outcomes[i] = <-e.done:
			continue
		case <-ctx.Done():
		}

		q.withdraw(added[i:])
		for j := i; j < len(added); j++ {
			select {
			case outcomes[j] = <-added[j].done:
			default:
				outcomes[j] = domain.Outcome{
					GuardianID: added[j].GuardianID,
					Status:     domain.StatusError,
					Error:      ctx.Err().Error(),
				}
			}
		}
		break
	}
	return outcomes
}

// Run drains the queue until ctx is cancelled. Only one Run may be active.
func (q *Queue) Run(ctx context.Context) error {
	if !q.running.CompareAndSwap(false, true) {
		return ErrWorkerRunning
	}
	defer q.running.Store(false)

	q.logger.Info("queue worker started")
	for {
		if err := ctx.Err(); err != nil {
			q.logger.Info("queue worker stopped")
			return err
		}

		e := q.next()
		if e == nil {
			select {
			case <-q.wake:
				continue
			case <-ctx.Done():
				continue
			}
		}
		q.process(ctx, e)
	}
}

// Cancel removes every queued item. The item being processed is untouched.
func (q *Queue) Cancel() int {
	q.mu.Lock()
	var cancelled []*entry
	kept := q.items[:0]
	for _, e := range q.items {
		if e.Status == StatusQueued {
			cancelled = append(cancelled, e)
			continue
		}
		kept = append(kept, e)
	}
	q.items = kept
	q.mu.Unlock()

	for _, e := range cancelled {
		e.done <- cancelledOutcome(e.GuardianID)
	}
	if len(cancelled) > 0 {
		q.logger.Info("queue cancelled", "removed", len(cancelled))
	}
	return len(cancelled)
}

// ClearErrors drops items that finished with an error.
func (q *Queue) ClearErrors() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	removed := 0
	kept := q.items[:0]
	for _, e := range q.items {
		if e.Status == StatusError {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	q.items = kept
	return removed
}

// Snapshot returns the current items in queue order.
func (q *Queue) Snapshot() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := make([]Item, len(q.items))
	for i, e := range q.items {
		items[i] = e.Item
	}
	return items
}

// add publishes new entries and returns them with snapshots taken before the
// worker can see them.
func (q *Queue) add(ctx context.Context, ids []string, deleteAfter bool) ([]*entry, []Item) {
	added := make([]*entry, 0, len(ids))
	for _, id := range ids {
		e := &entry{
			Item: Item{
				ID:          uuid.NewString(),
				GuardianID:  id,
				Title:       q.title(ctx, id),
				Status:      StatusQueued,
				DeleteAfter: deleteAfter,
				EnqueuedAt:  q.now(),
			},
			done: make(chan domain.Outcome, 1),
		}
		added = append(added, e)
	}

	items := make([]Item, len(added))
	q.mu.Lock()
	for i, e := range added {
		items[i] = e.Item
	}
	q.items = append(q.items, added...)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return added, items
}

func (q *Queue) title(ctx context.Context, id string) string {
	if q.articles == nil {
		return ""
	}
	article, err := q.articles.GetArticle(ctx, id)
	if err != nil {
		return ""
	}
	return article.WebTitle
}

// next marks the earliest queued item as processing.
func (q *Queue) next() *entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.items {
		if e.Status == StatusQueued {
			started := q.now()
			e.Status = StatusProcessing
			e.StartedAt = &started
			return e
		}
	}
	return nil
}

func (q *Queue) process(ctx context.Context, e *entry) {
	outcome := q.proc.ProcessOne(ctx, e.GuardianID, e.DeleteAfter)

	finished := q.now()
	q.mu.Lock()
	e.FinishedAt = &finished
	if outcome.Failed() {
		e.Status = StatusError
		e.Error = outcome.Error
	} else {
		e.Status = StatusCompleted
	}
	q.mu.Unlock()

	if outcome.Failed() {
		q.logger.Warn("queue item failed", "id", e.GuardianID, "error", outcome.Error)
	} else {
		time.AfterFunc(q.linger, func() { q.remove(e) })
	}
	e.done <- outcome
}

// withdraw removes still-queued entries that belong to one caller.
func (q *Queue) withdraw(entries []*entry) {
	targets := make(map[*entry]bool, len(entries))
	for _, e := range entries {
		targets[e] = true
	}

	q.mu.Lock()
	var cancelled []*entry
	kept := q.items[:0]
	for _, e := range q.items {
		if targets[e] && e.Status == StatusQueued {
			cancelled = append(cancelled, e)
			continue
		}
		kept = append(kept, e)
	}
	q.items = kept
	q.mu.Unlock()

	for _, e := range cancelled {
		e.done <- cancelledOutcome(e.GuardianID)
	}
}

func (q *Queue) remove(target *entry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.items {
		if e == target {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

func cancelledOutcome(id string) domain.Outcome {
	return domain.Outcome{GuardianID: id, Status: domain.StatusError, Error: domain.ErrCancelled.Error()}
}
