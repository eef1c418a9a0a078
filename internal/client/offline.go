package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MutationKind selects the endpoint a queued mutation is replayed against.
type MutationKind string

const (
	KindCheckIn  MutationKind = "checkin"
	KindCheckOut MutationKind = "checkout"
)

// Valid reports whether k is a known kind.
func (k MutationKind) Valid() bool {
	return k == KindCheckIn || k == KindCheckOut
}

// DefaultMaxAttempts is how many failed drains a mutation survives before it
// is dead-lettered.
const DefaultMaxAttempts = 5

// Mutation is a write recorded while the API was unreachable. ID doubles as
// the idempotency key on replay.
type Mutation struct {
	ID         string          `json:"id"`
	Kind       MutationKind    `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	Attempts   int             `json:"attempts"`
	LastError  string          `json:"lastError,omitempty"`
}

// DrainResult summarizes one drain. Dead-lettered mutations are also counted
// in Failed.
type DrainResult struct {
	Succeeded    int `json:"succeeded"`
	Failed       int `json:"failed"`
	DeadLettered int `json:"deadLettered"`
}

// Submitter replays a mutation against the API.
type Submitter interface {
	Submit(ctx context.Context, m Mutation) error
}

// QueueOptions tune a Queue.
type QueueOptions struct {
	// MaxAttempts bounds retries per mutation; 0 retries forever.
	MaxAttempts int
	// Reachable is consulted before a drain submits anything. Nil assumes
	// the API is reachable.
	Reachable func(ctx context.Context) bool
	Logger    *zap.Logger
	Now       func() time.Time
}

// Queue is the persisted, ordered list of offline mutations.
type Queue struct {
	store       Store
	submitter   Submitter
	maxAttempts int
	reachable   func(ctx context.Context) bool
	logger      *zap.Logger
	now         func() time.Time

	mu      sync.Mutex // guards store access
	drainMu sync.Mutex // serializes drains
}

// NewQueue builds a queue persisted in store.
func NewQueue(store Store, submitter Submitter, opts QueueOptions) *Queue {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Queue{
		store:       store,
		submitter:   submitter,
		maxAttempts: opts.MaxAttempts,
		reachable:   opts.Reachable,
		logger:      logger,
		now:         now,
	}
}

// Enqueue appends a mutation and returns it.
func (q *Queue) Enqueue(kind MutationKind, payload any) (Mutation, error) {
	if !kind.Valid() {
		return Mutation{}, fmt.Errorf("unknown mutation kind %q", kind)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Mutation{}, fmt.Errorf("encode payload: %w", err)
	}
	return q.append(Mutation{ID: uuid.NewString(), Kind: kind, Payload: raw, EnqueuedAt: q.now().UTC()})
}

// EnqueueWithID appends a mutation whose idempotency key was already used on
// a live attempt.
func (q *Queue) EnqueueWithID(id string, kind MutationKind, payload json.RawMessage) (Mutation, error) {
	if !kind.Valid() {
		return Mutation{}, fmt.Errorf("unknown mutation kind %q", kind)
	}
	return q.append(Mutation{ID: id, Kind: kind, Payload: payload, EnqueuedAt: q.now().UTC()})
}

func (q *Queue) append(m Mutation) (Mutation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	items, err := q.load(KeyOfflineQueue)
	if err != nil {
		return Mutation{}, err
	}
	items = append(items, m)
	if err := q.save(KeyOfflineQueue, items); err != nil {
		return Mutation{}, err
	}
	return m, nil
}

// Pending lists queued mutations in order.
func (q *Queue) Pending() ([]Mutation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(KeyOfflineQueue)
}

// DeadLetters lists mutations that exhausted their attempts.
func (q *Queue) DeadLetters() ([]Mutation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(KeyOfflineDeadLetter)
}

// Drain replays every queued mutation concurrently. Successes are dropped,
// failures are kept in their original order, and the queue is rewritten once
// after all outcomes are known. An empty queue or an unreachable API yields a
// zero result without any network call beyond the reachability probe.
//
// The queue is rewritten before exhausted mutations are appended to the dead
// letter list, so a failed write never leaves a mutation in both lists.
func (q *Queue) Drain(ctx context.Context) (DrainResult, error) {
	q.drainMu.Lock()
	defer q.drainMu.Unlock()

	snapshot, err := q.Pending()
	if err != nil {
		return DrainResult{}, err
	}
	if len(snapshot) == 0 {
		return DrainResult{}, nil
	}
	if q.reachable != nil && !q.reachable(ctx) {
		q.logger.Debug("drain skipped, api unreachable", zap.Int("pending", len(snapshot)))
		return DrainResult{}, nil
	}

	outcomes := make([]error, len(snapshot))
	var wg sync.WaitGroup
	for i := range snapshot {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = q.submitter.Submit(ctx, snapshot[i])
		}(i)
	}
	wg.Wait()

	var (
		result   DrainResult
		retained []Mutation
		dead     []Mutation
	)
	done := make(map[string]struct{}, len(snapshot))
	for i, m := range snapshot {
		done[m.ID] = struct{}{}
		if outcomes[i] == nil {
			result.Succeeded++
			continue
		}
		result.Failed++
		m.Attempts++
		m.LastError = outcomes[i].Error()
		if q.maxAttempts > 0 && m.Attempts >= q.maxAttempts {
			result.DeadLettered++
			dead = append(dead, m)
			continue
		}
		retained = append(retained, m)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	current, err := q.load(KeyOfflineQueue)
	if err != nil {
		return DrainResult{}, err
	}
	for _, m := range current {
		if _, seen := done[m.ID]; !seen {
			retained = append(retained, m)
		}
	}
	var letters []Mutation
	if len(dead) > 0 {
		if letters, err = q.load(KeyOfflineDeadLetter); err != nil {
			return DrainResult{}, err
		}
	}
	if err := q.save(KeyOfflineQueue, retained); err != nil {
		return DrainResult{}, err
	}
	if len(dead) > 0 {
		if err := q.save(KeyOfflineDeadLetter, append(letters, dead...)); err != nil {
			// Put the exhausted mutations back so they are not lost.
			if rerr := q.save(KeyOfflineQueue, append(retained, dead...)); rerr != nil {
				q.logger.Error("restore offline queue", zap.Error(rerr))
			}
			return DrainResult{}, err
		}
		for _, m := range dead {
			q.logger.Warn("mutation dead-lettered",
				zap.String("id", m.ID),
				zap.String("kind", string(m.Kind)),
				zap.Int("attempts", m.Attempts),
				zap.String("last_error", m.LastError))
		}
	}

	q.logger.Info("offline queue drained",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("dead_lettered", result.DeadLettered))
	return result, nil
}

// load reads a mutation list. Missing values are empty; corrupted values are
// logged, overwritten with an empty list and treated as empty. A failed read
// is returned as is so callers never overwrite a list they could not see.
func (q *Queue) load(key string) ([]Mutation, error) {
	raw, ok, err := q.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("read offline queue: %w", err)
	}
	if !ok || raw == "" {
		return []Mutation{}, nil
	}
	var items []Mutation
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		q.logger.Warn("discarding corrupted offline queue", zap.String("key", key), zap.Error(err))
		if err := q.save(key, []Mutation{}); err != nil {
			q.logger.Warn("reset offline queue", zap.String("key", key), zap.Error(err))
		}
		return []Mutation{}, nil
	}
	if items == nil {
		items = []Mutation{}
	}
	return items, nil
}

func (q *Queue) save(key string, items []Mutation) error {
	if items == nil {
		items = []Mutation{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := q.store.Set(key, string(raw)); err != nil {
		return fmt.Errorf("write offline queue: %w", err)
	}
	return nil
}
