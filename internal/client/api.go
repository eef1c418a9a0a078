package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/spec-kit/inventory-service/internal/api/dto"
)

// SubmitResult is the outcome of a check-in or check-out. Exactly one of
// Movement and Queued is set.
type SubmitResult struct {
	Movement *dto.MovementResponse
	Queued   *Mutation
}

// API exposes typed inventory calls on top of Client. Movement submissions
// that fail for lack of connectivity are diverted to the offline queue.
type API struct {
	client *Client
	queue  *Queue
}

// NewAPI wires the client and an offline queue persisted in the same store.
func NewAPI(c *Client, store Store, opts QueueOptions) *API {
	a := &API{client: c}
	if opts.Reachable == nil {
		opts.Reachable = c.Reachable
	}
	if opts.Logger == nil {
		opts.Logger = c.logger
	}
	a.queue = NewQueue(store, a, opts)
	return a
}

// Client returns the underlying authenticated client.
func (a *API) Client() *Client { return a.client }

// Queue returns the offline mutation queue.
func (a *API) Queue() *Queue { return a.queue }

// Me fetches the caller's own account.
func (a *API) Me(ctx context.Context) (*dto.UserResponse, error) {
	resp, err := a.client.Do(ctx, http.MethodGet, "/api/users/me", nil, nil)
	if err != nil {
		return nil, err
	}
	var user dto.UserResponse
	if err := decodeData(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckIn records stock entering the warehouse.
func (a *API) CheckIn(ctx context.Context, req dto.MovementRequest) (*SubmitResult, error) {
	return a.record(ctx, KindCheckIn, req)
}

// CheckOut records stock leaving the warehouse.
func (a *API) CheckOut(ctx context.Context, req dto.MovementRequest) (*SubmitResult, error) {
	return a.record(ctx, KindCheckOut, req)
}

func (a *API) record(ctx context.Context, kind MutationKind, req dto.MovementRequest) (*SubmitResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	key := uuid.NewString()
	movement, err := a.submit(ctx, kind, payload, key)
	if errors.Is(err, ErrOffline) {
		m, qerr := a.queue.EnqueueWithID(key, kind, payload)
		if qerr != nil {
			return nil, fmt.Errorf("queue %s: %w", kind, qerr)
		}
		return &SubmitResult{Queued: &m}, nil
	}
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Movement: movement}, nil
}

// Submit replays a queued mutation with its original idempotency key.
func (a *API) Submit(ctx context.Context, m Mutation) error {
	_, err := a.submit(ctx, m.Kind, m.Payload, m.ID)
	return err
}

func (a *API) submit(ctx context.Context, kind MutationKind, payload []byte, key string) (*dto.MovementResponse, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown mutation kind %q", kind)
	}
	header := http.Header{}
	header.Set(dto.IdempotencyKeyHeader, key)
	resp, err := a.client.Do(ctx, http.MethodPost, "/api/movements/"+string(kind), payload, header)
	if err != nil {
		return nil, err
	}
	var movement dto.MovementResponse
	if err := decodeData(resp, &movement); err != nil {
		return nil, err
	}
	return &movement, nil
}

// Mine lists the caller's own equipment movements.
func (a *API) Mine(ctx context.Context) ([]dto.MovementResponse, error) {
	resp, err := a.client.Do(ctx, http.MethodGet, "/api/movements/mine", nil, nil)
	if err != nil {
		return nil, err
	}
	var movements []dto.MovementResponse
	if err := decodeData(resp, &movements); err != nil {
		return nil, err
	}
	return movements, nil
}
