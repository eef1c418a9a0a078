package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/events"
	"github.com/spec-kit/inventory-service/internal/repository"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	nextID int
	err    error
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*domain.User{}}
	for _, u := range users {
		cp := *u
		f.byID[u.ID] = &cp
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) List(context.Context, repository.Page) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID), nil
}

type fakeRefreshTokens struct {
	mu          sync.Mutex
	byHash      map[string]*domain.RefreshToken
	revokedUser []string
}

func newFakeRefreshTokens() *fakeRefreshTokens {
	return &fakeRefreshTokens{byHash: map[string]*domain.RefreshToken{}}
}

func (f *fakeRefreshTokens) Create(_ context.Context, token *domain.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token.CreatedAt = time.Now()
	cp := *token
	f.byHash[token.TokenHash] = &cp
	return nil
}

func (f *fakeRefreshTokens) GetByHash(_ context.Context, hash string) (*domain.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byHash[hash]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRefreshTokens) Revoke(_ context.Context, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byHash[hash]
	if !ok || t.IsRevoked {
		return false, nil
	}
	t.IsRevoked = true
	return true, nil
}

func (f *fakeRefreshTokens) RevokeAllForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokedUser = append(f.revokedUser, userID)
	for _, t := range f.byHash {
		if t.UserID == userID {
			t.IsRevoked = true
		}
	}
	return nil
}

func (f *fakeRefreshTokens) active(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.byHash {
		if t.UserID == userID && !t.IsRevoked {
			n++
		}
	}
	return n
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}}
}

func (f *fakeCounter) Increment(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounter) Count(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[key], nil
}

func (f *fakeCounter) Reset(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.counts, key)
	return nil
}

type fakeMovements struct {
	mu       sync.Mutex
	stock    map[string]int
	byKey    map[string]domain.Movement
	recorded []domain.Movement
	filters  []repository.MovementFilter
}

func newFakeMovements(stock map[string]int) *fakeMovements {
	return &fakeMovements{stock: stock, byKey: map[string]domain.Movement{}}
}

func (f *fakeMovements) Record(_ context.Context, m *domain.Movement) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.IdempotencyKey != "" {
		if prev, ok := f.byKey[m.IdempotencyKey]; ok {
			*m = prev
			return true, nil
		}
	}
	current, ok := f.stock[m.ItemID]
	if !ok {
		return false, errors.New("item not stocked in fake")
	}
	next := current + m.Direction.Delta(m.Quantity)
	if next < 0 {
		return false, apperrors.NewInsufficientStock(m.ItemID, current, m.Quantity)
	}
	f.stock[m.ItemID] = next
	m.QuantityAfter = next
	m.ID = fmt.Sprintf("mov-%d", len(f.recorded)+1)
	m.CreatedAt = time.Now()
	f.recorded = append(f.recorded, *m)
	if m.IdempotencyKey != "" {
		f.byKey[m.IdempotencyKey] = *m
	}
	return false, nil
}

func (f *fakeMovements) List(_ context.Context, filter repository.MovementFilter) ([]domain.Movement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	return append([]domain.Movement{}, f.recorded...), nil
}

type fakeAudits struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (f *fakeAudits) Create(_ context.Context, entry *domain.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = fmt.Sprintf("audit-%d", len(f.entries)+1)
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAudits) List(context.Context, repository.AuditFilter) ([]domain.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AuditEntry{}, f.entries...), nil
}

type fakeReports struct {
	from, to time.Time
}

func (f *fakeReports) StockSummary(context.Context) (*domain.StockSummary, error) {
	return &domain.StockSummary{ItemCount: 1}, nil
}

func (f *fakeReports) MovementSummary(_ context.Context, from, to time.Time) (*domain.MovementSummary, error) {
	f.from, f.to = from, to
	return &domain.MovementSummary{From: from, To: to}, nil
}

func (f *fakeReports) Holdings(context.Context, string) ([]domain.Holding, error) {
	return []domain.Holding{}, nil
}

type fakeItems struct {
	items     map[string]*domain.Item
	deleteErr error
}

func (f *fakeItems) Create(_ context.Context, item *domain.Item) error {
	for _, existing := range f.items {
		if existing.SKU == item.SKU {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	item.ID = fmt.Sprintf("item-%d", len(f.items)+1)
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeItems) Update(_ context.Context, item *domain.Item) error {
	existing, ok := f.items[item.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	item.Quantity = existing.Quantity
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeItems) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItems) GetByID(_ context.Context, id string) (*domain.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (f *fakeItems) List(context.Context, repository.ItemFilter) ([]domain.Item, error) {
	out := make([]domain.Item, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, *item)
	}
	return out, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []string
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, string(e.Type)+":"+e.EntityID)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}
