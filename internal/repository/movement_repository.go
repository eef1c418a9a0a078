package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/inventory-service/internal/domain"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

// MovementFilter narrows movement listings.
type MovementFilter struct {
	ItemID      string
	RecipientID string
	Direction   domain.MovementDirection
	From        *time.Time
	To          *time.Time
	Page        Page
}

// MovementRepository records stock movements and the stock change they imply.
type MovementRepository interface {
	// Record applies the movement's stock delta and inserts it in one
	// transaction. When the idempotency key was already used by the same actor
	// for the same item and direction, the stored movement is loaded into m and
	// replayed is true; stock is untouched. Any other reuse of the key is a
	// conflict.
	Record(ctx context.Context, m *domain.Movement) (replayed bool, err error)
	List(ctx context.Context, filter MovementFilter) ([]domain.Movement, error)
}

type movementRepository struct {
	db DB
}

// NewMovementRepository instantiates repository.
func NewMovementRepository(db DB) MovementRepository {
	return &movementRepository{db: db}
}

const movementColumns = `id, item_id, direction, quantity, quantity_after, actor_id,
        COALESCE(recipient_id::text, ''), digital_signature, COALESCE(idempotency_key, ''), created_at`

func (r *movementRepository) Record(ctx context.Context, m *domain.Movement) (replayed bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if m.IdempotencyKey != "" {
		existing, lookupErr := scanMovement(tx.QueryRow(ctx,
			`SELECT `+movementColumns+` FROM movements WHERE idempotency_key=$1`, m.IdempotencyKey))
		switch {
		case lookupErr == nil:
			// A key belongs to one actor's movement; reuse for anything else is a conflict.
			if existing.ActorID != m.ActorID || existing.Direction != m.Direction || existing.ItemID != m.ItemID {
				err = apperrors.NewConflict("idempotency key already used", map[string]any{"idempotencyKey": m.IdempotencyKey})
				return false, err
			}
			*m = *existing
			return true, tx.Commit(ctx)
		case !errors.Is(lookupErr, pgx.ErrNoRows):
			return false, lookupErr
		}
	}

	var current int
	if err = tx.QueryRow(ctx, `SELECT quantity FROM items WHERE id=$1 FOR UPDATE`, m.ItemID).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = apperrors.NewNotFound("item", map[string]any{"itemId": m.ItemID})
		}
		return false, err
	}

	next := current + m.Direction.Delta(m.Quantity)
	if next < 0 {
		err = apperrors.NewInsufficientStock(m.ItemID, current, m.Quantity)
		return false, err
	}

	if _, err = tx.Exec(ctx, `UPDATE items SET quantity=$1, updated_at=NOW() WHERE id=$2`, next, m.ItemID); err != nil {
		return false, err
	}

	const insert = `
        INSERT INTO movements (item_id, direction, quantity, quantity_after, actor_id, recipient_id, digital_signature, idempotency_key)
        VALUES ($1,$2,$3,$4,$5,NULLIF($6,'')::uuid,$7,NULLIF($8,''))
        RETURNING id, created_at`
	m.QuantityAfter = next
	if err = tx.QueryRow(ctx, insert,
		m.ItemID,
		m.Direction,
		m.Quantity,
		m.QuantityAfter,
		m.ActorID,
		m.RecipientID,
		m.DigitalSignature,
		m.IdempotencyKey,
	).Scan(&m.ID, &m.CreatedAt); err != nil {
		if IsUniqueViolation(err) {
			err = apperrors.NewConflict("idempotency key already used", map[string]any{"idempotencyKey": m.IdempotencyKey})
		}
		return false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return false, err
	}
	return false, nil
}

func (r *movementRepository) List(ctx context.Context, filter MovementFilter) ([]domain.Movement, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.ItemID != "" {
		add("item_id = $%d", filter.ItemID)
	}
	if filter.RecipientID != "" {
		add("recipient_id = $%d", filter.RecipientID)
	}
	if filter.Direction != "" {
		add("direction = $%d", filter.Direction)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", *filter.To)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + movementColumns + ` FROM movements`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	page := filter.Page.Normalize()
	args = append(args, page.Limit, page.Offset)
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := make([]domain.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, *m)
	}
	return movements, rows.Err()
}

func scanMovement(row pgx.Row) (*domain.Movement, error) {
	var m domain.Movement
	if err := row.Scan(
		&m.ID,
		&m.ItemID,
		&m.Direction,
		&m.Quantity,
		&m.QuantityAfter,
		&m.ActorID,
		&m.RecipientID,
		&m.DigitalSignature,
		&m.IdempotencyKey,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}
