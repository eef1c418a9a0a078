package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// ItemFilter narrows item listings.
type ItemFilter struct {
	Search   string
	Category string
	LowStock bool
	Page     Page
}

// ItemRepository encapsulates item persistence.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]domain.Item, error)
}

type itemRepository struct {
	db DB
}

// NewItemRepository instantiates repository.
func NewItemRepository(db DB) ItemRepository {
	return &itemRepository{db: db}
}

const itemColumns = `id, sku, name, description, category, location, quantity, min_quantity, created_at, updated_at`

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	const query = `
        INSERT INTO items (sku, name, description, category, location, quantity, min_quantity)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		item.SKU,
		item.Name,
		item.Description,
		item.Category,
		item.Location,
		item.Quantity,
		item.MinQuantity,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

// Update changes descriptive fields only; stock moves through MovementRepository.
func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	const query = `
        UPDATE items SET sku=$1, name=$2, description=$3, category=$4, location=$5, min_quantity=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING quantity, updated_at`
	return r.db.QueryRow(ctx, query,
		item.SKU,
		item.Name,
		item.Description,
		item.Category,
		item.Location,
		item.MinQuantity,
		item.ID,
	).Scan(&item.Quantity, &item.UpdatedAt)
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id=$1`
	return scanItem(r.db.QueryRow(ctx, query, id))
}

func (r *itemRepository) List(ctx context.Context, filter ItemFilter) ([]domain.Item, error) {
	var (
		conditions []string
		args       []any
	)
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", len(args), len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.LowStock {
		conditions = append(conditions, "quantity <= min_quantity")
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + itemColumns + ` FROM items`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	page := filter.Page.Normalize()
	args = append(args, page.Limit, page.Offset)
	sb.WriteString(fmt.Sprintf(" ORDER BY name, id LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var item domain.Item
	if err := row.Scan(
		&item.ID,
		&item.SKU,
		&item.Name,
		&item.Description,
		&item.Category,
		&item.Location,
		&item.Quantity,
		&item.MinQuantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
