package repository

import (
	"context"
	"time"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// ReportRepository runs the read-only aggregate queries behind HR reports.
type ReportRepository interface {
	StockSummary(ctx context.Context) (*domain.StockSummary, error)
	MovementSummary(ctx context.Context, from, to time.Time) (*domain.MovementSummary, error)
	Holdings(ctx context.Context, userID string) ([]domain.Holding, error)
}

type reportRepository struct {
	db DB
}

// NewReportRepository instantiates repository.
func NewReportRepository(db DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) StockSummary(ctx context.Context) (*domain.StockSummary, error) {
	summary := &domain.StockSummary{LowStock: make([]domain.Item, 0)}
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM items`,
	).Scan(&summary.ItemCount, &summary.TotalQuantity); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+itemColumns+` FROM items WHERE quantity <= min_quantity ORDER BY quantity, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		summary.LowStock = append(summary.LowStock, *item)
	}
	return summary, rows.Err()
}

func (r *reportRepository) MovementSummary(ctx context.Context, from, to time.Time) (*domain.MovementSummary, error) {
	const query = `
        SELECT
            COUNT(*) FILTER (WHERE direction = 'checkin'),
            COALESCE(SUM(quantity) FILTER (WHERE direction = 'checkin'), 0),
            COUNT(*) FILTER (WHERE direction = 'checkout'),
            COALESCE(SUM(quantity) FILTER (WHERE direction = 'checkout'), 0)
        FROM movements
        WHERE created_at >= $1 AND created_at < $2`
	summary := &domain.MovementSummary{From: from, To: to}
	if err := r.db.QueryRow(ctx, query, from, to).Scan(
		&summary.CheckInCount,
		&summary.CheckInQuantity,
		&summary.CheckOutCount,
		&summary.CheckOutQuantity,
	); err != nil {
		return nil, err
	}
	return summary, nil
}

// Holdings nets check-outs against returns per recipient and item. An empty
// userID reports every employee.
func (r *reportRepository) Holdings(ctx context.Context, userID string) ([]domain.Holding, error) {
	const query = `
        SELECT u.id, u.full_name, i.id, i.name,
               SUM(CASE WHEN m.direction = 'checkout' THEN m.quantity ELSE -m.quantity END)::int AS held
        FROM movements m
        JOIN users u ON u.id = m.recipient_id
        JOIN items i ON i.id = m.item_id
        WHERE m.recipient_id IS NOT NULL AND ($1 = '' OR m.recipient_id::text = $1)
        GROUP BY u.id, u.full_name, i.id, i.name
        HAVING SUM(CASE WHEN m.direction = 'checkout' THEN m.quantity ELSE -m.quantity END) > 0
        ORDER BY u.full_name, i.name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holdings := make([]domain.Holding, 0)
	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.UserID, &h.FullName, &h.ItemID, &h.ItemName, &h.Quantity); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}
