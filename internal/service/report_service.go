package service

import (
	"context"
	"time"

	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/repository"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

const defaultReportPeriod = 30 * 24 * time.Hour

// ReportService produces HR reports.
type ReportService struct {
	reports repository.ReportRepository
	now     func() time.Time
}

// NewReportService constructs the service.
func NewReportService(reports repository.ReportRepository) *ReportService {
	return &ReportService{reports: reports, now: time.Now}
}

// Stock summarizes current stock and lists low-stock items.
func (s *ReportService) Stock(ctx context.Context) (*domain.StockSummary, error) {
	summary, err := s.reports.StockSummary(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return summary, nil
}

// Movements aggregates movements in [from, to). Zero bounds default to the
// last 30 days ending now.
func (s *ReportService) Movements(ctx context.Context, from, to time.Time) (*domain.MovementSummary, error) {
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.Add(-defaultReportPeriod)
	}
	if !from.Before(to) {
		return nil, apperrors.NewValidationError("from must be before to", map[string]any{
			"from": from.Format(time.RFC3339),
			"to":   to.Format(time.RFC3339),
		})
	}
	summary, err := s.reports.MovementSummary(ctx, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return summary, nil
}

// Holdings lists what employees currently hold. An empty userID covers everyone.
func (s *ReportService) Holdings(ctx context.Context, userID string) ([]domain.Holding, error) {
	holdings, err := s.reports.Holdings(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return holdings, nil
}
