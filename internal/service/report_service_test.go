package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

func TestReportService_Movements(t *testing.T) {
	ctx := context.Background()
	repo := &fakeReports{}
	svc := NewReportService(repo)
	fixed := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.Movements(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, fixed, repo.to)
	assert.Equal(t, fixed.Add(-30*24*time.Hour), repo.from)

	_, err = svc.Movements(ctx, fixed, fixed)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestReportService_Stock(t *testing.T) {
	summary, err := NewReportService(&fakeReports{}).Stock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ItemCount)
}
