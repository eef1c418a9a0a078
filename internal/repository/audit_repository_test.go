package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/repository"
)

func TestAuditCreateAndList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repository.NewAuditRepository(mock)
	ctx := context.Background()
	now := time.Now()

	entry := &domain.AuditEntry{ActorID: "user-1", Action: "item.created", EntityType: "item", EntityID: "item-1"}
	mock.ExpectQuery("INSERT INTO audit_logs").
		WithArgs("user-1", "item.created", "item", "item-1", []byte(`{}`)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("audit-1", now))

	require.NoError(t, r.Create(ctx, entry))
	assert.Equal(t, "audit-1", entry.ID)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM audit_logs WHERE entity_type = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`)).
		WithArgs("item", 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "actor_id", "action", "entity_type", "entity_id", "details", "created_at"}).
			AddRow("audit-1", "user-1", "item.updated", "item", "item-1", []byte(`{"sku":"LAP-01"}`), now))

	entries, err := r.List(ctx, repository.AuditFilter{EntityType: "item"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "LAP-01", entries[0].Details["sku"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
