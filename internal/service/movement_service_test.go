package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/repository"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

var warehouseManager = domain.Identity{ID: "user-wm", Role: domain.RoleWarehouseManager}

func newMovementFixture() (*MovementService, *fakeMovements, *recordingDispatcher) {
	users := newFakeUsers(
		&domain.User{ID: "emp-1", Role: domain.RoleEmployee, Active: true},
		&domain.User{ID: "emp-gone", Role: domain.RoleEmployee, Active: false},
	)
	movements := newFakeMovements(map[string]int{"item-1": 5})
	d := &recordingDispatcher{}
	svc := NewMovementService(MovementDependencies{MovementRepo: movements, UserRepo: users, Dispatcher: d})
	return svc, movements, d
}

func TestMovementService_CheckOutAndIn(t *testing.T) {
	ctx := context.Background()
	svc, movements, d := newMovementFixture()

	out, err := svc.CheckOut(ctx, warehouseManager, MovementInput{ItemID: "item-1", Quantity: 2, RecipientID: "emp-1", DigitalSignature: "sig"})
	require.NoError(t, err)
	assert.False(t, out.Replayed)
	assert.Equal(t, 3, out.Movement.QuantityAfter)
	assert.Equal(t, "user-wm", out.Movement.ActorID)

	in, err := svc.CheckIn(ctx, warehouseManager, MovementInput{ItemID: "item-1", Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 7, in.Movement.QuantityAfter)
	assert.Equal(t, 7, movements.stock["item-1"])

	assert.Equal(t, []string{"movement.recorded:mov-1", "movement.recorded:mov-2"}, d.events)
}

func TestMovementService_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		input MovementInput
		code  string
	}{
		{name: "zero quantity", input: MovementInput{ItemID: "item-1", Quantity: 0}, code: "VALIDATION_FAILED"},
		{name: "negative quantity", input: MovementInput{ItemID: "item-1", Quantity: -1}, code: "VALIDATION_FAILED"},
		{name: "unknown recipient", input: MovementInput{ItemID: "item-1", Quantity: 1, RecipientID: "ghost"}, code: "NOT_FOUND"},
		{name: "inactive recipient", input: MovementInput{ItemID: "item-1", Quantity: 1, RecipientID: "emp-gone"}, code: "VALIDATION_FAILED"},
		{name: "more than in stock", input: MovementInput{ItemID: "item-1", Quantity: 6}, code: "INSUFFICIENT_STOCK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, movements, d := newMovementFixture()
			_, err := svc.CheckOut(ctx, warehouseManager, tt.input)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, tt.code), "got %v", err)
			assert.Equal(t, 5, movements.stock["item-1"])
			assert.Empty(t, d.events)
		})
	}
}

func TestMovementService_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	svc, movements, d := newMovementFixture()
	input := MovementInput{ItemID: "item-1", Quantity: 1, IdempotencyKey: "5a7c3f0e-1111-4e5b-9c1d-000000000001"}

	first, err := svc.CheckOut(ctx, warehouseManager, input)
	require.NoError(t, err)
	second, err := svc.CheckOut(ctx, warehouseManager, input)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Movement.ID, second.Movement.ID)
	assert.Equal(t, 4, movements.stock["item-1"])
	assert.Len(t, d.events, 1)
}

func TestMovementService_List(t *testing.T) {
	ctx := context.Background()
	svc, movements, _ := newMovementFixture()

	_, err := svc.ListMine(ctx, "emp-1", repository.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, movements.filters, 1)
	assert.Equal(t, "emp-1", movements.filters[0].RecipientID)

	_, err = svc.List(ctx, MovementListFilter{Direction: "sideways"})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestMovementService_RecipientLookupFailure(t *testing.T) {
	svc, _, _ := newMovementFixture()
	svc.users.(*fakeUsers).err = errors.New("db down")

	_, err := svc.CheckOut(context.Background(), warehouseManager, MovementInput{ItemID: "item-1", Quantity: 1, RecipientID: "emp-1"})
	assert.True(t, apperrors.IsCode(err, "INTERNAL_ERROR"))
}
