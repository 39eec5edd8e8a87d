package service

import (
	"context"
	"testing"

	"github.com/ikkim/cartcore-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_ReadsPurchasedOrders(t *testing.T) {
	testDB := setupServiceDB(t)
	purchases := newTestPurchaseService(testDB)
	orders := NewOrderService(repository.NewOrderRepository(testDB))
	ctx := context.Background()

	user := createUser(t, testDB, "buyer@example.com")
	other := createUser(t, testDB, "other@example.com")
	a := createListing(t, testDB, "A", 10000, 10, "Blue")
	putInCart(t, testDB, user.ID, a, 1)

	placed, err := purchases.Purchase(ctx, user.ID, nil)
	require.NoError(t, err)

	list, err := orders.GetUserOrders(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, placed.ID, list[0].ID)
	require.Len(t, list[0].OrderItems, 1)
	assert.Equal(t, "A", list[0].OrderItems[0].ProductOption.Product.Name)

	found, err := orders.GetOrderByID(ctx, user.ID, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.TotalPrice, found.TotalPrice)

	empty, err := orders.GetUserOrders(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOrderService_GetOrderByID_NotFound(t *testing.T) {
	testDB := setupServiceDB(t)
	purchases := newTestPurchaseService(testDB)
	orders := NewOrderService(repository.NewOrderRepository(testDB))
	ctx := context.Background()

	user := createUser(t, testDB, "buyer@example.com")
	other := createUser(t, testDB, "other@example.com")
	a := createListing(t, testDB, "A", 10000, 10, "Blue")
	putInCart(t, testDB, user.ID, a, 1)

	placed, err := purchases.Purchase(ctx, user.ID, nil)
	require.NoError(t, err)

	_, err = orders.GetOrderByID(ctx, other.ID, placed.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = orders.GetOrderByID(ctx, user.ID, 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
