package repository_test

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain/model"
	infrarepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestCartGorm_AddQuantity_UpsertsSingleRow(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	u := createUser(t, gdb, "alice")
	p := createProduct(t, gdb, "Widget", "10.00", 100)

	cart := infrarepo.NewCartGormRepository(gdb)
	require.NoError(t, cart.AddQuantity(ctx, u.ID, p.ID, 2))
	require.NoError(t, cart.AddQuantity(ctx, u.ID, p.ID, 3))

	lines, err := cart.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(5), lines[0].Quantity)
}

func TestCartGorm_AddQuantity_Concurrent(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	u := createUser(t, gdb, "alice")
	p := createProduct(t, gdb, "Widget", "10.00", 100)

	cart := infrarepo.NewCartGormRepository(gdb)
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error { return cart.AddQuantity(ctx, u.ID, p.ID, 1) })
	}
	require.NoError(t, g.Wait())

	lines, err := cart.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(8), lines[0].Quantity)
}

func TestCartUsecase_AddToCart_ConcurrentNeverExceedsStock(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	u := createUser(t, gdb, "alice")
	p := createProduct(t, gdb, "Widget", "10.00", 5)

	cartRepo := infrarepo.NewCartGormRepository(gdb)
	uc := usecase.NewCartUsecase(cartRepo, infrarepo.NewProductGormRepository(gdb), infrarepo.NewTxManagerGorm(gdb))

	const n = 10
	results := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			one := int64(1)
			_, err := uc.AddToCart(ctx, u.ID, usecase.AddCartInput{ProductID: p.ID, Quantity: &one})
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	added := 0
	for _, err := range results {
		if err == nil {
			added++
			continue
		}
		assert.True(t, errors.Is(err, usecase.ErrValidation), "unexpected error: %v", err)
	}
	assert.Equal(t, 5, added)

	line, err := cartRepo.FindByUserAndProduct(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), line.Quantity)
}

func TestCartUsecase_SetQuantityZero_LeavesLineUnchanged(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	u := createUser(t, gdb, "alice")
	p := createProduct(t, gdb, "Widget", "10.00", 100)

	cartRepo := infrarepo.NewCartGormRepository(gdb)
	uc := usecase.NewCartUsecase(cartRepo, infrarepo.NewProductGormRepository(gdb), infrarepo.NewTxManagerGorm(gdb))

	two := int64(2)
	_, err := uc.AddToCart(ctx, u.ID, usecase.AddCartInput{ProductID: p.ID, Quantity: &two})
	require.NoError(t, err)

	line, err := cartRepo.FindByUserAndProduct(ctx, u.ID, p.ID)
	require.NoError(t, err)

	zero := int64(0)
	_, err = uc.UpdateCartItem(ctx, u.ID, line.ID, usecase.UpdateCartItemInput{Quantity: &zero})
	assert.ErrorIs(t, err, usecase.ErrValidation)

	after, err := cartRepo.FindByID(ctx, u.ID, line.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), after.Quantity)
}

func TestCartGorm_OwnerScoping(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	p := createProduct(t, gdb, "Widget", "10.00", 100)

	cart := infrarepo.NewCartGormRepository(gdb)
	require.NoError(t, cart.AddQuantity(ctx, alice.ID, p.ID, 1))
	require.NoError(t, cart.AddQuantity(ctx, bob.ID, p.ID, 1))
	line, err := cart.FindByUserAndProduct(ctx, alice.ID, p.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, cart.UpdateQuantity(ctx, bob.ID, line.ID, 9), repo.ErrNotFound)
	assert.ErrorIs(t, cart.Delete(ctx, bob.ID, line.ID), repo.ErrNotFound)

	require.NoError(t, cart.ClearByUserID(ctx, alice.ID))
	assert.Equal(t, int64(1), countRows(t, gdb, &model.CartLine{}))
}
