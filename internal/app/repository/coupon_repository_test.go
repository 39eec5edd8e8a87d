package repository

import (
	"context"
	"testing"

	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCoupon(t *testing.T) (*gorm.DB, catalogFixture, *model.Coupon) {
	testDB, fx := setupCatalog(t)

	coupon := &model.Coupon{Name: "Welcome", Value: 3000}
	require.NoError(t, testDB.Create(coupon).Error)

	return testDB, fx, coupon
}

func TestCouponRepository_FindCouponByID(t *testing.T) {
	testDB, _, coupon := setupCoupon(t)
	repo := NewCouponRepository(testDB)

	found, err := repo.FindCouponByID(context.Background(), coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), found.Value)

	_, err = repo.FindCouponByID(context.Background(), 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCouponRepository_HasUnredeemed(t *testing.T) {
	testDB, fx, coupon := setupCoupon(t)
	repo := NewCouponRepository(testDB)
	ctx := context.Background()

	held, err := repo.HasUnredeemed(ctx, fx.user.ID, coupon.ID)
	require.NoError(t, err)
	assert.False(t, held)

	require.NoError(t, testDB.Create(&model.UserCoupon{UserID: fx.user.ID, CouponID: coupon.ID}).Error)

	held, err = repo.HasUnredeemed(ctx, fx.user.ID, coupon.ID)
	require.NoError(t, err)
	assert.True(t, held)

	held, err = repo.HasUnredeemed(ctx, fx.user.ID+1, coupon.ID)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestCouponRepository_Redeem(t *testing.T) {
	testDB, fx, coupon := setupCoupon(t)
	repo := NewCouponRepository(testDB)
	ctx := context.Background()

	require.NoError(t, testDB.Create(&model.UserCoupon{UserID: fx.user.ID, CouponID: coupon.ID}).Error)

	redeemed, err := repo.Redeem(ctx, fx.user.ID, coupon.ID)
	require.NoError(t, err)
	assert.True(t, redeemed)

	// second redemption finds nothing
	redeemed, err = repo.Redeem(ctx, fx.user.ID, coupon.ID)
	require.NoError(t, err)
	assert.False(t, redeemed)

	held, err := repo.HasUnredeemed(ctx, fx.user.ID, coupon.ID)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestCouponRepository_Redeem_ConsumesOneCopy(t *testing.T) {
	testDB, fx, coupon := setupCoupon(t)
	repo := NewCouponRepository(testDB)
	ctx := context.Background()

	require.NoError(t, testDB.Create(&model.UserCoupon{UserID: fx.user.ID, CouponID: coupon.ID}).Error)
	require.NoError(t, testDB.Create(&model.UserCoupon{UserID: fx.user.ID, CouponID: coupon.ID}).Error)

	redeemed, err := repo.Redeem(ctx, fx.user.ID, coupon.ID)
	require.NoError(t, err)
	assert.True(t, redeemed)

	var remaining int64
	testDB.Model(&model.UserCoupon{}).Where("user_id = ?", fx.user.ID).Count(&remaining)
	assert.Equal(t, int64(1), remaining)
}
