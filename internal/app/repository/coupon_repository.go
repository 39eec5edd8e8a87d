package repository

import (
	"context"
	"errors"

	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/ikkim/cartcore-backend/pkg/logger"
	"gorm.io/gorm"
)

type CouponRepository interface {
	WithTx(tx *gorm.DB) CouponRepository
	FindCouponByID(ctx context.Context, id uint) (*model.Coupon, error)
	HasUnredeemed(ctx context.Context, userID, couponID uint) (bool, error)
	Redeem(ctx context.Context, userID, couponID uint) (bool, error)
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) WithTx(tx *gorm.DB) CouponRepository {
	return &couponRepository{db: tx}
}

func (r *couponRepository) FindCouponByID(ctx context.Context, id uint) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) HasUnredeemed(ctx context.Context, userID, couponID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserCoupon{}).
		Where("user_id = ? AND coupon_id = ?", userID, couponID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Redeem deletes one held copy of the coupon. It reports false when no row
// was deleted, which happens when another redemption got there first.
func (r *couponRepository) Redeem(ctx context.Context, userID, couponID uint) (bool, error) {
	var held model.UserCoupon
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND coupon_id = ?", userID, couponID).
		Order("id ASC").
		First(&held).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", held.ID, userID).
		Delete(&model.UserCoupon{})
	if result.Error != nil {
		logger.Error("Failed to redeem user coupon", result.Error, map[string]interface{}{
			"user_id":   userID,
			"coupon_id": couponID,
		})
		return false, result.Error
	}

	logger.Debug("User coupon redeemed", map[string]interface{}{
		"user_id":        userID,
		"coupon_id":      couponID,
		"user_coupon_id": held.ID,
		"rows_affected":  result.RowsAffected,
	})
	return result.RowsAffected == 1, nil
}
