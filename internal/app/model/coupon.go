package model

import (
	"time"
)

type Coupon struct {
	ID        uint      `gorm:"primarykey" json:"id"`  // 쿠폰 ID
	Name      string    `gorm:"not null" json:"name"`  // 쿠폰명
	Value     int64     `gorm:"not null" json:"value"` // 할인 금액
	CreatedAt time.Time `json:"created_at"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// UserCoupon is a coupon held by a user. The row is hard-deleted on
// redemption, so its existence means the coupon is still usable.
type UserCoupon struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_user_coupon" json:"user_id"`
	CouponID  uint      `gorm:"not null;index:idx_user_coupon" json:"coupon_id"`
	CreatedAt time.Time `json:"created_at"`

	Coupon Coupon `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
}

func (UserCoupon) TableName() string {
	return "user_coupons"
}
