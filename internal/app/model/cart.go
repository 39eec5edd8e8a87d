package model

import (
	"time"
)

// CartItem is one line of a user's cart. The stored quantity is not clamped
// to stock; reads clamp it for display.
type CartItem struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_cart_user_product_option" json:"user_id"`
	ProductOptionID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product_option;index" json:"product_option_id"`
	Quantity        int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relationships
	User          User          `gorm:"foreignKey:UserID" json:"-"`
	ProductOption ProductOption `gorm:"foreignKey:ProductOptionID" json:"product_option,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartItemView is the joined read model of a cart line.
type CartItemView struct {
	CartItemID      uint   `json:"cart_item_id"`
	ProductOptionID uint   `json:"product_option_id"`
	ProductID       uint   `json:"product_id"`
	OptionID        uint   `json:"option_id"`
	Thumbnail       string `json:"thumbnail"`
	Name            string `json:"name"`
	Option          string `gorm:"column:option_name" json:"option"`
	Price           int64  `json:"price"`
	Grams           int    `json:"grams"`
	Stock           int    `json:"stock"`
	Quantity        int    `json:"quantity"`
}
