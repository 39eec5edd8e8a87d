package model

import (
	"time"
)

// Product carries live inventory. Stock and Sales change only when a
// purchase commits.
type Product struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Thumbnail string    `json:"thumbnail"`
	Price     int64     `gorm:"not null" json:"price"` // minor currency units
	Grams     int       `gorm:"not null;default:0" json:"grams"`
	Stock     int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Sales     int       `gorm:"not null;default:0;check:sales >= 0" json:"sales"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	ProductOptions []ProductOption `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
