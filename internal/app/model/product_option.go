package model

// Option is a selectable variant name such as a size or a color.
type Option struct {
	ID   uint   `gorm:"primarykey" json:"id"`             // 옵션 ID
	Name string `gorm:"uniqueIndex;not null" json:"name"` // 옵션명
}

func (Option) TableName() string {
	return "options"
}

// ProductOption pairs a product with an option. Rows are reference data
// and never change once created.
type ProductOption struct {
	ID        uint `gorm:"primarykey" json:"id"`                                                 // 상품 옵션 ID
	ProductID uint `gorm:"not null;uniqueIndex:idx_product_option_pair" json:"product_id"`       // 소속 상품 ID
	OptionID  uint `gorm:"not null;uniqueIndex:idx_product_option_pair;index" json:"option_id"` // 옵션 ID

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 소속 상품 정보
	Option  Option  `gorm:"foreignKey:OptionID" json:"option,omitempty"`   // 옵션 정보
}

func (ProductOption) TableName() string {
	return "product_options"
}
