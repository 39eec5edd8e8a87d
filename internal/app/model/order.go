package model

import (
	"time"
)

type OrderStatus string     // 주문 상태 코드
type OrderItemStatus string // 주문 항목 상태 코드

const (
	OrderStatusPending   OrderStatus = "pending"   // 주문 접수
	OrderStatusConfirmed OrderStatus = "confirmed" // 주문 확정
	OrderStatusShipping  OrderStatus = "shipping"  // 배송 중
	OrderStatusDelivered OrderStatus = "delivered" // 배송 완료
	OrderStatusCancelled OrderStatus = "cancelled" // 주문 취소

	OrderItemStatusCompleted OrderItemStatus = "completed" // 구매 완료
	OrderItemStatusCancelled OrderItemStatus = "cancelled" // 구매 취소
	OrderItemStatusRefunded  OrderItemStatus = "refunded"  // 환불 완료
)

type Order struct {
	ID           uint        `gorm:"primarykey" json:"id"`                               // 주문 ID
	UserID       uint        `gorm:"not null;index" json:"user_id"`                      // 주문자 ID
	DeliveryDate time.Time   `gorm:"not null" json:"delivery_date"`                      // 배송 예정일
	Recipient    string      `gorm:"not null" json:"recipient"`                          // 수령인
	Phone        string      `json:"phone"`                                              // 수령인 연락처
	Address      string      `gorm:"type:text" json:"address"`                           // 배송지 주소
	CouponID     *uint       `gorm:"index" json:"coupon_id,omitempty"`                   // 사용 쿠폰 ID
	DeliveryFee  int64       `gorm:"not null;default:0" json:"delivery_fee"`             // 배송비
	Status       OrderStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`   // 주문 상태
	TotalPrice   int64       `gorm:"not null;check:total_price >= 0" json:"total_price"` // 최종 결제 금액
	Point        int64       `gorm:"not null;default:0" json:"point"`                    // 적립 포인트
	CreatedAt    time.Time   `json:"created_at"`                                         // 생성 시각
	UpdatedAt    time.Time   `json:"updated_at"`                                         // 수정 시각

	User       User        `gorm:"foreignKey:UserID" json:"-"`                                                  // 주문자 정보
	Coupon     *Coupon     `gorm:"foreignKey:CouponID" json:"-"`                                                // 사용 쿠폰
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"` // 주문 항목 목록
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID              uint            `gorm:"primarykey" json:"id"`                               // 주문 항목 ID
	OrderID         uint            `gorm:"not null;index" json:"order_id"`                     // 주문 ID
	ProductOptionID uint            `gorm:"not null;index" json:"product_option_id"`            // 상품 옵션 ID
	Quantity        int             `gorm:"not null" json:"quantity"`                           // 수량
	Status          OrderItemStatus `gorm:"type:varchar(20);default:'completed'" json:"status"` // 항목 상태
	CreatedAt       time.Time       `json:"created_at"`                                         // 생성 시각

	Order         Order         `gorm:"foreignKey:OrderID" json:"-"`                                // 주문 정보
	ProductOption ProductOption `gorm:"foreignKey:ProductOptionID" json:"product_option,omitempty"` // 옵션 정보
}

func (OrderItem) TableName() string {
	return "order_items"
}
