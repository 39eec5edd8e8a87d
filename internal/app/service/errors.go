package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrInvalidProduct       = errors.New("product does not exist")
	ErrInvalidOption        = errors.New("option does not exist")
	ErrInvalidProductOption = errors.New("option is not offered for this product")
	ErrOutOfStock           = errors.New("requested quantity exceeds stock")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrNoItemsInCart        = errors.New("cart is empty")
	ErrSoldOut              = errors.New("product sold out")
	ErrInvalidCoupon        = errors.New("coupon is not held by user")
	ErrOrderNotFound        = errors.New("order not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrCartChanged          = errors.New("cart changed during purchase")
)

// SoldOutError reports the first cart line that could not be fulfilled.
type SoldOutError struct {
	ProductName string
}

func (e *SoldOutError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSoldOut.Error(), e.ProductName)
}

func (e *SoldOutError) Is(target error) bool {
	return target == ErrSoldOut
}
