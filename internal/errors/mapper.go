package errors

import (
	"errors"
	"net/http"

	"github.com/ikkim/cartcore-backend/internal/app/service"
	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Status         int
	Code           string
	Message        string
	SoldOutProduct string
}

// FromServiceError translates service errors into status, code and message.
// Unknown errors become a 500 without leaking the cause.
func FromServiceError(err error) ErrorInfo {
	var soldOut *service.SoldOutError
	switch {
	case err == nil:
		return ErrorInfo{Status: http.StatusInternalServerError, Code: InternalServerError, Message: "서버 오류가 발생했습니다"}
	case errors.As(err, &soldOut):
		return ErrorInfo{Status: http.StatusBadRequest, Code: SoldOut, Message: "품절된 상품이 있습니다", SoldOutProduct: soldOut.ProductName}
	case errors.Is(err, service.ErrSoldOut):
		return ErrorInfo{Status: http.StatusBadRequest, Code: SoldOut, Message: "품절된 상품이 있습니다"}
	case errors.Is(err, service.ErrInvalidQuantity):
		return ErrorInfo{Status: http.StatusBadRequest, Code: InvalidQuantity, Message: "수량은 1개 이상이어야 합니다"}
	case errors.Is(err, service.ErrInvalidProduct):
		return ErrorInfo{Status: http.StatusBadRequest, Code: InvalidProduct, Message: "존재하지 않는 상품입니다"}
	case errors.Is(err, service.ErrInvalidOption):
		return ErrorInfo{Status: http.StatusBadRequest, Code: InvalidOption, Message: "존재하지 않는 옵션입니다"}
	case errors.Is(err, service.ErrInvalidProductOption):
		return ErrorInfo{Status: http.StatusBadRequest, Code: InvalidProductsOption, Message: "상품에 없는 옵션입니다"}
	case errors.Is(err, service.ErrOutOfStock):
		return ErrorInfo{Status: http.StatusBadRequest, Code: OutOfStock, Message: "재고가 부족합니다"}
	case errors.Is(err, service.ErrNoItemsInCart):
		return ErrorInfo{Status: http.StatusBadRequest, Code: NoItemsInCart, Message: "장바구니가 비어 있습니다"}
	case errors.Is(err, service.ErrInvalidCoupon):
		return ErrorInfo{Status: http.StatusBadRequest, Code: InvalidCoupon, Message: "사용할 수 없는 쿠폰입니다"}
	case errors.Is(err, service.ErrCartChanged):
		return ErrorInfo{Status: http.StatusConflict, Code: CartChanged, Message: "장바구니가 변경되었습니다. 다시 시도해주세요"}
	case errors.Is(err, service.ErrCartItemNotFound):
		return ErrorInfo{Status: http.StatusNotFound, Code: NotFound, Message: "장바구니 항목을 찾을 수 없습니다"}
	case errors.Is(err, service.ErrOrderNotFound):
		return ErrorInfo{Status: http.StatusNotFound, Code: NotFound, Message: "주문을 찾을 수 없습니다"}
	case errors.Is(err, service.ErrUserNotFound):
		return ErrorInfo{Status: http.StatusUnauthorized, Code: AuthInvalidUser, Message: "존재하지 않는 사용자입니다"}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrorInfo{Status: http.StatusNotFound, Code: NotFound, Message: "요청한 리소스를 찾을 수 없습니다"}
	default:
		return ErrorInfo{Status: http.StatusInternalServerError, Code: InternalServerError, Message: "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요"}
	}
}
