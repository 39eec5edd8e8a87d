package errors

// 에러 코드 상수 정의
// 클라이언트는 error 필드의 코드로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED" // 토큰 없음
	AuthTokenInvalid = "INVALID_TOKEN"     // 잘못된 토큰
	AuthTokenExpired = "EXPIRED_TOKEN"     // 토큰 만료
	AuthInvalidUser  = "INVALID_USER"      // 토큰의 사용자가 존재하지 않음

	// ==================== 입력 (VALIDATION_) ====================
	MalformedInput      = "MALFORMED_INPUT"       // 요청 본문/파라미터 파싱 실패
	ValidationInvalidID = "VALIDATION_INVALID_ID" // 잘못된 ID

	// ==================== 장바구니 (CART_) ====================
	InvalidQuantity       = "INVALID_QUANTITY"        // 수량은 1 이상
	InvalidProduct        = "INVALID_PRODUCT"         // 상품 없음
	InvalidOption         = "INVALID_OPTION"          // 옵션 없음
	InvalidProductsOption = "INVALID_PRODUCTS_OPTION" // 상품에 없는 옵션
	OutOfStock            = "OUT_OF_STOCK"            // 재고 초과
	NotFound              = "NOT_FOUND"               // 장바구니 항목/주문 없음

	// ==================== 구매 (PURCHASE_) ====================
	NoItemsInCart = "NO_ITEMS_IN_CART" // 빈 장바구니
	SoldOut       = "SOLD_OUT"         // 품절
	InvalidCoupon = "INVALID_COUPON"   // 보유하지 않은 쿠폰
	CartChanged   = "CART_CHANGED"     // 구매 중 장바구니가 바뀜

	// ==================== 멱등성 (IDEMPOTENCY_) ====================
	IdempotencyKeyReused  = "IDEMPOTENCY_KEY_REUSED"  // 같은 키, 다른 요청 본문
	IdempotencyInProgress = "IDEMPOTENCY_IN_PROGRESS" // 같은 키의 요청이 처리 중

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
)
