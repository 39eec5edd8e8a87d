package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 표준 에러 응답 구조
type ErrorResponse struct {
	Error          string `json:"error"`                      // 에러 코드
	Message        string `json:"message"`                    // 사용자 친화적 메시지
	SoldOutProduct string `json:"sold_out_product,omitempty"` // 품절 상품명 (SOLD_OUT 전용)
}

// RespondWithError 에러 응답 헬퍼
// statusCode: HTTP 상태 코드
// errorCode: 에러 코드 상수 (codes.go 참조)
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// RespondWithServiceError maps a service error and writes it
func RespondWithServiceError(c *gin.Context, err error) {
	info := FromServiceError(err)
	c.JSON(info.Status, ErrorResponse{
		Error:          info.Code,
		Message:        info.Message,
		SoldOutProduct: info.SoldOutProduct,
	})
}

// 자주 사용하는 에러 응답 단축 함수들

func Unauthorized(c *gin.Context, errorCode string, message string) {
	if errorCode == "" {
		errorCode = AuthUnauthorized
	}
	if message == "" {
		message = "로그인이 필요합니다"
	}
	RespondWithError(c, http.StatusUnauthorized, errorCode, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func Malformed(c *gin.Context, message string) {
	if message == "" {
		message = "요청 형식이 올바르지 않습니다"
	}
	RespondWithError(c, http.StatusBadRequest, MalformedInput, message)
}

func NotFoundError(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}
