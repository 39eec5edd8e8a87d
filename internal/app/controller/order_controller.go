package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/cartcore-backend/internal/app/service"
	apperrors "github.com/ikkim/cartcore-backend/internal/errors"
	"github.com/ikkim/cartcore-backend/internal/middleware"
)

type OrderController struct {
	purchaseService service.PurchaseService
	orderService    service.OrderService
}

func NewOrderController(purchaseService service.PurchaseService, orderService service.OrderService) *OrderController {
	return &OrderController{
		purchaseService: purchaseService,
		orderService:    orderService,
	}
}

type PurchaseRequest struct {
	CouponID *uint `json:"coupon_id"`
}

// Purchase converts the cart into an order
// POST /api/v1/purchase
func (ctrl *OrderController) Purchase(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	// an empty body means no coupon
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("Invalid purchase request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.Malformed(c, "")
		return
	}

	order, err := ctrl.purchaseService.Purchase(c.Request.Context(), userID, req.CouponID)
	if err != nil {
		log.Warn("Purchase failed", map[string]interface{}{
			"user_id":   userID,
			"coupon_id": req.CouponID,
			"error":     err.Error(),
		})
		apperrors.RespondWithServiceError(c, err)
		return
	}

	log.Info("Purchase completed", map[string]interface{}{
		"user_id":     userID,
		"order_id":    order.ID,
		"total_price": order.TotalPrice,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "SUCCESS",
		"order":   order,
	})
}

// GetOrders returns user's orders
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderByID returns one of the user's orders
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(c.Request.Context(), userID, orderID)
	if err != nil {
		log.Warn("Failed to fetch order", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"error":    err.Error(),
		})
		apperrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}
