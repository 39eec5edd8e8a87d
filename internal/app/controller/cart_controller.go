package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/cartcore-backend/internal/app/service"
	apperrors "github.com/ikkim/cartcore-backend/internal/errors"
	"github.com/ikkim/cartcore-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

// Quantity is a pointer so a missing field is rejected as malformed while an
// explicit zero reaches the service as INVALID_QUANTITY.
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	OptionID  uint `json:"option_id" binding:"required"`
	Quantity  *int `json:"quantity" binding:"required"`
}

type UpdateCartRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart returns user's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	items, err := ctrl.cartService.List(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart_items": items,
		"count":      len(items),
	})
}

// AddToCart adds item to cart
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.Malformed(c, "")
		return
	}

	item, err := ctrl.cartService.Add(c.Request.Context(), userID, req.ProductID, req.OptionID, *req.Quantity)
	if err != nil {
		log.Warn("Failed to add item to cart", map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
			"option_id":  req.OptionID,
			"error":      err.Error(),
		})
		apperrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "SUCCESS",
		"cart_item": item,
	})
}

// UpdateCartItem changes a line item quantity
// PATCH /api/v1/cart/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cartItemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.Malformed(c, "")
		return
	}

	item, err := ctrl.cartService.UpdateQuantity(c.Request.Context(), userID, cartItemID, *req.Quantity)
	if err != nil {
		log.Warn("Failed to update cart item", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
			"error":        err.Error(),
		})
		apperrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "SUCCESS",
		"cart_item": item,
	})
}

// RemoveFromCart deletes one line item, or the whole cart for id 0
// DELETE /api/v1/cart/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cartItemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctrl.remove(c, userID, cartItemID)
}

// ClearCart deletes every item in the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctrl.remove(c, userID, service.ClearCartItemID)
}

func (ctrl *CartController) remove(c *gin.Context, userID, cartItemID uint) {
	if err := ctrl.cartService.Remove(c.Request.Context(), userID, cartItemID); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to remove cart item", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
			"error":        err.Error(),
		})
		apperrors.RespondWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
