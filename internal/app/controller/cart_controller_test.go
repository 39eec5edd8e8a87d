package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/ikkim/cartcore-backend/internal/app/repository"
	"github.com/ikkim/cartcore-backend/internal/app/service"
	apperrors "github.com/ikkim/cartcore-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartControllerTest(t *testing.T) (*CartController, *gin.Engine, *gorm.DB, catalogFixture) {
	testDB, fx := setupControllerDB(t)

	cartService := service.NewCartService(
		repository.NewCartRepository(testDB),
		repository.NewProductRepository(testDB),
	)
	return NewCartController(cartService), gin.New(), testDB, fx
}

func TestCartController_GetCart_Success(t *testing.T) {
	controller, router, testDB, fx := setupCartControllerTest(t)
	putInCart(t, testDB, fx.user.ID, fx.productOption.ID, 2)

	router.GET("/cart", asUser(fx.user.ID, controller.GetCart))

	w := doJSON(router, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		CartItems []model.CartItemView `json:"cart_items"`
		Count     int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, 1, response.Count)

	item := response.CartItems[0]
	assert.Equal(t, fx.product.ID, item.ProductID)
	assert.Equal(t, fx.option.ID, item.OptionID)
	assert.Equal(t, "Handmade Mug", item.Name)
	assert.Equal(t, "Blue", item.Option)
	assert.Equal(t, int64(12500), item.Price)
	assert.Equal(t, 350, item.Grams)
	assert.Equal(t, 10, item.Stock)
	assert.Equal(t, 2, item.Quantity)
}

func TestCartController_GetCart_Empty(t *testing.T) {
	controller, router, _, fx := setupCartControllerTest(t)
	router.GET("/cart", asUser(fx.user.ID, controller.GetCart))

	w := doJSON(router, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(0), response["count"])
}

func TestCartController_Unauthorized(t *testing.T) {
	controller, router, _, _ := setupCartControllerTest(t)
	router.GET("/cart", controller.GetCart)
	router.POST("/cart", controller.AddToCart)
	router.DELETE("/cart", controller.ClearCart)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		w := doJSON(router, method, "/cart", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, method)
		assert.Equal(t, apperrors.AuthUnauthorized, errorBody(t, w).Error, method)
	}
}

func TestCartController_AddToCart_Success(t *testing.T) {
	controller, router, testDB, fx := setupCartControllerTest(t)
	router.POST("/cart", asUser(fx.user.ID, controller.AddToCart))

	body := gin.H{"product_id": fx.product.ID, "option_id": fx.option.ID, "quantity": 3}
	w := doJSON(router, http.MethodPost, "/cart", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/cart", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	var items []model.CartItem
	require.NoError(t, testDB.Where("user_id = ?", fx.user.ID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 6, items[0].Quantity)
}

func TestCartController_AddToCart_Errors(t *testing.T) {
	controller, router, testDB, fx := setupCartControllerTest(t)
	router.POST("/cart", asUser(fx.user.ID, controller.AddToCart))

	unoffered := &model.Option{Name: "Red"}
	require.NoError(t, testDB.Create(unoffered).Error)

	tests := []struct {
		name     string
		body     interface{}
		wantCode string
	}{
		{"Zero quantity", gin.H{"product_id": fx.product.ID, "option_id": fx.option.ID, "quantity": 0}, apperrors.InvalidQuantity},
		{"Unknown product", gin.H{"product_id": 999, "option_id": fx.option.ID, "quantity": 1}, apperrors.InvalidProduct},
		{"Unknown option", gin.H{"product_id": fx.product.ID, "option_id": 999, "quantity": 1}, apperrors.InvalidOption},
		{"Option not offered", gin.H{"product_id": fx.product.ID, "option_id": unoffered.ID, "quantity": 1}, apperrors.InvalidProductsOption},
		{"Over stock", gin.H{"product_id": fx.product.ID, "option_id": fx.option.ID, "quantity": 11}, apperrors.OutOfStock},
		{"Missing quantity", gin.H{"product_id": fx.product.ID, "option_id": fx.option.ID}, apperrors.MalformedInput},
		{"Invalid JSON", `{"product_id":`, apperrors.MalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/cart", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, errorBody(t, w).Error)
		})
	}

	var count int64
	require.NoError(t, testDB.Model(&model.CartItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCartController_UpdateCartItem(t *testing.T) {
	controller, router, testDB, fx := setupCartControllerTest(t)
	item := putInCart(t, testDB, fx.user.ID, fx.productOption.ID, 2)
	foreign := putInCart(t, testDB, fx.other.ID, fx.productOption.ID, 1)

	router.PATCH("/cart/:id", asUser(fx.user.ID, controller.UpdateCartItem))

	w := doJSON(router, http.MethodPatch, fmt.Sprintf("/cart/%d", item.ID), gin.H{"quantity": 5})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPatch, fmt.Sprintf("/cart/%d", item.ID), gin.H{"quantity": -4})
	assert.Equal(t, http.StatusOK, w.Code)
	var stored model.CartItem
	require.NoError(t, testDB.First(&stored, item.ID).Error)
	assert.Equal(t, 0, stored.Quantity)

	w = doJSON(router, http.MethodPatch, fmt.Sprintf("/cart/%d", item.ID), gin.H{"quantity": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.OutOfStock, errorBody(t, w).Error)

	w = doJSON(router, http.MethodPatch, fmt.Sprintf("/cart/%d", foreign.ID), gin.H{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.NotFound, errorBody(t, w).Error)

	w = doJSON(router, http.MethodPatch, "/cart/abc", gin.H{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidID, errorBody(t, w).Error)
}

func TestCartController_RemoveFromCart(t *testing.T) {
	controller, router, testDB, fx := setupCartControllerTest(t)
	item := putInCart(t, testDB, fx.user.ID, fx.productOption.ID, 2)
	foreign := putInCart(t, testDB, fx.other.ID, fx.productOption.ID, 1)

	router.DELETE("/cart/:id", asUser(fx.user.ID, controller.RemoveFromCart))

	w := doJSON(router, http.MethodDelete, fmt.Sprintf("/cart/%d", foreign.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/cart/%d", item.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/cart/%d", item.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	require.NoError(t, testDB.Model(&model.CartItem{}).Where("user_id = ?", fx.other.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCartController_ClearCart(t *testing.T) {
	controller, router, testDB, fx := setupCartControllerTest(t)
	second := &model.Option{Name: "Green"}
	require.NoError(t, testDB.Create(second).Error)
	secondPO := &model.ProductOption{ProductID: fx.product.ID, OptionID: second.ID}
	require.NoError(t, testDB.Create(secondPO).Error)

	putInCart(t, testDB, fx.user.ID, fx.productOption.ID, 2)
	putInCart(t, testDB, fx.user.ID, secondPO.ID, 1)
	putInCart(t, testDB, fx.other.ID, fx.productOption.ID, 1)

	router.DELETE("/cart", asUser(fx.user.ID, controller.ClearCart))
	router.DELETE("/cart/:id", asUser(fx.user.ID, controller.RemoveFromCart))

	w := doJSON(router, http.MethodDelete, "/cart", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var mine, theirs int64
	require.NoError(t, testDB.Model(&model.CartItem{}).Where("user_id = ?", fx.user.ID).Count(&mine).Error)
	require.NoError(t, testDB.Model(&model.CartItem{}).Where("user_id = ?", fx.other.ID).Count(&theirs).Error)
	assert.Zero(t, mine)
	assert.Equal(t, int64(1), theirs)

	// id 0 clears as well, even when already empty
	w = doJSON(router, http.MethodDelete, "/cart/0", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
