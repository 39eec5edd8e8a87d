package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/ikkim/cartcore-backend/internal/db"
	apperrors "github.com/ikkim/cartcore-backend/internal/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type catalogFixture struct {
	user          *model.User
	other         *model.User
	product       *model.Product
	option        *model.Option
	productOption *model.ProductOption
}

func setupControllerDB(t *testing.T) (*gorm.DB, catalogFixture) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	user := &model.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Test Buyer", Phone: "01012345678", Address: "서울시 강남구 테헤란로 1"}
	require.NoError(t, testDB.Create(user).Error)
	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other Buyer"}
	require.NoError(t, testDB.Create(other).Error)

	product := &model.Product{Name: "Handmade Mug", Thumbnail: "products/mug.jpg", Price: 12500, Grams: 350, Stock: 10}
	require.NoError(t, testDB.Create(product).Error)
	option := &model.Option{Name: "Blue"}
	require.NoError(t, testDB.Create(option).Error)
	productOption := &model.ProductOption{ProductID: product.ID, OptionID: option.ID}
	require.NoError(t, testDB.Create(productOption).Error)

	gin.SetMode(gin.TestMode)
	return testDB, catalogFixture{user: user, other: other, product: product, option: option, productOption: productOption}
}

// Helper function to set user ID in context
func setUserIDInContext(c *gin.Context, userID uint) {
	c.Set("user_id", userID)
}

func asUser(userID uint, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setUserIDInContext(c, userID)
		handler(c)
	}
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		_ = json.NewEncoder(&buf).Encode(v)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func putInCart(t *testing.T, testDB *gorm.DB, userID, productOptionID uint, quantity int) *model.CartItem {
	item := &model.CartItem{UserID: userID, ProductOptionID: productOptionID, Quantity: quantity}
	require.NoError(t, testDB.Create(item).Error)
	return item
}
