package service

import (
	"testing"

	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/ikkim/cartcore-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return testDB
}

func createUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Test User",
		Phone:        "01012345678",
		Address:      "서울시 강남구 테헤란로 1",
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

type listing struct {
	product       *model.Product
	option        *model.Option
	productOption *model.ProductOption
}

func createListing(t *testing.T, testDB *gorm.DB, name string, price int64, stock int, optionName string) listing {
	product := &model.Product{Name: name, Thumbnail: "products/" + name + ".jpg", Price: price, Grams: 100, Stock: stock}
	require.NoError(t, testDB.Create(product).Error)

	option := &model.Option{Name: optionName}
	require.NoError(t, testDB.FirstOrCreate(option, model.Option{Name: optionName}).Error)

	productOption := &model.ProductOption{ProductID: product.ID, OptionID: option.ID}
	require.NoError(t, testDB.Create(productOption).Error)

	return listing{product: product, option: option, productOption: productOption}
}

// addOption offers an extra option on an existing product
func addOption(t *testing.T, testDB *gorm.DB, product *model.Product, optionName string) listing {
	option := &model.Option{Name: optionName}
	require.NoError(t, testDB.FirstOrCreate(option, model.Option{Name: optionName}).Error)

	productOption := &model.ProductOption{ProductID: product.ID, OptionID: option.ID}
	require.NoError(t, testDB.Create(productOption).Error)

	return listing{product: product, option: option, productOption: productOption}
}

func putInCart(t *testing.T, testDB *gorm.DB, userID uint, l listing, quantity int) *model.CartItem {
	item := &model.CartItem{UserID: userID, ProductOptionID: l.productOption.ID, Quantity: quantity}
	require.NoError(t, testDB.Create(item).Error)
	return item
}

func reloadProduct(t *testing.T, testDB *gorm.DB, id uint) model.Product {
	var p model.Product
	require.NoError(t, testDB.First(&p, id).Error)
	return p
}

func countRows(t *testing.T, testDB *gorm.DB, m interface{}) int64 {
	var n int64
	require.NoError(t, testDB.Model(m).Count(&n).Error)
	return n
}
