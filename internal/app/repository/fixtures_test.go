package repository

import (
	"testing"

	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/ikkim/cartcore-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type catalogFixture struct {
	user          *model.User
	product       *model.Product
	option        *model.Option
	productOption *model.ProductOption
}

func setupCatalog(t *testing.T) (*gorm.DB, catalogFixture) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		Name:         "Test User",
		Phone:        "01012345678",
		Address:      "서울시 강남구",
	}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{
		Name:      "Handmade Mug",
		Thumbnail: "products/mug.jpg",
		Price:     12500,
		Grams:     350,
		Stock:     10,
	}
	require.NoError(t, testDB.Create(product).Error)

	option := &model.Option{Name: "Blue"}
	require.NoError(t, testDB.Create(option).Error)

	productOption := &model.ProductOption{ProductID: product.ID, OptionID: option.ID}
	require.NoError(t, testDB.Create(productOption).Error)

	return testDB, catalogFixture{
		user:          user,
		product:       product,
		option:        option,
		productOption: productOption,
	}
}
