package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ikkim/cartcore-backend/config"
	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/ikkim/cartcore-backend/internal/db"
	"github.com/ikkim/cartcore-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newWorkbook(t *testing.T, sheets map[string][][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			addr, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(name, addr, &row))
		}
	}
	return f
}

func catalogSheets() map[string][][]interface{} {
	return map[string][][]interface{}{
		sheetProducts: {
			{"name", "thumbnail", "price", "grams", "stock", "options"},
			{"Handmade Mug", "mugs/blue.png", "12,500", "350", "10", "Blue, Red"},
			{"Tea Towel", "", "4900.00", "80", "3", "Red"},
		},
		sheetUsers: {
			{"email", "name", "password", "phone", "address"},
			{"buyer@example.com", "Buyer", "password123", "010-1234-5678", "Seoul"},
		},
		sheetCoupons: {
			{"name", "value", "holders"},
			{"Welcome", "3000", "buyer@example.com"},
		},
	}
}

func TestParseCatalog(t *testing.T) {
	f := newWorkbook(t, catalogSheets())
	defer f.Close()

	catalog, err := parseCatalog(f)
	require.NoError(t, err)

	require.Len(t, catalog.Products, 2)
	assert.Equal(t, "Handmade Mug", catalog.Products[0].Name)
	assert.Equal(t, int64(12500), catalog.Products[0].Price)
	assert.Equal(t, []string{"Blue", "Red"}, catalog.Products[0].Options)
	assert.Equal(t, int64(4900), catalog.Products[1].Price)
	assert.Equal(t, 3, catalog.Products[1].Stock)

	require.Len(t, catalog.Users, 1)
	assert.Equal(t, "buyer@example.com", catalog.Users[0].Email)

	require.Len(t, catalog.Coupons, 1)
	assert.Equal(t, int64(3000), catalog.Coupons[0].Value)
	assert.Equal(t, []string{"buyer@example.com"}, catalog.Coupons[0].Holders)
}

func TestParseCatalogMissingSheets(t *testing.T) {
	f := newWorkbook(t, map[string][][]interface{}{
		sheetProducts: {
			{"name", "thumbnail", "price", "grams", "stock", "options"},
			{"Tea Towel", "", "4900", "80", "3", "Red"},
		},
	})
	defer f.Close()

	catalog, err := parseCatalog(f)
	require.NoError(t, err)
	assert.Len(t, catalog.Products, 1)
	assert.Empty(t, catalog.Users)
	assert.Empty(t, catalog.Coupons)
}

func TestParseCatalogRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		row  []interface{}
		want string
	}{
		{"fractional price", []interface{}{"Mug", "", "12.5", "1", "1", "Blue"}, "whole number"},
		{"negative price", []interface{}{"Mug", "", "-100", "1", "1", "Blue"}, "whole number"},
		{"bad stock", []interface{}{"Mug", "", "100", "1", "many", "Blue"}, "stock"},
		{"no options", []interface{}{"Mug", "", "100", "1", "1", ""}, "option"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkbook(t, map[string][][]interface{}{
				sheetProducts: {{"name", "thumbnail", "price", "grams", "stock", "options"}, tt.row},
			})
			defer f.Close()

			_, err := parseCatalog(f)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "row 2")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseAmount(t *testing.T) {
	got, err := parseAmount("1,234,000")
	require.NoError(t, err)
	assert.Equal(t, int64(1234000), got)

	_, err = parseAmount("abc")
	assert.Error(t, err)
}

func TestImportCatalog(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	f := newWorkbook(t, catalogSheets())
	defer f.Close()
	catalog, err := parseCatalog(f)
	require.NoError(t, err)

	require.NoError(t, importCatalog(context.Background(), db.NewTxManager(testDB), catalog))

	var products []model.Product
	require.NoError(t, testDB.Order("id").Find(&products).Error)
	require.Len(t, products, 2)
	assert.Equal(t, 10, products[0].Stock)

	var options, pairings int64
	testDB.Model(&model.Option{}).Count(&options)
	testDB.Model(&model.ProductOption{}).Count(&pairings)
	assert.Equal(t, int64(2), options, "Red is shared between products")
	assert.Equal(t, int64(3), pairings)

	var user model.User
	require.NoError(t, testDB.Where("email = ?", "buyer@example.com").First(&user).Error)
	assert.True(t, util.VerifyPassword(user.PasswordHash, "password123"))

	var held int64
	testDB.Model(&model.UserCoupon{}).Where("user_id = ?", user.ID).Count(&held)
	assert.Equal(t, int64(1), held)
}

func TestImportCatalogRollsBackOnUnknownHolder(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	catalog := &Catalog{
		Products: []seedProduct{{Name: "Mug", Price: 100, Stock: 1, Options: []string{"Blue"}}},
		Coupons:  []seedCoupon{{Name: "Ghost", Value: 100, Holders: []string{"nobody@example.com"}}},
	}
	err = importCatalog(context.Background(), db.NewTxManager(testDB), catalog)
	require.Error(t, err)

	var count int64
	testDB.Model(&model.Product{}).Count(&count)
	assert.Zero(t, count)
}

func TestTokenCommand(t *testing.T) {
	prev := loadConfig
	loadConfig = func() (*config.Config, error) {
		return &config.Config{JWT: config.JWTConfig{
			Secret:             "cli-secret",
			AccessTokenExpiry:  time.Minute,
			RefreshTokenExpiry: time.Hour,
		}}, nil
	}
	defer func() { loadConfig = prev }()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "7", "buyer@example.com"})
	require.NoError(t, cmd.Execute())

	var access string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "access_token=") {
			access = strings.TrimPrefix(line, "access_token=")
		}
	}
	require.NotEmpty(t, access)

	claims, err := util.ValidateToken(access, "cli-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, util.TokenTypeAccess, claims.TokenType)
}

func TestTokenCommandRejectsBadUserID(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"token", "zero", "buyer@example.com"})
	assert.Error(t, cmd.Execute())
}
