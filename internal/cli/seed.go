package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/ikkim/cartcore-backend/internal/db"
	"github.com/ikkim/cartcore-backend/pkg/logger"
	"github.com/ikkim/cartcore-backend/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// 시트 이름. 없는 시트는 건너뛴다.
const (
	sheetProducts = "products"
	sheetUsers    = "users"
	sheetCoupons  = "coupons"
)

type seedProduct struct {
	Name      string
	Thumbnail string
	Price     int64
	Grams     int
	Stock     int
	Options   []string
}

type seedUser struct {
	Email    string
	Name     string
	Password string
	Phone    string
	Address  string
}

type seedCoupon struct {
	Name    string
	Value   int64
	Holders []string
}

// Catalog is the parsed content of a seed workbook.
type Catalog struct {
	Products []seedProduct
	Users    []seedUser
	Coupons  []seedCoupon
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <xlsx_file_path>",
		Short: "Import products, users and coupons from an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			catalog, err := readCatalog(args[0])
			if err != nil {
				return err
			}

			if err := db.Initialize(&cfg.Database); err != nil {
				return err
			}
			defer db.Close()

			if err := importCatalog(cmd.Context(), db.NewTxManager(db.GetDB()), catalog); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d products, %d users, %d coupons\n",
				len(catalog.Products), len(catalog.Users), len(catalog.Coupons))
			return nil
		},
	}
}

func readCatalog(path string) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()
	return parseCatalog(f)
}

func parseCatalog(f *excelize.File) (*Catalog, error) {
	catalog := &Catalog{}

	rows, err := sheetRows(f, sheetProducts)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		p, err := parseProductRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", sheetProducts, i+2, err)
		}
		catalog.Products = append(catalog.Products, p)
	}

	rows, err = sheetRows(f, sheetUsers)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if cell(row, 0) == "" || cell(row, 2) == "" {
			return nil, fmt.Errorf("%s row %d: email and password are required", sheetUsers, i+2)
		}
		catalog.Users = append(catalog.Users, seedUser{
			Email:    cell(row, 0),
			Name:     cell(row, 1),
			Password: cell(row, 2),
			Phone:    cell(row, 3),
			Address:  cell(row, 4),
		})
	}

	rows, err = sheetRows(f, sheetCoupons)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		value, err := parseAmount(cell(row, 1))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", sheetCoupons, i+2, err)
		}
		catalog.Coupons = append(catalog.Coupons, seedCoupon{
			Name:    cell(row, 0),
			Value:   value,
			Holders: splitList(cell(row, 2)),
		})
	}

	return catalog, nil
}

// sheetRows returns the data rows of a sheet, skipping the header and blank
// rows. A missing sheet yields no rows.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if cell(row, 0) == "" {
			continue
		}
		data = append(data, row)
	}
	return data, nil
}

func parseProductRow(row []string) (seedProduct, error) {
	name := cell(row, 0)
	if name == "" {
		return seedProduct{}, fmt.Errorf("name is required")
	}
	price, err := parseAmount(cell(row, 2))
	if err != nil {
		return seedProduct{}, err
	}
	grams, err := parseCount(cell(row, 3))
	if err != nil {
		return seedProduct{}, fmt.Errorf("grams: %w", err)
	}
	stock, err := parseCount(cell(row, 4))
	if err != nil {
		return seedProduct{}, fmt.Errorf("stock: %w", err)
	}
	options := splitList(cell(row, 5))
	if len(options) == 0 {
		return seedProduct{}, fmt.Errorf("at least one option is required")
	}
	return seedProduct{
		Name:      name,
		Thumbnail: cell(row, 1),
		Price:     price,
		Grams:     grams,
		Stock:     stock,
		Options:   options,
	}, nil
}

// parseAmount reads a whole minor-unit amount such as "12,500" or "12500.00".
func parseAmount(raw string) (int64, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	if d.IsNegative() || !d.IsInteger() {
		return 0, fmt.Errorf("amount %q must be a non-negative whole number", raw)
	}
	return d.IntPart(), nil
}

func parseCount(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid count %q", raw)
	}
	return n, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// importCatalog writes the whole catalog in one transaction.
func importCatalog(ctx context.Context, runner txRunner, catalog *Catalog) error {
	return runner.WithTx(ctx, func(tx *gorm.DB) error {
		for _, p := range catalog.Products {
			product := model.Product{
				Name:      p.Name,
				Thumbnail: p.Thumbnail,
				Price:     p.Price,
				Grams:     p.Grams,
				Stock:     p.Stock,
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("create product %s: %w", p.Name, err)
			}
			for _, name := range p.Options {
				option := model.Option{Name: name}
				if err := tx.Where("name = ?", name).FirstOrCreate(&option).Error; err != nil {
					return fmt.Errorf("create option %s: %w", name, err)
				}
				pairing := model.ProductOption{ProductID: product.ID, OptionID: option.ID}
				if err := tx.Create(&pairing).Error; err != nil {
					return fmt.Errorf("pair %s with %s: %w", p.Name, name, err)
				}
			}
		}

		userIDs := make(map[string]uint, len(catalog.Users))
		for _, u := range catalog.Users {
			hash, err := util.HashPassword(u.Password)
			if err != nil {
				return err
			}
			user := model.User{
				Email:        u.Email,
				Name:         u.Name,
				PasswordHash: hash,
				Phone:        u.Phone,
				Address:      u.Address,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create user %s: %w", u.Email, err)
			}
			userIDs[u.Email] = user.ID
		}

		for _, c := range catalog.Coupons {
			coupon := model.Coupon{Name: c.Name, Value: c.Value}
			if err := tx.Create(&coupon).Error; err != nil {
				return fmt.Errorf("create coupon %s: %w", c.Name, err)
			}
			for _, email := range c.Holders {
				userID, ok := userIDs[email]
				if !ok {
					var user model.User
					if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
						return fmt.Errorf("coupon %s holder %s: %w", c.Name, email, err)
					}
					userID = user.ID
				}
				if err := tx.Create(&model.UserCoupon{UserID: userID, CouponID: coupon.ID}).Error; err != nil {
					return err
				}
			}
		}

		logger.Info("Catalog imported", map[string]interface{}{
			"products": len(catalog.Products),
			"users":    len(catalog.Users),
			"coupons":  len(catalog.Coupons),
		})
		return nil
	})
}
