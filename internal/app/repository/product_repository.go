package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/ikkim/cartcore-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockConflict is returned by ApplyStockDeltas when a product no longer
// has enough stock for its delta.
var ErrStockConflict = errors.New("stock changed concurrently")

// StockConflictError names the product whose conditional decrement failed.
type StockConflictError struct {
	ProductID uint
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock changed concurrently for product %d", e.ProductID)
}

func (e *StockConflictError) Is(target error) bool {
	return target == ErrStockConflict
}

// StockDelta is a staged inventory change for one product.
type StockDelta struct {
	ProductID uint
	Quantity  int
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Product, error)
	OptionExists(ctx context.Context, optionID uint) (bool, error)
	FindProductOption(ctx context.Context, productID, optionID uint) (*model.ProductOption, error)
	LockByIDs(ctx context.Context, ids []uint) ([]model.Product, error)
	ApplyStockDeltas(ctx context.Context, deltas []StockDelta) error
	FindLowStock(ctx context.Context, threshold int) ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) OptionExists(ctx context.Context, optionID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Option{}).Where("id = ?", optionID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepository) FindProductOption(ctx context.Context, productID, optionID uint) (*model.ProductOption, error) {
	var productOption model.ProductOption
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND option_id = ?", productID, optionID).
		First(&productOption).Error
	if err != nil {
		return nil, err
	}
	return &productOption, nil
}

// LockByIDs reads the products with SELECT ... FOR UPDATE in id order so
// concurrent purchases acquire row locks in the same sequence.
func (r *productRepository) LockByIDs(ctx context.Context, ids []uint) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}

	logger.Debug("Locking products for update", map[string]interface{}{
		"product_ids": ids,
	})

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to lock products", err, map[string]interface{}{
			"product_ids": ids,
		})
		return nil, err
	}
	return products, nil
}

// ApplyStockDeltas decrements stock and increments sales for each delta with
// a conditional update on stock >= quantity. A delta that matches no row
// yields a *StockConflictError and leaves the caller to roll back.
func (r *productRepository) ApplyStockDeltas(ctx context.Context, deltas []StockDelta) error {
	ordered := make([]StockDelta, len(deltas))
	copy(ordered, deltas)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	for _, d := range ordered {
		if d.Quantity <= 0 {
			continue
		}
		result := r.db.WithContext(ctx).
			Model(&model.Product{}).
			Where("id = ? AND stock >= ?", d.ProductID, d.Quantity).
			Updates(map[string]interface{}{
				"stock": gorm.Expr("stock - ?", d.Quantity),
				"sales": gorm.Expr("sales + ?", d.Quantity),
			})
		if result.Error != nil {
			logger.Error("Failed to apply stock delta", result.Error, map[string]interface{}{
				"product_id": d.ProductID,
				"quantity":   d.Quantity,
			})
			return result.Error
		}
		if result.RowsAffected == 0 {
			logger.Warn("Stock delta lost a concurrent update", map[string]interface{}{
				"product_id": d.ProductID,
				"quantity":   d.Quantity,
			})
			return &StockConflictError{ProductID: d.ProductID}
		}
	}
	return nil
}

func (r *productRepository) FindLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("stock <= ?", threshold).
		Order("stock ASC, id ASC").
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find low stock products", err, map[string]interface{}{
			"threshold": threshold,
		})
		return nil, err
	}
	return products, nil
}
