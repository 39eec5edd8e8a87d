package repository

import (
	"context"

	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/ikkim/cartcore-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Create(ctx context.Context, cartItem *model.CartItem) error
	AddQuantity(ctx context.Context, cartItem *model.CartItem, maxQuantity int) (bool, error)
	FindByID(ctx context.Context, id uint) (*model.CartItem, error)
	FindByUserAndProductOption(ctx context.Context, userID, productOptionID uint) (*model.CartItem, error)
	FindViewsByUserID(ctx context.Context, userID uint) ([]model.CartItemView, error)
	Update(ctx context.Context, cartItem *model.CartItem) error
	Delete(ctx context.Context, id uint) error
	DeleteByUserID(ctx context.Context, userID uint) (int64, error)
	DeleteByIDs(ctx context.Context, userID uint, ids []uint) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) Create(ctx context.Context, cartItem *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"user_id":           cartItem.UserID,
		"product_option_id": cartItem.ProductOptionID,
		"quantity":          cartItem.Quantity,
	})

	if err := r.db.WithContext(ctx).Create(cartItem).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"user_id":           cartItem.UserID,
			"product_option_id": cartItem.ProductOptionID,
		})
		return err
	}

	logger.Debug("Cart item created in database", map[string]interface{}{
		"cart_item_id": cartItem.ID,
		"user_id":      cartItem.UserID,
	})
	return nil
}

// AddQuantity inserts the line, or adds its quantity to the user's existing
// line for the same product option, in one statement. The increment only
// applies while the merged quantity stays within maxQuantity; applied is
// false when it would not. On success cartItem holds the stored row.
func (r *cartRepository) AddQuantity(ctx context.Context, cartItem *model.CartItem, maxQuantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_option_id"}},
			DoUpdates: clause.Set{
				{Column: clause.Column{Name: "quantity"}, Value: gorm.Expr("cart_items.quantity + excluded.quantity")},
				{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
			},
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("cart_items.quantity + excluded.quantity <= ?", maxQuantity),
			}},
		}).
		Create(cartItem)
	if result.Error != nil {
		logger.Error("Failed to upsert cart item in database", result.Error, map[string]interface{}{
			"user_id":           cartItem.UserID,
			"product_option_id": cartItem.ProductOptionID,
		})
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	stored, err := r.FindByUserAndProductOption(ctx, cartItem.UserID, cartItem.ProductOptionID)
	if err != nil {
		return false, err
	}
	*cartItem = *stored

	logger.Debug("Cart item upserted in database", map[string]interface{}{
		"cart_item_id": cartItem.ID,
		"quantity":     cartItem.Quantity,
	})
	return true, nil
}

func (r *cartRepository) FindByID(ctx context.Context, id uint) (*model.CartItem, error) {
	var cartItem model.CartItem
	err := r.db.WithContext(ctx).
		Preload("ProductOption.Product").
		Preload("ProductOption.Option").
		First(&cartItem, id).Error
	if err != nil {
		return nil, err
	}
	return &cartItem, nil
}

func (r *cartRepository) FindByUserAndProductOption(ctx context.Context, userID, productOptionID uint) (*model.CartItem, error) {
	var cartItem model.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_option_id = ?", userID, productOptionID).
		First(&cartItem).Error
	if err != nil {
		return nil, err
	}
	return &cartItem, nil
}

// FindViewsByUserID reads the whole cart with product and option columns in
// one joined statement, ordered by cart item id.
func (r *cartRepository) FindViewsByUserID(ctx context.Context, userID uint) ([]model.CartItemView, error) {
	logger.Debug("Finding cart views by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var views []model.CartItemView
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select(`cart_items.id AS cart_item_id,
			cart_items.product_option_id AS product_option_id,
			products.id AS product_id,
			options.id AS option_id,
			products.thumbnail AS thumbnail,
			products.name AS name,
			options.name AS option_name,
			products.price AS price,
			products.grams AS grams,
			products.stock AS stock,
			cart_items.quantity AS quantity`).
		Joins("JOIN product_options ON product_options.id = cart_items.product_option_id").
		Joins("JOIN products ON products.id = product_options.product_id").
		Joins("JOIN options ON options.id = product_options.option_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.id ASC").
		Scan(&views).Error
	if err != nil {
		logger.Error("Failed to find cart views by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Cart views found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(views),
	})
	return views, nil
}

func (r *cartRepository) Update(ctx context.Context, cartItem *model.CartItem) error {
	if err := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItem.ID).
		Update("quantity", cartItem.Quantity).Error; err != nil {
		logger.Error("Failed to update cart item in database", err, map[string]interface{}{
			"cart_item_id": cartItem.ID,
			"quantity":     cartItem.Quantity,
		})
		return err
	}

	logger.Debug("Cart item updated in database", map[string]interface{}{
		"cart_item_id": cartItem.ID,
		"quantity":     cartItem.Quantity,
	})
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.CartItem{}, id).Error; err != nil {
		logger.Error("Failed to delete cart item from database", err, map[string]interface{}{
			"cart_item_id": id,
		})
		return err
	}

	logger.Debug("Cart item deleted from database", map[string]interface{}{
		"cart_item_id": id,
	})
	return nil
}

func (r *cartRepository) DeleteByUserID(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to delete cart items by user ID from database", result.Error, map[string]interface{}{
			"user_id": userID,
		})
		return 0, result.Error
	}

	logger.Debug("Cart items deleted by user ID from database", map[string]interface{}{
		"user_id": userID,
		"deleted": result.RowsAffected,
	})
	return result.RowsAffected, nil
}

// DeleteByIDs deletes the given items of one user and reports how many rows
// were removed. Rows already gone are not an error; callers compare counts.
func (r *cartRepository) DeleteByIDs(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to delete cart items by IDs from database", result.Error, map[string]interface{}{
			"user_id":       userID,
			"cart_item_ids": ids,
		})
		return 0, result.Error
	}

	logger.Debug("Cart items deleted by IDs from database", map[string]interface{}{
		"user_id": userID,
		"deleted": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
