package service

import (
	"context"
	"errors"

	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/ikkim/cartcore-backend/internal/app/repository"
	"github.com/ikkim/cartcore-backend/pkg/logger"
	"gorm.io/gorm"
)

// ClearCartItemID is the line item id that removes every item in the cart.
const ClearCartItemID uint = 0

// ThumbnailResolver turns a stored thumbnail key into a URL clients can load.
type ThumbnailResolver interface {
	ThumbnailURL(ctx context.Context, key string) (string, error)
}

type CartService interface {
	List(ctx context.Context, userID uint) ([]model.CartItemView, error)
	Add(ctx context.Context, userID, productID, optionID uint, quantity int) (*model.CartItem, error)
	Remove(ctx context.Context, userID, cartItemID uint) error
	UpdateQuantity(ctx context.Context, userID, cartItemID uint, quantity int) (*model.CartItem, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	thumbnails  ThumbnailResolver
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	thumbnails ...ThumbnailResolver,
) CartService {
	var resolver ThumbnailResolver
	if len(thumbnails) > 0 {
		resolver = thumbnails[0]
	}
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		thumbnails:  resolver,
	}
}

func (s *cartService) List(ctx context.Context, userID uint) ([]model.CartItemView, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	views, err := s.cartRepo.FindViewsByUserID(ctx, userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	for i := range views {
		// display clamp only; the stored quantity is left untouched
		if views[i].Quantity > views[i].Stock {
			views[i].Quantity = views[i].Stock
		}
		if views[i].Quantity < 0 {
			views[i].Quantity = 0
		}
		views[i].Thumbnail = s.resolveThumbnail(ctx, views[i].Thumbnail)
	}

	logger.Info("User cart fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(views),
	})
	return views, nil
}

func (s *cartService) resolveThumbnail(ctx context.Context, key string) string {
	if s.thumbnails == nil || key == "" {
		return key
	}
	url, err := s.thumbnails.ThumbnailURL(ctx, key)
	if err != nil {
		logger.Warn("Failed to resolve thumbnail URL, returning stored key", map[string]interface{}{
			"thumbnail": key,
			"error":     err.Error(),
		})
		return key
	}
	return url
}

func (s *cartService) Add(ctx context.Context, userID, productID, optionID uint, quantity int) (*model.CartItem, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"option_id":  optionID,
		"quantity":   quantity,
	})

	if quantity < 1 {
		logger.Warn("Cannot add to cart: invalid quantity", map[string]interface{}{
			"user_id":  userID,
			"quantity": quantity,
		})
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrInvalidProduct
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	exists, err := s.productRepo.OptionExists(ctx, optionID)
	if err != nil {
		logger.Error("Failed to check option", err, map[string]interface{}{
			"option_id": optionID,
		})
		return nil, err
	}
	if !exists {
		logger.Warn("Cannot add to cart: option not found", map[string]interface{}{
			"user_id":   userID,
			"option_id": optionID,
		})
		return nil, ErrInvalidOption
	}

	productOption, err := s.productRepo.FindProductOption(ctx, productID, optionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: option not offered for product", map[string]interface{}{
				"product_id": productID,
				"option_id":  optionID,
			})
			return nil, ErrInvalidProductOption
		}
		logger.Error("Failed to fetch product option", err, map[string]interface{}{
			"product_id": productID,
			"option_id":  optionID,
		})
		return nil, err
	}

	if quantity > product.Stock {
		logger.Warn("Cannot add to cart: insufficient product stock", map[string]interface{}{
			"product_id": productID,
			"requested":  quantity,
			"stock":      product.Stock,
		})
		return nil, ErrOutOfStock
	}

	// insert-or-increment is one statement, so concurrent adds of the same
	// line neither collide on the unique index nor lose an increment
	cartItem := &model.CartItem{
		UserID:          userID,
		ProductOptionID: productOption.ID,
		Quantity:        quantity,
	}
	applied, err := s.cartRepo.AddQuantity(ctx, cartItem, product.Stock)
	if err != nil {
		return nil, err
	}
	if !applied {
		// the pre-existing quantity can push the line over stock
		logger.Warn("Cannot add to cart: resulting quantity exceeds stock", map[string]interface{}{
			"product_id": productID,
			"requested":  quantity,
			"stock":      product.Stock,
		})
		return nil, ErrOutOfStock
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItem.ID,
		"quantity":     cartItem.Quantity,
	})
	return cartItem, nil
}

func (s *cartService) findOwned(ctx context.Context, userID, cartItemID uint) (*model.CartItem, error) {
	cartItem, err := s.cartRepo.FindByID(ctx, cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		logger.Error("Failed to fetch cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return nil, err
	}
	if cartItem.UserID != userID {
		logger.Warn("Cart item belongs to another user", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
		})
		return nil, ErrCartItemNotFound
	}
	return cartItem, nil
}

func (s *cartService) Remove(ctx context.Context, userID, cartItemID uint) error {
	logger.Info("Removing item from cart", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
	})

	if cartItemID == ClearCartItemID {
		deleted, err := s.cartRepo.DeleteByUserID(ctx, userID)
		if err != nil {
			return err
		}
		logger.Info("Cart cleared", map[string]interface{}{
			"user_id": userID,
			"deleted": deleted,
		})
		return nil
	}

	if _, err := s.findOwned(ctx, userID, cartItemID); err != nil {
		return err
	}

	if err := s.cartRepo.Delete(ctx, cartItemID); err != nil {
		return err
	}

	logger.Info("Item removed from cart", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
	})
	return nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, cartItemID uint, quantity int) (*model.CartItem, error) {
	logger.Info("Updating cart item quantity", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
		"quantity":     quantity,
	})

	cartItem, err := s.findOwned(ctx, userID, cartItemID)
	if err != nil {
		return nil, err
	}

	if quantity < 0 {
		quantity = 0
	}

	stock := cartItem.ProductOption.Product.Stock
	if quantity > stock {
		logger.Warn("Cannot update cart item: insufficient product stock", map[string]interface{}{
			"cart_item_id": cartItemID,
			"requested":    quantity,
			"stock":        stock,
		})
		return nil, ErrOutOfStock
	}

	// zero is kept as a valid line, not deleted
	cartItem.Quantity = quantity
	if err := s.cartRepo.Update(ctx, cartItem); err != nil {
		return nil, err
	}

	logger.Info("Cart item quantity updated", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
		"quantity":     quantity,
	})
	return cartItem, nil
}
