package service

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/ikkim/cartcore-backend/internal/app/repository"
	"github.com/ikkim/cartcore-backend/pkg/logger"
	"gorm.io/gorm"
)

// PricingPolicy holds the delivery-fee rules applied at purchase time.
// Amounts are minor currency units.
type PricingPolicy struct {
	StandardDeliveryFee   int64
	FreeShippingThreshold int64
	DeliveryLeadTime      time.Duration
}

func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		StandardDeliveryFee:   2500,
		FreeShippingThreshold: 50000,
		DeliveryLeadTime:      48 * time.Hour,
	}
}

// DeliveryFee is free on a user's first order or when the item total is
// strictly above the threshold.
func (p PricingPolicy) DeliveryFee(itemTotal, priorOrders int64) int64 {
	if priorOrders == 0 || itemTotal > p.FreeShippingThreshold {
		return 0
	}
	return p.StandardDeliveryFee
}

// TxRunner executes fn inside a single database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockLevel is the committed stock of a product after a purchase.
type StockLevel struct {
	ProductID uint `json:"product_id"`
	Stock     int  `json:"stock"`
}

// StockPublisher is notified after a purchase commits.
type StockPublisher interface {
	PublishStock(ctx context.Context, levels []StockLevel)
}

// PurchaseObserver records purchase outcomes.
type PurchaseObserver interface {
	ObservePurchase(outcome string, elapsed time.Duration)
}

const (
	PurchaseOutcomeSuccess       = "success"
	PurchaseOutcomeEmptyCart     = "empty_cart"
	PurchaseOutcomeSoldOut       = "sold_out"
	PurchaseOutcomeInvalidCoupon = "invalid_coupon"
	PurchaseOutcomeCartChanged   = "cart_changed"
	PurchaseOutcomeError         = "error"
)

type PurchaseService interface {
	Purchase(ctx context.Context, userID uint, couponID *uint) (*model.Order, error)
}

type PurchaseOption func(*purchaseService)

func WithStockPublisher(p StockPublisher) PurchaseOption {
	return func(s *purchaseService) { s.publisher = p }
}

func WithPurchaseObserver(o PurchaseObserver) PurchaseOption {
	return func(s *purchaseService) { s.observer = o }
}

// WithClock overrides the time source used for delivery dates.
func WithClock(now func() time.Time) PurchaseOption {
	return func(s *purchaseService) { s.now = now }
}

type purchaseService struct {
	tx          TxRunner
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	policy      PricingPolicy
	publisher   StockPublisher
	observer    PurchaseObserver
	now         func() time.Time
}

func NewPurchaseService(
	tx TxRunner,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	policy PricingPolicy,
	opts ...PurchaseOption,
) PurchaseService {
	s := &purchaseService{
		tx:          tx,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		policy:      policy,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// stagedProduct accumulates the inventory change for one product across
// every cart line that references it.
type stagedProduct struct {
	name      string
	remaining int
	quantity  int
}

func (s *purchaseService) Purchase(ctx context.Context, userID uint, couponID *uint) (*model.Order, error) {
	start := time.Now()

	// a zero coupon id is treated as no coupon
	if couponID != nil && *couponID == 0 {
		couponID = nil
	}

	logger.Info("Processing purchase", map[string]interface{}{
		"user_id":   userID,
		"coupon_id": couponID,
	})

	var (
		order  *model.Order
		levels []StockLevel
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		order, levels, err = s.purchase(ctx, tx, userID, couponID)
		return err
	})
	if err != nil {
		s.observe(outcomeOf(err), start)
		return nil, err
	}

	logger.Info("Purchase committed", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"total_price":  order.TotalPrice,
		"delivery_fee": order.DeliveryFee,
	})

	if s.publisher != nil {
		s.publisher.PublishStock(ctx, levels)
	}
	s.observe(PurchaseOutcomeSuccess, start)

	created, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		// the order is committed; fall back to the in-memory copy
		logger.Error("Failed to reload committed order", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return order, nil
	}
	return created, nil
}

func (s *purchaseService) purchase(ctx context.Context, tx *gorm.DB, userID uint, couponID *uint) (*model.Order, []StockLevel, error) {
	cartRepo := s.cartRepo.WithTx(tx)
	productRepo := s.productRepo.WithTx(tx)
	couponRepo := s.couponRepo.WithTx(tx)
	orderRepo := s.orderRepo.WithTx(tx)
	userRepo := s.userRepo.WithTx(tx)

	// the user lock serializes purchases of one cart; the cart read below
	// sees whatever a previous purchase committed
	user, err := userRepo.LockByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	items, err := cartRepo.FindViewsByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		logger.Warn("Cannot purchase: cart is empty", map[string]interface{}{
			"user_id": userID,
		})
		return nil, nil, ErrNoItemsInCart
	}

	productIDs := make([]uint, 0, len(items))
	cartItemIDs := make([]uint, 0, len(items))
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		cartItemIDs = append(cartItemIDs, item.CartItemID)
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
		}
	}

	locked, err := productRepo.LockByIDs(ctx, productIDs)
	if err != nil {
		return nil, nil, err
	}

	staged := make(map[uint]*stagedProduct, len(locked))
	for _, p := range locked {
		staged[p.ID] = &stagedProduct{name: p.Name, remaining: p.Stock}
	}

	var (
		itemTotal  int64
		orderItems = make([]model.OrderItem, 0, len(items))
	)
	for _, item := range items {
		sp, ok := staged[item.ProductID]
		if !ok || item.Quantity > sp.remaining {
			logger.Warn("Cannot purchase: product sold out", map[string]interface{}{
				"user_id":    userID,
				"product_id": item.ProductID,
				"requested":  item.Quantity,
			})
			return nil, nil, &SoldOutError{ProductName: item.Name}
		}
		sp.remaining -= item.Quantity
		sp.quantity += item.Quantity
		itemTotal += int64(item.Quantity) * item.Price

		orderItems = append(orderItems, model.OrderItem{
			ProductOptionID: item.ProductOptionID,
			Quantity:        item.Quantity,
			Status:          model.OrderItemStatusCompleted,
		})
	}

	priorOrders, err := orderRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	deliveryFee := s.policy.DeliveryFee(itemTotal, priorOrders)
	totalPrice := itemTotal + deliveryFee

	if couponID != nil {
		value, err := s.redeemCoupon(ctx, couponRepo, userID, *couponID)
		if err != nil {
			return nil, nil, err
		}
		totalPrice -= value
		if totalPrice < 0 {
			totalPrice = 0
		}
	}

	order := &model.Order{
		UserID:       userID,
		DeliveryDate: s.now().Add(s.policy.DeliveryLeadTime),
		Recipient:    user.Name,
		Phone:        user.Phone,
		Address:      user.Address,
		CouponID:     couponID,
		DeliveryFee:  deliveryFee,
		Status:       model.OrderStatusPending,
		TotalPrice:   totalPrice,
		Point:        0,
	}
	if err := orderRepo.Create(ctx, order); err != nil {
		return nil, nil, err
	}

	for i := range orderItems {
		orderItems[i].OrderID = order.ID
	}
	if err := orderRepo.CreateItems(ctx, orderItems); err != nil {
		return nil, nil, err
	}

	deltas := make([]repository.StockDelta, 0, len(productIDs))
	levels := make([]StockLevel, 0, len(productIDs))
	for _, id := range productIDs {
		sp := staged[id]
		deltas = append(deltas, repository.StockDelta{ProductID: id, Quantity: sp.quantity})
		levels = append(levels, StockLevel{ProductID: id, Stock: sp.remaining})
	}
	if err := productRepo.ApplyStockDeltas(ctx, deltas); err != nil {
		var conflict *repository.StockConflictError
		if errors.As(err, &conflict) {
			name := ""
			if sp, ok := staged[conflict.ProductID]; ok {
				name = sp.name
			}
			return nil, nil, &SoldOutError{ProductName: name}
		}
		return nil, nil, err
	}

	deleted, err := cartRepo.DeleteByIDs(ctx, userID, cartItemIDs)
	if err != nil {
		return nil, nil, err
	}
	if deleted != int64(len(cartItemIDs)) {
		logger.Warn("Cannot purchase: cart consumed concurrently", map[string]interface{}{
			"user_id":  userID,
			"expected": len(cartItemIDs),
			"deleted":  deleted,
		})
		return nil, nil, ErrCartChanged
	}

	order.OrderItems = orderItems
	return order, levels, nil
}

// redeemCoupon deletes the held coupon and returns its value.
func (s *purchaseService) redeemCoupon(ctx context.Context, couponRepo repository.CouponRepository, userID, couponID uint) (int64, error) {
	held, err := couponRepo.HasUnredeemed(ctx, userID, couponID)
	if err != nil {
		return 0, err
	}
	if !held {
		logger.Warn("Cannot purchase: coupon not held by user", map[string]interface{}{
			"user_id":   userID,
			"coupon_id": couponID,
		})
		return 0, ErrInvalidCoupon
	}

	coupon, err := couponRepo.FindCouponByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrInvalidCoupon
		}
		return 0, err
	}

	redeemed, err := couponRepo.Redeem(ctx, userID, couponID)
	if err != nil {
		return 0, err
	}
	if !redeemed {
		logger.Warn("Cannot purchase: coupon already redeemed", map[string]interface{}{
			"user_id":   userID,
			"coupon_id": couponID,
		})
		return 0, ErrInvalidCoupon
	}
	return coupon.Value, nil
}

func (s *purchaseService) observe(outcome string, start time.Time) {
	if s.observer == nil {
		return
	}
	s.observer.ObservePurchase(outcome, time.Since(start))
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrNoItemsInCart):
		return PurchaseOutcomeEmptyCart
	case errors.Is(err, ErrSoldOut):
		return PurchaseOutcomeSoldOut
	case errors.Is(err, ErrInvalidCoupon):
		return PurchaseOutcomeInvalidCoupon
	case errors.Is(err, ErrCartChanged):
		return PurchaseOutcomeCartChanged
	default:
		return PurchaseOutcomeError
	}
}
