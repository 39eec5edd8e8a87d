package db

import (
	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/ikkim/cartcore-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned or read by the service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Product{},
		&model.Option{},
		&model.ProductOption{},
		&model.Coupon{},
		&model.UserCoupon{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	}
}

// Migrate runs gorm auto-migrations. Production schemas are managed through
// the goose migrations in RunMigrations.
func Migrate() error {
	return AutoMigrate(DB)
}

func AutoMigrate(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
