package db

import (
	"context"

	"gorm.io/gorm"
)

// TxManager runs units of work inside a database transaction.
type TxManager struct {
	conn *gorm.DB
}

func NewTxManager(conn *gorm.DB) *TxManager {
	return &TxManager{conn: conn}
}

// WithTx executes fn inside a transaction, rolling back on error or panic.
func (m *TxManager) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := m.conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
