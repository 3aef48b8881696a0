package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var _ core.OrderStorage = (*SQL)(nil)

// SQL stores orders in any database gorm has a dialector for.
type SQL struct {
	db *gorm.DB
}

// FromSQL opens dialect and migrates the order table.
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (*SQL, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&core.Order{}); err != nil {
		return nil, fmt.Errorf("migrate orders: %w", err)
	}

	return &SQL{db: db}, nil
}

// FromSQLite opens a sqlite database at path, ":memory:" included. The pool is
// limited to one connection so an in-memory database is shared by every query.
func FromSQLite(path string) (*SQL, error) {
	storage, err := FromSQL(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := storage.db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return storage, nil
}

// CreateOrder stores a new order. The database assigns its ID
func (s *SQL) CreateOrder(order *core.Order) error {
	if err := s.db.Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// UpdateOrder replaces a stored order
func (s *SQL) UpdateOrder(order *core.Order) error {
	var existing core.Order
	if err := s.db.First(&existing, order.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %d: %w", order.ID, core.ErrOrderNotFound)
		}
		return err
	}

	if err := s.db.Save(order).Error; err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

// Orders loads every order ordered by update time and applies filters in memory.
func (s *SQL) Orders(filters ...core.OrderFilter) ([]*core.Order, error) {
	var orders []*core.Order
	if err := s.db.Order("updated_at, id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}

	return lo.Filter(orders, func(order *core.Order, _ int) bool {
		return matches(*order, filters)
	}), nil
}

// Close closes the underlying connection pool
func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
