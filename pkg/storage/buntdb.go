// Package storage keeps the orders created through the order controller.
package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/tidwall/buntdb"
)

var _ core.OrderStorage = (*Bunt)(nil)

// Bunt stores orders as JSON documents in buntdb, indexed by update time.
type Bunt struct {
	lastID int64
	db     *buntdb.DB
}

// FromMemory opens a storage that lives only for the process.
func FromMemory() (*Bunt, error) {
	return newBunt(":memory:")
}

// FromFile opens (or creates) a storage persisted at path. Order ids continue
// after the highest id already stored.
func FromFile(path string) (*Bunt, error) {
	return newBunt(path)
}

func newBunt(path string) (*Bunt, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open buntdb %s: %w", path, err)
	}

	if err := db.CreateIndex("update_index", "*", buntdb.IndexJSON("updated_at")); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	storage := &Bunt{db: db}
	err = db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys("*", func(key, _ string) bool {
			if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > storage.lastID {
				storage.lastID = id
			}
			return true
		})
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("scan order ids: %w", err)
	}

	return storage, nil
}

// nextID returns the next order ID
func (b *Bunt) nextID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

// CreateOrder stores a new order, assigning its ID
func (b *Bunt) CreateOrder(order *core.Order) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		order.ID = b.nextID()
		content, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("marshal order: %w", err)
		}

		_, _, err = tx.Set(strconv.FormatInt(order.ID, 10), string(content), nil)
		return err
	})
}

// UpdateOrder replaces a stored order
func (b *Bunt) UpdateOrder(order *core.Order) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		id := strconv.FormatInt(order.ID, 10)
		if _, err := tx.Get(id); err != nil {
			if err == buntdb.ErrNotFound {
				return fmt.Errorf("order %d: %w", order.ID, core.ErrOrderNotFound)
			}
			return err
		}

		content, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("marshal order: %w", err)
		}

		_, _, err = tx.Set(id, string(content), nil)
		return err
	})
}

// Orders returns the orders matching every filter, oldest update first.
func (b *Bunt) Orders(filters ...core.OrderFilter) ([]*core.Order, error) {
	orders := make([]*core.Order, 0)
	var decodeErr error

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("update_index", func(key, value string) bool {
			var order core.Order
			if err := json.Unmarshal([]byte(value), &order); err != nil {
				decodeErr = fmt.Errorf("decode order %s: %w", key, err)
				return false
			}

			if matches(order, filters) {
				orders = append(orders, &order)
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	return orders, nil
}

// Close closes the underlying database
func (b *Bunt) Close() error {
	return b.db.Close()
}

// matches reports whether order passes every filter
func matches(order core.Order, filters []core.OrderFilter) bool {
	for _, filter := range filters {
		if !filter(order) {
			return false
		}
	}
	return true
}
