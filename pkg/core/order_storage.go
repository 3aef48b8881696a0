package core

import (
	"slices"
	"time"
)

// OrderStorage persists orders created through a broker.
type OrderStorage interface {
	CreateOrder(order *Order) error
	UpdateOrder(order *Order) error
	Orders(filters ...OrderFilter) ([]*Order, error)
}

// WithStatusIn filters orders having one of the given statuses
func WithStatusIn(status ...OrderStatusType) OrderFilter {
	return func(order Order) bool {
		return slices.Contains(status, order.Status)
	}
}

// WithStatus filters orders having the given status
func WithStatus(status OrderStatusType) OrderFilter {
	return func(order Order) bool {
		return order.Status == status
	}
}

// WithPair filters orders of the given pair
func WithPair(pair string) OrderFilter {
	return func(order Order) bool {
		return order.Pair == pair
	}
}

// WithUpdateAtBeforeOrEqual filters orders last updated at or before t
func WithUpdateAtBeforeOrEqual(t time.Time) OrderFilter {
	return func(order Order) bool {
		return !order.UpdatedAt.After(t)
	}
}
