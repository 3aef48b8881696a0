package strategy

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/logger"
)

// Condition decides whether an armed order should fire on the current dataframe.
type Condition func(df *core.Dataframe) bool

// OrderCondition is a market order waiting for its condition.
type OrderCondition struct {
	Condition Condition
	Size      float64
	Side      core.SideType
}

// Scheduler holds conditional market orders for one pair. An order is dropped once
// it executes; failed executions stay armed for the next candle.
type Scheduler struct {
	pair       string
	log        logger.Logger
	conditions []OrderCondition
}

// NewScheduler creates a new scheduler for pair
func NewScheduler(pair string, log logger.Logger) *Scheduler {
	return &Scheduler{pair: pair, log: log}
}

// BuyWhen queues a market buy of size, placed once condition holds
func (s *Scheduler) BuyWhen(size float64, condition Condition) {
	s.conditions = append(s.conditions, OrderCondition{Condition: condition, Size: size, Side: core.SideTypeBuy})
}

// SellWhen queues a market sell of size, placed once condition holds
func (s *Scheduler) SellWhen(size float64, condition Condition) {
	s.conditions = append(s.conditions, OrderCondition{Condition: condition, Size: size, Side: core.SideTypeSell})
}

// Pending returns the number of armed orders.
func (s *Scheduler) Pending() int {
	return len(s.conditions)
}

// Update evaluates every armed order against df.
func (s *Scheduler) Update(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	var remaining []OrderCondition

	for _, oc := range s.conditions {
		if !oc.Condition(df) {
			remaining = append(remaining, oc)
			continue
		}

		if _, err := broker.CreateOrderMarket(ctx, oc.Side, s.pair, oc.Size); err != nil {
			s.log.WithError(err).Errorf("scheduled %s order for %s failed", oc.Side, s.pair)
			remaining = append(remaining, oc)
			continue
		}

		s.log.Infof("scheduled %s order for %s executed, size %f", oc.Side, s.pair, oc.Size)
	}

	s.conditions = remaining
}
