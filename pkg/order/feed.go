package order

import (
	"sync"

	"github.com/raykavin/stratbook/pkg/core"
)

// FeedConsumer receives order updates.
type FeedConsumer func(order core.Order)

type feedEvent struct {
	order core.Order
	isNew bool
}

type subscription struct {
	onlyNewOrder bool
	consumer     FeedConsumer
}

// Feed dispatches order events per pair to subscribed consumers.
type Feed struct {
	mu            sync.RWMutex
	feeds         map[string]chan feedEvent
	subscriptions map[string][]subscription
	wg            sync.WaitGroup
	started       bool
}

// NewOrderFeed creates a new order feed with no subscribers
func NewOrderFeed() *Feed {
	return &Feed{
		feeds:         make(map[string]chan feedEvent),
		subscriptions: make(map[string][]subscription),
	}
}

// Subscribe registers consumer for the orders of pair. With onlyNewOrder the
// consumer is only told about order creation, not later status changes.
func (f *Feed) Subscribe(pair string, consumer FeedConsumer, onlyNewOrder bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.feeds[pair]; !ok {
		f.feeds[pair] = make(chan feedEvent, 100)
		if f.started {
			f.run(pair, f.feeds[pair])
		}
	}

	f.subscriptions[pair] = append(f.subscriptions[pair], subscription{
		onlyNewOrder: onlyNewOrder,
		consumer:     consumer,
	})
}

// Publish queues an order event. Events for pairs nobody subscribed to, or
// that overflow the buffer, are dropped.
func (f *Feed) Publish(order core.Order, isNew bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if feed, ok := f.feeds[order.Pair]; ok {
		select {
		case feed <- feedEvent{order: order, isNew: isNew}:
		default:
		}
	}
}

// Start runs the dispatch loop of every pair. Calling it again does nothing
func (f *Feed) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started {
		return
	}
	f.started = true
	for pair, feed := range f.feeds {
		f.run(pair, feed)
	}
}

func (f *Feed) run(pair string, feed chan feedEvent) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for event := range feed {
			f.mu.RLock()
			subscriptions := f.subscriptions[pair]
			f.mu.RUnlock()

			for _, sub := range subscriptions {
				if sub.onlyNewOrder && !event.isNew {
					continue
				}
				sub.consumer(event.order)
			}
		}
	}()
}

// Stop closes every feed and waits for queued events to be delivered.
func (f *Feed) Stop() {
	f.mu.Lock()
	for pair, feed := range f.feeds {
		close(feed)
		delete(f.feeds, pair)
	}
	f.started = false
	f.mu.Unlock()

	f.wg.Wait()
}
