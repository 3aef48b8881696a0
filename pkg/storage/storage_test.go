package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closableStorage interface {
	core.OrderStorage
	Close() error
}

func storages(t *testing.T) map[string]closableStorage {
	t.Helper()

	memory, err := FromMemory()
	require.NoError(t, err)

	file, err := FromFile(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)

	sqlite, err := FromSQLite(filepath.Join(t.TempDir(), "orders.sqlite"))
	require.NoError(t, err)

	return map[string]closableStorage{
		"buntdb memory": memory,
		"buntdb file":   file,
		"sqlite":        sqlite,
	}
}

func TestStorage_CreateAndQuery(t *testing.T) {
	base := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)

	for name, storage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			defer storage.Close()

			first := &core.Order{
				ExchangeID: 10, Pair: "BTCUSDT", Side: core.SideTypeBuy, Type: core.OrderTypeMarket,
				Status: core.OrderStatusTypeFilled, Price: 100, Quantity: 1,
				CreatedAt: base, UpdatedAt: base,
			}
			second := &core.Order{
				ExchangeID: 11, Pair: "ETHUSDT", Side: core.SideTypeSell, Type: core.OrderTypeLimit,
				Status: core.OrderStatusTypeNew, Price: 10, Quantity: 2,
				CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour),
			}
			require.NoError(t, storage.CreateOrder(first))
			require.NoError(t, storage.CreateOrder(second))
			assert.NotEqual(t, first.ID, second.ID)

			orders, err := storage.Orders()
			require.NoError(t, err)
			require.Len(t, orders, 2)
			assert.Equal(t, int64(10), orders[0].ExchangeID)
			assert.Equal(t, int64(11), orders[1].ExchangeID)

			orders, err = storage.Orders(core.WithPair("ETHUSDT"), core.WithStatus(core.OrderStatusTypeNew))
			require.NoError(t, err)
			require.Len(t, orders, 1)
			assert.Equal(t, second.ID, orders[0].ID)

			orders, err = storage.Orders(core.WithUpdateAtBeforeOrEqual(base))
			require.NoError(t, err)
			require.Len(t, orders, 1)
			assert.Equal(t, first.ID, orders[0].ID)
		})
	}
}

func TestStorage_Update(t *testing.T) {
	base := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	stop := 95.0

	for name, storage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			defer storage.Close()

			order := &core.Order{
				ExchangeID: 1, Pair: "BTCUSDT", Side: core.SideTypeSell, Type: core.OrderTypeStopLoss,
				Status: core.OrderStatusTypeNew, Price: 94, Quantity: 1, Stop: &stop,
				CreatedAt: base, UpdatedAt: base,
			}
			require.NoError(t, storage.CreateOrder(order))

			order.Status = core.OrderStatusTypeFilled
			order.UpdatedAt = base.Add(time.Minute)
			require.NoError(t, storage.UpdateOrder(order))

			orders, err := storage.Orders(core.WithStatusIn(core.OrderStatusTypeFilled))
			require.NoError(t, err)
			require.Len(t, orders, 1)
			require.NotNil(t, orders[0].Stop)
			assert.Equal(t, 95.0, *orders[0].Stop)
			assert.True(t, orders[0].UpdatedAt.Equal(base.Add(time.Minute)))

			missing := &core.Order{ID: 999, Pair: "BTCUSDT"}
			assert.ErrorIs(t, storage.UpdateOrder(missing), core.ErrOrderNotFound)
		})
	}
}

func TestFromFile_ContinuesIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.db")

	storage, err := FromFile(path)
	require.NoError(t, err)
	first := &core.Order{Pair: "BTCUSDT", UpdatedAt: time.Now()}
	require.NoError(t, storage.CreateOrder(first))
	require.NoError(t, storage.Close())

	storage, err = FromFile(path)
	require.NoError(t, err)
	defer storage.Close()

	second := &core.Order{Pair: "BTCUSDT", UpdatedAt: time.Now()}
	require.NoError(t, storage.CreateOrder(second))
	assert.Equal(t, first.ID+1, second.ID)

	orders, err := storage.Orders()
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
