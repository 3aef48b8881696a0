package core

import (
	"fmt"
	"time"
)

// OrderFilter selects orders when querying an OrderStorage.
type OrderFilter func(order Order) bool

type (
	SideType        string
	OrderType       string
	OrderStatusType string
)

const (
	SideTypeBuy  SideType = "BUY"
	SideTypeSell SideType = "SELL"
)

const (
	OrderTypeLimit           OrderType = "LIMIT"
	OrderTypeMarket          OrderType = "MARKET"
	OrderTypeLimitMaker      OrderType = "LIMIT_MAKER"
	OrderTypeStopLoss        OrderType = "STOP_LOSS"
	OrderTypeStopLossLimit   OrderType = "STOP_LOSS_LIMIT"
	OrderTypeTakeProfit      OrderType = "TAKE_PROFIT"
	OrderTypeTakeProfitLimit OrderType = "TAKE_PROFIT_LIMIT"
)

const (
	OrderStatusTypeNew             OrderStatusType = "NEW"
	OrderStatusTypePartiallyFilled OrderStatusType = "PARTIALLY_FILLED"
	OrderStatusTypeFilled          OrderStatusType = "FILLED"
	OrderStatusTypeCanceled        OrderStatusType = "CANCELED"
	OrderStatusTypePendingCancel   OrderStatusType = "PENDING_CANCEL"
	OrderStatusTypeRejected        OrderStatusType = "REJECTED"
	OrderStatusTypeExpired         OrderStatusType = "EXPIRED"
)

// Order is an order as stored locally. ExchangeID is the identifier assigned by the venue.
type Order struct {
	ID         int64           `db:"id" json:"id" gorm:"primaryKey;autoIncrement"`
	ExchangeID int64           `db:"exchange_id" json:"exchange_id"`
	Pair       string          `db:"pair" json:"pair"`
	Side       SideType        `db:"side" json:"side"`
	Type       OrderType       `db:"type" json:"type"`
	Status     OrderStatusType `db:"status" json:"status"`
	Price      float64         `db:"price" json:"price"`
	Quantity   float64         `db:"quantity" json:"quantity"`

	CreatedAt time.Time `db:"created_at" json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" gorm:"autoUpdateTime:false"`

	// OCO legs share a GroupID; Stop is the trigger price of stop legs
	Stop    *float64 `db:"stop" json:"stop"`
	GroupID *int64   `db:"group_id" json:"group_id"`

	RefPrice    float64 `json:"ref_price" gorm:"-"`
	Profit      float64 `json:"profit" gorm:"-"`
	ProfitValue float64 `json:"profit_value" gorm:"-"`
	Candle      Candle  `json:"-" gorm:"-"`
}

// Value is price times quantity.
func (o Order) Value() float64 {
	return o.Price * o.Quantity
}

// IsBuy reports whether the order buys the asset
func (o Order) IsBuy() bool { return o.Side == SideTypeBuy }

// IsSell reports whether the order sells the asset
func (o Order) IsSell() bool { return o.Side == SideTypeSell }

// IsActive reports whether the order can still be filled.
func (o Order) IsActive() bool {
	return o.Status == OrderStatusTypeNew || o.Status == OrderStatusTypePartiallyFilled
}

// String formats the order for logs and notifications
func (o Order) String() string {
	return fmt.Sprintf("[%s] %s %s | ID: %d, Type: %s, %f x $%f (~$%.2f)",
		o.Status, o.Side, o.Pair, o.ID, o.Type, o.Quantity, o.Price, o.Value())
}

// OrderSubscriber receives every order update published by the order feed.
type OrderSubscriber interface {
	OnOrder(order Order)
}
