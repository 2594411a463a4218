package model

import (
	"fmt"
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
)

// CreateBuyOrderRequest places a bid for an item on the player market.
type CreateBuyOrderRequest struct {
	CharacterID string         `json:"character_id" validate:"required"`
	ItemID      string         `json:"item_id" validate:"required"`
	MaxPrice    schema.Decimal `json:"max_price" validate:"required,dgt=0"`
	Quantity    int            `json:"quantity" validate:"required,min=1"`
	ExpiresIn   int            `json:"expires_in" validate:"min=1,max=720" default:"24"` // hours
}

// NewCreateBuyOrderRequest is the required-fields constructor.
func NewCreateBuyOrderRequest(characterID, itemID string, maxPrice schema.Decimal, quantity int) (*CreateBuyOrderRequest, error) {
	r := &CreateBuyOrderRequest{}
	schema.ApplyDefaults(r)
	r.CharacterID, r.ItemID, r.MaxPrice, r.Quantity = characterID, itemID, maxPrice, quantity
	if err := schema.Validate(r); err != nil {
		return nil, err
	}
	return r, nil
}

type CreateSellOrderRequest struct {
	CharacterID string         `json:"character_id" validate:"required"`
	ItemID      string         `json:"item_id" validate:"required"`
	MinPrice    schema.Decimal `json:"min_price" validate:"required,dgt=0"`
	Quantity    int            `json:"quantity" validate:"required,min=1"`
	ExpiresIn   int            `json:"expires_in" validate:"min=1,max=720" default:"24"`
}

type CreateOrderResponse struct {
	OrderID   uuid.UUID   `json:"order_id" validate:"required"`
	Status    OrderStatus `json:"status" validate:"required,enum"`
	CreatedAt time.Time   `json:"created_at" validate:"required"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

type OrderBookLevel struct {
	Price      schema.Decimal `json:"price" validate:"required,dgt=0"`
	Quantity   int            `json:"quantity" validate:"gte=0"`
	OrderCount int            `json:"order_count" validate:"gte=0"`
}

// OrderBook is one item's resting orders: bids best-first (descending),
// asks best-first (ascending).
type OrderBook struct {
	ItemID         string           `json:"item_id" validate:"required"`
	BuyOrders      []OrderBookLevel `json:"buy_orders" validate:"dive"`
	SellOrders     []OrderBookLevel `json:"sell_orders" validate:"dive"`
	Spread         *schema.Decimal  `json:"spread,omitempty" validate:"omitempty,dgte=0"`
	LastTradePrice *schema.Decimal  `json:"last_trade_price,omitempty" validate:"omitempty,dgt=0"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (b *OrderBook) AddBuyLevel(l OrderBookLevel) *OrderBook {
	schema.Append(&b.BuyOrders, l)
	return b
}

func (b *OrderBook) AddSellLevel(l OrderBookLevel) *OrderBook {
	schema.Append(&b.SellOrders, l)
	return b
}

// BestBid and BestAsk return the top of each side, if any.
func (b OrderBook) BestBid() (schema.Decimal, bool) {
	if len(b.BuyOrders) == 0 {
		return schema.Decimal{}, false
	}
	return b.BuyOrders[0].Price, true
}

func (b OrderBook) BestAsk() (schema.Decimal, bool) {
	if len(b.SellOrders) == 0 {
		return schema.Decimal{}, false
	}
	return b.SellOrders[0].Price, true
}

func (b OrderBook) Invariants() []schema.Violation {
	var out []schema.Violation
	for i := 1; i < len(b.BuyOrders); i++ {
		if !b.BuyOrders[i].Price.LessThan(b.BuyOrders[i-1].Price.Decimal) {
			out = append(out, schema.Violation{
				Field:   fmt.Sprintf("buy_orders[%d].price", i),
				Rule:    "price_priority",
				Message: "buy levels must be strictly descending by price",
			})
			break
		}
	}
	for i := 1; i < len(b.SellOrders); i++ {
		if !b.SellOrders[i].Price.GreaterThan(b.SellOrders[i-1].Price.Decimal) {
			out = append(out, schema.Violation{
				Field:   fmt.Sprintf("sell_orders[%d].price", i),
				Rule:    "price_priority",
				Message: "sell levels must be strictly ascending by price",
			})
			break
		}
	}
	bid, hasBid := b.BestBid()
	ask, hasAsk := b.BestAsk()
	if b.Spread != nil && hasBid && hasAsk {
		want := ask.Sub(bid.Decimal)
		if !b.Spread.Equal(want) {
			out = append(out, schema.Violation{
				Field:   "spread",
				Rule:    "spread_consistent",
				Message: fmt.Sprintf("spread must equal best ask - best bid (%s)", want.String()),
			})
		}
	}
	return out
}

// MatchedTrade is one fill produced by the matching engine. The remaining
// quantities and limit prices are the state of each order before the fill
// and are optional on the wire.
type MatchedTrade struct {
	TradeID        uuid.UUID       `json:"tradeId" validate:"required"`
	BuyOrderID     uuid.UUID       `json:"buyOrderId" validate:"required"`
	SellOrderID    uuid.UUID       `json:"sellOrderId" validate:"required"`
	ExecutedPrice  schema.Decimal  `json:"executedPrice" validate:"required,dgt=0"`
	Quantity       int             `json:"quantity" validate:"required,min=1"`
	ExecutedAt     time.Time       `json:"executedAt" validate:"required"`
	BuyRemaining   *int            `json:"buyRemaining,omitempty" validate:"omitempty,gte=0"`
	SellRemaining  *int            `json:"sellRemaining,omitempty" validate:"omitempty,gte=0"`
	BuyLimitPrice  *schema.Decimal `json:"buyLimitPrice,omitempty" validate:"omitempty,dgt=0"`
	SellLimitPrice *schema.Decimal `json:"sellLimitPrice,omitempty" validate:"omitempty,dgt=0"`
}

func (t MatchedTrade) Invariants() []schema.Violation {
	var out []schema.Violation
	if t.BuyRemaining != nil && t.Quantity > *t.BuyRemaining {
		out = append(out, schema.Violation{
			Field: "quantity", Rule: "fill_within_remaining",
			Message: fmt.Sprintf("fill of %d exceeds buy remaining %d", t.Quantity, *t.BuyRemaining),
		})
	}
	if t.SellRemaining != nil && t.Quantity > *t.SellRemaining {
		out = append(out, schema.Violation{
			Field: "quantity", Rule: "fill_within_remaining",
			Message: fmt.Sprintf("fill of %d exceeds sell remaining %d", t.Quantity, *t.SellRemaining),
		})
	}
	if !t.ExecutedPrice.IsSet() {
		return out
	}
	if t.BuyLimitPrice != nil && t.ExecutedPrice.GreaterThan(t.BuyLimitPrice.Decimal) {
		out = append(out, schema.Violation{
			Field: "executedPrice", Rule: "price_within_limits",
			Message: "executed price is above the buy limit " + t.BuyLimitPrice.Text(),
		})
	}
	if t.SellLimitPrice != nil && t.ExecutedPrice.LessThan(t.SellLimitPrice.Decimal) {
		out = append(out, schema.Violation{
			Field: "executedPrice", Rule: "price_within_limits",
			Message: "executed price is below the sell limit " + t.SellLimitPrice.Text(),
		})
	}
	return out
}

// MatchOrdersResponse is the result of one matching pass over an item's book.
type MatchOrdersResponse struct {
	ItemID        string         `json:"item_id" validate:"required"`
	MatchedTrades []MatchedTrade `json:"matched_trades" validate:"dive"`
	MatchedAt     time.Time      `json:"matched_at"`
}

func (r *MatchOrdersResponse) AddMatchedTrade(t MatchedTrade) *MatchOrdersResponse {
	schema.Append(&r.MatchedTrades, t)
	return r
}
