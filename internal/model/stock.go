package model

import (
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
)

type BuyStockRequest struct {
	CharacterID string          `json:"character_id" validate:"required"`
	Ticker      string          `json:"ticker" validate:"required,pattern=ticker"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	OrderType   StockOrderType  `json:"order_type" validate:"required,enum"`
	LimitPrice  *schema.Decimal `json:"limit_price,omitempty" validate:"omitempty,dgt=0"`
}

func (r BuyStockRequest) Invariants() []schema.Violation {
	return limitPriceRule(r.OrderType, r.LimitPrice)
}

type SellStockRequest struct {
	CharacterID string          `json:"character_id" validate:"required"`
	Ticker      string          `json:"ticker" validate:"required,pattern=ticker"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	OrderType   StockOrderType  `json:"order_type" validate:"required,enum"`
	LimitPrice  *schema.Decimal `json:"limit_price,omitempty" validate:"omitempty,dgt=0"`
}

func (r SellStockRequest) Invariants() []schema.Violation {
	return limitPriceRule(r.OrderType, r.LimitPrice)
}

func limitPriceRule(t StockOrderType, price *schema.Decimal) []schema.Violation {
	if t == StockLimit && price == nil {
		return []schema.Violation{{
			Field:   "limit_price",
			Rule:    "limit_requires_price",
			Message: "limit orders must carry a limit price",
		}}
	}
	return nil
}

type StockOrderResponse struct {
	OrderID        uuid.UUID       `json:"order_id" validate:"required"`
	Ticker         string          `json:"ticker" validate:"required,pattern=ticker"`
	Status         OrderStatus     `json:"status" validate:"required,enum"`
	FilledQuantity int             `json:"filled_quantity" validate:"gte=0"`
	AveragePrice   *schema.Decimal `json:"average_price,omitempty" validate:"omitempty,dgt=0"`
}

type ShortStockRequest struct {
	CharacterID string `json:"character_id" validate:"required"`
	Ticker      string `json:"ticker" validate:"required,pattern=ticker"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
}

type ShortStockResponse struct {
	PositionID     uuid.UUID      `json:"position_id" validate:"required"`
	Ticker         string         `json:"ticker" validate:"required,pattern=ticker"`
	Quantity       int            `json:"quantity" validate:"required,min=1"`
	EntryPrice     schema.Decimal `json:"entry_price" validate:"required,dgt=0"`
	MarginRequired schema.Decimal `json:"margin_required" validate:"required,dgte=0"`
	OpenedAt       time.Time      `json:"opened_at" validate:"required"`
}

type EnableMarginTradingResponse struct {
	Enabled           bool            `json:"enabled"`
	LeverageLimit     schema.Decimal  `json:"leverage_limit" validate:"required,dgte=1"`
	MarginRequirement schema.Decimal  `json:"margin_requirement" validate:"required,dgte=0"`
	PositionValue     *schema.Decimal `json:"position_value,omitempty" validate:"omitempty,dgte=0"`
}

func (r EnableMarginTradingResponse) Invariants() []schema.Violation {
	if r.PositionValue == nil || !r.LeverageLimit.IsSet() || !r.MarginRequirement.IsSet() {
		return nil
	}
	ceiling := r.LeverageLimit.Mul(r.PositionValue.Decimal)
	if r.MarginRequirement.GreaterThan(ceiling) {
		return []schema.Violation{{
			Field:   "margin_requirement",
			Rule:    "margin_within_leverage",
			Message: "margin requirement exceeds leverage limit x position value (" + ceiling.String() + ")",
		}}
	}
	return nil
}

type AffectedCompany struct {
	Ticker             string          `json:"ticker" validate:"required,pattern=ticker"`
	Impact             CompanyImpact   `json:"impact" validate:"required,enum"`
	PriceChangePercent *schema.Decimal `json:"price_change_percent,omitempty"`
}

// MarketEventImpact describes how a world event moved listed companies.
// StockChanges maps ticker to percent change.
type MarketEventImpact struct {
	EventID           string                    `json:"event_id" validate:"required"`
	Headline          string                    `json:"headline,omitempty"`
	AffectedCompanies []AffectedCompany         `json:"affected_companies" validate:"dive"`
	StockChanges      map[string]schema.Decimal `json:"stock_changes"`
}

func (e *MarketEventImpact) AddAffectedCompany(c AffectedCompany) *MarketEventImpact {
	schema.Append(&e.AffectedCompanies, c)
	return e
}

func (e *MarketEventImpact) PutStockChange(ticker string, percent schema.Decimal) *MarketEventImpact {
	schema.Put(&e.StockChanges, ticker, percent)
	return e
}
