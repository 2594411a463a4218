package model

import (
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
)

// MarketIndexSnapshot is one sample of a market index, also published on
// the event stream.
type MarketIndexSnapshot struct {
	Timestamp     time.Time       `json:"timestamp" validate:"required"`
	Value         schema.Decimal  `json:"value" validate:"required"`
	Volatility    *schema.Decimal `json:"volatility,omitempty" validate:"omitempty,dgte=0"`
	ChangePercent *schema.Decimal `json:"change_percent,omitempty"`
}

type MarketIndexHistory struct {
	IndexID   string                `json:"index_id" validate:"required"`
	Interval  IndexInterval         `json:"interval" validate:"required,enum"`
	Snapshots []MarketIndexSnapshot `json:"snapshots" validate:"dive"`
}

func (h *MarketIndexHistory) AddSnapshot(s MarketIndexSnapshot) *MarketIndexHistory {
	schema.Append(&h.Snapshots, s)
	return h
}
