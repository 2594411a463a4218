package model

import (
	"encoding/json"
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
)

type DividendPayment struct {
	Amount schema.Decimal `json:"amount" validate:"required,dgt=0"`
	PaidAt time.Time      `json:"paid_at" validate:"required"`
}

// InvestmentDetailed is one character's stake in an investment opportunity.
// Values are in the opportunity's currency.
type InvestmentDetailed struct {
	InvestmentID       uuid.UUID         `json:"investment_id" validate:"required"`
	CharacterID        uuid.UUID         `json:"character_id" validate:"required"`
	OpportunityID      string            `json:"opportunity_id" validate:"required"`
	Type               string            `json:"type,omitempty"`
	AmountInvested     schema.Decimal    `json:"amount_invested" validate:"required,dgt=0"`
	CurrentValue       schema.Decimal    `json:"current_value" validate:"required,dgte=0"`
	Status             InvestmentStatus  `json:"status" validate:"required,enum"`
	CreatedAt          time.Time         `json:"created_at"`
	MaturityDate       *time.Time        `json:"maturity_date,omitempty"`
	OpportunityDetails json.RawMessage   `json:"opportunity_details,omitempty"`
	ProfitLoss         *schema.Decimal   `json:"profit_loss,omitempty"`
	ROICurrent         *schema.Decimal   `json:"roi_current,omitempty"`
	DividendsReceived  *schema.Decimal   `json:"dividends_received,omitempty" validate:"omitempty,dgte=0"`
	DividendHistory    []DividendPayment `json:"dividend_history" validate:"dive"`
}

func (i *InvestmentDetailed) AddDividend(p DividendPayment) *InvestmentDetailed {
	schema.Append(&i.DividendHistory, p)
	return i
}

// Invariants ties the reported profit to the two values it is derived from.
func (i InvestmentDetailed) Invariants() []schema.Violation {
	if i.ProfitLoss == nil || !i.AmountInvested.IsSet() || !i.CurrentValue.IsSet() {
		return nil
	}
	want := i.CurrentValue.Sub(i.AmountInvested.Decimal)
	if !i.ProfitLoss.Equal(want) {
		return []schema.Violation{{
			Field:   "profit_loss",
			Rule:    "profit_matches_value",
			Message: "profit_loss must equal current_value - amount_invested (" + want.String() + ")",
		}}
	}
	return nil
}
