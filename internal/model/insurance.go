package model

import (
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
)

// InsuranceAppliedEvent is published when an order's payout is insured.
type InsuranceAppliedEvent struct {
	EventID        uuid.UUID       `json:"event_id" validate:"required"`
	OrderID        uuid.UUID       `json:"order_id" validate:"required"`
	Tier           InsuranceTier   `json:"tier" validate:"required,enum"`
	Premium        schema.Decimal  `json:"premium" validate:"required,dgte=0"`
	CoverageAmount *schema.Decimal `json:"coverage_amount,omitempty" validate:"omitempty,dgte=0"`
	AppliedAt      time.Time       `json:"applied_at" validate:"required"`
}

type InsuranceTierQuote struct {
	Tier            InsuranceTier  `json:"tier" validate:"required,enum"`
	PremiumRate     schema.Decimal `json:"premium_rate" validate:"required,dgte=0,dlte=1"`
	CoveragePercent schema.Decimal `json:"coverage_percent" validate:"required,dgte=0,dlte=100"`
}

type InsuranceTierList struct {
	Currency string               `json:"currency" validate:"required,pattern=currency"`
	Tiers    []InsuranceTierQuote `json:"tiers" validate:"dive"`
}

func (l *InsuranceTierList) AddTier(q InsuranceTierQuote) *InsuranceTierList {
	schema.Append(&l.Tiers, q)
	return l
}

// Quote returns the entry for tier, if listed.
func (l InsuranceTierList) Quote(tier InsuranceTier) (InsuranceTierQuote, bool) {
	for _, q := range l.Tiers {
		if q.Tier == tier {
			return q, true
		}
	}
	return InsuranceTierQuote{}, false
}
