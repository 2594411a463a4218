package model

import (
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/shopspring/decimal"
)

type RiskFactor struct {
	Factor       string         `json:"factor" validate:"required"`
	Weight       schema.Decimal `json:"weight" validate:"required,dgte=0,dlte=1"`
	Score        schema.Decimal `json:"score" validate:"required,dgte=0,dlte=100"`
	Contribution schema.Decimal `json:"contribution" validate:"required"`
}

// RiskFactorBreakdown explains an overall score; the factor contributions
// add up to it exactly.
type RiskFactorBreakdown struct {
	OverallScore schema.Decimal `json:"overall_score" validate:"required"`
	Factors      []RiskFactor   `json:"factors" validate:"dive"`
}

func (b *RiskFactorBreakdown) AddFactor(f RiskFactor) *RiskFactorBreakdown {
	schema.Append(&b.Factors, f)
	return b
}

func (b RiskFactorBreakdown) Invariants() []schema.Violation {
	if !b.OverallScore.IsSet() || len(b.Factors) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, f := range b.Factors {
		if f.Contribution.IsSet() {
			sum = sum.Add(f.Contribution.Decimal)
		}
	}
	if !sum.Equal(b.OverallScore.Decimal) {
		return []schema.Violation{{
			Field:   "overall_score",
			Rule:    "contributions_sum",
			Message: "factor contributions add up to " + sum.String() + ", not the overall score",
		}}
	}
	return nil
}

type RiskAlertThreshold struct {
	ThresholdID     string            `json:"threshold_id" validate:"required"`
	Metric          string            `json:"metric" validate:"required"`
	Operator        ThresholdOperator `json:"operator" validate:"required,enum"`
	Value           schema.Decimal    `json:"value" validate:"required"`
	CooldownSeconds int               `json:"cooldown_seconds" validate:"gte=0"`
	LastTriggeredAt *time.Time        `json:"last_triggered_at,omitempty"`
}

// Triggers reports whether observed crosses the threshold at now. A
// threshold inside its cooldown window never fires.
func (t RiskAlertThreshold) Triggers(observed decimal.Decimal, now time.Time) bool {
	if t.LastTriggeredAt != nil && t.CooldownSeconds > 0 {
		if now.Sub(*t.LastTriggeredAt) < time.Duration(t.CooldownSeconds)*time.Second {
			return false
		}
	}
	cmp := observed.Cmp(t.Value.Decimal)
	switch t.Operator {
	case OpGreater:
		return cmp > 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpLess:
		return cmp < 0
	case OpLessEqual:
		return cmp <= 0
	case OpEqual:
		return cmp == 0
	}
	return false
}
