package model

import (
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
)

type EscrowReleaseResponse struct {
	EscrowID       string          `json:"escrow_id" validate:"required"`
	Status         EscrowStatus    `json:"status" validate:"required,enum"`
	ReleasedAmount *schema.Decimal `json:"released_amount,omitempty" validate:"omitempty,dgte=0"`
	ReleasedAt     *time.Time      `json:"released_at,omitempty"`
}

func (r EscrowReleaseResponse) Invariants() []schema.Violation {
	if r.Status == EscrowReleased && r.ReleasedAt == nil {
		return []schema.Violation{{
			Field:   "released_at",
			Rule:    "released_has_timestamp",
			Message: "a released escrow must carry released_at",
		}}
	}
	return nil
}
