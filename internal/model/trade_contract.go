package model

import (
	"encoding/json"
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
)

// tradeTransitions lists the statuses a contract may move to from each
// status. Completed, cancelled and arbitrated contracts are final.
var tradeTransitions = map[TradeContractStatus][]TradeContractStatus{
	TradeDraft:         {TradeNegotiation, TradeCancelled},
	TradeNegotiation:   {TradeEscrowPending, TradeCancelled},
	TradeEscrowPending: {TradeActive, TradeCancelled},
	TradeActive:        {TradeCompleted, TradeDisputed, TradeCancelled},
	TradeDisputed:      {TradeArbitrated},
}

func (s TradeContractStatus) CanTransition(to TradeContractStatus) bool {
	for _, next := range tradeTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s TradeContractStatus) IsFinal() bool {
	return s.IsValid() && len(tradeTransitions[s]) == 0
}

// hasExecutor reports the statuses reached only after a counterparty
// accepted the terms.
func (s TradeContractStatus) hasExecutor() bool {
	switch s {
	case TradeEscrowPending, TradeActive, TradeCompleted, TradeDisputed, TradeArbitrated:
		return true
	}
	return false
}

type ContractHistoryEntry struct {
	Event   string               `json:"event" validate:"required,min=2,max=64"`
	ActorID *uuid.UUID           `json:"actor_id,omitempty"`
	Status  *TradeContractStatus `json:"status,omitempty" validate:"omitempty,enum"`
	At      time.Time            `json:"at" validate:"required"`
	Data    json.RawMessage      `json:"data,omitempty"`
}

// ContractDetailed is the full view of a player trade contract. Executor,
// deadline and completion proof are three-state so a patch can clear them.
type ContractDetailed struct {
	ContractID      uuid.UUID                        `json:"contract_id" validate:"required"`
	Type            TradeContractType                `json:"type" validate:"required,enum"`
	Title           string                           `json:"title" validate:"required,min=3,max=200"`
	CreatorID       uuid.UUID                        `json:"creator_id" validate:"required"`
	ExecutorID      schema.Nullable[uuid.UUID]       `json:"executor_id,omitzero"`
	Status          TradeContractStatus              `json:"status" validate:"required,enum"`
	Payment         *schema.Decimal                  `json:"payment,omitempty" validate:"omitempty,dgte=0"`
	CreatedAt       time.Time                        `json:"created_at"`
	Deadline        schema.Nullable[time.Time]       `json:"deadline,omitzero"`
	Description     string                           `json:"description,omitempty"`
	Terms           json.RawMessage                  `json:"terms,omitempty"`
	Escrow          json.RawMessage                  `json:"escrow,omitempty"`
	CompletionProof schema.Nullable[json.RawMessage] `json:"completion_proof,omitzero"`
	Dispute         json.RawMessage                  `json:"dispute,omitempty"`
	History         []ContractHistoryEntry           `json:"history" validate:"dive"`
}

func (c *ContractDetailed) AddHistory(e ContractHistoryEntry) *ContractDetailed {
	schema.Append(&c.History, e)
	return c
}

func (c ContractDetailed) Invariants() []schema.Violation {
	var out []schema.Violation
	if c.Status.hasExecutor() && !c.ExecutorID.IsPresent() {
		out = append(out, schema.Violation{
			Field:   "executor_id",
			Rule:    "executor_after_acceptance",
			Message: "a " + string(c.Status) + " contract must name its executor",
		})
	}
	if (c.Status == TradeDisputed || c.Status == TradeArbitrated) && len(c.Dispute) == 0 {
		out = append(out, schema.Violation{
			Field:   "dispute",
			Rule:    "dispute_recorded",
			Message: "a " + string(c.Status) + " contract must carry its dispute",
		})
	}
	if deadline, ok := c.Deadline.Get(); ok && !c.CreatedAt.IsZero() && deadline.Before(c.CreatedAt) {
		out = append(out, schema.Violation{
			Field:   "deadline",
			Rule:    "deadline_after_creation",
			Message: "deadline precedes created_at",
		})
	}
	return out
}
