package model

import (
	"encoding/json"
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
)

// EconomyEventDetailed describes a world event moving prices. An open-ended
// event has a null end_date.
type EconomyEventDetailed struct {
	EventID             uuid.UUID                  `json:"event_id" validate:"required"`
	Name                string                     `json:"name" validate:"required,min=3,max=200"`
	Type                EconomyEventType           `json:"type" validate:"required,enum"`
	Severity            EventSeverity              `json:"severity" validate:"required,enum"`
	AffectedRegions     []string                   `json:"affected_regions"`
	AffectedSectors     []string                   `json:"affected_sectors"`
	StartDate           time.Time                  `json:"start_date" validate:"required"`
	EndDate             schema.Nullable[time.Time] `json:"end_date,omitzero"`
	IsActive            bool                       `json:"is_active"`
	Description         string                     `json:"description,omitempty"`
	Causes              []string                   `json:"causes"`
	Effects             []json.RawMessage          `json:"effects"`
	MarketReactions     json.RawMessage            `json:"market_reactions,omitempty"`
	PlayerOpportunities []string                   `json:"player_opportunities"`
}

func NewEconomyEventDetailed(id uuid.UUID, name string, eventType EconomyEventType, severity EventSeverity, start time.Time) (*EconomyEventDetailed, error) {
	e := &EconomyEventDetailed{EventID: id, Name: name, Type: eventType, Severity: severity, StartDate: start, IsActive: true}
	schema.Normalize(e)
	if err := schema.Validate(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *EconomyEventDetailed) AddAffectedRegion(region string) *EconomyEventDetailed {
	schema.Append(&e.AffectedRegions, region)
	return e
}

func (e *EconomyEventDetailed) AddAffectedSector(sector string) *EconomyEventDetailed {
	schema.Append(&e.AffectedSectors, sector)
	return e
}

func (e *EconomyEventDetailed) AddCause(cause string) *EconomyEventDetailed {
	schema.Append(&e.Causes, cause)
	return e
}

func (e *EconomyEventDetailed) AddPlayerOpportunity(opportunity string) *EconomyEventDetailed {
	schema.Append(&e.PlayerOpportunities, opportunity)
	return e
}

func (e EconomyEventDetailed) Invariants() []schema.Violation {
	end, ok := e.EndDate.Get()
	if !ok || e.StartDate.IsZero() {
		return nil
	}
	var out []schema.Violation
	if end.Before(e.StartDate) {
		out = append(out, schema.Violation{
			Field:   "end_date",
			Rule:    "event_window",
			Message: "end_date precedes start_date",
		})
	}
	return out
}
