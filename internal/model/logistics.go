package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
)

type CargoItem struct {
	ItemID        string          `json:"item_id" validate:"required"`
	Quantity      int             `json:"quantity" validate:"required,min=1"`
	WeightKg      *schema.Decimal `json:"weight_kg,omitempty" validate:"omitempty,dgte=0"`
	DeclaredValue *schema.Decimal `json:"declared_value,omitempty" validate:"omitempty,dgte=0"`
}

type CreateConvoyRequest struct {
	LeaderID    string      `json:"leader_id" validate:"required"`
	RouteID     string      `json:"route_id" validate:"required"`
	MaxMembers  int         `json:"max_members" validate:"required,min=1,max=20"`
	Members     []string    `json:"members"`
	Cargo       []CargoItem `json:"cargo" validate:"dive"`
	DepartureAt *time.Time  `json:"departure_at,omitempty"`
}

func (r *CreateConvoyRequest) AddMember(characterID string) *CreateConvoyRequest {
	schema.Append(&r.Members, characterID)
	return r
}

func (r *CreateConvoyRequest) AddCargo(item CargoItem) *CreateConvoyRequest {
	schema.Append(&r.Cargo, item)
	return r
}

func (r CreateConvoyRequest) Invariants() []schema.Violation {
	if r.MaxMembers > 0 && len(r.Members) > r.MaxMembers {
		return []schema.Violation{{
			Field:   "members",
			Rule:    "convoy_capacity",
			Message: fmt.Sprintf("%d members exceed max_members %d", len(r.Members), r.MaxMembers),
		}}
	}
	return nil
}

type RouteRisk struct {
	RiskType    string         `json:"risk_type" validate:"required,min=2,max=64"`
	Probability schema.Decimal `json:"probability" validate:"required,dgte=0,dlte=1"`
	Severity    RiskSeverity   `json:"severity" validate:"required,enum"`
	Description string         `json:"description,omitempty"`
}

// StartTradingRunResponse opens a trading run. StockChanges maps item id to
// the signed quantity delta expected at the destination.
type StartTradingRunResponse struct {
	RunID            uuid.UUID      `json:"run_id" validate:"required"`
	RouteID          string         `json:"route_id" validate:"required"`
	EstimatedArrival time.Time      `json:"estimated_arrival" validate:"required"`
	EstimatedProfit  schema.Decimal `json:"estimated_profit" validate:"required"`
	RiskEvents       []RouteRisk    `json:"risk_events" validate:"dive"`
	StockChanges     map[string]int `json:"stock_changes"`
}

func (r *StartTradingRunResponse) AddRiskEvent(risk RouteRisk) *StartTradingRunResponse {
	schema.Append(&r.RiskEvents, risk)
	return r
}

func (r *StartTradingRunResponse) PutStockChange(itemID string, delta int) *StartTradingRunResponse {
	schema.Put(&r.StockChanges, itemID, delta)
	return r
}

type CalculateTradeProfitResponse struct {
	RouteID         string          `json:"route_id" validate:"required"`
	Revenue         schema.Decimal  `json:"revenue" validate:"required"`
	Costs           schema.Decimal  `json:"costs" validate:"required"`
	Taxes           *schema.Decimal `json:"taxes,omitempty" validate:"omitempty,dgte=0"`
	EstimatedProfit schema.Decimal  `json:"estimated_profit" validate:"required"`
	MarketPrices    json.RawMessage `json:"market_prices,omitempty"`
}

type TrackingPoint struct {
	Location string          `json:"location" validate:"required"`
	Status   *ShipmentStatus `json:"status,omitempty" validate:"omitempty,enum"`
	At       time.Time       `json:"at" validate:"required"`
}

// ShipmentDetailed tracks one cargo shipment. ActualDelivery and
// CurrentLocation are three-state: absent, null while unknown, or set.
type ShipmentDetailed struct {
	ShipmentID         uuid.UUID                  `json:"shipment_id" validate:"required"`
	CharacterID        uuid.UUID                  `json:"character_id" validate:"required"`
	Status             ShipmentStatus             `json:"status" validate:"required,enum"`
	Origin             string                     `json:"origin" validate:"required"`
	Destination        string                     `json:"destination" validate:"required"`
	VehicleType        string                     `json:"vehicle_type,omitempty"`
	EstimatedDelivery  *time.Time                 `json:"estimated_delivery,omitempty"`
	ActualDelivery     schema.Nullable[time.Time] `json:"actual_delivery,omitzero"`
	CreatedAt          time.Time                  `json:"created_at"`
	Cargo              []CargoItem                `json:"cargo" validate:"dive"`
	Route              json.RawMessage            `json:"route,omitempty"`
	CurrentLocation    schema.Nullable[string]    `json:"current_location,omitzero" validate:"omitempty,min=1"`
	ProgressPercentage *schema.Decimal            `json:"progress_percentage,omitempty" validate:"omitempty,dgte=0,dlte=100"`
	Insurance          json.RawMessage            `json:"insurance,omitempty"`
	Incidents          []json.RawMessage          `json:"incidents"`
	TrackingHistory    []TrackingPoint            `json:"tracking_history" validate:"dive"`
}

func (s *ShipmentDetailed) AddCargo(item CargoItem) *ShipmentDetailed {
	schema.Append(&s.Cargo, item)
	return s
}

func (s *ShipmentDetailed) AddTrackingPoint(p TrackingPoint) *ShipmentDetailed {
	schema.Append(&s.TrackingHistory, p)
	return s
}

func (s ShipmentDetailed) Invariants() []schema.Violation {
	if s.Status == ShipmentDelivered && !s.ActualDelivery.IsPresent() {
		return []schema.Violation{{
			Field:   "actual_delivery",
			Rule:    "delivered_has_timestamp",
			Message: "a delivered shipment must carry actual_delivery",
		}}
	}
	return nil
}
