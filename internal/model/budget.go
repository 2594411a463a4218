package model

import (
	"encoding/json"
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
)

// BudgetAnomalyEvent is published when a quest budget drifts from its estimate.
type BudgetAnomalyEvent struct {
	OrderID          uuid.UUID         `json:"orderId" validate:"required"`
	AnomalyType      BudgetAnomalyType `json:"anomalyType" validate:"required,enum"`
	DetectedAt       time.Time         `json:"detectedAt" validate:"required"`
	DeviationPercent *schema.Decimal   `json:"deviationPercent,omitempty"`
	Details          string            `json:"details,omitempty"`
}

func NewBudgetAnomalyEvent(orderID uuid.UUID, anomalyType BudgetAnomalyType, detectedAt time.Time) (*BudgetAnomalyEvent, error) {
	e := &BudgetAnomalyEvent{OrderID: orderID, AnomalyType: anomalyType, DetectedAt: detectedAt}
	if err := schema.Validate(e); err != nil {
		return nil, err
	}
	return e, nil
}

type BudgetModifier struct {
	Code    string         `json:"code" validate:"required,min=2,max=64"`
	Label   string         `json:"label,omitempty"`
	Percent schema.Decimal `json:"percent" validate:"required"`
	Source  string         `json:"source,omitempty"`
}

// ActiveModifiersResponse lists the modifiers currently applied to budget
// estimates. Regional modifiers are keyed by district code.
type ActiveModifiersResponse struct {
	RegionalModifiers map[string]BudgetModifier  `json:"regionalModifiers" validate:"dive"`
	EventModifiers    []BudgetModifier           `json:"eventModifiers" validate:"dive"`
	FactionModifiers  []BudgetModifier           `json:"factionModifiers" validate:"dive"`
	NextRefresh       schema.Nullable[time.Time] `json:"nextRefresh,omitzero"`
}

// NewActiveModifiersResponse returns a response with every collection empty
// and the refresh time absent.
func NewActiveModifiersResponse() *ActiveModifiersResponse {
	r := &ActiveModifiersResponse{}
	schema.Normalize(r)
	return r
}

func (r *ActiveModifiersResponse) PutRegionalModifier(district string, m BudgetModifier) *ActiveModifiersResponse {
	schema.Put(&r.RegionalModifiers, district, m)
	return r
}

func (r *ActiveModifiersResponse) AddEventModifier(m BudgetModifier) *ActiveModifiersResponse {
	schema.Append(&r.EventModifiers, m)
	return r
}

func (r *ActiveModifiersResponse) AddFactionModifier(m BudgetModifier) *ActiveModifiersResponse {
	schema.Append(&r.FactionModifiers, m)
	return r
}

type BudgetWarning struct {
	Code    string `json:"code" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type AuditTrailEntry struct {
	Step  string    `json:"step" validate:"required"`
	Actor string    `json:"actor,omitempty"`
	At    time.Time `json:"at" validate:"required"`
	Note  string    `json:"note,omitempty"`
}

type ManualAdjustment struct {
	Amount           schema.Decimal `json:"amount" validate:"required"`
	AdjustmentReason string         `json:"adjustmentReason" validate:"required,min=3,max=512"`
}

type BudgetRange struct {
	Min schema.Decimal `json:"min" validate:"required,dgte=0"`
	Max schema.Decimal `json:"max" validate:"required,dgte=0"`
}

func (r BudgetRange) Invariants() []schema.Violation {
	if r.Min.IsSet() && r.Max.IsSet() && r.Min.GreaterThan(r.Max.Decimal) {
		return []schema.Violation{{Field: "min", Rule: "range_ordered", Message: "min must not exceed max"}}
	}
	return nil
}

// BudgetEstimateRequest asks for the reward, escrow and fees of a quest
// template under the given market conditions.
type BudgetEstimateRequest struct {
	OrderID           *uuid.UUID        `json:"orderId,omitempty"`
	TemplateCode      string            `json:"templateCode" validate:"required"`
	ComplexityScore   schema.Decimal    `json:"complexityScore" validate:"required,dgte=0"`
	RiskModifier      schema.Decimal    `json:"riskModifier" validate:"required,dgte=0.8,dlte=1.5"`
	MarketIndex       schema.Decimal    `json:"marketIndex" validate:"required,dgte=0"`
	TimeModifier      schema.Decimal    `json:"timeModifier" validate:"required,dgte=1.0,dlte=1.3"`
	DistrictCode      string            `json:"districtCode,omitempty" validate:"omitempty,min=2,max=32"`
	FactionCode       string            `json:"factionCode,omitempty" validate:"omitempty,min=2,max=32"`
	PlayerRank        *int              `json:"playerRank,omitempty" validate:"omitempty,gte=0"`
	PreferredCurrency string            `json:"preferredCurrency" validate:"required,pattern=currency"`
	GuaranteeTier     *InsuranceTier    `json:"guaranteeTier,omitempty" validate:"omitempty,enum"`
	IsCorporate       bool              `json:"isCorporate" default:"false"`
	Bonuses           []string          `json:"bonuses"`
	Penalties         []string          `json:"penalties"`
	ManualAdjustment  *ManualAdjustment `json:"manualAdjustment,omitempty"`
	Modifiers         json.RawMessage   `json:"modifiers,omitempty"`
	AuditTraceID      string            `json:"auditTraceId,omitempty"`
}

func (r *BudgetEstimateRequest) AddBonus(code string) *BudgetEstimateRequest {
	schema.Append(&r.Bonuses, code)
	return r
}

func (r *BudgetEstimateRequest) AddPenalty(code string) *BudgetEstimateRequest {
	schema.Append(&r.Penalties, code)
	return r
}

type BudgetEstimateResponse struct {
	CalculationID          uuid.UUID         `json:"calculationId" validate:"required"`
	BaseReward             schema.Decimal    `json:"baseReward" validate:"required,dgte=0"`
	Escrow                 schema.Decimal    `json:"escrow" validate:"required,dgte=0"`
	EscrowRate             *schema.Decimal   `json:"escrowRate,omitempty" validate:"omitempty,dgte=0.1,dlte=0.3"`
	Commission             schema.Decimal    `json:"commission" validate:"required,dgte=0"`
	CommissionRate         *schema.Decimal   `json:"commissionRate,omitempty" validate:"omitempty,dgte=0.05,dlte=0.12"`
	InsuranceFee           schema.Decimal    `json:"insuranceFee" validate:"required,dgte=0"`
	InsuranceTier          *InsuranceTier    `json:"insuranceTier,omitempty" validate:"omitempty,enum"`
	RecommendedBudgetRange *BudgetRange      `json:"recommendedBudgetRange,omitempty"`
	Median                 *schema.Decimal   `json:"median,omitempty" validate:"omitempty,dgte=0"`
	MedianDeviationPercent *schema.Decimal   `json:"medianDeviationPercent,omitempty"`
	Currency               string            `json:"currency" validate:"required,pattern=currency"`
	Warnings               []BudgetWarning   `json:"warnings" validate:"dive"`
	RecommendedActions     []string          `json:"recommendedActions"`
	AuditTrail             []AuditTrailEntry `json:"auditTrail" validate:"dive"`
	Timestamp              time.Time         `json:"timestamp" validate:"required"`
	ExpiresAt              *time.Time        `json:"expiresAt,omitempty"`
}

func (r *BudgetEstimateResponse) AddWarning(w BudgetWarning) *BudgetEstimateResponse {
	schema.Append(&r.Warnings, w)
	return r
}

func (r *BudgetEstimateResponse) AddRecommendedAction(action string) *BudgetEstimateResponse {
	schema.Append(&r.RecommendedActions, action)
	return r
}

func (r *BudgetEstimateResponse) AddAuditTrail(e AuditTrailEntry) *BudgetEstimateResponse {
	schema.Append(&r.AuditTrail, e)
	return r
}
