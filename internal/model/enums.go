package model

import "github.com/GoPolymarket/econgate/internal/schema"

// Closed vocabularies used across the contracts. The constant value of each
// member is its wire label.

type OrderStatus string

const (
	OrderOpen            OrderStatus = "open"
	OrderPartiallyFilled OrderStatus = "partially_filled"
	OrderFilled          OrderStatus = "filled"
	OrderCancelled       OrderStatus = "cancelled"
	OrderExpired         OrderStatus = "expired"
)

var OrderStatuses = schema.NewEnum("OrderStatus",
	OrderOpen, OrderPartiallyFilled, OrderFilled, OrderCancelled, OrderExpired)

func (s *OrderStatus) UnmarshalJSON(b []byte) error { return OrderStatuses.Decode(b, s) }
func (s OrderStatus) IsValid() bool                 { return OrderStatuses.Contains(s) }

type AuctionStatus string

const (
	AuctionActive    AuctionStatus = "active"
	AuctionSold      AuctionStatus = "sold"
	AuctionExpired   AuctionStatus = "expired"
	AuctionCancelled AuctionStatus = "cancelled"
)

var AuctionStatuses = schema.NewEnum("AuctionStatus",
	AuctionActive, AuctionSold, AuctionExpired, AuctionCancelled)

func (s *AuctionStatus) UnmarshalJSON(b []byte) error { return AuctionStatuses.Decode(b, s) }
func (s AuctionStatus) IsValid() bool                 { return AuctionStatuses.Contains(s) }

type CurrencyType string

const (
	CurrencyPrimary  CurrencyType = "primary"
	CurrencyRegional CurrencyType = "regional"
	CurrencyFaction  CurrencyType = "faction"
	CurrencyCrypto   CurrencyType = "crypto"
	CurrencyPremium  CurrencyType = "premium"
)

var CurrencyTypes = schema.NewEnum("CurrencyType",
	CurrencyPrimary, CurrencyRegional, CurrencyFaction, CurrencyCrypto, CurrencyPremium)

func (t *CurrencyType) UnmarshalJSON(b []byte) error { return CurrencyTypes.Decode(b, t) }
func (t CurrencyType) IsValid() bool                 { return CurrencyTypes.Contains(t) }

type StockOrderType string

const (
	StockMarket StockOrderType = "market"
	StockLimit  StockOrderType = "limit"
)

var StockOrderTypes = schema.NewEnum("StockOrderType", StockMarket, StockLimit)

func (t *StockOrderType) UnmarshalJSON(b []byte) error { return StockOrderTypes.Decode(b, t) }
func (t StockOrderType) IsValid() bool                 { return StockOrderTypes.Contains(t) }

// CompanyImpact labels are snake_case; the Go names are not.
type CompanyImpact string

const (
	ImpactVeryNegative CompanyImpact = "very_negative"
	ImpactNegative     CompanyImpact = "negative"
	ImpactNeutral      CompanyImpact = "neutral"
	ImpactPositive     CompanyImpact = "positive"
	ImpactVeryPositive CompanyImpact = "very_positive"
)

var CompanyImpacts = schema.NewEnum("CompanyImpact",
	ImpactVeryNegative, ImpactNegative, ImpactNeutral, ImpactPositive, ImpactVeryPositive)

func (i *CompanyImpact) UnmarshalJSON(b []byte) error { return CompanyImpacts.Decode(b, i) }
func (i CompanyImpact) IsValid() bool                 { return CompanyImpacts.Contains(i) }

type CraftQuality string

const (
	QualityFailed     CraftQuality = "failed"
	QualityNormal     CraftQuality = "normal"
	QualityHigh       CraftQuality = "high_quality"
	QualityMasterwork CraftQuality = "masterwork"
)

var CraftQualities = schema.NewEnum("CraftQuality",
	QualityFailed, QualityNormal, QualityHigh, QualityMasterwork)

func (q *CraftQuality) UnmarshalJSON(b []byte) error { return CraftQualities.Decode(b, q) }
func (q CraftQuality) IsValid() bool                 { return CraftQualities.Contains(q) }

type LootRarity string

const (
	RarityCommon    LootRarity = "common"
	RarityUncommon  LootRarity = "uncommon"
	RarityRare      LootRarity = "rare"
	RarityEpic      LootRarity = "epic"
	RarityLegendary LootRarity = "legendary"
)

var LootRarities = schema.NewEnum("LootRarity",
	RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary)

func (r *LootRarity) UnmarshalJSON(b []byte) error { return LootRarities.Decode(b, r) }
func (r LootRarity) IsValid() bool                 { return LootRarities.Contains(r) }

type EscrowStatus string

const (
	EscrowReleased EscrowStatus = "released"
	EscrowPending  EscrowStatus = "pending"
)

var EscrowStatuses = schema.NewEnum("EscrowStatus", EscrowReleased, EscrowPending)

func (s *EscrowStatus) UnmarshalJSON(b []byte) error { return EscrowStatuses.Decode(b, s) }
func (s EscrowStatus) IsValid() bool                 { return EscrowStatuses.Contains(s) }

type InsuranceTier string

const (
	TierBasic    InsuranceTier = "basic"
	TierExtended InsuranceTier = "extended"
	TierPremium  InsuranceTier = "premium"
)

var InsuranceTiers = schema.NewEnum("InsuranceTier", TierBasic, TierExtended, TierPremium)

func (t *InsuranceTier) UnmarshalJSON(b []byte) error { return InsuranceTiers.Decode(b, t) }
func (t InsuranceTier) IsValid() bool                 { return InsuranceTiers.Contains(t) }

type ThresholdOperator string

const (
	OpGreater      ThresholdOperator = "gt"
	OpGreaterEqual ThresholdOperator = "gte"
	OpLess         ThresholdOperator = "lt"
	OpLessEqual    ThresholdOperator = "lte"
	OpEqual        ThresholdOperator = "eq"
)

var ThresholdOperators = schema.NewEnum("ThresholdOperator",
	OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpEqual)

func (o *ThresholdOperator) UnmarshalJSON(b []byte) error { return ThresholdOperators.Decode(b, o) }
func (o ThresholdOperator) IsValid() bool                 { return ThresholdOperators.Contains(o) }

type BudgetAnomalyType string

const (
	AnomalyOverrun        BudgetAnomalyType = "overrun"
	AnomalyUnderfunded    BudgetAnomalyType = "underfunded"
	AnomalyPriceSpike     BudgetAnomalyType = "price_spike"
	AnomalyEscrowMismatch BudgetAnomalyType = "escrow_mismatch"
)

var BudgetAnomalyTypes = schema.NewEnum("BudgetAnomalyType",
	AnomalyOverrun, AnomalyUnderfunded, AnomalyPriceSpike, AnomalyEscrowMismatch)

func (t *BudgetAnomalyType) UnmarshalJSON(b []byte) error { return BudgetAnomalyTypes.Decode(b, t) }
func (t BudgetAnomalyType) IsValid() bool                 { return BudgetAnomalyTypes.Contains(t) }

// RiskSeverity labels are upper case on the wire.
type RiskSeverity string

const (
	SeverityLow      RiskSeverity = "LOW"
	SeverityMedium   RiskSeverity = "MEDIUM"
	SeverityHigh     RiskSeverity = "HIGH"
	SeverityCritical RiskSeverity = "CRITICAL"
)

var RiskSeverities = schema.NewEnum("RiskSeverity",
	SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical)

func (s *RiskSeverity) UnmarshalJSON(b []byte) error { return RiskSeverities.Decode(b, s) }
func (s RiskSeverity) IsValid() bool                 { return RiskSeverities.Contains(s) }

type IndexInterval string

const (
	Interval15m IndexInterval = "15m"
	Interval1h  IndexInterval = "1h"
	Interval6h  IndexInterval = "6h"
	Interval24h IndexInterval = "24h"
)

var IndexIntervals = schema.NewEnum("IndexInterval", Interval15m, Interval1h, Interval6h, Interval24h)

func (i *IndexInterval) UnmarshalJSON(b []byte) error { return IndexIntervals.Decode(b, i) }
func (i IndexInterval) IsValid() bool                 { return IndexIntervals.Contains(i) }

type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeUpdated ChangeType = "updated"
	ChangeRemoved ChangeType = "removed"
)

var ChangeTypes = schema.NewEnum("ChangeType", ChangeAdded, ChangeUpdated, ChangeRemoved)

func (c *ChangeType) UnmarshalJSON(b []byte) error { return ChangeTypes.Decode(b, c) }
func (c ChangeType) IsValid() bool                 { return ChangeTypes.Contains(c) }

type JobLogLevel string

const (
	JobLogInfo    JobLogLevel = "info"
	JobLogWarning JobLogLevel = "warning"
	JobLogError   JobLogLevel = "error"
)

var JobLogLevels = schema.NewEnum("JobLogLevel", JobLogInfo, JobLogWarning, JobLogError)

func (l *JobLogLevel) UnmarshalJSON(b []byte) error { return JobLogLevels.Decode(b, l) }
func (l JobLogLevel) IsValid() bool                 { return JobLogLevels.Contains(l) }

type InfrastructureCategory string

const (
	CategoryHousing       InfrastructureCategory = "housing"
	CategoryTransit       InfrastructureCategory = "transit"
	CategorySecurity      InfrastructureCategory = "security"
	CategoryEntertainment InfrastructureCategory = "entertainment"
	CategoryMedical       InfrastructureCategory = "medical"
	CategoryBlackMarket   InfrastructureCategory = "black_market"
	CategoryCivic         InfrastructureCategory = "civic"
)

var InfrastructureCategories = schema.NewEnum("InfrastructureCategory",
	CategoryHousing, CategoryTransit, CategorySecurity, CategoryEntertainment,
	CategoryMedical, CategoryBlackMarket, CategoryCivic)

func (c *InfrastructureCategory) UnmarshalJSON(b []byte) error {
	return InfrastructureCategories.Decode(b, c)
}
func (c InfrastructureCategory) IsValid() bool { return InfrastructureCategories.Contains(c) }

type InfrastructureState string

const (
	StatePlanned  InfrastructureState = "planned"
	StateActive   InfrastructureState = "active"
	StateDegraded InfrastructureState = "degraded"
	StateOffline  InfrastructureState = "offline"
)

var InfrastructureStates = schema.NewEnum("InfrastructureState",
	StatePlanned, StateActive, StateDegraded, StateOffline)

func (s *InfrastructureState) UnmarshalJSON(b []byte) error { return InfrastructureStates.Decode(b, s) }
func (s InfrastructureState) IsValid() bool                 { return InfrastructureStates.Contains(s) }

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var RiskLevels = schema.NewEnum("RiskLevel", RiskLow, RiskMedium, RiskHigh)

func (l *RiskLevel) UnmarshalJSON(b []byte) error { return RiskLevels.Decode(b, l) }
func (l RiskLevel) IsValid() bool                 { return RiskLevels.Contains(l) }

// TradeContractStatus follows a player trade contract from draft through
// escrow to completion, cancellation or arbitration.
type TradeContractStatus string

const (
	TradeDraft         TradeContractStatus = "draft"
	TradeNegotiation   TradeContractStatus = "negotiation"
	TradeEscrowPending TradeContractStatus = "escrow_pending"
	TradeActive        TradeContractStatus = "active"
	TradeCompleted     TradeContractStatus = "completed"
	TradeCancelled     TradeContractStatus = "cancelled"
	TradeDisputed      TradeContractStatus = "disputed"
	TradeArbitrated    TradeContractStatus = "arbitrated"
)

var TradeContractStatuses = schema.NewEnum("TradeContractStatus",
	TradeDraft, TradeNegotiation, TradeEscrowPending, TradeActive,
	TradeCompleted, TradeCancelled, TradeDisputed, TradeArbitrated)

func (s *TradeContractStatus) UnmarshalJSON(b []byte) error { return TradeContractStatuses.Decode(b, s) }
func (s TradeContractStatus) IsValid() bool                 { return TradeContractStatuses.Contains(s) }

type TradeContractType string

const (
	TradeExchange TradeContractType = "EXCHANGE"
	TradeService  TradeContractType = "SERVICE"
	TradeCourier  TradeContractType = "COURIER"
	TradeAuction  TradeContractType = "AUCTION"
)

var TradeContractTypes = schema.NewEnum("TradeContractType",
	TradeExchange, TradeService, TradeCourier, TradeAuction)

func (t *TradeContractType) UnmarshalJSON(b []byte) error { return TradeContractTypes.Decode(b, t) }
func (t TradeContractType) IsValid() bool                 { return TradeContractTypes.Contains(t) }

type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "PENDING"
	ShipmentInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentDelivered ShipmentStatus = "DELIVERED"
	ShipmentFailed    ShipmentStatus = "FAILED"
	ShipmentCancelled ShipmentStatus = "CANCELLED"
)

var ShipmentStatuses = schema.NewEnum("ShipmentStatus",
	ShipmentPending, ShipmentInTransit, ShipmentDelivered, ShipmentFailed, ShipmentCancelled)

func (s *ShipmentStatus) UnmarshalJSON(b []byte) error { return ShipmentStatuses.Decode(b, s) }
func (s ShipmentStatus) IsValid() bool                 { return ShipmentStatuses.Contains(s) }

type EconomyEventType string

const (
	EventCrisis    EconomyEventType = "CRISIS"
	EventInflation EconomyEventType = "INFLATION"
	EventRecession EconomyEventType = "RECESSION"
	EventBoom      EconomyEventType = "BOOM"
	EventTradeWar  EconomyEventType = "TRADE_WAR"
	EventCorporate EconomyEventType = "CORPORATE"
	EventCommodity EconomyEventType = "COMMODITY"
)

var EconomyEventTypes = schema.NewEnum("EconomyEventType",
	EventCrisis, EventInflation, EventRecession, EventBoom, EventTradeWar, EventCorporate, EventCommodity)

func (t *EconomyEventType) UnmarshalJSON(b []byte) error { return EconomyEventTypes.Decode(b, t) }
func (t EconomyEventType) IsValid() bool                 { return EconomyEventTypes.Contains(t) }

type EventSeverity string

const (
	EventMinor        EventSeverity = "MINOR"
	EventModerate     EventSeverity = "MODERATE"
	EventMajor        EventSeverity = "MAJOR"
	EventCatastrophic EventSeverity = "CATASTROPHIC"
)

var EventSeverities = schema.NewEnum("EventSeverity",
	EventMinor, EventModerate, EventMajor, EventCatastrophic)

func (s *EventSeverity) UnmarshalJSON(b []byte) error { return EventSeverities.Decode(b, s) }
func (s EventSeverity) IsValid() bool                 { return EventSeverities.Contains(s) }

type RecipeCategory string

const (
	RecipeWeapons     RecipeCategory = "WEAPONS"
	RecipeArmor       RecipeCategory = "ARMOR"
	RecipeImplants    RecipeCategory = "IMPLANTS"
	RecipeMods        RecipeCategory = "MODS"
	RecipeConsumables RecipeCategory = "CONSUMABLES"
)

var RecipeCategories = schema.NewEnum("RecipeCategory",
	RecipeWeapons, RecipeArmor, RecipeImplants, RecipeMods, RecipeConsumables)

func (c *RecipeCategory) UnmarshalJSON(b []byte) error { return RecipeCategories.Decode(b, c) }
func (c RecipeCategory) IsValid() bool                 { return RecipeCategories.Contains(c) }

type RecipeTier string

const (
	RecipeT1 RecipeTier = "T1"
	RecipeT2 RecipeTier = "T2"
	RecipeT3 RecipeTier = "T3"
	RecipeT4 RecipeTier = "T4"
	RecipeT5 RecipeTier = "T5"
)

var RecipeTiers = schema.NewEnum("RecipeTier", RecipeT1, RecipeT2, RecipeT3, RecipeT4, RecipeT5)

func (t *RecipeTier) UnmarshalJSON(b []byte) error { return RecipeTiers.Decode(b, t) }
func (t RecipeTier) IsValid() bool                 { return RecipeTiers.Contains(t) }

type InvestmentStatus string

const (
	InvestmentActive    InvestmentStatus = "ACTIVE"
	InvestmentMatured   InvestmentStatus = "MATURED"
	InvestmentWithdrawn InvestmentStatus = "WITHDRAWN"
	InvestmentFailed    InvestmentStatus = "FAILED"
)

var InvestmentStatuses = schema.NewEnum("InvestmentStatus",
	InvestmentActive, InvestmentMatured, InvestmentWithdrawn, InvestmentFailed)

func (s *InvestmentStatus) UnmarshalJSON(b []byte) error { return InvestmentStatuses.Decode(b, s) }
func (s InvestmentStatus) IsValid() bool                 { return InvestmentStatuses.Contains(s) }
