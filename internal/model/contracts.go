package model

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
)

// Contract families, as listed by the catalog.
const (
	FamilyOrders         = "orders"
	FamilyAuctions       = "auctions"
	FamilyCurrency       = "currency"
	FamilyStocks         = "stocks"
	FamilyCrafting       = "crafting"
	FamilyLoot           = "loot"
	FamilyEscrow         = "escrow"
	FamilyInsurance      = "insurance"
	FamilyRisk           = "risk"
	FamilyBudget         = "budget"
	FamilyLogistics      = "logistics"
	FamilyTelemetry      = "telemetry"
	FamilyInfrastructure = "infrastructure"
	FamilyTrade          = "trade"
	FamilyShipments      = "shipments"
	FamilyEvents         = "events"
	FamilyInvestments    = "investments"
)

func init() {
	schema.RegisterNullable[string]()
	schema.RegisterNullable[int]()
	schema.RegisterNullable[time.Time]()
	schema.RegisterNullable[uuid.UUID]()
	schema.RegisterNullable[json.RawMessage]()
	// invariants must be hooked before the first Decode of any record
	Contracts()
}

var (
	contractsOnce sync.Once
	contracts     *schema.Registry
)

// Contracts returns the registry of every economy DTO.
func Contracts() *schema.Registry {
	contractsOnce.Do(func() {
		contracts = buildContracts()
	})
	return contracts
}

func buildContracts() *schema.Registry {
	r := schema.NewRegistry()

	schema.Register[CreateBuyOrderRequest](r, FamilyOrders, schema.WithDoc("place a buy order"))
	schema.Register[CreateSellOrderRequest](r, FamilyOrders, schema.WithDoc("place a sell order"))
	schema.Register[CreateOrderResponse](r, FamilyOrders)
	schema.Register[OrderBookLevel](r, FamilyOrders)
	schema.Register[OrderBook](r, FamilyOrders, schema.WithDoc("resting orders for one item"))
	schema.Register[MatchedTrade](r, FamilyOrders)
	schema.Register[MatchOrdersResponse](r, FamilyOrders)

	schema.Register[AuctionLot](r, FamilyAuctions)
	schema.Register[CreateAuctionLotRequest](r, FamilyAuctions, schema.WithDoc("list a lot for auction"))
	schema.Register[CreateAuctionLotResponse](r, FamilyAuctions)
	schema.Register[BidOnLotRequest](r, FamilyAuctions)
	schema.Register[BidOnLotResponse](r, FamilyAuctions)
	schema.Register[BuyoutLotResponse](r, FamilyAuctions)

	schema.Register[Currency](r, FamilyCurrency)
	schema.Register[ExchangeCurrencyRequest](r, FamilyCurrency, schema.WithDoc("convert between currencies"))
	schema.Register[ExchangeCurrencyResponse](r, FamilyCurrency)

	schema.Register[BuyStockRequest](r, FamilyStocks)
	schema.Register[SellStockRequest](r, FamilyStocks)
	schema.Register[StockOrderResponse](r, FamilyStocks)
	schema.Register[ShortStockRequest](r, FamilyStocks)
	schema.Register[ShortStockResponse](r, FamilyStocks)
	schema.Register[EnableMarginTradingResponse](r, FamilyStocks)
	schema.Register[AffectedCompany](r, FamilyStocks)
	schema.Register[MarketEventImpact](r, FamilyStocks)

	schema.Register[CraftItemRequest](r, FamilyCrafting)
	schema.Register[CraftOutput](r, FamilyCrafting)
	schema.Register[CraftResult](r, FamilyCrafting)
	schema.Register[DeliverableDefinition](r, FamilyCrafting)
	schema.Register[CraftingRecipeDetailed](r, FamilyCrafting, schema.WithDoc("recipe with components and station"))

	schema.Register[LootTableEntry](r, FamilyLoot)
	schema.Register[LootTableDetails](r, FamilyLoot)
	schema.Register[GeneratedLootItem](r, FamilyLoot)
	schema.Register[GeneratedLoot](r, FamilyLoot)

	schema.Register[EscrowReleaseResponse](r, FamilyEscrow)

	schema.Register[InsuranceAppliedEvent](r, FamilyInsurance, schema.AsEvent())
	schema.Register[InsuranceTierQuote](r, FamilyInsurance)
	schema.Register[InsuranceTierList](r, FamilyInsurance)

	schema.Register[RiskFactor](r, FamilyRisk)
	schema.Register[RiskFactorBreakdown](r, FamilyRisk)
	schema.Register[RiskAlertThreshold](r, FamilyRisk)

	schema.Register[BudgetAnomalyEvent](r, FamilyBudget, schema.AsEvent())
	schema.Register[BudgetModifier](r, FamilyBudget)
	schema.Register[ActiveModifiersResponse](r, FamilyBudget)
	schema.Register[BudgetWarning](r, FamilyBudget)
	schema.Register[AuditTrailEntry](r, FamilyBudget)
	schema.Register[ManualAdjustment](r, FamilyBudget)
	schema.Register[BudgetRange](r, FamilyBudget)
	schema.Register[BudgetEstimateRequest](r, FamilyBudget, schema.WithDoc("estimate a quest budget"))
	schema.Register[BudgetEstimateResponse](r, FamilyBudget)

	schema.Register[CargoItem](r, FamilyLogistics)
	schema.Register[CreateConvoyRequest](r, FamilyLogistics)
	schema.Register[RouteRisk](r, FamilyLogistics)
	schema.Register[StartTradingRunResponse](r, FamilyLogistics)
	schema.Register[CalculateTradeProfitResponse](r, FamilyLogistics)

	schema.Register[MarketIndexSnapshot](r, FamilyTelemetry, schema.AsEvent())
	schema.Register[MarketIndexHistory](r, FamilyTelemetry)

	schema.Register[InfrastructureInstance](r, FamilyInfrastructure)
	schema.Register[InfrastructureInstanceChange](r, FamilyInfrastructure, schema.AsEvent())
	schema.Register[InfrastructureJobLog](r, FamilyInfrastructure, schema.AsEvent())

	schema.Register[ContractHistoryEntry](r, FamilyTrade)
	schema.Register[ContractDetailed](r, FamilyTrade, schema.WithDoc("player trade contract with escrow and dispute"))

	schema.Register[TrackingPoint](r, FamilyShipments)
	schema.Register[ShipmentDetailed](r, FamilyShipments, schema.WithDoc("cargo shipment with tracking"))

	schema.Register[EconomyEventDetailed](r, FamilyEvents, schema.AsEvent())

	schema.Register[DividendPayment](r, FamilyInvestments)
	schema.Register[InvestmentDetailed](r, FamilyInvestments)

	return r
}
