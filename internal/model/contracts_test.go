package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0      = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	orderID = uuid.MustParse("6f1c2a3b-4d5e-4f60-8a7b-9c0d1e2f3a4b")
	tradeID = uuid.MustParse("0a1b2c3d-4e5f-4a6b-8c7d-8e9f0a1b2c3d")
)

func dec(s string) schema.Decimal { return schema.MustDecimal(s) }

func intp(i int) *int { return &i }

func validationErrs(t *testing.T, err error) schema.ValidationErrors {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, schema.ErrValidation), "expected validation error, got %v", err)
	var ves schema.ValidationErrors
	require.True(t, errors.As(err, &ves))
	return ves
}

func roundTripSamples() []any {
	book := &OrderBook{ItemID: "item-42", Spread: dec("0.50").Ptr(), UpdatedAt: t0}
	book.AddBuyLevel(OrderBookLevel{Price: dec("10.00"), Quantity: 4, OrderCount: 2}).
		AddBuyLevel(OrderBookLevel{Price: dec("9.50"), Quantity: 1, OrderCount: 1}).
		AddSellLevel(OrderBookLevel{Price: dec("10.50"), Quantity: 3, OrderCount: 1})

	match := &MatchOrdersResponse{ItemID: "item-42", MatchedAt: t0}
	match.AddMatchedTrade(MatchedTrade{
		TradeID: tradeID, BuyOrderID: orderID, SellOrderID: tradeID,
		ExecutedPrice: dec("10.25"), Quantity: 2, ExecutedAt: t0,
		BuyRemaining: intp(2), SellRemaining: intp(5),
		BuyLimitPrice: dec("10.50").Ptr(), SellLimitPrice: dec("10.00").Ptr(),
	})

	mods := NewActiveModifiersResponse()
	mods.PutRegionalModifier("watson", BudgetModifier{Code: "watson", Percent: dec("-2.5")}).
		AddEventModifier(BudgetModifier{Code: "blackout", Label: "Blackout", Percent: dec("7")})
	mods.NextRefresh = schema.Some(t0.Add(time.Hour))

	estimate := &BudgetEstimateRequest{
		TemplateCode: "combat", ComplexityScore: dec("3"), RiskModifier: dec("1.2"),
		MarketIndex: dec("104.5"), TimeModifier: dec("1.0"), PreferredCurrency: "EDY",
		GuaranteeTier: ptr(TierExtended), Modifiers: json.RawMessage(`{"night":true}`),
		ManualAdjustment: &ManualAdjustment{Amount: dec("-15.00"), AdjustmentReason: "goodwill"},
	}
	estimate.AddBonus("speed")

	response := &BudgetEstimateResponse{
		CalculationID: orderID, BaseReward: dec("1200.00"), Escrow: dec("240.00"),
		EscrowRate: dec("0.20").Ptr(), Commission: dec("96.00"), CommissionRate: dec("0.08").Ptr(),
		InsuranceFee: dec("30.00"), Currency: "EDY", Timestamp: t0,
		RecommendedBudgetRange: &BudgetRange{Min: dec("1000"), Max: dec("1400")},
	}
	response.AddWarning(BudgetWarning{Code: "high_risk", Message: "district is hot"}).
		AddAuditTrail(AuditTrailEntry{Step: "base", At: t0})

	loot := &LootTableDetails{TableID: "t1", RarityBreakdown: json.RawMessage(`{"common":80,"rare":20}`)}
	loot.AddEntry(LootTableEntry{ItemID: "scrap", DropChance: dec("80"), QuantityMin: 1, QuantityMax: 3, Rarity: RarityCommon}).
		AddEntry(LootTableEntry{ItemID: "chip", DropChance: dec("20"), QuantityMin: 1, QuantityMax: 1, Rarity: RarityRare})

	facility := &InfrastructureInstance{
		InstanceID: "inst-1", DistrictID: "d-1", Category: CategoryMedical, State: StateActive,
		Capacity: 40, Utilization: dec("0.75"), RiskLevel: ptr(RiskMedium),
	}
	facility.PutRequiredStaff("medic", 4).PutOpenHours("mon", "08:00-20:00")

	contract := &ContractDetailed{
		ContractID: orderID, Type: TradeCourier, Title: "Deliver the shard", CreatorID: tradeID,
		ExecutorID: schema.Some(orderID), Status: TradeActive, Payment: dec("250.00").Ptr(), CreatedAt: t0,
		Deadline: schema.Null[time.Time](), Terms: json.RawMessage(`{"pickup":"watson"}`),
		CompletionProof: schema.Some(json.RawMessage(`{"photo":"dock-7.png"}`)),
	}
	contract.AddHistory(ContractHistoryEntry{Event: "contract_created", ActorID: &tradeID, Status: ptr(TradeDraft), At: t0}).
		AddHistory(ContractHistoryEntry{Event: "escrow_released", At: t0.Add(time.Hour), Data: json.RawMessage(`{"amount":"250.00"}`)})

	shipment := &ShipmentDetailed{
		ShipmentID: orderID, CharacterID: tradeID, Status: ShipmentInTransit, Origin: "watson", Destination: "pacifica",
		EstimatedDelivery: ptr(t0.Add(2 * time.Hour)), ActualDelivery: schema.Null[time.Time](), CreatedAt: t0,
		CurrentLocation: schema.Some("heywood"), ProgressPercentage: dec("37.5").Ptr(),
		Incidents: []json.RawMessage{json.RawMessage(`{"kind":"checkpoint"}`)},
	}
	shipment.AddCargo(CargoItem{ItemID: "chip", Quantity: 4, WeightKg: dec("0.8").Ptr()}).
		AddTrackingPoint(TrackingPoint{Location: "watson", Status: ptr(ShipmentPending), At: t0})

	event := &EconomyEventDetailed{
		EventID: tradeID, Name: "Corporate Stock Market Crash", Type: EventCrisis, Severity: EventMajor,
		StartDate: t0, EndDate: schema.Null[time.Time](), IsActive: true,
		Effects: []json.RawMessage{json.RawMessage(`{"sector":"finance","price_modifier":"-0.3"}`)},
	}
	event.AddAffectedRegion("night_city").AddAffectedSector("finance").AddCause("insider leak").
		AddPlayerOpportunity("short ARSK")

	recipe := &CraftingRecipeDetailed{
		RecipeID: "mantis-legendary", Name: "Legendary Mantis Blades", Category: RecipeImplants, Tier: RecipeT5,
		RequiredSkill: "CRAFTING", RequiredSkillLevel: 15, BaseCraftingTimeSeconds: 300,
		BaseSuccessRate: dec("0.75").Ptr(), ComponentsCount: 2, ResultItem: &CraftOutput{ItemID: "mantis", Quantity: 1},
		StationRequirement: schema.Some("WEAPONS_BENCH"),
	}
	recipe.AddComponent(CraftOutput{ItemID: "blade", Quantity: 2}).AddComponent(CraftOutput{ItemID: "servo", Quantity: 1})

	investment := &InvestmentDetailed{
		InvestmentID: orderID, CharacterID: tradeID, OpportunityID: "arasaka-bonds", AmountInvested: dec("1000.00"),
		CurrentValue: dec("1150.00"), Status: InvestmentActive, CreatedAt: t0, ProfitLoss: dec("150.00").Ptr(),
		ROICurrent: dec("0.15").Ptr(), DividendsReceived: dec("20.00").Ptr(),
	}
	investment.AddDividend(DividendPayment{Amount: dec("20.00"), PaidAt: t0})

	return []any{
		contract,
		shipment,
		event,
		recipe,
		investment,
		&CraftingRecipeDetailed{RecipeID: "stim", Name: "Stim", Category: RecipeConsumables, Tier: RecipeT1, StationRequirement: schema.Null[string]()},
		&CreateBuyOrderRequest{CharacterID: "c1", ItemID: "item-42", MaxPrice: dec("12.50"), Quantity: 3, ExpiresIn: 48},
		book,
		match,
		&ExchangeCurrencyResponse{
			TransactionID: orderID, FromCurrency: "EDY", ToCurrency: "NUY", AmountSent: dec("100.00"),
			AmountReceived: dec("148.00"), ExchangeRate: dec("1.5"), Fee: dec("2.00"), ExecutedAt: t0,
		},
		&BuyStockRequest{CharacterID: "c1", Ticker: "ARSK", Quantity: 10, OrderType: StockLimit, LimitPrice: dec("55.10").Ptr()},
		&DeliverableDefinition{DeliverableID: "d1", ItemID: schema.Some("chip"), Quantity: schema.Null[int]()},
		&DeliverableDefinition{DeliverableID: "d2"},
		mods,
		estimate,
		response,
		loot,
		facility,
		&InfrastructureInstanceChange{ChangeID: tradeID, ChangeType: ChangeAdded, InstanceID: "inst-1", After: facility, ChangedAt: t0},
		&EscrowReleaseResponse{EscrowID: "e1", Status: EscrowReleased, ReleasedAmount: dec("50").Ptr(), ReleasedAt: &t0},
	}
}

func ptr[T any](v T) *T { return &v }

func TestRoundTrip(t *testing.T) {
	reg := Contracts()
	for _, sample := range roundTripSamples() {
		name := schema.TypeName(sample)
		t.Run(name, func(t *testing.T) {
			wire, err := schema.Encode(sample)
			require.NoError(t, err)

			back, err := reg.Decode(name, wire)
			require.NoError(t, err)
			assert.True(t, schema.Equal(sample, back), "sent %s\nread back %s", wire, mustJSON(t, back))
		})
	}
}

func mustJSON(t *testing.T, v any) string {
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func TestNullableRoundTripKeepsState(t *testing.T) {
	for body, check := range map[string]func(*DeliverableDefinition) bool{
		`{"deliverable_id":"d"}`:                 func(d *DeliverableDefinition) bool { return d.ItemID.IsAbsent() },
		`{"deliverable_id":"d","itemId":null}`:   func(d *DeliverableDefinition) bool { return d.ItemID.IsNull() },
		`{"deliverable_id":"d","itemId":"gear"}`: func(d *DeliverableDefinition) bool { return d.ItemID.IsPresent() },
	} {
		d, err := schema.Decode[DeliverableDefinition]([]byte(body))
		require.NoError(t, err)
		assert.True(t, check(d), body)

		out, err := schema.Encode(d)
		require.NoError(t, err)
		assert.JSONEq(t, body, string(out))
	}

	_, err := schema.Decode[DeliverableDefinition]([]byte(`{"deliverable_id":"d","quantity":0}`))
	ves := validationErrs(t, err)
	assert.True(t, ves.Has("quantity", "min"))
}

func TestEnumClosureAcrossCatalog(t *testing.T) {
	all := schema.Enums()
	for _, name := range []string{
		"OrderStatus", "AuctionStatus", "CurrencyType", "StockOrderType", "CompanyImpact",
		"CraftQuality", "LootRarity", "EscrowStatus", "InsuranceTier", "ThresholdOperator",
		"BudgetAnomalyType", "RiskSeverity", "IndexInterval", "ChangeType", "JobLogLevel",
		"InfrastructureCategory", "InfrastructureState", "RiskLevel", "TradeContractStatus",
		"TradeContractType", "ShipmentStatus", "EconomyEventType", "EventSeverity", "RecipeCategory",
		"RecipeTier", "InvestmentStatus",
	} {
		labels, ok := all[name]
		require.True(t, ok, "enum %s not registered", name)
		require.NotEmpty(t, labels)
		for _, label := range labels {
			got, err := schema.ParseEnum(name, label)
			require.NoError(t, err)
			assert.Equal(t, label, got)
		}
		_, err := schema.ParseEnum(name, "definitely_not_a_label")
		assert.True(t, errors.Is(err, schema.ErrUnrecognizedEnum), name)
	}

	sev, err := RiskSeverities.Parse("HIGH")
	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, sev)
	_, err = RiskSeverities.Parse("high")
	assert.Error(t, err)

	_, err = schema.Decode[CreateOrderResponse]([]byte(
		`{"order_id":"6f1c2a3b-4d5e-4f60-8a7b-9c0d1e2f3a4b","status":"pending","created_at":"2026-03-14T15:09:26Z"}`))
	var ue *schema.UnrecognizedEnumValueError
	require.True(t, errors.As(err, &ue), "got %v", err)
	assert.Equal(t, "OrderStatus", ue.Type)
	assert.Equal(t, "pending", ue.Label)
}

func TestRequiredFieldConstructor(t *testing.T) {
	e, err := NewBudgetAnomalyEvent(orderID, AnomalyOverrun, t0)
	require.NoError(t, err)
	assert.Equal(t, AnomalyOverrun, e.AnomalyType)

	_, err = NewBudgetAnomalyEvent(uuid.Nil, AnomalyOverrun, t0)
	assert.True(t, validationErrs(t, err).Has("orderId", "required"))

	_, err = NewBudgetAnomalyEvent(orderID, "", t0)
	assert.True(t, validationErrs(t, err).Has("anomalyType", "required"))

	_, err = NewBudgetAnomalyEvent(orderID, AnomalyOverrun, time.Time{})
	assert.True(t, validationErrs(t, err).Has("detectedAt", "required"))

	_, err = NewBudgetAnomalyEvent(orderID, BudgetAnomalyType("meltdown"), t0)
	assert.True(t, validationErrs(t, err).Has("anomalyType", "enum"))

	r, err := NewCreateBuyOrderRequest("c1", "item-42", dec("1"), 1)
	require.NoError(t, err)
	assert.Equal(t, 24, r.ExpiresIn)
	_, err = NewCreateBuyOrderRequest("", "item-42", dec("1"), 1)
	assert.True(t, validationErrs(t, err).Has("character_id", "required"))
}

func TestConstraintExamples(t *testing.T) {
	cases := []struct {
		name  string
		rec   any
		field string
		rule  string
	}{
		{
			name:  "exchange amount below minimum",
			rec:   &ExchangeCurrencyRequest{CharacterID: "c1", FromCurrency: "EDY", ToCurrency: "NUY", Amount: dec("0.00")},
			field: "amount", rule: "dgte",
		},
		{
			name:  "modifier code too short",
			rec:   &BudgetModifier{Code: "a", Percent: dec("1")},
			field: "code", rule: "min",
		},
		{
			name:  "lowercase currency",
			rec:   &InsuranceTierList{Currency: "usd"},
			field: "currency", rule: "pattern",
		},
		{
			name:  "zero stock quantity",
			rec:   &BuyStockRequest{CharacterID: "c1", Ticker: "ARSK", Quantity: 0, OrderType: StockMarket},
			field: "quantity", rule: "required",
		},
		{
			name:  "risk modifier out of range",
			rec:   &BudgetEstimateRequest{TemplateCode: "combat", ComplexityScore: dec("1"), RiskModifier: dec("1.6"), MarketIndex: dec("1"), TimeModifier: dec("1.1"), PreferredCurrency: "EDY"},
			field: "riskModifier", rule: "dlte",
		},
		{
			name:  "nested tier rate above one",
			rec:   (&InsuranceTierList{Currency: "USD"}).AddTier(InsuranceTierQuote{Tier: TierBasic, PremiumRate: dec("1.01"), CoveragePercent: dec("50")}),
			field: "tiers[0].premium_rate", rule: "dlte",
		},
		{
			name:  "manual adjustment reason too short",
			rec:   &ManualAdjustment{Amount: dec("1"), AdjustmentReason: "ok"},
			field: "adjustmentReason", rule: "min",
		},
		{
			name:  "route risk probability",
			rec:   &RouteRisk{RiskType: "ambush", Probability: dec("1.5"), Severity: SeverityLow},
			field: "probability", rule: "dlte",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ves := validationErrs(t, schema.Validate(tc.rec))
			assert.True(t, ves.Has(tc.field, tc.rule), "got %v", ves)
		})
	}

	ok := &ExchangeCurrencyRequest{CharacterID: "c1", FromCurrency: "EDY", ToCurrency: "NUY", Amount: dec("0.01")}
	assert.NoError(t, schema.Validate(ok))
}

func TestDefaultCollections(t *testing.T) {
	r := NewActiveModifiersResponse()
	assert.NotNil(t, r.RegionalModifiers)
	assert.NotNil(t, r.EventModifiers)
	assert.NotNil(t, r.FactionModifiers)
	assert.Empty(t, r.EventModifiers)
	assert.True(t, r.NextRefresh.IsAbsent())

	out, err := schema.Encode(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"regionalModifiers":{},"eventModifiers":[],"factionModifiers":[]}`, string(out))

	for _, body := range []string{`{}`, `{"regionalModifiers":null,"eventModifiers":null,"factionModifiers":null}`} {
		decoded, err := schema.Decode[ActiveModifiersResponse]([]byte(body))
		require.NoError(t, err)
		assert.NotNil(t, decoded.RegionalModifiers, body)
		assert.NotNil(t, decoded.EventModifiers, body)
		assert.NotNil(t, decoded.FactionModifiers, body)
	}
}

func TestAppendOnUnset(t *testing.T) {
	var a, b BudgetEstimateResponse
	w := BudgetWarning{Code: "c", Message: "m"}
	a.AddWarning(w)
	assert.Equal(t, []BudgetWarning{w}, a.Warnings)
	assert.Nil(t, b.Warnings)

	b.AddWarning(BudgetWarning{Code: "other", Message: "m"})
	assert.Len(t, a.Warnings, 1)
	assert.Equal(t, "c", a.Warnings[0].Code)

	var impact MarketEventImpact
	impact.PutStockChange("ARSK", dec("1.5")).PutStockChange("ARSK", dec("-3"))
	assert.Len(t, impact.StockChanges, 1)
	assert.Equal(t, "-3", impact.StockChanges["ARSK"].Text())
}

func TestEndToEndBuyOrder(t *testing.T) {
	body := `{"character_id":"c1","item_id":"item-42","max_price":"12.50","quantity":3}`

	got, err := Contracts().Decode("CreateBuyOrderRequest", []byte(body))
	require.NoError(t, err)
	req := got.(*CreateBuyOrderRequest)

	assert.Equal(t, "c1", req.CharacterID)
	assert.Equal(t, "item-42", req.ItemID)
	assert.True(t, req.MaxPrice.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "12.50", req.MaxPrice.Text())
	assert.Equal(t, 3, req.Quantity)
	assert.Equal(t, 24, req.ExpiresIn)

	out, err := schema.Encode(req)
	require.NoError(t, err)

	var in, back map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	require.NoError(t, json.Unmarshal(out, &back))
	in["expires_in"] = float64(24)
	assert.Equal(t, in, back)
}

func TestInvariants(t *testing.T) {
	cases := []struct {
		name  string
		rec   any
		field string
		rule  string
	}{
		{
			name: "bids out of order",
			rec: (&OrderBook{ItemID: "i"}).
				AddBuyLevel(OrderBookLevel{Price: dec("9")}).
				AddBuyLevel(OrderBookLevel{Price: dec("10")}),
			field: "buy_orders[1].price", rule: "price_priority",
		},
		{
			name: "asks out of order",
			rec: (&OrderBook{ItemID: "i"}).
				AddSellLevel(OrderBookLevel{Price: dec("10")}).
				AddSellLevel(OrderBookLevel{Price: dec("10")}),
			field: "sell_orders[1].price", rule: "price_priority",
		},
		{
			name: "spread mismatch",
			rec: (&OrderBook{ItemID: "i", Spread: dec("2").Ptr()}).
				AddBuyLevel(OrderBookLevel{Price: dec("9")}).
				AddSellLevel(OrderBookLevel{Price: dec("10")}),
			field: "spread", rule: "spread_consistent",
		},
		{
			name: "fill larger than resting order inside a match",
			rec: (&MatchOrdersResponse{ItemID: "i"}).AddMatchedTrade(MatchedTrade{
				TradeID: tradeID, BuyOrderID: orderID, SellOrderID: orderID, ExecutedPrice: dec("5"),
				Quantity: 3, ExecutedAt: t0, SellRemaining: intp(2),
			}),
			field: "matched_trades[0].quantity", rule: "fill_within_remaining",
		},
		{
			name: "execution above buy limit",
			rec: &MatchedTrade{
				TradeID: tradeID, BuyOrderID: orderID, SellOrderID: orderID, ExecutedPrice: dec("5.01"),
				Quantity: 1, ExecutedAt: t0, BuyLimitPrice: dec("5").Ptr(),
			},
			field: "executedPrice", rule: "price_within_limits",
		},
		{
			name:  "buyout below starting bid",
			rec:   &CreateAuctionLotRequest{SellerID: "s", ItemID: "i", Quantity: 1, StartingBid: dec("10"), BuyoutPrice: dec("5").Ptr(), DurationHours: 24},
			field: "buyout_price", rule: "buyout_above_start",
		},
		{
			name:  "winning bid below rival",
			rec:   &BidOnLotResponse{LotID: orderID, BidAmount: dec("10"), IsWinning: true, HighestOtherBid: dec("11").Ptr(), PlacedAt: t0},
			field: "bidAmount", rule: "winning_bid_highest",
		},
		{
			name:  "exchange does not settle",
			rec:   &ExchangeCurrencyResponse{TransactionID: orderID, AmountSent: dec("100"), AmountReceived: dec("150"), ExchangeRate: dec("1.5"), Fee: dec("1"), ExecutedAt: t0},
			field: "amount_received", rule: "exchange_settles",
		},
		{
			name:  "limit order without price",
			rec:   &SellStockRequest{CharacterID: "c", Ticker: "ARSK", Quantity: 1, OrderType: StockLimit},
			field: "limit_price", rule: "limit_requires_price",
		},
		{
			name:  "margin above leverage",
			rec:   &EnableMarginTradingResponse{Enabled: true, LeverageLimit: dec("2"), MarginRequirement: dec("300"), PositionValue: dec("100").Ptr()},
			field: "margin_requirement", rule: "margin_within_leverage",
		},
		{
			name:  "failed craft reported as success",
			rec:   &CraftResult{CraftID: orderID, Success: true, Quality: QualityFailed},
			field: "quality", rule: "quality_matches_outcome",
		},
		{
			name:  "loot range inverted",
			rec:   &LootTableEntry{ItemID: "x", DropChance: dec("5"), QuantityMin: 3, QuantityMax: 2, Rarity: RarityEpic},
			field: "quantity_min", rule: "quantity_range",
		},
		{
			name: "drop chances above 100",
			rec: (&LootTableDetails{TableID: "t"}).
				AddEntry(LootTableEntry{ItemID: "a", DropChance: dec("60"), QuantityMin: 1, QuantityMax: 1, Rarity: RarityCommon}).
				AddEntry(LootTableEntry{ItemID: "b", DropChance: dec("40.5"), QuantityMin: 1, QuantityMax: 1, Rarity: RarityCommon}),
			field: "entries", rule: "drop_chance_total",
		},
		{
			name:  "released escrow without timestamp",
			rec:   &EscrowReleaseResponse{EscrowID: "e", Status: EscrowReleased},
			field: "released_at", rule: "released_has_timestamp",
		},
		{
			name: "contributions do not sum",
			rec: (&RiskFactorBreakdown{OverallScore: dec("50")}).
				AddFactor(RiskFactor{Factor: "heat", Weight: dec("0.5"), Score: dec("60"), Contribution: dec("30")}),
			field: "overall_score", rule: "contributions_sum",
		},
		{
			name:  "convoy over capacity",
			rec:   (&CreateConvoyRequest{LeaderID: "l", RouteID: "r", MaxMembers: 1}).AddMember("a").AddMember("b"),
			field: "members", rule: "convoy_capacity",
		},
		{
			name:  "removed change with after snapshot",
			rec:   &InfrastructureInstanceChange{ChangeID: orderID, ChangeType: ChangeRemoved, InstanceID: "i", After: &InfrastructureInstance{}, ChangedAt: t0},
			field: "before", rule: "change_snapshots",
		},
		{
			name:  "budget range inverted",
			rec:   &BudgetRange{Min: dec("10"), Max: dec("5")},
			field: "min", rule: "range_ordered",
		},
		{
			name:  "active contract without executor",
			rec:   &ContractDetailed{ContractID: orderID, Type: TradeExchange, Title: "Swap", CreatorID: tradeID, Status: TradeActive, ExecutorID: schema.Null[uuid.UUID]()},
			field: "executor_id", rule: "executor_after_acceptance",
		},
		{
			name:  "disputed contract without dispute",
			rec:   &ContractDetailed{ContractID: orderID, Type: TradeExchange, Title: "Swap", CreatorID: tradeID, Status: TradeDisputed, ExecutorID: schema.Some(orderID)},
			field: "dispute", rule: "dispute_recorded",
		},
		{
			name:  "contract deadline before creation",
			rec:   &ContractDetailed{ContractID: orderID, Type: TradeService, Title: "Guard", CreatorID: tradeID, Status: TradeDraft, CreatedAt: t0, Deadline: schema.Some(t0.Add(-time.Minute))},
			field: "deadline", rule: "deadline_after_creation",
		},
		{
			name:  "delivered shipment without timestamp",
			rec:   &ShipmentDetailed{ShipmentID: orderID, CharacterID: tradeID, Status: ShipmentDelivered, Origin: "a", Destination: "b", ActualDelivery: schema.Null[time.Time]()},
			field: "actual_delivery", rule: "delivered_has_timestamp",
		},
		{
			name:  "event ends before it starts",
			rec:   &EconomyEventDetailed{EventID: orderID, Name: "Boom", Type: EventBoom, Severity: EventMinor, StartDate: t0, EndDate: schema.Some(t0.Add(-time.Hour))},
			field: "end_date", rule: "event_window",
		},
		{
			name:  "recipe component count mismatch",
			rec:   (&CraftingRecipeDetailed{RecipeID: "r", Name: "Rig", Category: RecipeMods, Tier: RecipeT2, ComponentsCount: 3}).AddComponent(CraftOutput{ItemID: "x", Quantity: 1}),
			field: "components_count", rule: "components_count_matches",
		},
		{
			name:  "investment profit does not add up",
			rec:   &InvestmentDetailed{InvestmentID: orderID, CharacterID: tradeID, OpportunityID: "o", AmountInvested: dec("100"), CurrentValue: dec("90"), Status: InvestmentActive, ProfitLoss: dec("10").Ptr()},
			field: "profit_loss", rule: "profit_matches_value",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ves := validationErrs(t, schema.Validate(tc.rec))
			assert.True(t, ves.Has(tc.field, tc.rule), "got %v", ves)
		})
	}
}

func TestCheckGenerated(t *testing.T) {
	table := (&LootTableDetails{TableID: "t"}).
		AddEntry(LootTableEntry{ItemID: "scrap", DropChance: dec("90"), QuantityMin: 1, QuantityMax: 3, Rarity: RarityCommon})

	ok := (&GeneratedLoot{TableID: "t"}).AddItem(GeneratedLootItem{ItemID: "scrap", Quantity: 3, Rarity: RarityCommon})
	assert.NoError(t, table.CheckGenerated(*ok))

	bad := (&GeneratedLoot{TableID: "t"}).
		AddItem(GeneratedLootItem{ItemID: "scrap", Quantity: 4, Rarity: RarityCommon}).
		AddItem(GeneratedLootItem{ItemID: "relic", Quantity: 1, Rarity: RarityLegendary})
	ves := validationErrs(t, table.CheckGenerated(*bad))
	assert.True(t, ves.Has("items[0].quantity", "quantity_range"))
	assert.True(t, ves.Has("items[1].item_id", "item_in_table"))
}

func TestRiskAlertThresholdTriggers(t *testing.T) {
	th := RiskAlertThreshold{ThresholdID: "t", Metric: "heat", Operator: OpGreaterEqual, Value: dec("70")}
	assert.True(t, th.Triggers(decimal.NewFromInt(70), t0))
	assert.False(t, th.Triggers(decimal.NewFromInt(69), t0))

	last := t0.Add(-30 * time.Second)
	th.LastTriggeredAt = &last
	th.CooldownSeconds = 60
	assert.False(t, th.Triggers(decimal.NewFromInt(90), t0))
	assert.True(t, th.Triggers(decimal.NewFromInt(90), t0.Add(time.Minute)))

	th.Operator = OpEqual
	th.LastTriggeredAt = nil
	assert.True(t, th.Triggers(decimal.RequireFromString("70.00"), t0))
}

func TestContractsCatalog(t *testing.T) {
	reg := Contracts()
	names := reg.Names()
	assert.Contains(t, names, "CreateBuyOrderRequest")
	assert.Contains(t, names, "ActiveModifiersResponse")

	var events []string
	for _, d := range reg.Descriptors() {
		if d.Event {
			events = append(events, d.Name)
		}
	}
	assert.ElementsMatch(t, []string{
		"InsuranceAppliedEvent", "BudgetAnomalyEvent", "InfrastructureInstanceChange",
		"InfrastructureJobLog", "MarketIndexSnapshot", "EconomyEventDetailed",
	}, events)

	for _, name := range names {
		err := reg.ValidateRaw(name, []byte(`{}`))
		if err != nil {
			assert.True(t, errors.Is(err, schema.ErrValidation), "%s: %v", name, err)
		}
	}

	ves := validationErrs(t, reg.ValidateRaw("InsuranceTierList", []byte(`{"currency":"usd","tiers":[]}`)))
	assert.True(t, ves.Has("currency", "pattern"), "got %v", ves)
}

func TestRenderBuyOrder(t *testing.T) {
	req, err := NewCreateBuyOrderRequest("c1", "item-42", dec("12.50"), 3)
	require.NoError(t, err)
	assert.Equal(t, "CreateBuyOrderRequest {\n"+
		"    character_id: c1\n"+
		"    item_id: item-42\n"+
		"    max_price: 12.50\n"+
		"    quantity: 3\n"+
		"    expires_in: 24\n"+
		"}", schema.Render(req))
}

type threeState interface {
	IsAbsent() bool
	IsNull() bool
	IsPresent() bool
}

func TestDetailedNullableFields(t *testing.T) {
	const (
		contractBase = `{"contract_id":"6f1c2a3b-4d5e-4f60-8a7b-9c0d1e2f3a4b","type":"EXCHANGE","title":"Swap",` +
			`"creator_id":"0a1b2c3d-4e5f-4a6b-8c7d-8e9f0a1b2c3d","status":"draft","created_at":"2026-03-14T15:09:26Z","history":[]%s}`
		shipmentBase = `{"shipment_id":"6f1c2a3b-4d5e-4f60-8a7b-9c0d1e2f3a4b","character_id":"0a1b2c3d-4e5f-4a6b-8c7d-8e9f0a1b2c3d",` +
			`"status":"IN_TRANSIT","origin":"watson","destination":"pacifica","created_at":"2026-03-14T15:09:26Z",` +
			`"cargo":[],"incidents":[],"tracking_history":[]%s}`
		eventBase = `{"event_id":"6f1c2a3b-4d5e-4f60-8a7b-9c0d1e2f3a4b","name":"Chip famine","type":"COMMODITY","severity":"MODERATE",` +
			`"affected_regions":[],"affected_sectors":[],"start_date":"2026-03-14T15:09:26Z","is_active":true,` +
			`"causes":[],"effects":[],"player_opportunities":[]%s}`
		recipeBase = `{"recipe_id":"stim","name":"Stim","category":"CONSUMABLES","tier":"T1","required_skill_level":0,` +
			`"base_crafting_time_seconds":0,"components_count":0,"components":[]%s}`
	)
	cases := []struct {
		contract string
		base     string
		field    string
		value    string
		get      func(any) threeState
	}{
		{"ContractDetailed", contractBase, "executor_id", `"0a1b2c3d-4e5f-4a6b-8c7d-8e9f0a1b2c3d"`,
			func(v any) threeState { return v.(*ContractDetailed).ExecutorID }},
		{"ContractDetailed", contractBase, "deadline", `"2026-03-20T00:00:00Z"`,
			func(v any) threeState { return v.(*ContractDetailed).Deadline }},
		{"ContractDetailed", contractBase, "completion_proof", `{"hash":"abc","signed_by":["a","b"]}`,
			func(v any) threeState { return v.(*ContractDetailed).CompletionProof }},
		{"ShipmentDetailed", shipmentBase, "actual_delivery", `"2026-03-14T18:00:00Z"`,
			func(v any) threeState { return v.(*ShipmentDetailed).ActualDelivery }},
		{"ShipmentDetailed", shipmentBase, "current_location", `"heywood"`,
			func(v any) threeState { return v.(*ShipmentDetailed).CurrentLocation }},
		{"EconomyEventDetailed", eventBase, "end_date", `"2026-04-01T00:00:00Z"`,
			func(v any) threeState { return v.(*EconomyEventDetailed).EndDate }},
		{"CraftingRecipeDetailed", recipeBase, "station_requirement", `"WEAPONS_BENCH"`,
			func(v any) threeState { return v.(*CraftingRecipeDetailed).StationRequirement }},
	}
	reg := Contracts()
	for _, tc := range cases {
		t.Run(tc.contract+"."+tc.field, func(t *testing.T) {
			for _, variant := range []struct {
				extra string
				check func(threeState) bool
			}{
				{"", threeState.IsAbsent},
				{`,"` + tc.field + `":null`, threeState.IsNull},
				{`,"` + tc.field + `":` + tc.value, threeState.IsPresent},
			} {
				body := fmt.Sprintf(tc.base, variant.extra)
				got, err := reg.Decode(tc.contract, []byte(body))
				require.NoError(t, err, body)
				assert.True(t, variant.check(tc.get(got)), body)

				out, err := schema.Encode(got)
				require.NoError(t, err)
				assert.JSONEq(t, body, string(out))
			}
		})
	}
}

func TestDetailedListsDefaultEmpty(t *testing.T) {
	body := `{"event_id":"6f1c2a3b-4d5e-4f60-8a7b-9c0d1e2f3a4b","name":"Chip famine","type":"COMMODITY",` +
		`"severity":"MODERATE","start_date":"2026-03-14T15:09:26Z","causes":null}`
	got, err := schema.Decode[EconomyEventDetailed]([]byte(body))
	require.NoError(t, err)
	for name, list := range map[string][]string{
		"affected_regions":     got.AffectedRegions,
		"affected_sectors":     got.AffectedSectors,
		"causes":               got.Causes,
		"player_opportunities": got.PlayerOpportunities,
	} {
		assert.NotNil(t, list, name)
		assert.Empty(t, list, name)
	}
	assert.NotNil(t, got.Effects)
	assert.True(t, got.EndDate.IsAbsent())

	e, err := NewEconomyEventDetailed(orderID, "Chip famine", EventCommodity, EventModerate, t0)
	require.NoError(t, err)
	out, err := schema.Encode(e)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"affected_regions":[]`)
	assert.Contains(t, string(out), `"player_opportunities":[]`)
	assert.NotContains(t, string(out), `"end_date"`)

	_, err = NewEconomyEventDetailed(orderID, "Chip famine", EconomyEventType("PANIC"), EventModerate, t0)
	assert.True(t, validationErrs(t, err).Has("type", "enum"))

	var s ShipmentDetailed
	s.AddCargo(CargoItem{ItemID: "chip", Quantity: 1})
	assert.Len(t, s.Cargo, 1)
	assert.Nil(t, s.TrackingHistory)

	_, err = schema.Decode[ShipmentDetailed]([]byte(`{"shipment_id":"6f1c2a3b-4d5e-4f60-8a7b-9c0d1e2f3a4b",` +
		`"character_id":"0a1b2c3d-4e5f-4a6b-8c7d-8e9f0a1b2c3d","status":"IN_TRANSIT","origin":"a","destination":"b",` +
		`"current_location":""}`))
	assert.True(t, validationErrs(t, err).Has("current_location", "min"))
}

func TestTradeContractTransitions(t *testing.T) {
	path := []TradeContractStatus{TradeDraft, TradeNegotiation, TradeEscrowPending, TradeActive, TradeDisputed, TradeArbitrated}
	for i := 1; i < len(path); i++ {
		assert.True(t, path[i-1].CanTransition(path[i]), "%s -> %s", path[i-1], path[i])
	}
	assert.True(t, TradeActive.CanTransition(TradeCompleted))
	assert.True(t, TradeNegotiation.CanTransition(TradeCancelled))

	assert.False(t, TradeDraft.CanTransition(TradeActive))
	assert.False(t, TradeCompleted.CanTransition(TradeCancelled))
	assert.False(t, TradeDisputed.CanTransition(TradeCancelled))
	assert.False(t, TradeContractStatus("PENDING").CanTransition(TradeActive))

	for _, s := range TradeContractStatuses.Members() {
		final := s == TradeCompleted || s == TradeCancelled || s == TradeArbitrated
		assert.Equal(t, final, s.IsFinal(), s)
	}
	assert.False(t, TradeContractStatus("gone").IsFinal())

	_, err := Contracts().Decode("ContractDetailed", []byte(`{"contract_id":"6f1c2a3b-4d5e-4f60-8a7b-9c0d1e2f3a4b",`+
		`"type":"EXCHANGE","title":"Swap","creator_id":"0a1b2c3d-4e5f-4a6b-8c7d-8e9f0a1b2c3d","status":"PENDING"}`))
	var ue *schema.UnrecognizedEnumValueError
	require.True(t, errors.As(err, &ue), "got %v", err)
	assert.Equal(t, "TradeContractStatus", ue.Type)
	assert.Equal(t, "PENDING", ue.Label)
}
