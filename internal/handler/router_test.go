package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GoPolymarket/econgate/internal/config"
	"github.com/GoPolymarket/econgate/internal/middleware"
	"github.com/GoPolymarket/econgate/internal/model"
	"github.com/GoPolymarket/econgate/internal/repository"
	"github.com/GoPolymarket/econgate/internal/service"
	"github.com/GoPolymarket/econgate/internal/stream"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validBuyOrder = `{"character_id":"char-1","item_id":"iron-ore","max_price":"12.50","quantity":3}`
	anomalyEvent  = `{"orderId":"0b6f2c8e-7d0c-4a53-9a4b-3f1f3a0c9d11","anomalyType":"overrun","detectedAt":"2026-03-01T10:00:00Z"}`
	adminKey      = "admin-secret"
)

type testGateway struct {
	router     *gin.Engine
	hub        *stream.Hub
	rejections *repository.MemoryRejectionRepo
}

func newTestGateway(t *testing.T, mutate func(*config.Config)) *testGateway {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Port = "0"
	cfg.Auth.AdminKey = adminKey
	cfg.Auth.Clients = map[string]string{"quest-svc": "k-quest", "market-svc": "k-market"}
	if mutate != nil {
		mutate(cfg)
	}

	auditSvc, err := service.NewAuditService(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(auditSvc.Close)

	hub := stream.NewHub(stream.Config{BufferSize: 8})
	t.Cleanup(hub.Close)

	rejections := repository.NewMemoryRejectionRepo(100)
	svc := service.NewContractService(model.Contracts(), service.ContractOptions{
		DisallowUnknownFields: cfg.Contracts.DisallowUnknownFields,
	}).
		WithRejections(rejections).
		WithUsage(repository.NewMemoryUsageRepo()).
		WithPublisher(hub)

	router := NewRouter(RouterDeps{
		Config:      cfg,
		Contracts:   svc,
		Audit:       auditSvc,
		Hub:         hub,
		Idempotency: middleware.NewInMemIdempotencyStore(time.Hour),
		Limiter:     middleware.NewClientLimiter(cfg.Rate.QPS, cfg.Rate.Burst),
	})
	return &testGateway{router: router, hub: hub, rejections: rejections}
}

func (g *testGateway) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details []struct {
		Field string `json:"field"`
		Rule  string `json:"rule"`
	} `json:"details"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	g := newTestGateway(t, nil)
	w := g.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"service":"econgate"`)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestListContracts(t *testing.T) {
	g := newTestGateway(t, nil)
	w := g.do(http.MethodGet, "/v1/contracts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Contracts []struct {
			Name  string `json:"name"`
			Event bool   `json:"event"`
		} `json:"contracts"`
		Families map[string][]string `json:"families"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	events := map[string]bool{}
	for _, c := range body.Contracts {
		events[c.Name] = c.Event
	}
	assert.Contains(t, events, "CreateBuyOrderRequest")
	assert.False(t, events["CreateBuyOrderRequest"])
	assert.True(t, events["BudgetAnomalyEvent"])
	assert.Contains(t, body.Families[model.FamilyOrders], "CreateBuyOrderRequest")
}

func TestContractSchema(t *testing.T) {
	g := newTestGateway(t, nil)
	w := g.do(http.MethodGet, "/v1/contracts/CreateBuyOrderRequest/schema", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "object", doc["type"])
	assert.ElementsMatch(t, []any{"character_id", "item_id", "max_price", "quantity"}, doc["required"])

	w = g.do(http.MethodGet, "/v1/contracts/NoSuchThing/schema", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "UNKNOWN_CONTRACT", decodeError(t, w).Code)
}

func TestValidateAppliesDefaults(t *testing.T) {
	g := newTestGateway(t, nil)
	w := g.do(http.MethodPost, "/v1/contracts/CreateBuyOrderRequest/validate", validBuyOrder, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Contract  string          `json:"contract"`
		Value     map[string]any  `json:"value"`
		Canonical json.RawMessage `json:"canonical"`
		Rendered  string          `json:"rendered"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "CreateBuyOrderRequest", body.Contract)
	assert.Equal(t, float64(24), body.Value["expires_in"])
	assert.Equal(t, "12.50", body.Value["max_price"])
	assert.JSONEq(t, `{"character_id":"char-1","expires_in":24,"item_id":"iron-ore","max_price":"12.50","quantity":3}`, string(body.Canonical))
	assert.Contains(t, body.Rendered, "CreateBuyOrderRequest {\n")
}

func TestValidateReportsViolations(t *testing.T) {
	g := newTestGateway(t, nil)
	w := g.do(http.MethodPost, "/v1/contracts/CreateBuyOrderRequest/validate",
		`{"character_id":"char-1","item_id":"iron-ore","max_price":"0","quantity":0}`,
		map[string]string{middleware.HeaderGatewayKey: "k-quest"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeError(t, w)
	assert.Equal(t, "VALIDATION_FAILED", body.Code)
	rules := map[string]string{}
	for _, d := range body.Details {
		rules[d.Field] = d.Rule
	}
	assert.Equal(t, "dgt", rules["max_price"])
	assert.Equal(t, "required", rules["quantity"])

	recorded, err := g.rejections.List(t.Context(), model.RejectionFilter{ClientID: "quest-svc"})
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, "CreateBuyOrderRequest", recorded[0].Contract)
	assert.Equal(t, "invalid", recorded[0].Kind)
	assert.NotEmpty(t, recorded[0].RequestID)
}

func TestValidateErrorKinds(t *testing.T) {
	g := newTestGateway(t, nil)
	tests := []struct {
		name     string
		contract string
		body     string
		status   int
		code     string
	}{
		{"malformed json", "CreateBuyOrderRequest", `{"quantity":`, http.StatusBadRequest, "MALFORMED_PAYLOAD"},
		{"wrong type", "CreateBuyOrderRequest", `{"quantity":"three"}`, http.StatusBadRequest, "MALFORMED_PAYLOAD"},
		{"closed enum", "BudgetAnomalyEvent", strings.Replace(anomalyEvent, "overrun", "meltdown", 1), http.StatusBadRequest, "UNRECOGNIZED_ENUM"},
		{"unknown contract", "Nope", `{}`, http.StatusNotFound, "UNKNOWN_CONTRACT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := g.do(http.MethodPost, "/v1/contracts/"+tt.contract+"/validate", tt.body, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestUnknownFieldsFollowConfig(t *testing.T) {
	payload := strings.Replace(validBuyOrder, `"quantity":3`, `"quantity":3,"colour":"red"`, 1)

	lenient := newTestGateway(t, nil)
	w := lenient.do(http.MethodPost, "/v1/contracts/CreateBuyOrderRequest/validate", payload, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	strict := newTestGateway(t, func(c *config.Config) { c.Contracts.DisallowUnknownFields = true })
	w = strict.do(http.MethodPost, "/v1/contracts/CreateBuyOrderRequest/validate", payload, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MALFORMED_PAYLOAD", decodeError(t, w).Code)
}

func TestNormalizeAndRender(t *testing.T) {
	g := newTestGateway(t, nil)
	w := g.do(http.MethodPost, "/v1/contracts/CreateBuyOrderRequest/normalize", validBuyOrder, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"character_id":"char-1","item_id":"iron-ore","max_price":"12.50","quantity":3,"expires_in":24}`, w.Body.String())

	w = g.do(http.MethodPost, "/v1/contracts/CreateBuyOrderRequest/render", validBuyOrder, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "CreateBuyOrderRequest {"))
	assert.Contains(t, w.Body.String(), "    expires_in: 24\n")
}

func TestEnums(t *testing.T) {
	g := newTestGateway(t, nil)
	w := g.do(http.MethodGet, "/v1/enums", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var enums map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &enums))
	assert.Equal(t, []string{"low", "medium", "high"}, enums["RiskLevel"])

	w = g.do(http.MethodGet, "/v1/enums/OrderStatus/filled", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enum":"OrderStatus","label":"filled","value":"filled"}`, w.Body.String())

	w = g.do(http.MethodGet, "/v1/enums/OrderStatus/FILLED", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNRECOGNIZED_ENUM", decodeError(t, w).Code)
}

func TestPublishEvent(t *testing.T) {
	g := newTestGateway(t, nil)
	feed, cancel := g.hub.Subscribe([]string{"BudgetAnomalyEvent"})
	defer cancel()

	w := g.do(http.MethodPost, "/v1/events/BudgetAnomalyEvent", anomalyEvent, nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"delivered":1`)

	var env stream.Envelope
	require.NoError(t, json.Unmarshal(<-feed, &env))
	assert.Equal(t, "BudgetAnomalyEvent", env.Contract)
	assert.JSONEq(t, anomalyEvent, string(env.Payload))

	w = g.do(http.MethodPost, "/v1/events/CreateBuyOrderRequest", validBuyOrder, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Code)
}

func TestPublishIsIdempotent(t *testing.T) {
	g := newTestGateway(t, nil)
	feed, cancel := g.hub.Subscribe(nil)
	defer cancel()

	headers := map[string]string{middleware.HeaderGatewayKey: "k-quest", middleware.HeaderIdempotencyKey: "evt-1"}
	first := g.do(http.MethodPost, "/v1/events/BudgetAnomalyEvent", anomalyEvent, headers)
	require.Equal(t, http.StatusAccepted, first.Code)
	second := g.do(http.MethodPost, "/v1/events/BudgetAnomalyEvent", anomalyEvent, headers)
	require.Equal(t, http.StatusAccepted, second.Code)

	assert.Equal(t, "true", second.Header().Get("Idempotent-Replay"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Len(t, feed, 1)

	// Keys are scoped per client
	headers[middleware.HeaderGatewayKey] = "k-market"
	third := g.do(http.MethodPost, "/v1/events/BudgetAnomalyEvent", anomalyEvent, headers)
	require.Equal(t, http.StatusAccepted, third.Code)
	assert.Empty(t, third.Header().Get("Idempotent-Replay"))
	assert.Len(t, feed, 2)
}

func TestReadOnlyBlocksPublishOnly(t *testing.T) {
	g := newTestGateway(t, func(c *config.Config) { c.Server.ReadOnly = true })

	w := g.do(http.MethodPost, "/v1/events/BudgetAnomalyEvent", anomalyEvent, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "READ_ONLY", decodeError(t, w).Code)

	w = g.do(http.MethodPost, "/v1/contracts/CreateBuyOrderRequest/validate", validBuyOrder, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	g := newTestGateway(t, func(c *config.Config) { c.Auth.RequireAPIKey = true })

	w := g.do(http.MethodGet, "/v1/contracts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_FAILED", decodeError(t, w).Code)

	w = g.do(http.MethodGet, "/v1/contracts", "", map[string]string{middleware.HeaderGatewayKey: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = g.do(http.MethodGet, "/v1/contracts", "", map[string]string{middleware.HeaderGatewayKey: "k-market"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitPerClient(t *testing.T) {
	g := newTestGateway(t, func(c *config.Config) {
		c.Rate.QPS = 0.001
		c.Rate.Burst = 1
	})
	quest := map[string]string{middleware.HeaderGatewayKey: "k-quest"}
	market := map[string]string{middleware.HeaderGatewayKey: "k-market"}

	assert.Equal(t, http.StatusOK, g.do(http.MethodGet, "/v1/enums", "", quest).Code)
	w := g.do(http.MethodGet, "/v1/enums", "", quest)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, w).Code)
	assert.Equal(t, http.StatusOK, g.do(http.MethodGet, "/v1/enums", "", market).Code)
}

func TestAdminEndpoints(t *testing.T) {
	g := newTestGateway(t, nil)
	g.do(http.MethodPost, "/v1/contracts/ExchangeCurrencyRequest/validate", `{}`, map[string]string{middleware.HeaderGatewayKey: "k-market"})

	w := g.do(http.MethodGet, "/v1/admin/rejections", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	admin := map[string]string{middleware.HeaderAdminKey: adminKey}
	w = g.do(http.MethodGet, "/v1/admin/rejections?client=market-svc", "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	var recs []model.ContractRejection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "ExchangeCurrencyRequest", recs[0].Contract)

	w = g.do(http.MethodGet, "/v1/admin/audit?from=yesterday", "", admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = g.do(http.MethodGet, "/v1/admin/audit?client=market-svc", "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []model.AuditLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.NotEmpty(t, logs)
	assert.Equal(t, http.StatusBadRequest, logs[0].StatusCode)
	assert.Equal(t, "ExchangeCurrencyRequest", logs[0].Context["contract"])
}

func TestUsageCountsPerClient(t *testing.T) {
	g := newTestGateway(t, nil)
	quest := map[string]string{middleware.HeaderGatewayKey: "k-quest"}
	g.do(http.MethodPost, "/v1/contracts/CreateBuyOrderRequest/validate", validBuyOrder, quest)
	g.do(http.MethodPost, "/v1/contracts/CreateBuyOrderRequest/validate", `{}`, quest)

	w := g.do(http.MethodGet, "/v1/usage", "", quest)
	require.Equal(t, http.StatusOK, w.Code)
	var usage model.DailyUsage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))
	assert.Equal(t, "quest-svc", usage.ClientID)
	assert.Equal(t, int64(1), usage.Accepted)
	assert.Equal(t, int64(1), usage.Rejected)
	assert.Equal(t, int64(2), usage.ByContract["CreateBuyOrderRequest"])
}
