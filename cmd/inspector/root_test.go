package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestListEvents(t *testing.T) {
	out, _, err := run(t, "", "list", "--events")
	require.NoError(t, err)
	assert.Contains(t, out, "BudgetAnomalyEvent")
	assert.Contains(t, out, "InfrastructureJobLog")
	assert.NotContains(t, out, "CreateBuyOrderRequest")
}

func TestEnums(t *testing.T) {
	out, _, err := run(t, "", "enums", "RiskLevel")
	require.NoError(t, err)
	assert.Equal(t, "low\nmedium\nhigh\n", out)

	_, errOut, err := run(t, "", "enums", "Weather")
	assert.ErrorIs(t, err, schema.ErrUnknownContract)
	assert.True(t, strings.HasPrefix(errOut, "unknown_contract:"))
}

func TestValidateFromStdin(t *testing.T) {
	out, _, err := run(t, `{"bidder_id":"b1","amount":"15.00"}`, "validate", "BidOnLotRequest", "-")
	require.NoError(t, err)
	assert.Equal(t, "ok BidOnLotRequest\n"+`{"amount":"15.00","bidder_id":"b1"}`+"\n", out)
}

func TestValidateReportsFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bid.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bidder_id":"b1","amount":"0"}`), 0o644))

	_, errOut, err := run(t, "", "validate", "BidOnLotRequest", path)
	assert.ErrorIs(t, err, schema.ErrValidation)
	assert.Contains(t, errOut, "validation: 1 violation(s)")
	assert.Contains(t, errOut, "amount\tdgt")
}

func TestStrictRejectsUnknownKeys(t *testing.T) {
	payload := `{"bidder_id":"b1","amount":"1","extra":true}`
	_, _, err := run(t, payload, "validate", "BidOnLotRequest", "-")
	require.NoError(t, err)

	_, errOut, err := run(t, payload, "--strict", "validate", "BidOnLotRequest", "-")
	assert.ErrorIs(t, err, schema.ErrMalformedPayload)
	assert.True(t, strings.HasPrefix(errOut, "malformed:"))
}

func TestRender(t *testing.T) {
	out, _, err := run(t, `{"bidder_id":"b1","amount":"15.00"}`, "render", "BidOnLotRequest", "-")
	require.NoError(t, err)
	assert.Equal(t, "BidOnLotRequest {\n    bidder_id: b1\n    amount: 15.00\n}\n", out)
}

func TestSchemaYAML(t *testing.T) {
	out, _, err := run(t, "", "schema", "BidOnLotRequest", "--format", "yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "object", doc["type"])
	assert.ElementsMatch(t, []any{"bidder_id", "amount"}, doc["required"])

	_, _, err = run(t, "", "schema", "BidOnLotRequest", "--format", "toml")
	assert.Error(t, err)
}
