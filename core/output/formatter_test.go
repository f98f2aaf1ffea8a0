package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipquote/core/types"
)

func sampleResult() *types.QuoteResult {
	usd := types.CostBreakdown{
		BasePrice:  decimal.RequireFromString("15"),
		WeightCost: decimal.RequireFromString("50"),
		Total:      decimal.RequireFromString("65"),
	}
	return &types.QuoteResult{
		Route:     types.RouteKey{From: "Nigeria", To: "Ghana", PackageType: "document"},
		Weight:    decimal.RequireFromString("2"),
		Currency:  types.CurrencyUSD,
		Breakdown: usd,
		USD:       usd,
	}
}

func TestCLIFormatterNotesFallback(t *testing.T) {
	f, err := ForFormat(FormatCLI)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf, sampleResult(), types.CurrencyNGN))

	out := buf.String()
	assert.Contains(t, out, "Nigeria → Ghana (document)")
	assert.Contains(t, out, "65.00")
	assert.Contains(t, out, "No NGN pricing on this route; quoted in USD")
}

func TestJSONFormatter(t *testing.T) {
	f, err := ForFormat(FormatJSON)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf, sampleResult(), types.CurrencyUSD))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "65.00", got["total"])
	assert.Equal(t, "50.00", got["usd"].(map[string]interface{})["weight_cost"])
	assert.Nil(t, got["ngn"])
}

func TestUnknownFormat(t *testing.T) {
	_, err := ForFormat("html")
	assert.Error(t, err)
}
