package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountsMarshalAsNumbers(t *testing.T) {
	b, err := json.Marshal(Expense{Amount: decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"amount":12.5,`)

	b, err = json.Marshal(StagedTransaction{Amount: decimal.RequireFromString("-1020.00")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"amount":-1020,`)

	var e Expense
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"15.00"}`), &e))
	assert.True(t, decimal.RequireFromString("15").Equal(e.Amount))
}
