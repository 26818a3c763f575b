package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected Amount
	}{
		{name: "quoted string", payload: `"19.99"`, expected: "19.99"},
		{name: "raw number", payload: `19.99`, expected: "19.99"},
		{name: "integer", payload: `42`, expected: "42"},
		{name: "null", payload: `null`, expected: ""},
		{name: "non numeric string kept verbatim", payload: `"12,50 EUR"`, expected: "12,50 EUR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var amount Amount

			err := json.Unmarshal([]byte(tt.payload), &amount)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, amount)
		})
	}
}

func TestReceiptDraftUnmarshal_MixedAmountTypes(t *testing.T) {
	payload := `{
		"is_receipt": true,
		"merchant_name": "Cafe Central",
		"receipt_date": "2025-03-14",
		"currency": "usd",
		"subtotal": 17.50,
		"tax": "1.49",
		"tip": null,
		"total": "19.99",
		"items": [{"description": "Latte", "quantity": 2, "line_total": 9.00}]
	}`

	var draft ReceiptDraft

	err := json.Unmarshal([]byte(payload), &draft)
	require.NoError(t, err)

	assert.True(t, draft.IsReceipt)
	assert.Equal(t, "Cafe Central", draft.MerchantName)
	assert.Equal(t, Amount("17.50"), draft.Subtotal)
	assert.Equal(t, Amount("1.49"), draft.Tax)
	assert.Equal(t, Amount(""), draft.Tip)
	assert.Equal(t, Amount("19.99"), draft.Total)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, "Latte", draft.Items[0].Description)
}
