package models

import (
	"bytes"
	"encoding/json"
)

// Amount is a raw monetary value as it came off the image. It accepts both
// JSON numbers and JSON strings so the draft never loses what the model saw;
// coercion to a fixed-point decimal happens in the upsert capability.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""

		return nil
	}

	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*a = Amount(s)

		return nil
	}

	*a = Amount(data)

	return nil
}

// ReceiptItem is a single line item on an extracted receipt.
type ReceiptItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	LineTotal   *float64 `json:"line_total,omitempty"`
}

// ReceiptDraft holds the unnormalized fields the vision model read off an
// image. Values are passed through exactly as extracted; all coercion
// (amounts, dates, currency codes) happens in the upsert capability.
type ReceiptDraft struct {
	IsReceipt       bool          `json:"is_receipt"`
	MerchantName    string        `json:"merchant_name,omitempty"`
	MerchantAddress string        `json:"merchant_address,omitempty"`
	ReceiptDate     string        `json:"receipt_date,omitempty"`
	ReceiptTime     string        `json:"receipt_time,omitempty"`
	Currency        string        `json:"currency,omitempty"`
	Subtotal        Amount        `json:"subtotal,omitempty"`
	Tax             Amount        `json:"tax,omitempty"`
	Tip             Amount        `json:"tip,omitempty"`
	Total           Amount        `json:"total,omitempty"`
	PaymentMethod   string        `json:"payment_method,omitempty"`
	Category        string        `json:"category,omitempty"`
	Items           []ReceiptItem `json:"items,omitempty"`
}
