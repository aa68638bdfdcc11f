package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FinancialStatusPaid is the value Shopify reports once payment is captured.
const FinancialStatusPaid = "paid"

type Person struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// looseID decodes an identifier Shopify may emit as a JSON number or string.
// ok is false for any other JSON shape.
func looseID(data []byte) (id string, ok bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", true
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", false
	}
	return n.String(), true
}

// VariantID is a catalog variant reference as sent by the storefront. Shopify
// emits it as a JSON number, some tooling as a string, and custom line items
// carry null. Any other shape decodes to the zero id so the line item is
// skipped instead of failing the whole order.
type VariantID string

func (v *VariantID) UnmarshalJSON(data []byte) error {
	id, ok := looseID(data)
	if !ok || id == "0" {
		id = ""
	}
	*v = VariantID(id)
	return nil
}

func (v VariantID) IsZero() bool {
	return v == ""
}

// OrderNumber is the shop-facing order number. It is only used for
// references, so an unexpected shape decodes to empty and OrderRef falls
// back to the order name.
type OrderNumber string

func (n *OrderNumber) UnmarshalJSON(data []byte) error {
	id, ok := looseID(data)
	if !ok {
		id = ""
	}
	*n = OrderNumber(id)
	return nil
}

type LineItem struct {
	VariantID VariantID `json:"variant_id"`
}

// OrderEvent is the subset of the Shopify order webhook payload the pipeline
// reads.
type OrderEvent struct {
	Email           string      `json:"email" validate:"omitempty,email"`
	Customer        *Person     `json:"customer"`
	BillingAddress  *Person     `json:"billing_address"`
	FinancialStatus *string     `json:"financial_status"`
	OrderNumber     OrderNumber `json:"order_number"`
	Name            string      `json:"name"`
	CreatedAt       string      `json:"created_at"`
	LineItems       []LineItem  `json:"line_items"`
}

// HasStatus reports whether the payload carried a non-blank financial_status.
// An empty string counts as absent.
func (o *OrderEvent) HasStatus() bool {
	return o.FinancialStatus != nil && strings.TrimSpace(*o.FinancialStatus) != ""
}

func (o *OrderEvent) Status() string {
	if o.FinancialStatus == nil {
		return ""
	}
	return *o.FinancialStatus
}

func (o *OrderEvent) BuyerFirstName() string {
	if o.Customer != nil && o.Customer.FirstName != "" {
		return o.Customer.FirstName
	}
	if o.BillingAddress != nil {
		return o.BillingAddress.FirstName
	}
	return ""
}

func (o *OrderEvent) BuyerFullName() string {
	for _, p := range []*Person{o.Customer, o.BillingAddress} {
		if p == nil {
			continue
		}
		name := strings.TrimSpace(p.FirstName + " " + p.LastName)
		if name != "" {
			return name
		}
	}
	return ""
}

// OrderRef prefers the order number and falls back to the display name
// (e.g. "#1001").
func (o *OrderEvent) OrderRef() string {
	if o.OrderNumber != "" {
		return string(o.OrderNumber)
	}
	return o.Name
}
