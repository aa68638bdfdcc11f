package domain

import (
	"encoding/json"
	"testing"
)

func TestVariantID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want VariantID
	}{
		{name: "number", json: `{"variant_id": 111}`, want: "111"},
		{name: "large number", json: `{"variant_id": 44012345678901}`, want: "44012345678901"},
		{name: "string", json: `{"variant_id": " 222 "}`, want: "222"},
		{name: "null", json: `{"variant_id": null}`, want: ""},
		{name: "zero", json: `{"variant_id": 0}`, want: ""},
		{name: "missing", json: `{}`, want: ""},
		{name: "object", json: `{"variant_id": {"id": 1}}`, want: ""},
		{name: "bool", json: `{"variant_id": true}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item LineItem
			if err := json.Unmarshal([]byte(tt.json), &item); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if item.VariantID != tt.want {
				t.Errorf("expected %q, got %q", tt.want, item.VariantID)
			}
			if item.VariantID.IsZero() != (tt.want == "") {
				t.Errorf("IsZero mismatch for %q", item.VariantID)
			}
		})
	}
}

func TestOrderEvent_Buyer(t *testing.T) {
	t.Run("prefers customer name", func(t *testing.T) {
		order := OrderEvent{
			Customer:       &Person{FirstName: "Anna", LastName: "Berg"},
			BillingAddress: &Person{FirstName: "Bernd", LastName: "Kurz"},
		}
		if got := order.BuyerFirstName(); got != "Anna" {
			t.Errorf("expected Anna, got %s", got)
		}
		if got := order.BuyerFullName(); got != "Anna Berg" {
			t.Errorf("expected Anna Berg, got %s", got)
		}
	})

	t.Run("falls back to billing address", func(t *testing.T) {
		order := OrderEvent{
			Customer:       &Person{},
			BillingAddress: &Person{FirstName: "Bernd", LastName: "Kurz"},
		}
		if got := order.BuyerFirstName(); got != "Bernd" {
			t.Errorf("expected Bernd, got %s", got)
		}
		if got := order.BuyerFullName(); got != "Bernd Kurz" {
			t.Errorf("expected Bernd Kurz, got %s", got)
		}
	})

	t.Run("empty without any name", func(t *testing.T) {
		var order OrderEvent
		if got := order.BuyerFirstName(); got != "" {
			t.Errorf("expected empty name, got %s", got)
		}
		if got := order.BuyerFullName(); got != "" {
			t.Errorf("expected empty name, got %s", got)
		}
	})
}

func TestOrderEvent_StatusAndRef(t *testing.T) {
	var order OrderEvent
	if err := json.Unmarshal([]byte(`{"name":"#1001","line_items":[]}`), &order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.HasStatus() {
		t.Error("expected missing status")
	}
	if order.OrderRef() != "#1001" {
		t.Errorf("expected #1001, got %s", order.OrderRef())
	}

	if err := json.Unmarshal([]byte(`{"financial_status":"paid","order_number":1001}`), &order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.HasStatus() || order.Status() != FinancialStatusPaid {
		t.Errorf("expected paid status, got %q", order.Status())
	}
	if order.OrderRef() != "1001" {
		t.Errorf("expected 1001, got %s", order.OrderRef())
	}
}

func TestOrderEvent_OrderNumber(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{name: "number", json: `{"order_number":1001,"name":"#1001"}`, want: "1001"},
		{name: "string", json: `{"order_number":"A-1001","name":"#A-1001"}`, want: "A-1001"},
		{name: "null falls back to name", json: `{"order_number":null,"name":"#1001"}`, want: "#1001"},
		{name: "object falls back to name", json: `{"order_number":{"n":1},"name":"#1001"}`, want: "#1001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var order OrderEvent
			if err := json.Unmarshal([]byte(tt.json), &order); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := order.OrderRef(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestOrderEvent_IgnoresUnreadLineItemFields(t *testing.T) {
	var order OrderEvent
	payload := `{"line_items":[{"variant_id":111,"quantity":"1","title":{"de":"Sommerlied"}}]}`
	if err := json.Unmarshal([]byte(payload), &order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order.LineItems) != 1 || order.LineItems[0].VariantID != "111" {
		t.Errorf("unexpected line items: %+v", order.LineItems)
	}
}
