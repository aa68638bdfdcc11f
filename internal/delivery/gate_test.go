package delivery

import (
	"testing"

	"github.com/joao-fontenele/download-delivery/internal/domain"
)

func status(s string) *string { return &s }

func TestShouldProcess(t *testing.T) {
	tests := []struct {
		name   string
		policy PaymentPolicy
		status *string
		want   bool
	}{
		{name: "paid topic missing status", policy: AcceptMissingStatus, status: nil, want: true},
		{name: "paid topic paid", policy: AcceptMissingStatus, status: status("paid"), want: true},
		{name: "paid topic pending", policy: AcceptMissingStatus, status: status("pending"), want: false},
		{name: "paid topic empty string counts as missing", policy: AcceptMissingStatus, status: status(""), want: true},
		{name: "paid topic blank string counts as missing", policy: AcceptMissingStatus, status: status("  "), want: true},
		{name: "create topic empty string", policy: RequireExplicitPaid, status: status(""), want: false},
		{name: "create topic missing status", policy: RequireExplicitPaid, status: nil, want: false},
		{name: "create topic paid", policy: RequireExplicitPaid, status: status("paid"), want: true},
		{name: "create topic pending", policy: RequireExplicitPaid, status: status("pending"), want: false},
		{name: "create topic refunded", policy: RequireExplicitPaid, status: status("refunded"), want: false},
		{name: "status is case sensitive", policy: RequireExplicitPaid, status: status("PAID"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &domain.OrderEvent{FinancialStatus: tt.status}
			if got := ShouldProcess(tt.policy, order); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
