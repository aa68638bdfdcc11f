package delivery

import "github.com/joao-fontenele/download-delivery/internal/domain"

// PaymentPolicy decides how an order without a financial_status is treated.
type PaymentPolicy int

const (
	// AcceptMissingStatus is used for the orders/paid topic, whose delivery
	// already implies a captured payment.
	AcceptMissingStatus PaymentPolicy = iota
	// RequireExplicitPaid is used for orders/create, which fires before
	// payment for many gateways.
	RequireExplicitPaid
)

func (p PaymentPolicy) String() string {
	switch p {
	case AcceptMissingStatus:
		return "accept-missing-status"
	case RequireExplicitPaid:
		return "require-explicit-paid"
	default:
		return "unknown"
	}
}

// ShouldProcess reports whether the order represents a completed payment.
//
//	status          AcceptMissingStatus  RequireExplicitPaid
//	absent or ""    proceed              reject
//	"paid"          proceed              proceed
//	other           reject               reject
func ShouldProcess(policy PaymentPolicy, order *domain.OrderEvent) bool {
	if !order.HasStatus() {
		return policy == AcceptMissingStatus
	}
	return order.Status() == domain.FinancialStatusPaid
}
