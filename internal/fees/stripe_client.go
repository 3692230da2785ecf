package fees

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/refund"

	pkgstripe "github.com/quayside/quayside-backend/pkg/stripe"
)

// RefundClient exposes the subset of Stripe operations required by the fee
// reconciler.
type RefundClient interface {
	Refund(ctx context.Context, params *stripe.RefundParams) (*stripe.Refund, error)
}

type stripeRefundWrapper struct{}

// NewRefundClient wraps the provided Stripe client so the reconciler can be tested.
func NewRefundClient(api *pkgstripe.Client) RefundClient {
	if api == nil {
		return nil
	}
	return &stripeRefundWrapper{}
}

func (w *stripeRefundWrapper) Refund(ctx context.Context, params *stripe.RefundParams) (*stripe.Refund, error) {
	if params != nil {
		params.Context = ctx
	}
	return refund.New(params)
}
