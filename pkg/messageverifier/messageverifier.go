// Package messageverifier verifies message pacts against the code that
// produces the messages.
//
//	v, err := messageverifier.New(nil, nil, messageverifier.Config{ProviderVersion: version}).
//		MessageProvider("OrderService").
//		HonoursPactWith("BillingUI").
//		PactURI("pacts/billing_ui-order_service.json", nil).
//		ProviderState("an order exists", produceOrderCreated, cleanOrders).
//		Build()
//	if err != nil {
//		t.Fatal(err)
//	}
//	if _, err := v.Verify(ctx, messageverifier.Filter{}); err != nil {
//		t.Fatal(err)
//	}
package messageverifier

import (
	"github.com/form3tech-oss/pact-message-verifier/internal/app/matching"
	"github.com/form3tech-oss/pact-message-verifier/internal/app/verifier"
)

// New starts a verifier that uses the default content matcher. setUp and
// tearDown, when not nil, run once around every verification run.
func New(setUp, tearDown func() error, config Config) *Builder {
	return verifier.NewBuilder(setUp, tearDown, config).WithMatcher(matching.New())
}
