// Package payment is the boundary to the payment collaborator. The engine
// hands over a finalized fee total and treats the result as opaque; it never
// talks to a payment network directly.
package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	id "paylane/pkg/domain"
)

// Receipt is the opaque result of a charge attempt.
type Receipt struct {
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
}

// Charger charges a client's payment instrument for a confirmed commitment
// or payroll run.
type Charger interface {
	Charge(ctx context.Context, clientID id.ClientID, amount decimal.Decimal) (Receipt, error)
}

// StubCharger accepts every charge and fabricates a reference. The real
// implementation belongs to the host application's payment collaborator.
type StubCharger struct{}

func NewStubCharger() *StubCharger {
	return &StubCharger{}
}

func (StubCharger) Charge(_ context.Context, _ id.ClientID, amount decimal.Decimal) (Receipt, error) {
	return Receipt{
		Reference: "stub-" + uuid.NewString(),
		Amount:    amount,
	}, nil
}
