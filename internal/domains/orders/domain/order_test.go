package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder(Buyer{ID: 7, Email: "buyer@example.com", Name: "buyer"}, "gift", []Line{
		{ItemID: 1, ItemName: "Mouse", UnitPrice: 15000, Quantity: 1},
		{ItemID: 2, ItemName: "Pad", UnitPrice: 6000, Quantity: 1},
	})
	require.NoError(t, err)
	return order
}

func TestNewOrder_StartsNew(t *testing.T) {
	order := newTestOrder(t)
	assert.Equal(t, PaymentNew, order.PaymentStatus)
	assert.Equal(t, FulfillmentNew, order.Status)
	assert.False(t, order.HasGatewayOrderID())
}

func TestNewOrder_TotalOverflow(t *testing.T) {
	buyer := Buyer{ID: 1}
	_, err := NewOrder(buyer, "", []Line{{ItemID: 1, UnitPrice: math.MaxInt64/2 + 1, Quantity: 2}})
	require.ErrorIs(t, err, ErrTotalOverflow)

	_, err = NewOrder(buyer, "", []Line{
		{ItemID: 1, UnitPrice: math.MaxInt64 - 10, Quantity: 1},
		{ItemID: 2, UnitPrice: 11, Quantity: 1},
	})
	require.ErrorIs(t, err, ErrTotalOverflow)

	order, err := NewOrder(buyer, "", []Line{
		{ItemID: 1, UnitPrice: math.MaxInt64 - 10, Quantity: 1},
		{ItemID: 2, UnitPrice: 10, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), order.Total())
}

func TestNewOrder_Validation(t *testing.T) {
	buyer := Buyer{ID: 1}
	_, err := NewOrder(Buyer{}, "", []Line{{ItemID: 1, Quantity: 1}})
	require.ErrorIs(t, err, ErrInvalidBuyer)

	_, err = NewOrder(buyer, "", nil)
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = NewOrder(buyer, "", []Line{{ItemID: 0, Quantity: 1}})
	require.ErrorIs(t, err, ErrInvalidItemID)

	_, err = NewOrder(buyer, "", []Line{{ItemID: 1, Quantity: 0}})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewOrder(buyer, "", []Line{{ItemID: 1, Quantity: 1, UnitPrice: -1}})
	require.ErrorIs(t, err, ErrInvalidPrice)
}

func TestTotal_MultipliesQuantity(t *testing.T) {
	order := newTestOrder(t)
	assert.Equal(t, int64(21000), order.Total())

	order.Lines[1].Quantity = 3
	assert.Equal(t, int64(33000), order.Total())
}

func TestParsePaymentStatus(t *testing.T) {
	status, err := ParsePaymentStatus("COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, status)

	_, err = ParsePaymentStatus("completed")
	require.ErrorIs(t, err, ErrUnrecognizedStatus)

	_, err = ParsePaymentStatus("WAITING_FOR_CONFIRMATION")
	require.ErrorIs(t, err, ErrUnrecognizedStatus)
}

func TestPlanPayment(t *testing.T) {
	cases := []struct {
		name    string
		status  PaymentStatus
		apply   bool
		release bool
		final   FulfillmentStatus
	}{
		{name: "pending keeps new", status: PaymentPending, apply: true, final: FulfillmentNew},
		{name: "completed pays", status: PaymentCompleted, apply: true, final: FulfillmentPaid},
		{name: "rejected cancels", status: PaymentRejected, apply: true, release: true, final: FulfillmentCanceled},
		{name: "canceled cancels", status: PaymentCanceled, apply: true, release: true, final: FulfillmentCanceled},
		{name: "new is ignored", status: PaymentNew, final: FulfillmentNew},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := newTestOrder(t)
			plan := order.PlanPayment(tc.status)
			assert.Equal(t, tc.apply, plan.Apply)
			assert.Equal(t, tc.release, plan.Release)
			if plan.Apply {
				require.NoError(t, order.ApplyPayment(tc.status))
			}
			assert.Equal(t, tc.final, order.Status)
		})
	}
}

func TestPlanPayment_TerminalIsSticky(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.ApplyPayment(PaymentCompleted))

	plan := order.PlanPayment(PaymentCanceled)
	assert.False(t, plan.Apply)
	assert.False(t, plan.Release)

	canceled := newTestOrder(t)
	require.NoError(t, canceled.ApplyPayment(PaymentRejected))
	assert.False(t, canceled.PlanPayment(PaymentRejected).Apply)
	assert.False(t, canceled.PlanPayment(PaymentCompleted).Apply)
}

func TestPlanPayment_PendingThenCompleted(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.ApplyPayment(PaymentPending))
	assert.False(t, order.PlanPayment(PaymentPending).Apply)
	assert.True(t, order.PlanPayment(PaymentCompleted).Apply)
}

func TestAssignGatewayOrderID(t *testing.T) {
	order := newTestOrder(t)

	changed, err := order.AssignGatewayOrderID("WZHF5FFDRJ140731GUEST000P01")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = order.AssignGatewayOrderID("WZHF5FFDRJ140731GUEST000P01")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = order.AssignGatewayOrderID("OTHER")
	require.ErrorIs(t, err, ErrGatewayOrderIDConflict)

	_, err = newTestOrder(t).AssignGatewayOrderID("  ")
	require.ErrorIs(t, err, ErrEmptyGatewayOrderID)
}

func TestAdvance(t *testing.T) {
	order := newTestOrder(t)
	require.ErrorIs(t, order.Advance(FulfillmentSend), ErrInvalidTransition)

	require.NoError(t, order.ApplyPayment(PaymentCompleted))
	require.ErrorIs(t, order.Advance(FulfillmentFinished), ErrInvalidTransition)
	require.NoError(t, order.Advance(FulfillmentSend))
	require.NoError(t, order.Advance(FulfillmentFinished))
	assert.Equal(t, FulfillmentFinished, order.Status)
}

func TestClone_IsDeep(t *testing.T) {
	order := newTestOrder(t)
	cp := order.Clone()
	cp.Lines[0].Quantity = 9
	assert.Equal(t, int32(1), order.Lines[0].Quantity)
}
