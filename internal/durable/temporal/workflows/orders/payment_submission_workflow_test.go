package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
	orderports "github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
	orderactivities "github.com/jakubzimnol/internet-shop/internal/durable/temporal/activities/orders"
)

type stubService struct {
	orderports.Service
	calls  int
	result *orderports.SubmitPaymentResult
	err    error
}

func (s *stubService) SubmitForPayment(context.Context, orderports.SubmitPaymentInput) (*orderports.SubmitPaymentResult, error) {
	s.calls++
	return s.result, s.err
}

func runWorkflow(t *testing.T, svc *stubService) (*orderports.SubmitPaymentResult, error) {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := orderactivities.NewActivities(svc)
	env.RegisterActivityWithOptions(acts.SubmitForPayment, activity.RegisterOptions{Name: orderactivities.SubmitForPaymentActivityName})

	env.ExecuteWorkflow(PaymentSubmissionWorkflow, PaymentSubmissionWorkflowInput{
		Command: orderports.SubmitPaymentInput{OrderID: 42, BuyerIP: "127.0.0.1"},
	})
	require.True(t, env.IsWorkflowCompleted())
	if err := env.GetWorkflowError(); err != nil {
		return nil, err
	}
	var result orderports.SubmitPaymentResult
	require.NoError(t, env.GetWorkflowResult(&result))
	return &result, nil
}

func TestPaymentSubmissionWorkflow_Succeeds(t *testing.T) {
	svc := &stubService{result: &orderports.SubmitPaymentResult{
		Order:       &domain.Order{ID: 42, GatewayOrderID: "GW-42"},
		RedirectURI: "https://pay.example/redirect",
	}}

	result, err := runWorkflow(t, svc)
	require.NoError(t, err)
	assert.Equal(t, "GW-42", result.Order.GatewayOrderID)
	assert.Equal(t, "https://pay.example/redirect", result.RedirectURI)
	assert.Equal(t, 1, svc.calls)
}

func TestPaymentSubmissionWorkflow_DoesNotRetryGatewayFailures(t *testing.T) {
	svc := &stubService{err: &orderports.RejectedError{Reason: "ERROR_VALUE_INVALID"}}

	_, err := runWorkflow(t, svc)
	require.Error(t, err)
	assert.Equal(t, 1, svc.calls)

	decoded := orderactivities.DecodeError(err)
	assert.ErrorIs(t, decoded, orderports.ErrGatewayRejected)
	var rejected *orderports.RejectedError
	require.True(t, errors.As(decoded, &rejected))
	assert.Equal(t, "ERROR_VALUE_INVALID", rejected.Reason)
}

func TestPaymentSubmissionWorkflow_UnavailableGateway(t *testing.T) {
	svc := &stubService{err: orderports.ErrGatewayUnavailable}

	_, err := runWorkflow(t, svc)
	require.Error(t, err)
	assert.ErrorIs(t, orderactivities.DecodeError(err), orderports.ErrGatewayUnavailable)
}

func TestWorkflowID(t *testing.T) {
	assert.Equal(t, "order-payment-7", WorkflowID(7))
}
