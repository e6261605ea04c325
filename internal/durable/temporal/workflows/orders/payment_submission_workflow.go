package orders

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	orderports "github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
	"github.com/jakubzimnol/internet-shop/internal/durable/temporal/sequences"
)

const (
	// PaymentSubmissionWorkflowName is the public identifier for registering the workflow.
	PaymentSubmissionWorkflowName = "orders.workflows.PaymentSubmission"
	// PaymentSubmissionTaskQueue is the queue consumed by the worker processing payment workflows.
	PaymentSubmissionTaskQueue = "ORDER_PAYMENTS"
)

// PaymentSubmissionWorkflowInput captures the submission request plus the
// trace of the HTTP request that started it.
type PaymentSubmissionWorkflowInput struct {
	Command orderports.SubmitPaymentInput
	TraceID string
}

// WorkflowID is one per order so concurrent submissions attach to one run.
func WorkflowID(orderID int64) string {
	return fmt.Sprintf("order-payment-%d", orderID)
}

// PaymentSubmissionWorkflow submits an order to the payment gateway.
func PaymentSubmissionWorkflow(ctx workflow.Context, input PaymentSubmissionWorkflowInput) (*orderports.SubmitPaymentResult, error) {
	logger := workflow.GetLogger(ctx)
	orderID := input.Command.OrderID
	logger.Info("PaymentSubmissionWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)
	result, err := sequences.RunPaymentSubmissionSequence(ctx, input.Command)
	if err != nil {
		logger.Error("PaymentSubmissionWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return nil, err
	}
	logger.Info("PaymentSubmissionWorkflow completed", withTraceID(input.TraceID, "orderId", orderID)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
