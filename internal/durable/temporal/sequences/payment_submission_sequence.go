package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	orderports "github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
	orderactivities "github.com/jakubzimnol/internet-shop/internal/durable/temporal/activities/orders"
)

// RunPaymentSubmissionSequence executes the activity that registers an order
// with the payment gateway. It runs at most once: a retried gateway call could
// open a second payment for the same order.
func RunPaymentSubmissionSequence(ctx workflow.Context, input orderports.SubmitPaymentInput) (*orderports.SubmitPaymentResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("payment submission sequence started", "orderId", input.OrderID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var result orderports.SubmitPaymentResult
	err := workflow.ExecuteActivity(ctx, orderactivities.SubmitForPaymentActivityName, input).Get(ctx, &result)
	if err != nil {
		logger.Error("payment submission sequence failed", "orderId", input.OrderID, "error", err)
		return nil, err
	}
	logger.Info("payment submission sequence completed", "orderId", input.OrderID)
	return &result, nil
}
