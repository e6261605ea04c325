package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
	orderactivities "github.com/jakubzimnol/internet-shop/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/jakubzimnol/internet-shop/internal/durable/temporal/workflows/orders"
)

var (
	_ ports.PaymentOrchestrator = (*TemporalPaymentWorkflows)(nil)
	_ ports.PaymentOrchestrator = (*InlinePaymentWorkflows)(nil)
)

// TemporalPaymentWorkflows starts payment submissions on a Temporal cluster.
type TemporalPaymentWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalPaymentWorkflows wires a Temporal client into the orchestrator.
func NewTemporalPaymentWorkflows(c client.Client) *TemporalPaymentWorkflows {
	return &TemporalPaymentWorkflows{client: c, taskQueue: orderworkflows.PaymentSubmissionTaskQueue}
}

// SubmitForPayment runs the submission workflow and waits for its result.
// The workflow id is derived from the order, so a concurrent submission for
// the same order attaches to the running execution. A failed run may be
// started again; a completed one may not.
func (o *TemporalPaymentWorkflows) SubmitForPayment(ctx context.Context, input ports.SubmitPaymentInput) (*ports.SubmitPaymentResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal payment workflows not configured")
	}
	workflowID := orderworkflows.WorkflowID(input.OrderID)
	options := client.StartWorkflowOptions{
		ID:                    workflowID,
		TaskQueue:             o.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.PaymentSubmissionWorkflowName,
		orderworkflows.PaymentSubmissionWorkflowInput{Command: input, TraceID: workflowTraceComponent(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result ports.SubmitPaymentResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, orderactivities.DecodeError(err)
	}
	return &result, nil
}

// InlinePaymentWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlinePaymentWorkflows struct {
	service ports.Service
}

// NewInlinePaymentWorkflows wraps the order service for synchronous execution.
func NewInlinePaymentWorkflows(service ports.Service) *InlinePaymentWorkflows {
	return &InlinePaymentWorkflows{service: service}
}

func (o *InlinePaymentWorkflows) SubmitForPayment(ctx context.Context, input ports.SubmitPaymentInput) (*ports.SubmitPaymentResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline payment workflows not configured")
	}
	return o.service.SubmitForPayment(ctx, input)
}

func workflowTraceComponent(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() && spanCtx.TraceID().IsValid() {
		return spanCtx.TraceID().String()
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
