package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/travelcities/internal/core/domain"
)

// RouteSummaryInput is the input for the route summary workflow.
type RouteSummaryInput struct {
	SessionID string
	Cities    []domain.JourneyCity
}

// RouteSummaryWorkflow summarizes a confirmed journey and publishes the result.
func RouteSummaryWorkflow(ctx workflow.Context, input RouteSummaryInput) (domain.RouteSummary, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting route summary workflow", "session", input.SessionID, "stops", len(input.Cities))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var summary domain.RouteSummary
	if err := workflow.ExecuteActivity(ctx, "SummarizeRoute", input).Get(ctx, &summary); err != nil {
		return summary, err
	}

	if err := workflow.ExecuteActivity(ctx, "PublishSummary", summary).Get(ctx, nil); err != nil {
		logger.Warn("publishing route summary failed", "error", err)
		return summary, err
	}

	logger.Info("Route summary published", "session", input.SessionID, "totalKm", summary.TotalKm)
	return summary, nil
}

// WorkflowID derives a stable id so redelivered confirmations do not start duplicates.
func WorkflowID(event *domain.JourneyConfirmed) string {
	return "route-summary-" + event.SessionID + "-" + event.ConfirmedAt.UTC().Format(time.RFC3339Nano)
}
