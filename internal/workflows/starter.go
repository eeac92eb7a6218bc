package workflows

import (
	"context"
	"errors"
	"log/slog"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/travelcities/internal/core/domain"
)

// WorkflowExecutor is the part of client.Client needed to start workflows.
type WorkflowExecutor interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// Starter turns journey confirmations into route summary workflows.
type Starter struct {
	Client    WorkflowExecutor
	TaskQueue string
}

// HandleConfirmed starts a summary workflow for event. A confirmation that
// was already handled is not an error, so broker redeliveries are acked.
func (s *Starter) HandleConfirmed(ctx context.Context, event *domain.JourneyConfirmed) error {
	opts := client.StartWorkflowOptions{
		ID:                    WorkflowID(event),
		TaskQueue:             s.TaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,

		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}

	_, err := s.Client.ExecuteWorkflow(ctx, opts, RouteSummaryWorkflow, RouteSummaryInput{
		SessionID: event.SessionID,
		Cities:    event.Cities,
	})
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		slog.InfoContext(ctx, "route summary already started", "workflow_id", opts.ID)
		return nil
	}
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "route summary started", "workflow_id", opts.ID, "stops", len(event.Cities))
	return nil
}
