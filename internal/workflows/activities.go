package workflows

import (
	"context"
	"fmt"
	"math"

	"go.temporal.io/sdk/activity"

	"github.com/samirrijal/travelcities/internal/core/domain"
	"github.com/samirrijal/travelcities/internal/core/ports"
	"github.com/samirrijal/travelcities/internal/pkg/geospatial"
	"github.com/samirrijal/travelcities/internal/pkg/metrics"
)

// RouteActivities holds the activity implementations for the route summary workflow.
type RouteActivities struct {
	Publisher ports.EventPublisher
}

// SummarizeRoute computes the great-circle legs between consecutive stops.
func (a *RouteActivities) SummarizeRoute(ctx context.Context, input RouteSummaryInput) (domain.RouteSummary, error) {
	summary := Summarize(input.SessionID, input.Cities)
	activity.GetLogger(ctx).Info("route summarized",
		"session", input.SessionID, "stops", len(summary.Stops), "totalKm", summary.TotalKm)
	return summary, nil
}

// PublishSummary announces a computed summary on the message bus.
func (a *RouteActivities) PublishSummary(ctx context.Context, summary domain.RouteSummary) error {
	if a.Publisher == nil {
		activity.GetLogger(ctx).Warn("no publisher configured, dropping summary", "session", summary.SessionID)
		return nil
	}
	if err := a.Publisher.PublishRouteSummary(ctx, &summary); err != nil {
		metrics.RouteSummaries.WithLabelValues("publish_error").Inc()
		return fmt.Errorf("publish summary for %s: %w", summary.SessionID, err)
	}
	metrics.RouteSummaries.WithLabelValues("ok").Inc()
	return nil
}

// Summarize builds a RouteSummary in journey order. Distances are rounded to 0.1 km.
func Summarize(sessionID string, cities []domain.JourneyCity) domain.RouteSummary {
	summary := domain.RouteSummary{
		SessionID: sessionID,
		Stops:     make([]string, 0, len(cities)),
		Legs:      []domain.RouteLeg{},
	}
	for i, c := range cities {
		summary.Stops = append(summary.Stops, c.City)
		if i == 0 {
			continue
		}
		prev := cities[i-1]
		km := geospatial.HaversineKm(prev.Latitude, prev.Longitude, c.Latitude, c.Longitude)
		summary.Legs = append(summary.Legs, domain.RouteLeg{From: prev.City, To: c.City, DistanceKm: round1(km)})
		summary.TotalKm += km
	}
	summary.TotalKm = round1(summary.TotalKm)
	return summary
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
