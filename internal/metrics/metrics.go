// Package metrics exposes planner and mission activity as Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Collectors groups the waypoint metrics on their own registry.
type Collectors struct {
	registry *prometheus.Registry

	plans        *prometheus.CounterVec
	planDuration prometheus.Histogram
	planLength   prometheus.Histogram
	expansions   *prometheus.CounterVec
	backtracks   *prometheus.CounterVec
	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	missions     *prometheus.CounterVec
}

// New creates and registers the collectors. withRuntime adds the Go and process
// collectors, as a standalone server would expose them.
func New(withRuntime bool) *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_plans_total",
			Help: "Total number of planning calls by result",
		}, []string{"result"}),
		planDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "waypoint_plan_duration_seconds",
			Help:    "Duration of planning calls",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		planLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "waypoint_plan_steps",
			Help:    "Number of primitive steps in found plans",
			Buckets: prometheus.LinearBuckets(0, 4, 10),
		}),
		expansions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_expansions_total",
			Help: "Total number of method decompositions by task",
		}, []string{"task"}),
		backtracks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_backtracks_total",
			Help: "Total number of abandoned decompositions by task",
		}, []string{"task"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_steps_total",
			Help: "Total number of executed plan steps by operator and result",
		}, []string{"operator", "result"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "waypoint_step_duration_seconds",
			Help: "Duration of plan step executions",
		}, []string{"operator"}),
		missions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_missions_total",
			Help: "Total number of missions by outcome",
		}, []string{"outcome"}),
	}

	c.registry.MustRegister(c.plans, c.planDuration, c.planLength, c.expansions, c.backtracks, c.steps, c.stepDuration, c.missions)
	if withRuntime {
		c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return c
}

// Registry returns the registry holding the collectors.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Hooks returns planner and runner hooks recording into the collectors.
func (c *Collectors) Hooks() domain.PlannerHooks {
	return domain.PlannerHooks{
		OnExpand: func(ctx context.Context, e *domain.ExpandEvent) {
			c.expansions.WithLabelValues(e.Task.Name).Inc()
		},
		OnBacktrack: func(ctx context.Context, e *domain.ExpandEvent) {
			c.backtracks.WithLabelValues(e.Task.Name).Inc()
		},
		OnPlan: func(ctx context.Context, e *domain.PlanEvent) {
			c.plans.WithLabelValues(planResult(e.Err)).Inc()
			c.planDuration.Observe(e.Duration.Seconds())
			if e.Err == nil {
				c.planLength.Observe(float64(len(e.Plan)))
			}
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			c.steps.WithLabelValues(e.Task.Name, result).Inc()
			c.stepDuration.WithLabelValues(e.Task.Name).Observe(e.Duration.Seconds())
		},
	}
}

// ObserveMission counts a finished mission.
func (c *Collectors) ObserveMission(m *domain.Mission) {
	c.missions.WithLabelValues(string(m.Outcome)).Inc()
}

func planResult(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, domain.ErrNoPlan):
		return "no_plan"
	}
	return "error"
}
