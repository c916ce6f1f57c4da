package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine-level metrics. HTTP request metrics live in the middleware
// package; these count domain events.
var (
	contentGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_content_generated_total",
		Help: "Content items generated, by outcome (auto_approved, pending_review, fallback).",
	}, []string{"outcome"})

	reviewActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_review_actions_total",
		Help: "Reviewer actions applied, by action and result.",
	}, []string{"action", "result"})

	versionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_version_transitions_total",
		Help: "Version transitions, by change type.",
	}, []string{"change_type"})

	versionConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_version_conflicts_total",
		Help: "Version writes rejected by the optimistic concurrency guard.",
	})

	deliveryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_delivery_requests_total",
		Help: "Cached content requests, by result (hit is a 304, miss a full body).",
	}, []string{"result"})

	ruleEvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_rule_evaluations_total",
		Help: "Approval rule set evaluations, by outcome (matched, fallback, none).",
	}, []string{"outcome"})

	scoreHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engine_content_score",
		Help:    "Distribution of content sub-scores at generation time.",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	}, []string{"dimension"})
)
