// Package metrics defines the business Prometheus metrics of the CareConnect
// API. HTTP request metrics come from the echoprometheus middleware; the
// collectors here count domain outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "careconnect"

// SignupsTotal counts signup attempts.
// Label:
//   - result: "created", "conflict" (email taken) or "invalid"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// ServiceRequestsCreatedTotal counts newly stored service requests.
// Label:
//   - service_type: e.g. "medical", "companionship"
var ServiceRequestsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "service_requests_created_total",
		Help:      "Total number of service requests created, by service type.",
	},
	[]string{"service_type"},
)

// DecisionsTotal counts caregiver decisions.
// Labels:
//   - decision: "approve" or "reject"
//   - result: "applied" or "conflict" (request already decided)
var DecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_total",
		Help:      "Total number of caregiver decisions, by decision and result.",
	},
	[]string{"decision", "result"},
)

// PendingRequests is the size of the pending set at the last listing.
var PendingRequests = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_requests",
		Help:      "Number of pending service requests returned by the last listing.",
	},
)
