// Package metrics defines the domain Prometheus metrics of the parental API.
// They register with the default registry on import; HTTP request metrics are
// added separately by the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "parental"

// Label values for LoginAttemptsTotal.
const (
	ResultSuccess   = "success"
	ResultInvalid   = "invalid"
	ResultThrottled = "throttled"
	ResultError     = "error"
)

// LoginAttemptsTotal counts password checks.
// Labels:
//   - flow: "token" for /token, "logout" for the parental logout check
//   - result: success, invalid, throttled or error
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of credential checks, by flow and result.",
	},
	[]string{"flow", "result"},
)

var ParentsRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parents_registered_total",
		Help:      "Total number of parent accounts registered.",
	},
)

var ChildrenCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "children_created_total",
		Help:      "Total number of child accounts created.",
	},
)

var ChildrenDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "children_deleted_total",
		Help:      "Total number of child accounts deleted.",
	},
)

var SearchesLoggedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_logged_total",
		Help:      "Total number of blocked searches recorded.",
	},
)

// SearchesClearedTotal counts individual search records removed by a clear.
var SearchesClearedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_cleared_total",
		Help:      "Total number of blocked search records removed by clear requests.",
	},
)
