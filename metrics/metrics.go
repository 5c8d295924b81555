// Package metrics defines the custom Prometheus metrics for the user
// directory. It is the single source of truth for metric names, labels,
// and help strings; promauto registers everything with the default
// registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "userdir"

// Auth outcomes, as emitted by the authentication state machine.
const (
	OutcomeAllowed         = "allowed"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeForbidden       = "forbidden"
	OutcomeStoreError      = "store_error"
)

// AuthRequestsTotal counts authentication decisions.
// Label:
//   - outcome: "allowed", "unauthenticated", "forbidden" or "store_error"
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_requests_total",
		Help:      "Total number of authentication decisions, labelled by outcome.",
	},
	[]string{"outcome"},
)

// UsersAutoCreatedTotal counts records provisioned on first sight of an
// identity when auto-create is enabled.
var UsersAutoCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_autocreated_total",
		Help:      "Total number of users auto-provisioned during authentication.",
	},
)

// RoleUpdatesTotal counts role mutations applied through the directory.
// Label:
//   - role: the new role value
var RoleUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_updates_total",
		Help:      "Total number of successful role updates, labelled by new role.",
	},
	[]string{"role"},
)
