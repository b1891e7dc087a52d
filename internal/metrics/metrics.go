// Package metrics registers the application's Prometheus collectors with the
// default registry. They are exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tasktracker"

// AuthAttemptsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registered users.",
	},
)

// AuthorizationDenialsTotal counts policy denials.
// Label:
//   - action: the denied action name (e.g. "create_task")
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denials_total",
		Help:      "Total number of requests denied by the authorization policy.",
	},
	[]string{"action"},
)

// TaskTransitionsTotal counts applied status transitions.
// Label:
//   - status: the status the task moved to
var TaskTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_transitions_total",
		Help:      "Total number of task status transitions, by target status.",
	},
	[]string{"status"},
)

// TaskMutationsTotal counts admin task mutations.
// Label:
//   - op: "create", "edit" or "delete"
var TaskMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_mutations_total",
		Help:      "Total number of task create/edit/delete operations.",
	},
	[]string{"op"},
)

// RoleChangesTotal counts promotions and demotions that changed a role.
// Label:
//   - role: the new role
var RoleChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_changes_total",
		Help:      "Total number of user role changes, by new role.",
	},
	[]string{"role"},
)
