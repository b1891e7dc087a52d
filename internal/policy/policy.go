// Package policy decides whether a principal may perform an action. Every mutating
// operation asks here first instead of comparing roles inline.
package policy

import (
	"fmt"

	"tasktracker/internal/models"
)

type Action int

const (
	ActionRegister Action = iota + 1
	ActionLogin
	ActionEndSession
	ActionViewDashboard
	ActionViewTasks
	ActionTransitionTask
	ActionCreateTask
	ActionEditTask
	ActionDeleteTask
	ActionPromoteUser
	ActionDemoteUser
	ActionResetOwnTask
	// ActionResetUngated backs the legacy /mark_todo route, which never checked the
	// caller. It stays open, unlike ActionResetOwnTask.
	ActionResetUngated
)

var actionNames = map[Action]string{
	ActionRegister:       "register",
	ActionLogin:          "login",
	ActionEndSession:     "end_session",
	ActionViewDashboard:  "view_dashboard",
	ActionViewTasks:      "view_tasks",
	ActionTransitionTask: "transition_task",
	ActionCreateTask:     "create_task",
	ActionEditTask:       "edit_task",
	ActionDeleteTask:     "delete_task",
	ActionPromoteUser:    "promote_user",
	ActionDemoteUser:     "demote_user",
	ActionResetOwnTask:   "reset_own_task",
	ActionResetUngated:   "reset_ungated",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Decision is the tagged allow/deny result.
type Decision struct {
	Action  Action
	Allowed bool
	Reason  string
}

// Err returns nil when allowed and an error wrapping models.ErrForbidden otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", d.Action, d.Reason, models.ErrForbidden)
}

func allow(a Action) Decision {
	return Decision{Action: a, Allowed: true}
}

func deny(a Action, reason string) Decision {
	return Decision{Action: a, Allowed: false, Reason: reason}
}

// IsAllowed is deterministic and side-effect free.
func IsAllowed(p models.Principal, a Action) Decision {
	switch a {
	case ActionResetUngated:
		return allow(a)
	case ActionRegister, ActionLogin:
		if p.IsAuthenticated() {
			return deny(a, "already authenticated")
		}
		return allow(a)
	}

	if !p.IsAuthenticated() {
		return deny(a, "authentication required")
	}

	switch a {
	case ActionEndSession, ActionViewDashboard, ActionViewTasks, ActionTransitionTask, ActionResetOwnTask:
		return allow(a)
	case ActionCreateTask, ActionEditTask, ActionDeleteTask, ActionPromoteUser, ActionDemoteUser:
		if p.Role != models.RoleAdmin {
			return deny(a, "admin role required")
		}
		return allow(a)
	default:
		return deny(a, "unknown action")
	}
}

// IsAllowedOn extends IsAllowed with the owner of the targeted record, for actions
// scoped to the caller's own tasks.
func IsAllowedOn(p models.Principal, a Action, ownerID int) Decision {
	d := IsAllowed(p, a)
	if !d.Allowed {
		return d
	}
	if a == ActionResetOwnTask && ownerID != p.UserID {
		return deny(a, "not the task owner")
	}
	return d
}

// DemoteApplies reports whether demoting target changes anything. Demoting a
// non-admin is a silent no-op.
func DemoteApplies(target *models.User) bool {
	return target != nil && target.Role == models.RoleAdmin
}
