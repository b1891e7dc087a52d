package service

import (
	"tasktracker/internal/metrics"
	"tasktracker/internal/models"
	"tasktracker/internal/policy"
)

func authorize(p models.Principal, a policy.Action) error {
	return record(policy.IsAllowed(p, a))
}

func authorizeOn(p models.Principal, a policy.Action, ownerID int) error {
	return record(policy.IsAllowedOn(p, a, ownerID))
}

func record(d policy.Decision) error {
	if !d.Allowed {
		metrics.AuthorizationDenialsTotal.WithLabelValues(d.Action.String()).Inc()
	}
	return d.Err()
}
