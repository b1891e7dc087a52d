package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"tasktracker/internal/models"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

type taskComparator func(a, b *models.Task) int

func foldCompare(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// taskSortKeys is the allow-list of sortable fields.
var taskSortKeys = map[string]taskComparator{
	"id":          func(a, b *models.Task) int { return cmp.Compare(a.ID, b.ID) },
	"user_id":     func(a, b *models.Task) int { return cmp.Compare(a.UserID, b.UserID) },
	"title":       func(a, b *models.Task) int { return foldCompare(a.Title, b.Title) },
	"description": func(a, b *models.Task) int { return foldCompare(a.Description, b.Description) },
	"priority":    func(a, b *models.Task) int { return cmp.Compare(a.Priority.Rank(), b.Priority.Rank()) },
	"status":      func(a, b *models.Task) int { return cmp.Compare(a.Status.Rank(), b.Status.Rank()) },
	"deadline":    func(a, b *models.Task) int { return a.Deadline.Compare(b.Deadline) },
}

func IsSortKey(key string) bool {
	_, ok := taskSortKeys[key]
	return ok
}

// SortKeys lists the accepted sort keys in a stable order.
func SortKeys() []string {
	keys := make([]string, 0, len(taskSortKeys))
	for k := range taskSortKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SortTasks sorts in place. Only "asc" (or empty) ascends; any other order descends.
// Ties break on id, so descending is the exact reverse of ascending.
func SortTasks(tasks []models.Task, key, order string) error {
	compare, ok := taskSortKeys[key]
	if !ok {
		return fmt.Errorf("%q: %w", key, models.ErrInvalidSortKey)
	}
	desc := order != "" && order != SortAsc

	slices.SortFunc(tasks, func(a, b models.Task) int {
		c := compare(&a, &b)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if desc {
			return -c
		}
		return c
	})
	return nil
}
