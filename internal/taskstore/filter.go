package taskstore

import (
	"strings"

	"livetask/internal/service"
)

// Filter returns the tasks whose title contains query, ignoring case.
// An empty query returns tasks unchanged. Order is preserved.
func Filter(tasks []service.Task, query string) []service.Task {
	if strings.TrimSpace(query) == "" {
		return tasks
	}
	var out []service.Task
	for _, t := range tasks {
		if Matches(t, query) {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether task passes the search query.
func Matches(task service.Task, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	return query == "" || strings.Contains(strings.ToLower(task.Title), query)
}
