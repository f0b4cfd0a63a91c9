// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"livetask/internal/service"
)

const (
	// ListSeparator is the separator line for snapshot headers.
	ListSeparator = "------------"

	// ShortIDLen is how many ID characters are shown.
	ShortIDLen = 8
)

// FormatTask formats one task line, plus an indented description line
// when the description is not empty.
// Format: "{N:>4}  [x] {TITLE}  ({PRIORITY}, {SHORTID})\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	check := " "
	if task.Completed {
		check = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s  (%s, %s)\n", num, check, normalizeTitle(task.Title), task.Priority.OrDefault(), ShortID(task.ID))
	if desc := normalizeDescription(task.Description); desc != "" {
		fmt.Fprintf(w, "          %s\n", desc)
	}
}

// FormatSnapshotHeader formats the header printed before each live snapshot.
func FormatSnapshotHeader(w io.Writer, at time.Time, shown, total int) {
	fmt.Fprintln(w, ListSeparator)
	if shown == total {
		fmt.Fprintf(w, "%s  %d %s\n", at.Format("15:04:05"), total, plural(total, "task", "tasks"))
	} else {
		fmt.Fprintf(w, "%s  %d of %d tasks\n", at.Format("15:04:05"), shown, total)
	}
	fmt.Fprintln(w, ListSeparator)
}

// FormatEmpty prints the message for an empty or fully filtered list.
func FormatEmpty(w io.Writer, search string) {
	if strings.TrimSpace(search) != "" {
		fmt.Fprintf(w, "no tasks match %q\n", search)
		return
	}
	fmt.Fprintln(w, "no tasks found")
}

// ShortID returns the displayed prefix of a task ID.
func ShortID(id string) string {
	if len(id) <= ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = flatten(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeDescription flattens a description to one line; blank
// descriptions are omitted.
func normalizeDescription(desc string) string {
	return strings.TrimSpace(flatten(desc))
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
