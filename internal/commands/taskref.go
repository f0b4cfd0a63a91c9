package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"livetask/internal/service"
)

// MinIDPrefix is the shortest ID prefix accepted as a task reference.
const MinIDPrefix = 4

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// TaskRef is a parsed task reference: either a 1-based position in the
// current snapshot (as printed by list) or a task ID or ID prefix.
type TaskRef struct {
	Num int    // 1-based position, 0 if ID is set
	ID  string // full ID or prefix
}

func (r TaskRef) String() string {
	if r.ID != "" {
		return r.ID
	}
	return strconv.Itoa(r.Num)
}

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
// 1. No args → error: task reference required
// 2. More than one arg → error: too many arguments
// 3. All digits → position in the list
// 4. Otherwise → ID or ID prefix (at least MinIDPrefix characters)
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("too many arguments: %s", strings.Join(args[1:], " "))
	}

	arg := strings.TrimSpace(args[0])
	if arg == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		return TaskRef{Num: num}, nil
	}
	if len(arg) < MinIDPrefix {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s (use a list number or at least %d ID characters)", arg, MinIDPrefix)
	}
	return TaskRef{ID: arg}, nil
}

// ResolveTaskRef finds the referenced task in a snapshot.
func ResolveTaskRef(tasks []service.Task, ref TaskRef) (service.Task, error) {
	if ref.ID == "" {
		if ref.Num < 1 || ref.Num > len(tasks) {
			return service.Task{}, fmt.Errorf("task number out of range: %d", ref.Num)
		}
		return tasks[ref.Num-1], nil
	}

	var matches []service.Task
	for _, t := range tasks {
		if t.ID == ref.ID {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref.ID) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return service.Task{}, fmt.Errorf("task not found: %s", ref.ID)
	case 1:
		return matches[0], nil
	default:
		return service.Task{}, fmt.Errorf("ambiguous task reference: %s", ref.ID)
	}
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
