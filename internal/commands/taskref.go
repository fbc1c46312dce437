package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"quadtask/internal/service"
)

// ErrTaskIDRequired indicates no task id was provided.
var ErrTaskIDRequired = errors.New("task id required")

// ParseTaskID parses a task id from args.
// Accepted forms are "12" and "#12"; leading zeros are dropped. Extra args are rejected.
func ParseTaskID(args []string) (service.TaskID, error) {
	if len(args) == 0 {
		return "", ErrTaskIDRequired
	}
	if len(args) > 1 {
		return "", fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := strings.TrimPrefix(strings.TrimSpace(args[0]), "#")
	if !isAllDigits(ref) {
		return "", fmt.Errorf("invalid task id: %s", args[0])
	}
	n, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid task id: %s", args[0])
	}
	return service.TaskID(strconv.FormatInt(n, 10)), nil
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
