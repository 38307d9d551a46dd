package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/waypoint/pkg/domain"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "WAYPOINT_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput cleans task input coming from users (CLI, HTTP, MCP) by enforcing size
// limits, validating UTF-8, and stripping control characters other than whitespace.
func SanitizeInput(input string) (string, error) {
	limit := getMaxInputSize()
	if len(input) > limit {
		// Reject rather than truncate: a truncated task list is a different mission.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !isSafeControl(r) {
			return -1
		}
		return r
	}, input), nil
}

// ParseInput sanitizes input and parses it as a task list, one task per line or
// separated by ';'.
func ParseInput(input string) ([]domain.Task, error) {
	clean, err := SanitizeInput(input)
	if err != nil {
		return nil, err
	}
	literals := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '\n' || r == ';'
	})
	var tasks []string
	for _, l := range literals {
		if strings.TrimSpace(l) != "" {
			tasks = append(tasks, l)
		}
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: no tasks", domain.ErrInvalidTask)
	}
	return domain.ParseTasks(tasks)
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func getMaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
