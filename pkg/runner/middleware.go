package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// StepInterceptor is a middleware consulted before each plan step.
// It returns true if execution should proceed, or false to block it.
type StepInterceptor func(ctx context.Context, index int, task domain.Task) (bool, error)

// MultiInterceptor chains multiple interceptors.
func MultiInterceptor(interceptors ...StepInterceptor) StepInterceptor {
	return func(ctx context.Context, index int, task domain.Task) (bool, error) {
		for _, interceptor := range interceptors {
			allowed, err := interceptor(ctx, index, task)
			if err != nil {
				return false, err // System Error
			}
			if !allowed {
				return false, nil // Blocked by policy
			}
		}
		return true, nil
	}
}

// ConfirmationMiddleware asks on out before every step and reads the answer from in.
// Only "y" or "yes" lets the step run.
func ConfirmationMiddleware(in io.Reader, out io.Writer) StepInterceptor {
	reader := bufio.NewReader(in)
	return func(ctx context.Context, index int, task domain.Task) (bool, error) {
		if _, err := fmt.Fprintf(out, "Step %d: %s\nExecute? [y/N] ", index, task); err != nil {
			return false, err
		}

		type answer struct {
			line string
			err  error
		}
		ch := make(chan answer, 1)
		go func() {
			line, err := reader.ReadString('\n')
			ch <- answer{line, err}
		}()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case a := <-ch:
			if a.err != nil && a.err != io.EOF {
				return false, a.err
			}
			input := strings.TrimSpace(strings.ToLower(a.line))
			return input == "y" || input == "yes", nil
		}
	}
}

// AutoApproveMiddleware allows everything.
func AutoApproveMiddleware() StepInterceptor {
	return func(ctx context.Context, index int, task domain.Task) (bool, error) {
		return true, nil
	}
}

// DenyOperators blocks the listed operators, e.g. to forbid touching doors.
func DenyOperators(names ...string) StepInterceptor {
	denied := make(map[string]bool, len(names))
	for _, n := range names {
		denied[n] = true
	}
	return func(ctx context.Context, index int, task domain.Task) (bool, error) {
		return !denied[task.Name], nil
	}
}
