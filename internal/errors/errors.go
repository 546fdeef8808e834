package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/sleepr/internal/logger"
)

var (
	// ErrDayClosed is returned when a change is attempted on a day that was already completed.
	ErrDayClosed = errors.New("today is already completed")
	// ErrMandatoryIncomplete is returned by day completion while a mandatory habit is unchecked.
	ErrMandatoryIncomplete = errors.New("all mandatory habits must be checked to complete the day")
	// ErrPermissionDenied is returned when the notification facility refuses scheduling.
	ErrPermissionDenied = errors.New("notification permission denied")
	// ErrInvalidDate is returned for dates that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date (expected YYYY-MM-DD)")
	// ErrUnknownHabit is returned when a habit key is not part of today's checklist.
	ErrUnknownHabit = errors.New("unknown habit")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
