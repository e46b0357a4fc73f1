package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind names the sentinel classification of a wrapped error for logging.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "transient"
	}
}

// Details describes a wrapped stage error with the marker prefix stripped.
type ErrorDetails struct {
	Kind    string
	Message string
}

// Details extracts the human-readable portion of a stage error.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{Kind: Kind(err), Message: err.Error()}
	for _, marker := range []error{ErrExternalTool, ErrValidation, ErrConfiguration, ErrNotFound, ErrTimeout, ErrTransient} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(details.Message, prefix) {
			details.Message = strings.TrimPrefix(details.Message, prefix)
			break
		}
	}
	return details
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
