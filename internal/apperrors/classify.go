package apperrors

import (
	"context"
	"errors"
)

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// UserError is the user-facing rendering of an error.
type UserError struct {
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Actions   []string `json:"actions"`
	Retryable bool     `json:"retryable"`
}

const genericMessage = "Something went wrong. Please try again."

// Classify maps err to a severity, a fixed message and suggested actions.
func Classify(err error) UserError {
	var (
		ve  *ValidationError
		ves ValidationErrors
		ne  *NetworkError
		pe  *PersistenceError
		fe  *FrameworkError
	)
	switch {
	case err == nil:
		return UserError{Severity: SeverityLow}
	case errors.As(err, &ve):
		actions := []string{"Check the highlighted field and try again"}
		actions = append(actions, ve.Suggestions...)
		return UserError{Severity: SeverityLow, Message: "Some information is missing or invalid.", Actions: actions}
	case errors.As(err, &ves):
		return UserError{Severity: SeverityLow, Message: "Some information is missing or invalid.",
			Actions: []string{"Check the highlighted fields and try again"}}
	case errors.Is(err, ErrNotFound):
		return UserError{Severity: SeverityLow, Message: "The requested item could not be found.",
			Actions: []string{"Refresh the page", "Return to your projects"}}
	case errors.Is(err, ErrForbidden):
		return UserError{Severity: SeverityMedium, Message: "You do not have access to this item.",
			Actions: []string{"Sign in with a different account"}}
	case errors.As(err, &ne):
		return UserError{Severity: SeverityMedium, Message: "We could not reach the server.",
			Actions: []string{"Check your internet connection", "Try again in a moment"}, Retryable: ne.ShouldRetry()}
	case errors.As(err, &pe):
		return UserError{Severity: SeverityHigh, Message: "Your changes could not be saved.",
			Actions: []string{"Try again", "Export your data as a backup"}, Retryable: pe.Retryable}
	case errors.As(err, &fe):
		sev := SeverityHigh
		if fe.Recoverable {
			sev = SeverityMedium
		}
		return UserError{Severity: sev, Message: "This planning tool ran into a problem.",
			Actions: []string{"Reload the framework", "Contact support if the problem persists"}, Retryable: fe.Recoverable}
	case errors.Is(err, context.DeadlineExceeded):
		return UserError{Severity: SeverityMedium, Message: "The request took too long.",
			Actions: []string{"Try again"}, Retryable: true}
	default:
		return UserError{Severity: SeverityMedium, Message: genericMessage,
			Actions: []string{"Try again"}, Retryable: true}
	}
}
