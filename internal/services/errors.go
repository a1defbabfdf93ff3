package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers classifying failures across the submission and
// reconciliation pipelines. Wrap tags errors with one of these so callers can
// route on classification without string matching.
var (
	// ErrAlreadyProcessed and ErrAlreadyPending are informational skips, not
	// failures: the episode is already resolved or in flight.
	ErrAlreadyProcessed = errors.New("episode already processed")
	ErrAlreadyPending   = errors.New("episode already pending")

	// ErrSubmit marks a rejected or unreachable job creation call. No local
	// state is written for these.
	ErrSubmit = errors.New("submit error")

	// ErrTransient marks a network or parse failure while polling. Pending
	// state is preserved untouched and retried on the next pass.
	ErrTransient = errors.New("transient failure")

	// ErrTerminal marks an explicit remote job failure (or an empty result),
	// recorded permanently as a failed outcome.
	ErrTerminal = errors.New("terminal failure")

	// ErrOutput marks artifact persistence failures after a successful result
	// fetch. The pending entry and remote job are kept so results are not lost.
	ErrOutput = errors.New("output error")

	// ErrStore marks persistence-layer faults. Always fatal to the enclosing
	// operation, never silently absorbed.
	ErrStore = errors.New("store error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsSkip reports whether an error represents an informational duplicate skip
// rather than a failure.
func IsSkip(err error) bool {
	return errors.Is(err, ErrAlreadyProcessed) || errors.Is(err, ErrAlreadyPending)
}

// IsTransient reports whether an error should leave pending state untouched
// for retry on a later pass.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrOutput)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
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
