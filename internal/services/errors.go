package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Domain errors are deterministic and must not be retried. ErrStore marks a
// persistence failure that a client may retry with backoff.
var (
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrStore                 = errors.New("store unavailable")
)

const defaultStoreTimeout = 5 * time.Second

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func isDomain(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNotAuthorized) || errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInsufficientInventory) || errors.Is(err, ErrStore)
}

// classify passes domain errors through and wraps anything else as ErrStore.
func classify(err error) error {
	if err == nil || isDomain(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStore, err)
}

// lookup classifies the error of a single-row read of what.
func lookup(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return classify(err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}
