package drinks

import (
	"errors"
	"fmt"
)

var (
	// ErrDrinkNotFound is returned when no drink exists for the given id.
	ErrDrinkNotFound = errors.New("drink not found")
	// ErrUserNotFound is returned when no user exists for the given id.
	ErrUserNotFound = errors.New("user not found")
)

// A PartialCommitError reports a submission where one half became durable
// and a later write failed. It is surfaced as its own kind so the caller can
// decide whether to retry only the failed half.
type PartialCommitError struct {
	Committed string
	Failed    string
	Err       error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("partial commit: %s committed, %s failed: %v", e.Committed, e.Failed, e.Err)
}

func (e *PartialCommitError) Unwrap() error {
	return e.Err
}
