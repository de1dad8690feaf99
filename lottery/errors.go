package lottery

import (
	"errors"
	"fmt"
)

var (
	// ErrDrawComplete is returned by a draw on a full session. The session is
	// left untouched; callers show it as information, not as a failure.
	ErrDrawComplete = errors.New("lottery: all numbers have been drawn")

	ErrUnsupportedVersion = errors.New("lottery: unsupported record version")
	ErrEntryNotFound      = errors.New("lottery: history entry not found")
)

// ValidationError reports a configuration value outside its accepted range.
type ValidationError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lottery: %s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// DecodeError reports a persisted value that could not be decoded or that
// decoded into a state violating the session invariants.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("lottery: decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
