package boxk

import (
	"github.com/pkg/errors"
)

// revive:exported
var (
	ErrInvalidLocatorStrategy = errors.New("invalid locator strategy")
	ErrInvalidSelectMode      = errors.New("invalid select mode")
	ErrElementNotFound        = errors.New("element not found")
	ErrElementNotInteractable = errors.New("element not interactable")
	ErrIndexOutOfRange        = errors.New("index out of range")
	ErrSessionClosed          = errors.New("session closed")
	ErrNavigation             = errors.New("navigation failed")
	ErrIO                     = errors.New("i/o failure")
)

// kinds in the order they are tested by KindOf
var kinds = []error{
	ErrInvalidLocatorStrategy,
	ErrInvalidSelectMode,
	ErrElementNotFound,
	ErrElementNotInteractable,
	ErrIndexOutOfRange,
	ErrSessionClosed,
	ErrNavigation,
	ErrIO,
}

// ActionError is returned from every failed facade action. Kind is one of the
// Err* sentinels above, Err the underlying cause as reported by the driver.
type ActionError struct {
	Op      string
	Locator string
	Kind    error
	Err     error
}

// NewActionError wraps cause for op, taking the kind from the cause itself
func NewActionError(op, locator string, cause error) *ActionError {
	return &ActionError{Op: op, Locator: locator, Kind: KindOf(cause), Err: cause}
}

func (e *ActionError) Error() string {
	msg := e.Op
	if e.Locator != "" {
		msg += " [" + e.Locator + "]"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	if e.Kind != nil {
		return msg + ": " + e.Kind.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *ActionError) Unwrap() error {
	return e.Err
}

// Is matches the kind of this error
func (e *ActionError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// KindOf returns the taxonomy sentinel err (or anything it wraps) matches, nil if none do
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
