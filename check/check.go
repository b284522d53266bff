package check

import (
	"fmt"
	"strings"

	"github.com/stretchr/testify/assert"
)

// Kind of assertion that failed
type Kind string

const (
	KindEqual    Kind = "equal"
	KindNotEqual Kind = "not_equal"
	KindIn       Kind = "in"
	KindNotIn    Kind = "not_in"
	KindTrue     Kind = "true"
	KindFalse    Kind = "false"
	KindNil      Kind = "nil"
	KindNotNil   Kind = "not_nil"
)

// KindMap for parsing check names in test cases
var KindMap = map[string]Kind{
	"equal":     KindEqual,
	"not_equal": KindNotEqual,
	"in":        KindIn,
	"not_in":    KindNotIn,
	"true":      KindTrue,
	"false":     KindFalse,
	"nil":       KindNil,
	"not_nil":   KindNotNil,
}

// AssertionError describes a failed check. Detail holds testify's
// description of the difference.
type AssertionError struct {
	Kind     Kind
	Actual   interface{}
	Expected interface{}
	Message  string
	Detail   string
}

func (e *AssertionError) Error() string {
	return e.Message
}

// recorder satisfies assert.TestingT and keeps the failure text instead of
// failing a test
type recorder struct {
	msgs []string
}

func (r *recorder) Errorf(format string, args ...interface{}) {
	r.msgs = append(r.msgs, fmt.Sprintf(format, args...))
}

func (r *recorder) detail() string {
	// testify formats a table of labelled fields, keep the Error: section only
	out := strings.Join(r.msgs, "\n")
	if idx := strings.Index(out, "Error:"); idx != -1 {
		out = out[idx+len("Error:"):]
	}
	return strings.TrimSpace(out)
}

func fail(r *recorder, kind Kind, actual, expected interface{}, msg string) *AssertionError {
	return &AssertionError{
		Kind:     kind,
		Actual:   actual,
		Expected: expected,
		Message:  msg,
		Detail:   r.detail(),
	}
}

// Equal checks actual and expected are equal
func Equal(actual, expected interface{}) *AssertionError {
	r := &recorder{}
	if assert.Equal(r, expected, actual) {
		return nil
	}
	return fail(r, KindEqual, actual, expected, fmt.Sprintf("actual %v does not equal expected %v", actual, expected))
}

// NotEqual checks actual and expected differ
func NotEqual(actual, expected interface{}) *AssertionError {
	r := &recorder{}
	if assert.NotEqual(r, expected, actual) {
		return nil
	}
	return fail(r, KindNotEqual, actual, expected, fmt.Sprintf("actual %v equals expected %v", actual, expected))
}

// In checks actual is contained in expected, a substring for strings or an
// element or key otherwise
func In(actual, expected interface{}) *AssertionError {
	r := &recorder{}
	if assert.Contains(r, expected, actual) {
		return nil
	}
	return fail(r, KindIn, actual, expected, fmt.Sprintf("actual %v is not in expected %v", actual, expected))
}

// NotIn checks actual is not contained in expected
func NotIn(actual, expected interface{}) *AssertionError {
	r := &recorder{}
	if assert.NotContains(r, expected, actual) {
		return nil
	}
	return fail(r, KindNotIn, actual, expected, fmt.Sprintf("actual %v is in expected %v", actual, expected))
}

// True checks value is the boolean true
func True(value bool) *AssertionError {
	r := &recorder{}
	if assert.True(r, value) {
		return nil
	}
	return fail(r, KindTrue, value, true, fmt.Sprintf("result was %v", value))
}

// False checks value is the boolean false
func False(value bool) *AssertionError {
	r := &recorder{}
	if assert.False(r, value) {
		return nil
	}
	return fail(r, KindFalse, value, false, fmt.Sprintf("result was %v", value))
}

// Nil checks value is nil, including typed nils
func Nil(value interface{}) *AssertionError {
	r := &recorder{}
	if assert.Nil(r, value) {
		return nil
	}
	return fail(r, KindNil, value, nil, "result is not nil")
}

// NotNil checks value is not nil
func NotNil(value interface{}) *AssertionError {
	r := &recorder{}
	if assert.NotNil(r, value) {
		return nil
	}
	return fail(r, KindNotNil, value, nil, "result is nil")
}

// Compare runs the check named by kind against actual and expected, for use
// by test case files
func Compare(kind Kind, actual, expected interface{}) *AssertionError {
	switch kind {
	case KindEqual:
		return Equal(actual, expected)
	case KindNotEqual:
		return NotEqual(actual, expected)
	case KindIn:
		return In(actual, expected)
	case KindNotIn:
		return NotIn(actual, expected)
	}
	return &AssertionError{Kind: kind, Actual: actual, Expected: expected, Message: fmt.Sprintf("unknown check %q", kind)}
}
