package browser

import (
	"github.com/pkg/errors"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/boxker/boxk"
)

// TabDisconnectedHandler is called when the tab crashes or the inspector was disconnected
type TabDisconnectedHandler func(tab *Tab, reason string)

// revive:exported
var (
	ErrNavigationTimedOut       = errors.New("navigation timed out")
	ErrTabCrashed               = errors.New("tab crashed")
	ErrTabClosing               = errors.New("closing")
	ErrNoTabs             error = noTabsErr{}
)

// noTabsErr is returned once every tab of a session is gone, it matches
// boxk.ErrSessionClosed as well
type noTabsErr struct{}

func (noTabsErr) Error() string {
	return "no tabs remain"
}

func (noTabsErr) Is(target error) bool {
	return target == boxk.ErrSessionClosed
}

// ElementNotFoundErr when an object id or frame document could not be resolved
type ElementNotFoundErr struct {
	Message string
}

func (e *ElementNotFoundErr) Error() string {
	return "Unable to find element " + e.Message
}

// ScriptEvaluationErr returned when an injected script caused an error
type ScriptEvaluationErr struct {
	Message          string
	ExceptionText    string
	ExceptionDetails *gcdapi.RuntimeExceptionDetails
}

func (e *ScriptEvaluationErr) Error() string {
	return e.Message + " " + e.ExceptionText
}

func newScriptErr(message string, exp *gcdapi.RuntimeExceptionDetails) *ScriptEvaluationErr {
	text := exp.Text
	if exp.Exception != nil && exp.Exception.Description != "" {
		text = exp.Exception.Description
	}
	return &ScriptEvaluationErr{Message: message, ExceptionText: text, ExceptionDetails: exp}
}
