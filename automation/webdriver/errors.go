package webdriver

import (
	"github.com/pkg/errors"
	"github.com/tebeka/selenium"
	"gitlab.com/boxker/boxk"
)

// W3C error codes mapped onto the boxk kinds
var errorKinds = map[string]error{
	"no such element":           boxk.ErrElementNotFound,
	"stale element reference":   boxk.ErrElementNotFound,
	"no such frame":             boxk.ErrElementNotFound,
	"no such window":            boxk.ErrElementNotFound,
	"element not interactable":  boxk.ErrElementNotInteractable,
	"element not visible":       boxk.ErrElementNotInteractable,
	"element click intercepted": boxk.ErrElementNotInteractable,
	"invalid element state":     boxk.ErrElementNotInteractable,
	"invalid selector":          boxk.ErrInvalidLocatorStrategy,
	"invalid session id":        boxk.ErrSessionClosed,
	"insecure certificate":      boxk.ErrNavigation,
	"timeout":                   boxk.ErrNavigation,
}

// mapError wraps a webdriver error with the boxk kind its code maps to,
// errors without a known code are returned unchanged
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var wdErr *selenium.Error
	if !errors.As(err, &wdErr) {
		return err
	}
	if kind, ok := errorKinds[wdErr.Err]; ok {
		return errors.Wrap(kind, wdErr.Error())
	}
	return err
}

// isCode returns true if err is a webdriver error with code
func isCode(err error, code string) bool {
	var wdErr *selenium.Error
	return errors.As(err, &wdErr) && wdErr.Err == code
}
