package browser

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"gitlab.com/boxker/boxk"
)

// Element is a remote object handle to a DOM element in a Tab
type Element struct {
	tab      *Tab
	objectID string
}

func newElement(tab *Tab, objectID string) *Element {
	return &Element{tab: tab, objectID: objectID}
}

// ObjectID of the element in the devtools runtime
func (e *Element) ObjectID() string {
	return e.objectID
}

func (e *Element) interactable() error {
	reason, err := e.tab.callString(e.objectID, interactableScript)
	if err != nil {
		return e.staleErr(err)
	}
	if reason != "" {
		return errors.Wrapf(boxk.ErrElementNotInteractable, "element is %s", reason)
	}
	return nil
}

// objects released by a navigation come back as script errors, treat them
// as the element having gone away
func (e *Element) staleErr(err error) error {
	if _, ok := err.(*ScriptEvaluationErr); ok {
		return errors.Wrap(boxk.ErrElementNotFound, err.Error())
	}
	return err
}

// Text of the element, the selected option's text for a select
func (e *Element) Text(ctx context.Context) (string, error) {
	text, err := e.tab.callString(e.objectID, textScript)
	if err != nil {
		return "", e.staleErr(err)
	}
	return text, nil
}

// Clear the value of an input, textarea or contenteditable
func (e *Element) Clear(ctx context.Context) error {
	if err := e.interactable(); err != nil {
		return err
	}
	if _, err := e.tab.callFunctionOn(e.objectID, clearScript, true); err != nil {
		return e.staleErr(err)
	}
	return nil
}

// SendKeys focuses the element and types text as key events
func (e *Element) SendKeys(ctx context.Context, text string) error {
	if err := e.interactable(); err != nil {
		return err
	}
	if _, err := e.tab.callFunctionOn(e.objectID, focusScript, true); err != nil {
		return e.staleErr(err)
	}
	return e.tab.SendKeys(text)
}

// Click the centre of the element after scrolling it into view
func (e *Element) Click(ctx context.Context) error {
	if err := e.interactable(); err != nil {
		return err
	}
	x, y, err := e.center()
	if err != nil {
		return err
	}
	return e.tab.Click(x, y)
}

func (e *Element) center() (float64, float64, error) {
	r, err := e.tab.callFunctionOn(e.objectID, centerScript, true)
	if err != nil {
		return 0, 0, e.staleErr(err)
	}
	coords, ok := r.Value.([]interface{})
	if !ok || len(coords) != 2 {
		return 0, 0, errors.Errorf("unexpected element position %#v", r.Value)
	}
	x, _ := coords[0].(float64)
	y, _ := coords[1].(float64)
	return x, y, nil
}

// Select an option of a select element
func (e *Element) Select(ctx context.Context, mode boxk.SelectMode, content string) error {
	if mode == boxk.SelectIndex {
		if _, err := strconv.Atoi(content); err != nil {
			return errors.Wrapf(boxk.ErrInvalidSelectMode, "index %q is not an integer", content)
		}
	}
	if err := e.interactable(); err != nil {
		return err
	}

	result, err := e.tab.callString(e.objectID, selectScript, mode.String(), content)
	if err != nil {
		return e.staleErr(err)
	}
	switch result {
	case "":
		return nil
	case "notselect":
		return errors.Wrap(boxk.ErrElementNotInteractable, "element is not a select")
	case "range":
		return errors.Wrapf(boxk.ErrIndexOutOfRange, "option index %s", content)
	case "notfound":
		return errors.Wrapf(boxk.ErrElementNotFound, "no option with %s %q", mode, content)
	case "disabled":
		return errors.Wrapf(boxk.ErrElementNotInteractable, "option %s %q is disabled", mode, content)
	}
	return errors.Errorf("unexpected select result %s", result)
}
