package webdriver

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tebeka/selenium"
	"gitlab.com/boxker/boxk"
)

// Element wraps a selenium.WebElement as a boxk.Element
type Element struct {
	we selenium.WebElement
}

func (e *Element) isSelect() (bool, error) {
	tag, err := e.we.TagName()
	if err != nil {
		return false, mapError(err)
	}
	return strings.EqualFold(tag, "select"), nil
}

func (e *Element) options() ([]selenium.WebElement, error) {
	opts, err := e.we.FindElements(selenium.ByTagName, "option")
	if err != nil && !isCode(err, "no such element") {
		return nil, mapError(err)
	}
	return opts, nil
}

// Text of the element, the selected option's text for a select
func (e *Element) Text(ctx context.Context) (string, error) {
	isSelect, err := e.isSelect()
	if err != nil {
		return "", err
	}
	if !isSelect {
		text, err := e.we.Text()
		return text, mapError(err)
	}

	opts, err := e.options()
	if err != nil {
		return "", err
	}
	for _, opt := range opts {
		selected, err := opt.IsSelected()
		if err != nil {
			return "", mapError(err)
		}
		if selected {
			text, err := opt.Text()
			return text, mapError(err)
		}
	}
	return "", nil
}

// Clear the element's value
func (e *Element) Clear(ctx context.Context) error {
	return mapError(e.we.Clear())
}

// SendKeys types text into the element
func (e *Element) SendKeys(ctx context.Context, text string) error {
	return mapError(e.we.SendKeys(text))
}

// Click the element
func (e *Element) Click(ctx context.Context) error {
	return mapError(e.we.Click())
}

// Select enumerates the option children and clicks the first that matches,
// the way the webdriver select helpers do
func (e *Element) Select(ctx context.Context, mode boxk.SelectMode, content string) error {
	isSelect, err := e.isSelect()
	if err != nil {
		return err
	}
	if !isSelect {
		return errors.Wrap(boxk.ErrElementNotInteractable, "element is not a select")
	}
	opts, err := e.options()
	if err != nil {
		return err
	}

	var option selenium.WebElement
	switch mode {
	case boxk.SelectIndex:
		idx, err := strconv.Atoi(content)
		if err != nil {
			return errors.Wrapf(boxk.ErrInvalidSelectMode, "index %q is not an integer", content)
		}
		if idx < 0 || idx >= len(opts) {
			return errors.Wrapf(boxk.ErrIndexOutOfRange, "option index %d of %d", idx, len(opts))
		}
		option = opts[idx]
	case boxk.SelectText, boxk.SelectValue:
		for _, opt := range opts {
			var got string
			if mode == boxk.SelectText {
				got, err = opt.Text()
				got = strings.TrimSpace(got)
			} else {
				got, err = opt.GetAttribute("value")
			}
			if err != nil {
				return mapError(err)
			}
			if got == content {
				option = opt
				break
			}
		}
		if option == nil {
			return errors.Wrapf(boxk.ErrElementNotFound, "no option with %s %q", mode, content)
		}
	default:
		return errors.Wrapf(boxk.ErrInvalidSelectMode, "mode %d", mode)
	}

	selected, err := option.IsSelected()
	if err != nil {
		return mapError(err)
	}
	if selected {
		return nil
	}
	return mapError(option.Click())
}
