package browser

import "github.com/wirepair/gcd/gcdapi"

// Click the left mouse button at x, y
func (t *Tab) Click(x, y float64) error {
	return t.click(x, y, 1)
}

func (t *Tab) click(x, y float64, clickCount int) error {
	mouseMovedParams := &gcdapi.InputDispatchMouseEventParams{TheType: "mouseMoved",
		X: x,
		Y: y,
	}
	if _, err := t.t.Input.DispatchMouseEventWithParams(mouseMovedParams); err != nil {
		return err
	}

	mousePressedParams := &gcdapi.InputDispatchMouseEventParams{TheType: "mousePressed",
		X:          x,
		Y:          y,
		Button:     "left",
		ClickCount: clickCount,
	}

	if _, err := t.t.Input.DispatchMouseEventWithParams(mousePressedParams); err != nil {
		return err
	}

	mouseReleasedParams := &gcdapi.InputDispatchMouseEventParams{TheType: "mouseReleased",
		X:          x,
		Y:          y,
		Button:     "left",
		ClickCount: clickCount,
	}

	_, err := t.t.Input.DispatchMouseEventWithParams(mouseReleasedParams)
	return err
}

// DoubleClick at x, y
func (t *Tab) DoubleClick(x, y float64) error {
	return t.click(x, y, 2)
}

// SendKeys to whatever is focused, best called from Element.SendKeys which
// focuses the element first. Use \n for Enter, \b for backspace or \t for Tab.
func (t *Tab) SendKeys(text string) error {
	inputParams := &gcdapi.InputDispatchKeyEventParams{TheType: "char"}

	for _, inputchar := range text {
		input := string(inputchar)

		switch input {
		case "\r", "\n", "\t", "\b":
			if err := t.pressSystemKey(input); err != nil {
				return err
			}
			continue
		}
		inputParams.Text = input
		if _, err := t.t.Input.DispatchKeyEventWithParams(inputParams); err != nil {
			return err
		}
	}
	return nil
}

var systemKeys = map[string]int{
	"\b": 8,
	"\t": 9,
	"\r": 13,
	"\n": 13,
}

func (t *Tab) pressSystemKey(systemKey string) error {
	code := systemKeys[systemKey]
	text := systemKey
	if text == "\n" {
		text = "\r"
	}
	inputParams := &gcdapi.InputDispatchKeyEventParams{
		TheType:               "rawKeyDown",
		UnmodifiedText:        text,
		Text:                  text,
		WindowsVirtualKeyCode: code,
		NativeVirtualKeyCode:  code,
	}

	for _, keyType := range []string{"rawKeyDown", "char", "keyUp"} {
		inputParams.TheType = keyType
		if _, err := t.t.Input.DispatchKeyEventWithParams(inputParams); err != nil {
			return err
		}
	}
	return nil
}
