package boxk

import "github.com/pkg/errors"

// SelectMode defines how an <option> is chosen from a dropdown
type SelectMode int8

const (
	// SelectText by the option's visible text
	SelectText SelectMode = iota + 1
	// SelectValue by the option's value attribute
	SelectValue
	// SelectIndex by the option's 0 based position
	SelectIndex
)

// SelectModeMap to display the mode
var SelectModeMap = map[SelectMode]string{
	SelectText:  "text",
	SelectValue: "value",
	SelectIndex: "index",
}

func (m SelectMode) String() string {
	if s, ok := SelectModeMap[m]; ok {
		return s
	}
	return "unknown"
}

// ParseSelectMode accepts t|text, v|value and i|index
func ParseSelectMode(mode string) (SelectMode, error) {
	switch mode {
	case "t", "text":
		return SelectText, nil
	case "v", "value":
		return SelectValue, nil
	case "i", "index":
		return SelectIndex, nil
	}
	return 0, errors.Wrapf(ErrInvalidSelectMode, "unknown select mode %q", mode)
}
