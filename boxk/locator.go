package boxk

import (
	"strings"

	"github.com/pkg/errors"
)

// Strategy defines how an element is looked up in the document
type Strategy int8

// revive:disable:var-naming
const (
	StrategyID Strategy = iota + 1
	StrategyClassName
	StrategyName
	StrategyLinkText
	StrategyPartialLinkText
	StrategyXPath
	StrategyCSSSelector
	StrategyTagName
)

// StrategyMap to display the strategy
var StrategyMap = map[Strategy]string{
	StrategyID:              "id",
	StrategyClassName:       "class_name",
	StrategyName:            "name",
	StrategyLinkText:        "link_text",
	StrategyPartialLinkText: "partial_link_text",
	StrategyXPath:           "xpath",
	StrategyCSSSelector:     "css_selector",
	StrategyTagName:         "tag_name",
}

// strategyCodes maps both the short alias and the long name to a strategy
var strategyCodes = map[string]Strategy{
	"i":                 StrategyID,
	"id":                StrategyID,
	"cl":                StrategyClassName,
	"class_name":        StrategyClassName,
	"n":                 StrategyName,
	"name":              StrategyName,
	"l":                 StrategyLinkText,
	"link_text":         StrategyLinkText,
	"pl":                StrategyPartialLinkText,
	"partial_link_text": StrategyPartialLinkText,
	"x":                 StrategyXPath,
	"xpath":             StrategyXPath,
	"css":               StrategyCSSSelector,
	"css_selector":      StrategyCSSSelector,
	"tag":               StrategyTagName,
	"tag_name":          StrategyTagName,
}

func (s Strategy) String() string {
	if name, ok := StrategyMap[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStrategy returns the strategy for a short or long strategy code
func ParseStrategy(code string) (Strategy, error) {
	if s, ok := strategyCodes[code]; ok {
		return s, nil
	}
	return 0, errors.Wrapf(ErrInvalidLocatorStrategy, "unknown strategy code %q", code)
}

// Locator is a strategy and the value to search for with it
type Locator struct {
	Strategy Strategy
	Value    string
}

// ByID locates elements by their id attribute
func ByID(value string) Locator { return Locator{Strategy: StrategyID, Value: value} }

// ByClassName locates elements having the class
func ByClassName(value string) Locator { return Locator{Strategy: StrategyClassName, Value: value} }

// ByName locates elements by their name attribute
func ByName(value string) Locator { return Locator{Strategy: StrategyName, Value: value} }

// ByLinkText locates anchors whose visible text equals value
func ByLinkText(value string) Locator { return Locator{Strategy: StrategyLinkText, Value: value} }

// ByPartialLinkText locates anchors whose visible text contains value
func ByPartialLinkText(value string) Locator {
	return Locator{Strategy: StrategyPartialLinkText, Value: value}
}

// ByXPath locates elements matching an XPath expression
func ByXPath(value string) Locator { return Locator{Strategy: StrategyXPath, Value: value} }

// ByCSS locates elements matching a CSS selector. Unlike ParseLocator, the
// selector may contain commas.
func ByCSS(value string) Locator { return Locator{Strategy: StrategyCSSSelector, Value: value} }

// ByTagName locates elements by tag
func ByTagName(value string) Locator { return Locator{Strategy: StrategyTagName, Value: value} }

// ParseLocator converts the compact "<code>,<value>" form (e.g. "id,account" or
// "x,//div") into a Locator. The string must contain exactly one comma, there is
// no escaping, so values with commas must be built with the By* constructors.
func ParseLocator(selector string) (Locator, error) {
	parts := strings.Split(selector, ",")
	if len(parts) != 2 {
		return Locator{}, errors.Wrapf(ErrInvalidLocatorStrategy, "locator %q must be in the form <strategy>,<value>", selector)
	}

	strategy, err := ParseStrategy(parts[0])
	if err != nil {
		return Locator{}, err
	}

	if parts[1] == "" {
		return Locator{}, errors.Wrapf(ErrInvalidLocatorStrategy, "locator %q has an empty value", selector)
	}
	return Locator{Strategy: strategy, Value: parts[1]}, nil
}

// Valid reports if the locator has a known strategy and a value
func (l Locator) Valid() bool {
	_, ok := StrategyMap[l.Strategy]
	return ok && l.Value != ""
}

func (l Locator) String() string {
	return l.Strategy.String() + "," + l.Value
}
