package boxk

import (
	"context"
	"strconv"
	"time"
)

// Browser is the kind of browser a driver controls
type Browser int8

const (
	// Chrome is driven over the devtools protocol (or webdriver if configured)
	Chrome Browser = iota + 1
	// Firefox is driven over webdriver
	Firefox
	// InternetExplorer is driven over webdriver
	InternetExplorer
)

// BrowserMap to display the browser
var BrowserMap = map[Browser]string{
	Chrome:           "Chrome",
	Firefox:          "Firefox",
	InternetExplorer: "Ie",
}

func (b Browser) String() string {
	if s, ok := BrowserMap[b]; ok {
		return s
	}
	return "unknown"
}

// ParseBrowser maps "Chrome" and "Firefox", anything else is treated as
// InternetExplorer and is only checked when the driver starts.
func ParseBrowser(name string) Browser {
	switch name {
	case "Chrome":
		return Chrome
	case "Firefox":
		return Firefox
	}
	return InternetExplorer
}

// FrameRef identifies a frame to switch into, by name (or id), index or locator
type FrameRef struct {
	Name    string
	Index   int
	Locator *Locator
	byIndex bool
}

// FrameByName refers to a frame by its name or id attribute
func FrameByName(name string) FrameRef {
	return FrameRef{Name: name}
}

// FrameByIndex refers to the index'th frame of the current document
func FrameByIndex(index int) FrameRef {
	return FrameRef{Index: index, byIndex: true}
}

// FrameByLocator refers to the frame element found by loc
func FrameByLocator(loc Locator) FrameRef {
	return FrameRef{Locator: &loc}
}

// IsIndex returns true if this ref is index based
func (f FrameRef) IsIndex() bool {
	return f.byIndex
}

func (f FrameRef) String() string {
	switch {
	case f.byIndex:
		return "index " + strconv.Itoa(f.Index)
	case f.Locator != nil:
		return f.Locator.String()
	}
	return f.Name
}

// Element is a handle to a single element in the live document
type Element interface {
	// Text visible text, for <select> the text of the selected option
	Text(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	Click(ctx context.Context) error
	// Select an <option> of this (select) element, content is an integer for SelectIndex
	Select(ctx context.Context, mode SelectMode, content string) error
}

// Driver is a live connection to one browser instance
type Driver interface {
	ID() int64
	// Navigate the current tab to url, waits for the load to complete
	Navigate(ctx context.Context, url string) error
	// FindAll polls for the implicit wait until at least one match, may return an empty slice
	FindAll(ctx context.Context, loc Locator) ([]Element, error)
	SwitchFrame(ctx context.Context, frame FrameRef) error
	SwitchToDefault(ctx context.Context) error
	SetImplicitWait(wait time.Duration) error
	// Screenshot of the current viewport as png
	Screenshot(ctx context.Context) ([]byte, error)
	MaximizeWindow(ctx context.Context) error
	// CloseWindow closes the active tab, returns false if no tabs remain
	CloseWindow(ctx context.Context) (bool, error)
	// Quit the browser and release its resources
	Quit(ctx context.Context) error
}
