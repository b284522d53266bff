package mock

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gitlab.com/boxker/boxk"
)

// PNG is the screenshot returned by the default Driver
var PNG = []byte("\x89PNG\r\n\x1a\nboxker")

// Option of a mock <select>
type Option struct {
	Text  string
	Value string
}

// Element in a mock Document
type Element struct {
	TextValue string
	Value     string
	Hidden    bool
	Disabled  bool
	Options   []*Option
	Selected  int
	OnClick   func()

	ClickCalled int
	ClearCalled int
}

func (e *Element) interactable() error {
	if e.Hidden {
		return errors.Wrap(boxk.ErrElementNotInteractable, "element is hidden")
	}
	if e.Disabled {
		return errors.Wrap(boxk.ErrElementNotInteractable, "element is disabled")
	}
	return nil
}

// Text of the element, the selected option for selects
func (e *Element) Text(ctx context.Context) (string, error) {
	if e.Options != nil {
		if e.Selected < 0 || e.Selected >= len(e.Options) {
			return "", nil
		}
		return e.Options[e.Selected].Text, nil
	}
	return e.TextValue, nil
}

// Clear the value
func (e *Element) Clear(ctx context.Context) error {
	if err := e.interactable(); err != nil {
		return err
	}
	e.ClearCalled++
	e.Value = ""
	return nil
}

// SendKeys appends to the value
func (e *Element) SendKeys(ctx context.Context, text string) error {
	if err := e.interactable(); err != nil {
		return err
	}
	e.Value += text
	return nil
}

// Click calls OnClick if set
func (e *Element) Click(ctx context.Context) error {
	if err := e.interactable(); err != nil {
		return err
	}
	e.ClickCalled++
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

// Select an option the way a browser select helper would
func (e *Element) Select(ctx context.Context, mode boxk.SelectMode, content string) error {
	if e.Options == nil {
		return errors.Wrap(boxk.ErrElementNotInteractable, "element is not a select")
	}
	if err := e.interactable(); err != nil {
		return err
	}

	switch mode {
	case boxk.SelectIndex:
		idx, err := strconv.Atoi(content)
		if err != nil {
			return errors.Wrap(boxk.ErrInvalidSelectMode, err.Error())
		}
		if idx < 0 || idx >= len(e.Options) {
			return errors.Wrapf(boxk.ErrIndexOutOfRange, "option index %d of %d", idx, len(e.Options))
		}
		e.Selected = idx
		return nil
	case boxk.SelectText, boxk.SelectValue:
		for i, opt := range e.Options {
			if (mode == boxk.SelectText && opt.Text == content) || (mode == boxk.SelectValue && opt.Value == content) {
				e.Selected = i
				return nil
			}
		}
		return errors.Wrapf(boxk.ErrElementNotFound, "no option with %s %q", mode, content)
	}
	return boxk.ErrInvalidSelectMode
}

// Document is a mock page or frame
type Document struct {
	Elements map[boxk.Locator][]*Element
	Frames   map[string]*Document
	Ordered  []*Document // frames by index
}

// NewDocument that is empty
func NewDocument() *Document {
	return &Document{
		Elements: make(map[boxk.Locator][]*Element),
		Frames:   make(map[string]*Document),
	}
}

// Add elements matching loc
func (d *Document) Add(loc boxk.Locator, eles ...*Element) *Document {
	d.Elements[loc] = append(d.Elements[loc], eles...)
	return d
}

// AddFrame named name, also addressable by index in insertion order
func (d *Document) AddFrame(name string, frame *Document) *Document {
	d.Frames[name] = frame
	d.Ordered = append(d.Ordered, frame)
	return d
}

// Driver is a boxk.Driver over mock documents keyed by URL
type Driver struct {
	Pages        map[string]*Document
	Windows      int
	ImplicitWait time.Duration

	top     *Document
	current *Document
	id      int64

	NavigateFn     func(ctx context.Context, url string) error
	NavigateCalled int

	FindAllFn     func(ctx context.Context, loc boxk.Locator) ([]boxk.Element, error)
	FindAllCalled int

	SetImplicitWaitFn func(wait time.Duration) error

	ScreenshotFn     func(ctx context.Context) ([]byte, error)
	ScreenshotCalled int

	MaximizeCalled int
	CloseCalled    int

	QuitFn     func(ctx context.Context) error
	QuitCalled int
}

// MakeMockDriver with a single window and no pages
func MakeMockDriver() *Driver {
	return &Driver{
		Pages:   make(map[string]*Document),
		Windows: 1,
		id:      boxk.GetSessionID(),
	}
}

// AddPage served at url
func (d *Driver) AddPage(url string, doc *Document) *Driver {
	d.Pages[url] = doc
	return d
}

// ID of this driver
func (d *Driver) ID() int64 {
	return d.id
}

// Navigate loads the page registered for url
func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.NavigateCalled++
	if d.NavigateFn != nil {
		return d.NavigateFn(ctx, url)
	}
	doc, ok := d.Pages[url]
	if !ok {
		return errors.Wrapf(boxk.ErrNavigation, "net::ERR_NAME_NOT_RESOLVED %s", url)
	}
	d.top = doc
	d.current = doc
	return nil
}

// FindAll elements in the current document
func (d *Driver) FindAll(ctx context.Context, loc boxk.Locator) ([]boxk.Element, error) {
	d.FindAllCalled++
	if d.FindAllFn != nil {
		return d.FindAllFn(ctx, loc)
	}
	eles := make([]boxk.Element, 0)
	if d.current == nil {
		return eles, nil
	}
	for _, e := range d.current.Elements[loc] {
		eles = append(eles, e)
	}
	return eles, nil
}

// SwitchFrame into a child frame of the current document
func (d *Driver) SwitchFrame(ctx context.Context, frame boxk.FrameRef) error {
	if d.current == nil {
		return errors.Wrap(boxk.ErrElementNotFound, "no document loaded")
	}
	var doc *Document
	switch {
	case frame.IsIndex():
		if frame.Index >= 0 && frame.Index < len(d.current.Ordered) {
			doc = d.current.Ordered[frame.Index]
		}
	case frame.Locator != nil:
		doc = d.current.Frames[frame.Locator.Value]
	default:
		doc = d.current.Frames[frame.Name]
	}
	if doc == nil {
		return errors.Wrapf(boxk.ErrElementNotFound, "no frame %s", frame)
	}
	d.current = doc
	return nil
}

// SwitchToDefault returns to the top document
func (d *Driver) SwitchToDefault(ctx context.Context) error {
	d.current = d.top
	return nil
}

// SetImplicitWait records the wait
func (d *Driver) SetImplicitWait(wait time.Duration) error {
	if d.SetImplicitWaitFn != nil {
		return d.SetImplicitWaitFn(wait)
	}
	d.ImplicitWait = wait
	return nil
}

// Screenshot returns PNG
func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	d.ScreenshotCalled++
	if d.ScreenshotFn != nil {
		return d.ScreenshotFn(ctx)
	}
	return PNG, nil
}

// MaximizeWindow records the call
func (d *Driver) MaximizeWindow(ctx context.Context) error {
	d.MaximizeCalled++
	return nil
}

// CloseWindow decrements the window count
func (d *Driver) CloseWindow(ctx context.Context) (bool, error) {
	d.CloseCalled++
	if d.Windows > 0 {
		d.Windows--
	}
	return d.Windows > 0, nil
}

// Quit records the call
func (d *Driver) Quit(ctx context.Context) error {
	d.QuitCalled++
	if d.QuitFn != nil {
		return d.QuitFn(ctx)
	}
	return nil
}

// MakeLoginSite serves a login page at url: typing into id,account then clicking
// id,submit sets id,welcome-msg to "Welcome, <account>". The page also has an
// id,dept dropdown and a frame named "side" with a link.
func MakeLoginSite(url string) *Driver {
	account := &Element{}
	welcome := &Element{}
	submit := &Element{TextValue: "Login"}
	submit.OnClick = func() {
		welcome.TextValue = "Welcome, " + account.Value
	}
	dept := &Element{
		Options: []*Option{
			{Text: "Sales", Value: "sales"},
			{Text: "Engineering", Value: "eng"},
			{Text: "Support", Value: "sup"},
		},
	}
	hidden := &Element{Hidden: true}

	side := NewDocument().
		Add(boxk.ByLinkText("Help"), &Element{TextValue: "Help"})

	doc := NewDocument().
		Add(boxk.ByID("account"), account).
		Add(boxk.ByID("submit"), submit).
		Add(boxk.ByID("welcome-msg"), welcome).
		Add(boxk.ByID("dept"), dept).
		Add(boxk.ByID("hidden"), hidden).
		Add(boxk.ByTagName("li"), &Element{TextValue: "one"}, &Element{TextValue: "two"}, &Element{TextValue: "three"}).
		AddFrame("side", side)

	return MakeMockDriver().AddPage(url, doc)
}
