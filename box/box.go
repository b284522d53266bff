package box

import (
	"context"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.com/boxker/automation/browser"
	"gitlab.com/boxker/automation/webdriver"
	"gitlab.com/boxker/boxk"
)

const (
	stateOpen int32 = iota
	stateClosed
)

// BoxDriver wraps exactly one driver handle, normalizing locator strings and
// dispatching one driver call per action. It is Open after construction and
// Closed after QuitAll (or closing the last window); every action on a Closed
// BoxDriver fails with boxk.ErrSessionClosed.
type BoxDriver struct {
	mu     sync.Mutex
	driver boxk.Driver
	state  int32
	logger zerolog.Logger
}

// New starts the browser named in cfg.Browser.Name. Chrome uses the devtools
// backend unless webdriver is configured, Firefox and IE always use webdriver.
func New(ctx context.Context, cfg *boxk.BrowserConfig) (*BoxDriver, error) {
	var d boxk.Driver
	var err error

	kind := boxk.ParseBrowser(cfg.Name)
	if kind == boxk.Chrome && cfg.Backend != boxk.WebDriver {
		d, err = browser.Launch(ctx, cfg)
	} else {
		d, err = webdriver.Open(kind, cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to start %s (%s)", kind, cfg.Name)
	}

	return NewWithWait(ctx, d, cfg.ImplicitWait())
}

// NewWithWait takes ownership of d and sets its implicit wait. d is quit if
// the wait can not be set.
func NewWithWait(ctx context.Context, d boxk.Driver, wait time.Duration) (*BoxDriver, error) {
	b := NewWithDriver(d)
	if wait <= 0 {
		return b, nil
	}
	if err := b.WaitImplicit(wait); err != nil {
		if qerr := d.Quit(ctx); qerr != nil {
			b.logger.Warn().Err(qerr).Msg("failed to quit browser after implicit wait error")
		}
		return nil, err
	}
	return b, nil
}

// NewWithDriver takes ownership of an already started driver
func NewWithDriver(d boxk.Driver) *BoxDriver {
	return &BoxDriver{
		driver: d,
		state:  stateOpen,
		logger: log.With().Int64("session", d.ID()).Logger(),
	}
}

// IsClosed returns true after QuitAll
func (b *BoxDriver) IsClosed() bool {
	return atomic.LoadInt32(&b.state) == stateClosed
}

func (b *BoxDriver) checkOpen(op, target string) error {
	if b.IsClosed() {
		return boxk.NewActionError(op, target, boxk.ErrSessionClosed)
	}
	return nil
}

// locate checks the state, then parses selector
func (b *BoxDriver) locate(op, selector string) (boxk.Locator, error) {
	if err := b.checkOpen(op, selector); err != nil {
		return boxk.Locator{}, err
	}
	loc, err := boxk.ParseLocator(selector)
	if err != nil {
		return loc, boxk.NewActionError(op, selector, err)
	}
	return loc, nil
}

// Navigate loads url in the current tab
func (b *BoxDriver) Navigate(ctx context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOpen("navigate", url); err != nil {
		return err
	}
	b.logger.Debug().Str("url", url).Msg("navigating")
	if err := b.driver.Navigate(ctx, url); err != nil {
		return boxk.NewActionError("navigate", url, err)
	}
	return nil
}

// MaximizeWindow of the current tab
func (b *BoxDriver) MaximizeWindow(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOpen("maximize", ""); err != nil {
		return err
	}
	if err := b.driver.MaximizeWindow(ctx); err != nil {
		return boxk.NewActionError("maximize", "", err)
	}
	return nil
}

// FindOne returns the first element matching selector
func (b *BoxDriver) FindOne(ctx context.Context, selector string) (boxk.Element, error) {
	loc, err := b.locate("find", selector)
	if err != nil {
		return nil, err
	}
	return b.FindOneBy(ctx, loc)
}

// FindOneBy returns the first element matching loc, or ErrElementNotFound if
// nothing matched within the implicit wait.
func (b *BoxDriver) FindOneBy(ctx context.Context, loc boxk.Locator) (boxk.Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.findOne(ctx, "find", loc)
}

func (b *BoxDriver) findOne(ctx context.Context, op string, loc boxk.Locator) (boxk.Element, error) {
	eles, err := b.findMany(ctx, op, loc)
	if err != nil {
		return nil, err
	}
	if len(eles) == 0 {
		return nil, boxk.NewActionError(op, loc.String(), errors.Wrapf(boxk.ErrElementNotFound, "nothing matched %s", loc))
	}
	return eles[0], nil
}

// FindMany returns every element matching selector, possibly none
func (b *BoxDriver) FindMany(ctx context.Context, selector string) ([]boxk.Element, error) {
	loc, err := b.locate("find_many", selector)
	if err != nil {
		return nil, err
	}
	return b.FindManyBy(ctx, loc)
}

// FindManyBy returns every element matching loc, possibly none
func (b *BoxDriver) FindManyBy(ctx context.Context, loc boxk.Locator) ([]boxk.Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.findMany(ctx, "find_many", loc)
}

func (b *BoxDriver) findMany(ctx context.Context, op string, loc boxk.Locator) ([]boxk.Element, error) {
	if err := b.checkOpen(op, loc.String()); err != nil {
		return nil, err
	}
	if !loc.Valid() {
		return nil, boxk.NewActionError(op, loc.String(), errors.Wrapf(boxk.ErrInvalidLocatorStrategy, "invalid locator %#v", loc))
	}
	eles, err := b.driver.FindAll(ctx, loc)
	if err != nil {
		return nil, boxk.NewActionError(op, loc.String(), err)
	}
	return eles, nil
}

// TypeText clears the field matching selector then types text into it
func (b *BoxDriver) TypeText(ctx context.Context, selector, text string) error {
	loc, err := b.locate("type", selector)
	if err != nil {
		return err
	}
	return b.TypeTextBy(ctx, loc, text)
}

// TypeTextBy clears the field matching loc then types text into it
func (b *BoxDriver) TypeTextBy(ctx context.Context, loc boxk.Locator, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ele, err := b.findOne(ctx, "type", loc)
	if err != nil {
		return err
	}
	if err := ele.Clear(ctx); err != nil {
		return boxk.NewActionError("type", loc.String(), err)
	}
	if err := ele.SendKeys(ctx, text); err != nil {
		return boxk.NewActionError("type", loc.String(), err)
	}
	return nil
}

// Click the element matching selector
func (b *BoxDriver) Click(ctx context.Context, selector string) error {
	loc, err := b.locate("click", selector)
	if err != nil {
		return err
	}
	return b.ClickBy(ctx, loc)
}

// ClickBy clicks the element matching loc
func (b *BoxDriver) ClickBy(ctx context.Context, loc boxk.Locator) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ele, err := b.findOne(ctx, "click", loc)
	if err != nil {
		return err
	}
	if err := ele.Click(ctx); err != nil {
		return boxk.NewActionError("click", loc.String(), err)
	}
	return nil
}

// SwitchFrame makes frame the document all later lookups run in, until
// SwitchToDefault is called or the page reloads.
func (b *BoxDriver) SwitchFrame(ctx context.Context, frame boxk.FrameRef) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOpen("switch_frame", frame.String()); err != nil {
		return err
	}
	if err := b.driver.SwitchFrame(ctx, frame); err != nil {
		return boxk.NewActionError("switch_frame", frame.String(), err)
	}
	return nil
}

// SwitchToFrame switches by frame name or id, or by index if id is numeric
func (b *BoxDriver) SwitchToFrame(ctx context.Context, id string) error {
	if idx, err := strconv.Atoi(id); err == nil {
		return b.SwitchFrame(ctx, boxk.FrameByIndex(idx))
	}
	return b.SwitchFrame(ctx, boxk.FrameByName(id))
}

// SwitchToDefault returns to the top level document
func (b *BoxDriver) SwitchToDefault(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOpen("switch_default", ""); err != nil {
		return err
	}
	if err := b.driver.SwitchToDefault(ctx); err != nil {
		return boxk.NewActionError("switch_default", "", err)
	}
	return nil
}

// ReadText returns the visible text of the element matching selector
func (b *BoxDriver) ReadText(ctx context.Context, selector string) (string, error) {
	loc, err := b.locate("read_text", selector)
	if err != nil {
		return "", err
	}
	return b.ReadTextBy(ctx, loc)
}

// ReadTextBy returns the visible text of the element matching loc
func (b *BoxDriver) ReadTextBy(ctx context.Context, loc boxk.Locator) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ele, err := b.findOne(ctx, "read_text", loc)
	if err != nil {
		return "", err
	}
	text, err := ele.Text(ctx)
	if err != nil {
		return "", boxk.NewActionError("read_text", loc.String(), err)
	}
	return text, nil
}

// ReadTextAt returns the text of the index'th element matching selector
func (b *BoxDriver) ReadTextAt(ctx context.Context, selector string, index int) (string, error) {
	loc, err := b.locate("read_text_at", selector)
	if err != nil {
		return "", err
	}
	return b.ReadTextAtBy(ctx, loc, index)
}

// ReadTextAtBy returns the text of the index'th element matching loc
func (b *BoxDriver) ReadTextAtBy(ctx context.Context, loc boxk.Locator, index int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	eles, err := b.findMany(ctx, "read_text_at", loc)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(eles) {
		return "", boxk.NewActionError("read_text_at", loc.String(), errors.Wrapf(boxk.ErrIndexOutOfRange, "index %d of %d matches", index, len(eles)))
	}
	text, err := eles[index].Text(ctx)
	if err != nil {
		return "", boxk.NewActionError("read_text_at", loc.String(), err)
	}
	return text, nil
}

// SelectOption chooses an option of the dropdown matching selector. mode is
// one of t|text, v|value, i|index and content the text, value or 0 based index.
func (b *BoxDriver) SelectOption(ctx context.Context, selector, mode, content string) error {
	loc, err := b.locate("select", selector)
	if err != nil {
		return err
	}
	selectMode, err := boxk.ParseSelectMode(mode)
	if err != nil {
		return boxk.NewActionError("select", selector, err)
	}
	return b.SelectOptionBy(ctx, loc, selectMode, content)
}

// SelectByText chooses the option whose visible text is text
func (b *BoxDriver) SelectByText(ctx context.Context, selector, text string) error {
	return b.SelectOption(ctx, selector, "text", text)
}

// SelectByValue chooses the option whose value attribute is value
func (b *BoxDriver) SelectByValue(ctx context.Context, selector, value string) error {
	return b.SelectOption(ctx, selector, "value", value)
}

// SelectByIndex chooses the option at the 0 based index
func (b *BoxDriver) SelectByIndex(ctx context.Context, selector string, index int) error {
	return b.SelectOption(ctx, selector, "index", strconv.Itoa(index))
}

// SelectOptionBy chooses an option of the dropdown matching loc
func (b *BoxDriver) SelectOptionBy(ctx context.Context, loc boxk.Locator, mode boxk.SelectMode, content string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOpen("select", loc.String()); err != nil {
		return err
	}
	if _, ok := boxk.SelectModeMap[mode]; !ok {
		return boxk.NewActionError("select", loc.String(), errors.Wrapf(boxk.ErrInvalidSelectMode, "mode %d", mode))
	}
	if mode == boxk.SelectIndex {
		idx, err := strconv.Atoi(content)
		if err != nil {
			return boxk.NewActionError("select", loc.String(), errors.Wrapf(boxk.ErrInvalidSelectMode, "index %q is not an integer", content))
		}
		if idx < 0 {
			return boxk.NewActionError("select", loc.String(), errors.Wrapf(boxk.ErrIndexOutOfRange, "option index %d", idx))
		}
	}

	ele, err := b.findOne(ctx, "select", loc)
	if err != nil {
		return err
	}
	if err := ele.Select(ctx, mode, content); err != nil {
		return boxk.NewActionError("select", loc.String(), err)
	}
	return nil
}

// WaitImplicit sets how long every later lookup polls for a match, replacing
// any earlier value.
func (b *BoxDriver) WaitImplicit(wait time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOpen("wait", wait.String()); err != nil {
		return err
	}
	if wait < 0 {
		wait = 0
	}
	if err := b.driver.SetImplicitWait(wait); err != nil {
		return boxk.NewActionError("wait", wait.String(), err)
	}
	return nil
}

// Screenshot writes a png of the current viewport to path
func (b *BoxDriver) Screenshot(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOpen("screenshot", path); err != nil {
		return err
	}
	png, err := b.driver.Screenshot(ctx)
	if err != nil {
		return boxk.NewActionError("screenshot", path, err)
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		return &boxk.ActionError{Op: "screenshot", Locator: path, Kind: boxk.ErrIO, Err: err}
	}
	b.logger.Debug().Str("path", path).Msg("screenshot saved")
	return nil
}

// CloseCurrent closes the active tab. Closing the last tab ends the session.
func (b *BoxDriver) CloseCurrent(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOpen("close", ""); err != nil {
		return err
	}
	remaining, err := b.driver.CloseWindow(ctx)
	if err != nil {
		return boxk.NewActionError("close", "", err)
	}
	if remaining {
		return nil
	}
	b.logger.Info().Msg("last window closed, ending session")
	return b.quit(ctx)
}

// QuitAll terminates the browser session. The BoxDriver is Closed afterwards
// even if the driver failed to exit cleanly.
func (b *BoxDriver) QuitAll(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quit(ctx)
}

func (b *BoxDriver) quit(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&b.state, stateOpen, stateClosed) {
		return boxk.NewActionError("quit", "", boxk.ErrSessionClosed)
	}
	b.logger.Info().Msg("quitting browser")
	if err := b.driver.Quit(ctx); err != nil {
		return boxk.NewActionError("quit", "", err)
	}
	return nil
}
