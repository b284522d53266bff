package box_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.com/boxker/box"
	"gitlab.com/boxker/boxk"
	"gitlab.com/boxker/mock"
)

const loginURL = "http://example.test/login"

func openLogin(t *testing.T) (*box.BoxDriver, *mock.Driver) {
	d := mock.MakeLoginSite(loginURL)
	b := box.NewWithDriver(d)
	if err := b.Navigate(context.Background(), loginURL); err != nil {
		t.Fatalf("error navigating: %s\n", err)
	}
	return b, d
}

func TestLoginScenario(t *testing.T) {
	ctx := context.Background()
	b, d := openLogin(t)
	defer b.QuitAll(ctx)

	if err := b.TypeText(ctx, "id,account", "user1"); err != nil {
		t.Fatalf("error typing: %s\n", err)
	}
	// typing again replaces rather than appends
	if err := b.TypeText(ctx, "i,account", "user1"); err != nil {
		t.Fatalf("error typing: %s\n", err)
	}
	if err := b.Click(ctx, "id,submit"); err != nil {
		t.Fatalf("error clicking: %s\n", err)
	}
	text, err := b.ReadText(ctx, "id,welcome-msg")
	if err != nil {
		t.Fatalf("error reading text: %s\n", err)
	}
	if text != "Welcome, user1" {
		t.Fatalf("expected welcome message got %q\n", text)
	}
	if d.NavigateCalled != 1 {
		t.Fatalf("expected a single navigation got %d\n", d.NavigateCalled)
	}
}

func TestSelectScenario(t *testing.T) {
	ctx := context.Background()
	b, _ := openLogin(t)
	defer b.QuitAll(ctx)

	if err := b.SelectOption(ctx, "id,dept", "v", "eng"); err != nil {
		t.Fatalf("error selecting by value: %s\n", err)
	}
	text, err := b.ReadText(ctx, "id,dept")
	if err != nil {
		t.Fatalf("error reading select: %s\n", err)
	}
	if text != "Engineering" {
		t.Fatalf("expected Engineering got %q\n", text)
	}

	if err := b.SelectByIndex(ctx, "id,dept", 2); err != nil {
		t.Fatalf("error selecting by index: %s\n", err)
	}
	if text, _ = b.ReadText(ctx, "id,dept"); text != "Support" {
		t.Fatalf("expected Support got %q\n", text)
	}

	if err := b.SelectByText(ctx, "id,dept", "Sales"); err != nil {
		t.Fatalf("error selecting by text: %s\n", err)
	}
	if text, _ = b.ReadText(ctx, "id,dept"); text != "Sales" {
		t.Fatalf("expected Sales got %q\n", text)
	}
}

func TestSelectErrors(t *testing.T) {
	ctx := context.Background()
	b, _ := openLogin(t)
	defer b.QuitAll(ctx)

	err := b.SelectOption(ctx, "id,dept", "label", "Sales")
	if !errors.Is(err, boxk.ErrInvalidSelectMode) {
		t.Fatalf("expected ErrInvalidSelectMode got %v\n", err)
	}
	err = b.SelectOption(ctx, "id,dept", "i", "two")
	if !errors.Is(err, boxk.ErrInvalidSelectMode) {
		t.Fatalf("expected ErrInvalidSelectMode for non integer index got %v\n", err)
	}
	if err = b.SelectByIndex(ctx, "id,dept", -1); !errors.Is(err, boxk.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for negative index got %v\n", err)
	}
	if err = b.SelectByIndex(ctx, "id,dept", 3); !errors.Is(err, boxk.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange got %v\n", err)
	}
	if err = b.SelectByValue(ctx, "id,dept", "hr"); !errors.Is(err, boxk.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound for missing option got %v\n", err)
	}
	if err = b.SelectByValue(ctx, "id,account", "x"); !errors.Is(err, boxk.ErrElementNotInteractable) {
		t.Fatalf("expected ErrElementNotInteractable for non select got %v\n", err)
	}
}

func TestInvalidLocator(t *testing.T) {
	ctx := context.Background()
	b, d := openLogin(t)
	defer b.QuitAll(ctx)

	for _, sel := range []string{"account", "foo,bar", "id,", ""} {
		err := b.Click(ctx, sel)
		if !errors.Is(err, boxk.ErrInvalidLocatorStrategy) {
			t.Fatalf("expected ErrInvalidLocatorStrategy for %q got %v\n", sel, err)
		}
	}
	if d.FindAllCalled != 0 {
		t.Fatalf("invalid locators should never reach the driver")
	}
	if _, err := b.FindManyBy(ctx, boxk.Locator{}); !errors.Is(err, boxk.ErrInvalidLocatorStrategy) {
		t.Fatalf("expected ErrInvalidLocatorStrategy for zero locator got %v\n", err)
	}
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	b, _ := openLogin(t)
	defer b.QuitAll(ctx)

	eles, err := b.FindMany(ctx, "tag,li")
	if err != nil {
		t.Fatalf("error finding: %s\n", err)
	}
	if len(eles) != 3 {
		t.Fatalf("expected 3 list items got %d\n", len(eles))
	}

	eles, err = b.FindMany(ctx, "css,.missing")
	if err != nil || len(eles) != 0 {
		t.Fatalf("expected empty result without error got %d %v\n", len(eles), err)
	}

	_, err = b.FindOne(ctx, "css,.missing")
	if !errors.Is(err, boxk.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound got %v\n", err)
	}
	var actErr *boxk.ActionError
	if !errors.As(err, &actErr) || actErr.Op != "find" {
		t.Fatalf("expected find ActionError got %s\n", spew.Sdump(err))
	}
}

func TestReadTextAt(t *testing.T) {
	ctx := context.Background()
	b, _ := openLogin(t)
	defer b.QuitAll(ctx)

	eles, _ := b.FindMany(ctx, "tag,li")
	for i := range eles {
		expected, _ := eles[i].Text(ctx)
		text, err := b.ReadTextAt(ctx, "tag,li", i)
		if err != nil {
			t.Fatalf("error reading %d: %s\n", i, err)
		}
		if text != expected {
			t.Fatalf("expected %q got %q\n", expected, text)
		}
	}

	for _, idx := range []int{3, -1, 100} {
		if _, err := b.ReadTextAt(ctx, "tag,li", idx); !errors.Is(err, boxk.ErrIndexOutOfRange) {
			t.Fatalf("expected ErrIndexOutOfRange for %d got %v\n", idx, err)
		}
	}
}

func TestClickHidden(t *testing.T) {
	ctx := context.Background()
	b, _ := openLogin(t)
	defer b.QuitAll(ctx)

	if err := b.Click(ctx, "id,hidden"); !errors.Is(err, boxk.ErrElementNotInteractable) {
		t.Fatalf("expected ErrElementNotInteractable got %v\n", err)
	}
}

func TestFrames(t *testing.T) {
	ctx := context.Background()
	b, _ := openLogin(t)
	defer b.QuitAll(ctx)

	if _, err := b.FindOne(ctx, "l,Help"); !errors.Is(err, boxk.ErrElementNotFound) {
		t.Fatalf("link should not be visible from the top document")
	}
	if err := b.SwitchToFrame(ctx, "side"); err != nil {
		t.Fatalf("error switching to frame: %s\n", err)
	}
	text, err := b.ReadText(ctx, "link_text,Help")
	if err != nil || text != "Help" {
		t.Fatalf("expected Help inside frame got %q %v\n", text, err)
	}
	if _, err := b.FindOne(ctx, "id,account"); err == nil {
		t.Fatalf("top level element should not be found inside the frame")
	}

	if err := b.SwitchToDefault(ctx); err != nil {
		t.Fatalf("error switching back: %s\n", err)
	}
	if _, err := b.FindOne(ctx, "id,account"); err != nil {
		t.Fatalf("expected top level element after switching back: %s\n", err)
	}

	if err := b.SwitchToFrame(ctx, "0"); err != nil {
		t.Fatalf("error switching by index: %s\n", err)
	}
	b.SwitchToDefault(ctx)

	if err := b.SwitchFrame(ctx, boxk.FrameByName("nope")); !errors.Is(err, boxk.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound for missing frame got %v\n", err)
	}
}

func TestNavigateFailure(t *testing.T) {
	ctx := context.Background()
	b, _ := openLogin(t)
	defer b.QuitAll(ctx)

	err := b.Navigate(ctx, "http://unreachable.test/")
	if !errors.Is(err, boxk.ErrNavigation) {
		t.Fatalf("expected ErrNavigation got %v\n", err)
	}
}

func TestWaitImplicit(t *testing.T) {
	b, d := openLogin(t)
	defer b.QuitAll(context.Background())

	if err := b.WaitImplicit(5 * time.Second); err != nil {
		t.Fatalf("error setting wait: %s\n", err)
	}
	if err := b.WaitImplicit(2 * time.Second); err != nil {
		t.Fatalf("error setting wait: %s\n", err)
	}
	if d.ImplicitWait != 2*time.Second {
		t.Fatalf("expected the later wait to replace the earlier got %s\n", d.ImplicitWait)
	}
}

func TestScreenshot(t *testing.T) {
	ctx := context.Background()
	b, _ := openLogin(t)
	defer b.QuitAll(ctx)

	dir, err := os.MkdirTemp("", "boxshot")
	if err != nil {
		t.Fatalf("error creating temp dir: %s\n", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "shot.png")
	if err := b.Screenshot(ctx, path); err != nil {
		t.Fatalf("error taking screenshot: %s\n", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("error reading screenshot: %s\n", err)
	}
	if string(data) != string(mock.PNG) {
		t.Fatalf("unexpected screenshot contents")
	}

	err = b.Screenshot(ctx, filepath.Join(dir, "missing", "shot.png"))
	if !errors.Is(err, boxk.ErrIO) {
		t.Fatalf("expected ErrIO for missing directory got %v\n", err)
	}
}

func TestMaximize(t *testing.T) {
	ctx := context.Background()
	b, d := openLogin(t)
	defer b.QuitAll(ctx)

	if err := b.MaximizeWindow(ctx); err != nil {
		t.Fatalf("error maximizing: %s\n", err)
	}
	if d.MaximizeCalled != 1 {
		t.Fatalf("expected maximize to be called once")
	}
}

func TestQuitAll(t *testing.T) {
	ctx := context.Background()
	b, d := openLogin(t)

	if err := b.QuitAll(ctx); err != nil {
		t.Fatalf("error quitting: %s\n", err)
	}
	if !b.IsClosed() {
		t.Fatalf("expected session to be closed")
	}

	checks := map[string]error{
		"navigate":   b.Navigate(ctx, loginURL),
		"click":      b.Click(ctx, "id,submit"),
		"bad":        b.Click(ctx, "nonsense"),
		"type":       b.TypeText(ctx, "id,account", "x"),
		"select":     b.SelectOption(ctx, "id,dept", "t", "Sales"),
		"wait":       b.WaitImplicit(time.Second),
		"screenshot": b.Screenshot(ctx, "x.png"),
		"maximize":   b.MaximizeWindow(ctx),
		"close":      b.CloseCurrent(ctx),
		"default":    b.SwitchToDefault(ctx),
		"quit":       b.QuitAll(ctx),
	}
	for name, err := range checks {
		if !errors.Is(err, boxk.ErrSessionClosed) {
			t.Fatalf("expected ErrSessionClosed for %s got %v\n", name, err)
		}
	}
	if _, err := b.ReadText(ctx, "id,welcome-msg"); !errors.Is(err, boxk.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed for read got %v\n", err)
	}
	if d.QuitCalled != 1 {
		t.Fatalf("expected driver quit exactly once got %d\n", d.QuitCalled)
	}
	if d.NavigateCalled != 1 {
		t.Fatalf("closed session should not reach the driver")
	}
}

func TestSelectOptionByAfterQuit(t *testing.T) {
	ctx := context.Background()
	b, _ := openLogin(t)
	if err := b.QuitAll(ctx); err != nil {
		t.Fatalf("error quitting: %s\n", err)
	}

	checks := map[string]error{
		"bad mode":       b.SelectOptionBy(ctx, boxk.ByID("dept"), boxk.SelectMode(9), "x"),
		"negative index": b.SelectOptionBy(ctx, boxk.ByID("dept"), boxk.SelectIndex, "-1"),
		"bad index":      b.SelectOptionBy(ctx, boxk.ByID("dept"), boxk.SelectIndex, "one"),
		"text":           b.SelectOptionBy(ctx, boxk.ByID("dept"), boxk.SelectText, "Sales"),
	}
	for name, err := range checks {
		if !errors.Is(err, boxk.ErrSessionClosed) {
			t.Fatalf("expected ErrSessionClosed for %s got %v\n", name, err)
		}
	}
}

func TestNewWithWait(t *testing.T) {
	ctx := context.Background()
	d := mock.MakeLoginSite(loginURL)
	b, err := box.NewWithWait(ctx, d, 2*time.Second)
	if err != nil {
		t.Fatalf("error creating driver: %s\n", err)
	}
	defer b.QuitAll(ctx)
	if d.ImplicitWait != 2*time.Second {
		t.Fatalf("expected 2s implicit wait got %s\n", d.ImplicitWait)
	}
}

func TestNewWithWaitFailure(t *testing.T) {
	out := &bytes.Buffer{}
	orig := log.Logger
	log.Logger = zerolog.New(out)
	defer func() { log.Logger = orig }()

	ctx := context.Background()
	d := mock.MakeLoginSite(loginURL)
	d.SetImplicitWaitFn = func(wait time.Duration) error {
		return errors.New("session not created")
	}
	d.QuitFn = func(ctx context.Context) error {
		return errors.New("chrome already exited")
	}

	b, err := box.NewWithWait(ctx, d, time.Second)
	if err == nil || b != nil {
		t.Fatalf("expected implicit wait error got %v\n", err)
	}
	if d.QuitCalled != 1 {
		t.Fatalf("expected driver to be quit got %d\n", d.QuitCalled)
	}
	if !strings.Contains(out.String(), "chrome already exited") {
		t.Fatalf("expected quit error to be logged got %q\n", out.String())
	}
}

func TestQuitAllClosesOnDriverError(t *testing.T) {
	ctx := context.Background()
	b, d := openLogin(t)
	d.QuitFn = func(ctx context.Context) error {
		return errors.New("chrome already exited")
	}

	if err := b.QuitAll(ctx); err == nil {
		t.Fatalf("expected driver error to propagate")
	}
	if !b.IsClosed() {
		t.Fatalf("expected session to be closed after a failed quit")
	}
}

func TestCloseLastWindow(t *testing.T) {
	ctx := context.Background()
	b, d := openLogin(t)
	d.Windows = 2

	if err := b.CloseCurrent(ctx); err != nil {
		t.Fatalf("error closing: %s\n", err)
	}
	if b.IsClosed() {
		t.Fatalf("session should stay open while windows remain")
	}
	if err := b.CloseCurrent(ctx); err != nil {
		t.Fatalf("error closing last window: %s\n", err)
	}
	if !b.IsClosed() {
		t.Fatalf("closing the last window should close the session")
	}
	if d.QuitCalled != 1 {
		t.Fatalf("expected quit after last window closed")
	}
	if err := b.QuitAll(ctx); !errors.Is(err, boxk.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed got %v\n", err)
	}
}

type loginPage struct {
	box.Page
}

func (p loginPage) login(ctx context.Context, account string) (string, error) {
	if err := p.Driver.TypeText(ctx, "id,account", account); err != nil {
		return "", err
	}
	if err := p.Driver.Click(ctx, "id,submit"); err != nil {
		return "", err
	}
	return p.Driver.ReadText(ctx, "id,welcome-msg")
}

func TestPageObject(t *testing.T) {
	ctx := context.Background()
	b, _ := openLogin(t)
	defer b.QuitAll(ctx)

	page := loginPage{box.NewPage(b)}
	msg, err := page.login(ctx, "admin")
	if err != nil {
		t.Fatalf("error logging in: %s\n", err)
	}
	if msg != "Welcome, admin" {
		t.Fatalf("unexpected message %q\n", msg)
	}
}
