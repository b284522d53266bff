package webdriver

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"gitlab.com/boxker/boxk"
)

var browserNames = map[boxk.Browser]string{
	boxk.Chrome:           "chrome",
	boxk.Firefox:          "firefox",
	boxk.InternetExplorer: "internet explorer",
}

var strategies = map[boxk.Strategy]string{
	boxk.StrategyID:              selenium.ByID,
	boxk.StrategyClassName:       selenium.ByClassName,
	boxk.StrategyName:            selenium.ByName,
	boxk.StrategyLinkText:        selenium.ByLinkText,
	boxk.StrategyPartialLinkText: selenium.ByPartialLinkText,
	boxk.StrategyXPath:           selenium.ByXPATH,
	boxk.StrategyCSSSelector:     selenium.ByCSSSelector,
	boxk.StrategyTagName:         selenium.ByTagName,
}

// newRemote is swapped out in tests
var newRemote = selenium.NewRemote

// Capabilities for kind as configured
func Capabilities(kind boxk.Browser, cfg *boxk.BrowserConfig) selenium.Capabilities {
	caps := selenium.Capabilities{"browserName": browserNames[kind]}
	switch kind {
	case boxk.Chrome:
		chromeCaps := chrome.Capabilities{Path: cfg.ChromePath}
		if cfg.Headless {
			chromeCaps.Args = append(chromeCaps.Args, "--headless")
		}
		caps.AddChrome(chromeCaps)
	case boxk.Firefox:
		if cfg.Headless {
			caps.AddFirefox(firefox.Capabilities{Args: []string{"-headless"}})
		}
	}
	return caps
}

// Session is a boxk.Driver over a webdriver session
type Session struct {
	id     int64
	wd     selenium.WebDriver
	logger zerolog.Logger
}

// Open a webdriver session for kind at cfg.WebDriverURL, an empty url uses
// the selenium default of a local server on port 4444
func Open(kind boxk.Browser, cfg *boxk.BrowserConfig) (*Session, error) {
	wd, err := newRemote(Capabilities(kind, cfg), cfg.WebDriverURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s session", browserNames[kind])
	}
	s := NewSession(wd)
	s.logger.Info().Str("browser", browserNames[kind]).Str("webdriver_session", wd.SessionID()).Msg("webdriver session started")
	return s, nil
}

// NewSession wraps an existing webdriver session
func NewSession(wd selenium.WebDriver) *Session {
	s := &Session{id: boxk.GetSessionID(), wd: wd}
	s.logger = log.With().Int64("session", s.id).Logger()
	return s
}

// ID of this session
func (s *Session) ID() int64 {
	return s.id
}

// Navigate to url, the remote end waits for the load to complete
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.wd.Get(url); err != nil {
		if isCode(err, "invalid session id") {
			return mapError(err)
		}
		return errors.Wrap(boxk.ErrNavigation, err.Error())
	}
	return nil
}

func (s *Session) find(loc boxk.Locator) ([]selenium.WebElement, error) {
	by, ok := strategies[loc.Strategy]
	if !ok {
		return nil, errors.Wrapf(boxk.ErrInvalidLocatorStrategy, "unsupported strategy %s", loc.Strategy)
	}
	found, err := s.wd.FindElements(by, loc.Value)
	if err != nil {
		if isCode(err, "no such element") {
			return nil, nil
		}
		return nil, mapError(err)
	}
	return found, nil
}

// FindAll elements matching loc, the remote end applies the implicit wait
func (s *Session) FindAll(ctx context.Context, loc boxk.Locator) ([]boxk.Element, error) {
	found, err := s.find(loc)
	if err != nil {
		return nil, err
	}
	eles := make([]boxk.Element, len(found))
	for i, we := range found {
		eles[i] = &Element{we: we}
	}
	return eles, nil
}

// SwitchFrame by index, by the element loc finds, or by name then id
func (s *Session) SwitchFrame(ctx context.Context, frame boxk.FrameRef) error {
	var target interface{}
	switch {
	case frame.IsIndex():
		target = frame.Index
	case frame.Locator != nil:
		found, err := s.find(*frame.Locator)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return errors.Wrapf(boxk.ErrElementNotFound, "no frame matched %s", frame)
		}
		target = found[0]
	default:
		found, err := s.find(boxk.ByName(frame.Name))
		if err != nil {
			return err
		}
		if len(found) == 0 {
			if found, err = s.find(boxk.ByID(frame.Name)); err != nil {
				return err
			}
		}
		if len(found) == 0 {
			return errors.Wrapf(boxk.ErrElementNotFound, "no frame named %s", frame.Name)
		}
		target = found[0]
	}
	return mapError(s.wd.SwitchFrame(target))
}

// SwitchToDefault returns to the top level browsing context
func (s *Session) SwitchToDefault(ctx context.Context) error {
	return mapError(s.wd.SwitchFrame(nil))
}

// SetImplicitWait on the remote end
func (s *Session) SetImplicitWait(wait time.Duration) error {
	return mapError(s.wd.SetImplicitWaitTimeout(wait))
}

// Screenshot of the current window as png
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	png, err := s.wd.Screenshot()
	return png, mapError(err)
}

// MaximizeWindow the current window
func (s *Session) MaximizeWindow(ctx context.Context) error {
	return mapError(s.wd.MaximizeWindow(""))
}

// CloseWindow closes the current window and switches to the first remaining one
func (s *Session) CloseWindow(ctx context.Context) (bool, error) {
	if err := s.wd.Close(); err != nil {
		return false, mapError(err)
	}
	handles, err := s.wd.WindowHandles()
	if err != nil {
		if isCode(err, "invalid session id") || isCode(err, "no such window") {
			return false, nil
		}
		return false, mapError(err)
	}
	if len(handles) == 0 {
		return false, nil
	}
	return true, mapError(s.wd.SwitchWindow(handles[0]))
}

// Quit ends the webdriver session
func (s *Session) Quit(ctx context.Context) error {
	s.logger.Info().Msg("quitting webdriver session")
	return mapError(s.wd.Quit())
}
