package browser

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"gitlab.com/boxker/boxk"
)

const pollInterval = 100 * time.Millisecond

// targetLister is the part of *gcd.Gcd used to manage tabs
type targetLister interface {
	CloseTab(target *gcd.ChromeTarget) error
	GetTargets() ([]*gcd.ChromeTarget, error)
}

// Session is a boxk.Driver over one leased chrome process
type Session struct {
	id           int64
	g            targetLister
	leaser       LeaserService
	port         string
	tabLock      sync.Mutex
	tab          *Tab
	implicitWait time.Duration
	navTimeout   time.Duration
	ctx          context.Context
	logger       zerolog.Logger
}

// Launch starts chrome as configured, or leases one from the leaser service
// when leaser_socket is set, and attaches to its first tab
func Launch(ctx context.Context, cfg *boxk.BrowserConfig) (*Session, error) {
	if cfg.LeaserSocket != "" {
		return LaunchWith(ctx, NewSocketLeaser(cfg.LeaserSocket), cfg)
	}
	return LaunchWith(ctx, NewLocalLeaser(cfg), cfg)
}

// LaunchWith leases a browser from leaser and attaches to its first tab
func LaunchWith(ctx context.Context, leaser LeaserService, cfg *boxk.BrowserConfig) (*Session, error) {
	port, err := leaser.Acquire()
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire browser")
	}

	g := gcd.NewChromeDebugger()
	if err := g.ConnectToInstance("localhost", port); err != nil {
		leaser.Return(port)
		return nil, errors.Wrap(err, "failed to connect to instance")
	}

	s := &Session{
		id:           boxk.GetSessionID(),
		g:            g,
		leaser:       leaser,
		port:         port,
		implicitWait: cfg.ImplicitWait(),
		navTimeout:   time.Duration(cfg.NavigationTimeout) * time.Second,
		ctx:          ctx,
	}
	s.logger = log.With().Int64("session", s.id).Str("port", port).Logger()

	target, err := g.GetFirstTab()
	if err != nil {
		leaser.Return(port)
		return nil, errors.Wrap(err, "failed to get first tab")
	}
	s.attach(target)
	s.logger.Info().Msg("chrome session started")
	return s, nil
}

func (s *Session) attach(target *gcd.ChromeTarget) {
	s.tab = NewTab(s.ctx, target)
	if s.navTimeout > 0 {
		s.tab.SetNavigationTimeout(s.navTimeout)
	}
}

func (s *Session) current() (*Tab, error) {
	s.tabLock.Lock()
	defer s.tabLock.Unlock()
	if s.tab == nil {
		return nil, ErrNoTabs
	}
	return s.tab, nil
}

// ID of this session
func (s *Session) ID() int64 {
	return s.id
}

// Navigate the current tab
func (s *Session) Navigate(ctx context.Context, url string) error {
	tab, err := s.current()
	if err != nil {
		return err
	}
	return tab.Navigate(ctx, url)
}

// FindAll polls until something matches loc or the implicit wait expires
func (s *Session) FindAll(ctx context.Context, loc boxk.Locator) ([]boxk.Element, error) {
	tab, err := s.current()
	if err != nil {
		return nil, err
	}

	found, err := s.poll(ctx, tab, loc)
	if err != nil {
		return nil, err
	}
	eles := make([]boxk.Element, len(found))
	for i, ele := range found {
		eles[i] = ele
	}
	return eles, nil
}

func (s *Session) poll(ctx context.Context, tab *Tab, loc boxk.Locator) ([]*Element, error) {
	deadline := time.Now().Add(s.implicitWait)
	for {
		found, err := tab.FindElements(ctx, loc)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 || !time.Now().Before(deadline) {
			return found, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// SwitchFrame of the current tab
func (s *Session) SwitchFrame(ctx context.Context, frame boxk.FrameRef) error {
	tab, err := s.current()
	if err != nil {
		return err
	}
	find := func(loc boxk.Locator) ([]*Element, error) {
		return s.poll(ctx, tab, loc)
	}
	return tab.SwitchFrame(ctx, frame, find)
}

// SwitchToDefault returns lookups to the top document
func (s *Session) SwitchToDefault(ctx context.Context) error {
	tab, err := s.current()
	if err != nil {
		return err
	}
	tab.resetFrame()
	return nil
}

// SetImplicitWait for lookups
func (s *Session) SetImplicitWait(wait time.Duration) error {
	s.implicitWait = wait
	return nil
}

// Screenshot of the current tab
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	tab, err := s.current()
	if err != nil {
		return nil, err
	}
	return tab.Screenshot(ctx)
}

// MaximizeWindow of the current tab
func (s *Session) MaximizeWindow(ctx context.Context) error {
	tab, err := s.current()
	if err != nil {
		return err
	}
	return tab.Maximize(ctx)
}

// CloseWindow closes the current tab and attaches to the next one if any.
// The current tab is kept if chrome refused to close it.
func (s *Session) CloseWindow(ctx context.Context) (bool, error) {
	s.tabLock.Lock()
	defer s.tabLock.Unlock()

	if s.tab == nil {
		return false, ErrNoTabs
	}
	if err := s.g.CloseTab(s.tab.t); err != nil {
		return false, errors.Wrap(err, "failed to close tab")
	}
	s.tab.Close()
	s.tab = nil

	targets, err := s.g.GetTargets()
	if err != nil {
		return false, errors.Wrap(err, "failed to list tabs")
	}
	for _, target := range targets {
		if target.Target != nil && target.Target.Type == "page" {
			s.attach(target)
			return true, nil
		}
	}
	return false, nil
}

// Quit closes the tab and returns the browser to the leaser
func (s *Session) Quit(ctx context.Context) error {
	s.tabLock.Lock()
	if s.tab != nil {
		s.tab.Close()
		s.tab = nil
	}
	s.tabLock.Unlock()

	s.logger.Info().Msg("returning browser")
	return s.leaser.Return(s.port)
}
