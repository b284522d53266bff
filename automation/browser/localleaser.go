package browser

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"gitlab.com/boxker/boxk"
)

var startupFlags = []string{
	"--enable-automation",
	"--test-type",
	"--disable-client-side-phishing-detection",
	"--disable-component-update",
	"--disable-infobars",
	"--disable-ntp-popular-sites",
	"--disable-ntp-most-likely-favicons-from-server",
	"--disable-sync-app-list",
	"--disable-domain-reliability",
	"--disable-background-networking",
	"--disable-sync",
	"--disable-new-browser-first-run",
	"--disable-default-apps",
	"--disable-popup-blocking",
	"--disable-extensions",
	"--disable-features=TranslateUI",
	"--disable-gpu",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--allow-running-insecure-content",
	"--no-first-run",
	"--safebrowsing-disable-auto-update",
	"--safebrowsing-disable-download-protection",
	"--password-store=basic",
}

type leased struct {
	browser *gcd.Gcd
	profile string
}

// LocalLeaser starts chrome processes on this host, each with a random
// debug port and its own temporary profile
type LocalLeaser struct {
	browserLock sync.RWMutex
	browsers    map[string]*leased
	cfg         *boxk.BrowserConfig
}

// NewLocalLeaser for cfg, chrome_path, profile_dir, headless and the window
// size are honoured
func NewLocalLeaser(cfg *boxk.BrowserConfig) *LocalLeaser {
	return &LocalLeaser{
		browsers: make(map[string]*leased),
		cfg:      cfg,
	}
}

func (s *LocalLeaser) flags() []string {
	flags := make([]string, 0, len(startupFlags)+3)
	flags = append(flags, startupFlags...)
	flags = append(flags, fmt.Sprintf("--window-size=%d,%d", s.cfg.WindowWidth, s.cfg.WindowHeight))
	if s.cfg.Headless {
		flags = append(flags, "--headless")
	}
	return append(flags, "about:blank")
}

// Acquire starts a new chrome and returns its debug port
func (s *LocalLeaser) Acquire() (string, error) {
	chrome, tmp := FindChrome(s.cfg.ChromePath)
	if s.cfg.ProfileDir != "" {
		tmp = s.cfg.ProfileDir
		if err := os.MkdirAll(tmp, 0755); err != nil {
			return "", errors.Wrap(err, "failed to create profile directory")
		}
	}
	profileDir, err := randProfile(tmp)
	if err != nil {
		return "", errors.Wrap(err, "failed to create temporary profile directory")
	}
	port := randPort()

	b := gcd.NewChromeDebugger()
	b.AddFlags(s.flags())
	if err := b.StartProcess(chrome, profileDir, port); err != nil {
		os.RemoveAll(profileDir)
		return "", errors.Wrapf(err, "failed to start %s", chrome)
	}
	log.Debug().Str("chrome", chrome).Str("port", port).Str("profile", profileDir).Msg("started browser")

	s.browserLock.Lock()
	s.browsers[port] = &leased{browser: b, profile: profileDir}
	s.browserLock.Unlock()

	return port, nil
}

// Count of running browsers
func (s *LocalLeaser) Count() (string, error) {
	s.browserLock.RLock()
	count := len(s.browsers)
	s.browserLock.RUnlock()
	return strconv.Itoa(count), nil
}

// Return stops the browser listening on port and removes its profile
func (s *LocalLeaser) Return(port string) error {
	s.browserLock.Lock()
	defer s.browserLock.Unlock()

	b, ok := s.browsers[port]
	if !ok {
		return errors.Wrapf(ErrBrowserNotLeased, "port %s", port)
	}
	delete(s.browsers, port)

	exitErr := b.browser.ExitProcess()
	if err := os.RemoveAll(b.profile); err != nil {
		log.Warn().Err(err).Str("profile", b.profile).Msg("failed to remove profile")
	}
	return exitErr
}

// Cleanup stops every browser this leaser started
func (s *LocalLeaser) Cleanup() (string, error) {
	s.browserLock.RLock()
	ports := make([]string, 0, len(s.browsers))
	for port := range s.browsers {
		ports = append(ports, port)
	}
	s.browserLock.RUnlock()

	for _, port := range ports {
		if err := s.Return(port); err != nil {
			log.Warn().Err(err).Str("port", port).Msg("failed to return browser")
		}
	}
	return "ok", nil
}
