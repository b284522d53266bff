package boxk

import (
	"os"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Backend selects the protocol used to drive the browser
type Backend string

const (
	// DevTools drives chrome directly over the devtools protocol
	DevTools Backend = "devtools"
	// WebDriver drives any browser through a webdriver server
	WebDriver Backend = "webdriver"
)

// BrowserConfig for starting a driver
type BrowserConfig struct {
	Name                string  `toml:"name"`
	Backend             Backend `toml:"backend"`
	WebDriverURL        string  `toml:"webdriver_url"`
	ChromePath          string  `toml:"chrome_path"`
	ProfileDir          string  `toml:"profile_dir"`
	LeaserSocket        string  `toml:"leaser_socket"`
	Headless            bool    `toml:"headless"`
	WindowWidth         int     `toml:"window_width"`
	WindowHeight        int     `toml:"window_height"`
	ImplicitWaitSeconds int     `toml:"implicit_wait"`
	NavigationTimeout   int     `toml:"navigation_timeout"`
	APITimeout          int     `toml:"api_timeout"`
}

// ImplicitWait as a duration
func (c *BrowserConfig) ImplicitWait() time.Duration {
	return time.Duration(c.ImplicitWaitSeconds) * time.Second
}

// LogConfig for the process wide logger
type LogConfig struct {
	Level   string `toml:"level"`
	File    string `toml:"file"`
	Console bool   `toml:"console"`
}

// ReportConfig where reports and failure screenshots are written
type ReportConfig struct {
	Dir   string   `toml:"dir"`
	Title string   `toml:"title"`
	Email bool     `toml:"email"`
	To    []string `toml:"to"`
}

// SMTPConfig for sending reports
type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	TLSMode  string `toml:"tls_mode"` // "", starttls or smtps
	AuthType string `toml:"auth_type"`
}

// DatabaseConfig for the test data database
type DatabaseConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
}

// Config for boxker
type Config struct {
	Browser  BrowserConfig  `toml:"browser"`
	Log      LogConfig      `toml:"log"`
	Report   ReportConfig   `toml:"report"`
	SMTP     SMTPConfig     `toml:"smtp"`
	Database DatabaseConfig `toml:"database"`
	DataPath string         `toml:"data_path"`
}

// DefaultConfig with every default applied
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in zero values
func (c *Config) ApplyDefaults() {
	if c.Browser.Name == "" {
		c.Browser.Name = "Chrome"
	}
	if c.Browser.Backend == "" {
		c.Browser.Backend = DevTools
	}
	if c.Browser.WindowWidth == 0 {
		c.Browser.WindowWidth = 1024
	}
	if c.Browser.WindowHeight == 0 {
		c.Browser.WindowHeight = 768
	}
	if c.Browser.NavigationTimeout == 0 {
		c.Browser.NavigationTimeout = 30
	}
	if c.Browser.APITimeout == 0 {
		c.Browser.APITimeout = 45
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "reports"
	}
	if c.Report.Title == "" {
		c.Report.Title = "boxker test report"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 25
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.DataPath == "" {
		c.DataPath = "boxkerdata"
	}
}

// LoadConfig decodes a toml config file and applies defaults
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config")
	}
	defer f.Close()

	cfg := &Config{}
	if err := toml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode config %s", path)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
