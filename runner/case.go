package runner

import (
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"gitlab.com/boxker/boxk"
	"gitlab.com/boxker/check"
	"gitlab.com/boxker/data"
)

// Actions a step can perform
const (
	ActionNavigate     = "navigate"
	ActionType         = "type"
	ActionClick        = "click"
	ActionFrame        = "frame"
	ActionDefaultFrame = "default_frame"
	ActionText         = "text"
	ActionSelect       = "select"
	ActionWait         = "wait"
	ActionScreenshot   = "screenshot"
	ActionMaximize     = "maximize"
	ActionSQL          = "sql"
	ActionClose        = "close"
	ActionQuit         = "quit"
)

// needsLocator actions that must carry a locator
var needsLocator = map[string]bool{
	ActionType:   true,
	ActionClick:  true,
	ActionText:   true,
	ActionSelect: true,
}

var knownActions = map[string]bool{
	ActionNavigate:     true,
	ActionType:         true,
	ActionClick:        true,
	ActionFrame:        true,
	ActionDefaultFrame: true,
	ActionText:         true,
	ActionSelect:       true,
	ActionWait:         true,
	ActionScreenshot:   true,
	ActionMaximize:     true,
	ActionSQL:          true,
	ActionClose:        true,
	ActionQuit:         true,
}

// comparisons a step can check its result with
var comparisons = map[check.Kind]bool{
	check.KindEqual:    true,
	check.KindNotEqual: true,
	check.KindIn:       true,
	check.KindNotIn:    true,
}

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// DataSource binds each row of an excel sheet to a run of the case
type DataSource struct {
	File  string `yaml:"file"`
	Sheet string `yaml:"sheet"`
}

// Step of a case. Locator, Value and Expect may hold ${column} placeholders.
type Step struct {
	Action  string `yaml:"action"`
	Locator string `yaml:"locator"`
	Value   string `yaml:"value"`
	Index   *int   `yaml:"index"`
	Mode    string `yaml:"mode"`
	Expect  string `yaml:"expect"`
	Check   string `yaml:"check"`
}

// Case is a test case file
type Case struct {
	Name         string      `yaml:"name"`
	Browser      string      `yaml:"browser"`
	ImplicitWait int         `yaml:"implicit_wait"`
	Data         *DataSource `yaml:"data"`
	Steps        []*Step     `yaml:"steps"`

	dir string
}

// LoadCase decodes and validates the case file at path
func LoadCase(path string) (*Case, error) {
	c := &Case{}
	if err := data.DecodeYAML(path, c); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	c.dir = filepath.Dir(abs)
	if c.Name == "" {
		c.Name = filepath.Base(path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid case %s", path)
	}
	return c, nil
}

// Validate every step up front so a bad case fails before a browser starts
func (c *Case) Validate() error {
	if len(c.Steps) == 0 {
		return errors.New("case has no steps")
	}
	for i, s := range c.Steps {
		if !knownActions[s.Action] {
			return errors.Errorf("step %d: unknown action %q", i, s.Action)
		}
		if needsLocator[s.Action] && s.Locator == "" {
			return errors.Errorf("step %d: %s requires a locator", i, s.Action)
		}
		switch s.Action {
		case ActionNavigate:
			if s.Value == "" {
				return errors.Errorf("step %d: navigate requires a value", i)
			}
		case ActionSelect:
			if s.Mode != "" {
				if _, err := boxk.ParseSelectMode(s.Mode); err != nil {
					return errors.Wrapf(err, "step %d", i)
				}
			}
		case ActionWait:
			if _, err := strconv.ParseFloat(s.Value, 64); err != nil {
				return errors.Errorf("step %d: wait requires seconds, got %q", i, s.Value)
			}
		case ActionSQL:
			if s.Value == "" {
				return errors.Errorf("step %d: sql requires a statement", i)
			}
		}
		if s.Check != "" && !comparisons[check.Kind(s.Check)] {
			return errors.Errorf("step %d: unknown check %q", i, s.Check)
		}
	}
	if c.Data != nil && (c.Data.File == "" || c.Data.Sheet == "") {
		return errors.New("data requires a file and a sheet")
	}
	return nil
}

// Records of the case's data sheet, a single empty record without one
func (c *Case) Records() ([]map[string]string, error) {
	if c.Data == nil {
		return []map[string]string{{}}, nil
	}
	path, err := data.ProjectPath(c.dir, c.Data.File)
	if err != nil {
		return nil, err
	}
	sheet, err := data.ReadExcelSheet(path, c.Data.Sheet)
	if err != nil {
		return nil, err
	}
	return sheet.Records(), nil
}

// Bind replaces ${column} placeholders with values from record, unknown
// columns are left as is
func (s *Step) Bind(record map[string]string) *Step {
	bound := *s
	bound.Locator = bind(s.Locator, record)
	bound.Value = bind(s.Value, record)
	bound.Expect = bind(s.Expect, record)
	return &bound
}

func bind(in string, record map[string]string) string {
	return placeholder.ReplaceAllStringFunc(in, func(m string) string {
		if v, ok := record[m[2:len(m)-1]]; ok {
			return v
		}
		return m
	})
}
