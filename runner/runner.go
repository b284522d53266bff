package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	uuid "github.com/satori/go.uuid"
	"gitlab.com/boxker/box"
	"gitlab.com/boxker/boxk"
	"gitlab.com/boxker/check"
	"gitlab.com/boxker/data"
	"gitlab.com/boxker/report"
)

// ErrNoDatabase when a sql step runs without a configured database
var ErrNoDatabase = errors.New("no database configured")

// DriverFactory starts a façade for a browser config
type DriverFactory func(ctx context.Context, cfg *boxk.BrowserConfig) (*box.BoxDriver, error)

// Sender delivers report mail
type Sender interface {
	Send(ctx context.Context, msg *report.Mail) error
}

// Runner executes cases, one browser per data row
type Runner struct {
	cfg       *boxk.Config
	history   boxk.HistoryStorer
	newDriver DriverFactory
	db        *data.DB
	mailer    Sender
	logger    zerolog.Logger
}

// New runner for cfg, history may be nil
func New(cfg *boxk.Config, history boxk.HistoryStorer) *Runner {
	return &Runner{
		cfg:       cfg,
		history:   history,
		newDriver: box.New,
		logger:    log.With().Str("component", "runner").Logger(),
	}
}

// SetDriverFactory replaces how façades are started
func (r *Runner) SetDriverFactory(f DriverFactory) {
	r.newDriver = f
}

// SetDB for sql steps
func (r *Runner) SetDB(db *data.DB) {
	r.db = db
}

// SetMailer enables emailing reports when the report config asks for it
func (r *Runner) SetMailer(m Sender) {
	r.mailer = m
}

// Execute runs c, stores the result, writes the report and emails it if
// configured. The run is returned even if storing or reporting failed.
func (r *Runner) Execute(ctx context.Context, c *Case) (*boxk.Run, string, error) {
	run, err := r.Run(ctx, c)
	if err != nil {
		return nil, "", err
	}

	if r.history != nil {
		if err := r.history.AddRun(run); err != nil {
			return run, "", errors.Wrap(err, "failed to store run")
		}
	}

	path, err := report.WriteReport(r.cfg.Report.Dir, run, r.cfg.Report.Title)
	if err != nil {
		return run, "", err
	}
	r.logger.Info().Str("case", run.Name).Str("status", run.StatusText()).Str("report", path).Msg("case finished")

	if r.cfg.Report.Email && r.mailer != nil {
		if err := r.mail(ctx, run, path); err != nil {
			return run, path, err
		}
	}
	return run, path, nil
}

func (r *Runner) mail(ctx context.Context, run *boxk.Run, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read report for mail")
	}
	return r.mailer.Send(ctx, &report.Mail{
		Subject:    fmt.Sprintf("%s: %s %s", r.cfg.Report.Title, run.Name, run.StatusText()),
		To:         r.cfg.Report.To,
		HTMLBody:   string(body),
		Attachment: &report.Attachment{Name: filepath.Base(path), ContentType: "text/html", Data: body},
	})
}

// Run every data row of c. Errors are only returned for a case that could not
// start at all, step failures are recorded in the run.
func (r *Runner) Run(ctx context.Context, c *Case) (*boxk.Run, error) {
	records, err := c.Records()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load data for %s", c.Name)
	}

	cfg := r.cfg.Browser
	if c.Browser != "" {
		cfg.Name = c.Browser
	}
	if c.ImplicitWait > 0 {
		cfg.ImplicitWaitSeconds = c.ImplicitWait
	}

	run := &boxk.Run{
		ID:      uuid.NewV4().String(),
		Name:    c.Name,
		Browser: cfg.Name,
		Started: time.Now(),
		Steps:   make([]*boxk.StepResult, 0),
	}
	logger := r.logger.With().Str("run", run.ID).Str("case", c.Name).Logger()

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := i + 1
		logger.Info().Int("row", row).Msg("starting row")
		run.Steps = append(run.Steps, r.runRow(ctx, logger, run.ID, &cfg, c, row, record)...)
	}

	run.Finished = time.Now()
	run.Status = boxk.StatusPassed
	if _, failed, _ := run.Counts(); failed > 0 {
		run.Status = boxk.StatusFailed
	}
	return run, nil
}

// runRow runs the steps of c with one façade, always released with QuitAll.
// After the first failure a screenshot is taken and the rest are skipped.
func (r *Runner) runRow(ctx context.Context, logger zerolog.Logger, runID string, cfg *boxk.BrowserConfig, c *Case, row int, record map[string]string) []*boxk.StepResult {
	results := make([]*boxk.StepResult, 0, len(c.Steps))

	d, err := r.newDriver(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Int("row", row).Msg("failed to start browser")
		results = append(results, &boxk.StepResult{Row: row, Index: -1, Action: "start", Value: cfg.Name, Status: boxk.StatusFailed, Error: err.Error()})
		for i, s := range c.Steps {
			results = append(results, &boxk.StepResult{Row: row, Index: i, Action: s.Action, Locator: s.Locator, Value: s.Value, Status: boxk.StatusSkipped})
		}
		return results
	}
	defer func() {
		if err := d.QuitAll(ctx); err != nil && !errors.Is(err, boxk.ErrSessionClosed) {
			logger.Warn().Err(err).Int("row", row).Msg("failed to quit browser")
		}
	}()

	failed := false
	for i, s := range c.Steps {
		step := s.Bind(record)
		res := &boxk.StepResult{Row: row, Index: i, Action: step.Action, Locator: step.Locator, Value: step.Value}
		results = append(results, res)
		if failed {
			res.Status = boxk.StatusSkipped
			continue
		}

		start := time.Now()
		err := r.exec(ctx, d, step, fmt.Sprintf("%s-%d-%d", runID, row, i))
		res.Duration = time.Since(start)
		if err == nil {
			res.Status = boxk.StatusPassed
			logger.Debug().Int("row", row).Int("step", i).Str("action", step.Action).Msg("step passed")
			continue
		}

		failed = true
		res.Status = boxk.StatusFailed
		res.Error = err.Error()
		res.Screenshot = r.failureScreenshot(ctx, d, fmt.Sprintf("%s-%d-%d-failed", runID, row, i))
		logger.Error().Err(err).Int("row", row).Int("step", i).Str("action", step.Action).Msg("step failed")
	}
	return results
}

// screenshotPath under the report dir and the path relative to it for the report
func (r *Runner) screenshotPath(name string) (string, string) {
	rel := filepath.Join("screenshots", name)
	if !strings.HasSuffix(rel, ".png") {
		rel += ".png"
	}
	return filepath.Join(r.cfg.Report.Dir, rel), filepath.ToSlash(rel)
}

func (r *Runner) failureScreenshot(ctx context.Context, d *box.BoxDriver, name string) string {
	if d.IsClosed() {
		return ""
	}
	path, rel := r.screenshotPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.logger.Warn().Err(err).Msg("failed to create screenshot dir")
		return ""
	}
	if err := d.Screenshot(ctx, path); err != nil {
		r.logger.Warn().Err(err).Msg("failed to take failure screenshot")
		return ""
	}
	return rel
}

func (r *Runner) exec(ctx context.Context, d *box.BoxDriver, s *Step, name string) error {
	switch s.Action {
	case ActionNavigate:
		return d.Navigate(ctx, s.Value)
	case ActionType:
		return d.TypeText(ctx, s.Locator, s.Value)
	case ActionClick:
		return d.Click(ctx, s.Locator)
	case ActionFrame:
		if s.Locator != "" {
			loc, err := boxk.ParseLocator(s.Locator)
			if err != nil {
				return err
			}
			return d.SwitchFrame(ctx, boxk.FrameByLocator(loc))
		}
		return d.SwitchToFrame(ctx, s.Value)
	case ActionDefaultFrame:
		return d.SwitchToDefault(ctx)
	case ActionText:
		return r.execText(ctx, d, s)
	case ActionSelect:
		mode := s.Mode
		if mode == "" {
			mode = boxk.SelectText.String()
		}
		return d.SelectOption(ctx, s.Locator, mode, s.Value)
	case ActionWait:
		secs, err := strconv.ParseFloat(s.Value, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid wait %q", s.Value)
		}
		return d.WaitImplicit(time.Duration(secs * float64(time.Second)))
	case ActionScreenshot:
		path := s.Value
		if path == "" {
			path, _ = r.screenshotPath(name)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return errors.Wrap(err, "failed to create screenshot dir")
		}
		return d.Screenshot(ctx, path)
	case ActionMaximize:
		return d.MaximizeWindow(ctx)
	case ActionSQL:
		return r.execSQL(ctx, s)
	case ActionClose:
		return d.CloseCurrent(ctx)
	case ActionQuit:
		return d.QuitAll(ctx)
	}
	return errors.Errorf("unknown action %q", s.Action)
}

func (r *Runner) execText(ctx context.Context, d *box.BoxDriver, s *Step) error {
	var text string
	var err error
	if s.Index != nil {
		text, err = d.ReadTextAt(ctx, s.Locator, *s.Index)
	} else {
		text, err = d.ReadText(ctx, s.Locator)
	}
	if err != nil {
		return err
	}
	return compare(s, text)
}

func (r *Runner) execSQL(ctx context.Context, s *Step) error {
	if r.db == nil {
		return ErrNoDatabase
	}
	stmt := strings.TrimSpace(s.Value)
	if !strings.EqualFold(strings.SplitN(stmt, " ", 2)[0], "select") {
		_, err := r.db.Execute(ctx, stmt)
		return err
	}

	rows, err := r.db.FetchAll(ctx, stmt)
	if err != nil {
		return err
	}
	if s.Expect == "" && s.Check == "" {
		return nil
	}
	actual := ""
	if len(rows) > 0 && len(rows[0]) > 0 {
		actual = fmt.Sprint(rows[0][0])
	}
	return compare(s, actual)
}

// compare actual against the step's expectation, nothing to do without one
func compare(s *Step, actual string) error {
	if s.Expect == "" && s.Check == "" {
		return nil
	}
	kind := check.KindEqual
	if s.Check != "" {
		kind = check.Kind(s.Check)
	}
	if err := check.Compare(kind, actual, s.Expect); err != nil {
		return err
	}
	return nil
}
