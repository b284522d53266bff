package report

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/gobuffalo/packr/v2"
	"github.com/pkg/errors"
	"gitlab.com/boxker/boxk"
)

const defaultTitle = "boxker test report"

var (
	templates = packr.New("report", "./templates")

	loadOnce sync.Once
	tpl      *pongo2.Template
	tplErr   error
)

type stepView struct {
	Row        int
	Index      int
	Action     string
	Locator    string
	Value      string
	Status     string
	Error      string
	Screenshot string
	Duration   string
}

func reportTemplate() (*pongo2.Template, error) {
	loadOnce.Do(func() {
		var src string
		src, tplErr = templates.FindString("report.html")
		if tplErr != nil {
			tplErr = errors.Wrap(tplErr, "report template missing")
			return
		}
		tpl, tplErr = pongo2.FromString(src)
		if tplErr != nil {
			tplErr = errors.Wrap(tplErr, "failed to parse report template")
		}
	})
	return tpl, tplErr
}

// Render the html report of run, title defaults to "boxker test report"
func Render(run *boxk.Run, title string) (string, error) {
	t, err := reportTemplate()
	if err != nil {
		return "", err
	}
	if title == "" {
		title = defaultTitle
	}

	steps := make([]stepView, len(run.Steps))
	for i, s := range run.Steps {
		steps[i] = stepView{
			Row:        s.Row,
			Index:      s.Index,
			Action:     s.Action,
			Locator:    s.Locator,
			Value:      s.Value,
			Status:     s.StatusText(),
			Error:      s.Error,
			Screenshot: s.Screenshot,
			Duration:   s.Duration.Round(time.Millisecond).String(),
		}
	}
	passed, failed, skipped := run.Counts()

	out, err := t.Execute(pongo2.Context{
		"title":    title,
		"run":      run,
		"status":   run.StatusText(),
		"started":  run.Started.Format(time.RFC1123),
		"duration": run.Finished.Sub(run.Started).Round(time.Millisecond).String(),
		"steps":    steps,
		"passed":   passed,
		"failed":   failed,
		"skipped":  skipped,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to render report for %s", run.ID)
	}
	return out, nil
}

// WriteReport renders run into <dir>/<run id>.html and returns the path
func WriteReport(dir string, run *boxk.Run, title string) (string, error) {
	out, err := Render(run, title)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create report dir %s", dir)
	}
	path := filepath.Join(dir, run.ID+".html")
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write report %s", path)
	}
	return path, nil
}
