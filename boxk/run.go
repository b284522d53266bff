package boxk

import (
	"io"
	"time"
)

// Status of a step or a whole run
type Status int8

const (
	StatusPassed Status = iota + 1
	StatusFailed
	StatusSkipped
)

// StatusMap to display the status
var StatusMap = map[Status]string{
	StatusPassed:  "passed",
	StatusFailed:  "failed",
	StatusSkipped: "skipped",
}

func (s Status) String() string {
	if v, ok := StatusMap[s]; ok {
		return v
	}
	return "unknown"
}

// StepResult of executing a single case step
type StepResult struct {
	Row        int           `json:"row" msgpack:"row"`
	Index      int           `json:"index" msgpack:"index"`
	Action     string        `json:"action" msgpack:"action"`
	Locator    string        `json:"locator,omitempty" msgpack:"locator"`
	Value      string        `json:"value,omitempty" msgpack:"value"`
	Status     Status        `json:"status" msgpack:"status"`
	Error      string        `json:"error,omitempty" msgpack:"error"`
	Screenshot string        `json:"screenshot,omitempty" msgpack:"screenshot"`
	Duration   time.Duration `json:"duration" msgpack:"duration"`
}

// StatusText for templates
func (s *StepResult) StatusText() string {
	return s.Status.String()
}

// Run of one test case, across all its data rows
type Run struct {
	ID       string        `json:"id" msgpack:"id"`
	Name     string        `json:"name" msgpack:"name"`
	Browser  string        `json:"browser" msgpack:"browser"`
	Started  time.Time     `json:"started" msgpack:"started"`
	Finished time.Time     `json:"finished" msgpack:"finished"`
	Status   Status        `json:"status" msgpack:"status"`
	Steps    []*StepResult `json:"steps" msgpack:"steps"`
}

// StatusText for templates
func (r *Run) StatusText() string {
	return r.Status.String()
}

// Counts of passed, failed and skipped steps
func (r *Run) Counts() (passed, failed, skipped int) {
	for _, s := range r.Steps {
		switch s.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

// HistoryStorer persists runs
type HistoryStorer interface {
	AddRun(run *Run) error
	GetRun(id string) (*Run, error)
	Runs(limit int) ([]*Run, error)
	ExportJSON(w io.Writer) error
}
