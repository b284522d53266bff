package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gitlab.com/boxker/boxk"
	"gitlab.com/boxker/report"
)

func testMakeRun() *boxk.Run {
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &boxk.Run{
		ID:       "0b5c7a52",
		Name:     "login <admin>",
		Browser:  "chrome",
		Started:  started,
		Finished: started.Add(2500 * time.Millisecond),
		Status:   boxk.StatusFailed,
		Steps: []*boxk.StepResult{
			{Row: 1, Index: 0, Action: "navigate", Value: "http://example.test/login", Status: boxk.StatusPassed, Duration: 1200 * time.Millisecond},
			{Row: 1, Index: 1, Action: "click", Locator: "id,submit", Status: boxk.StatusFailed, Error: "element not interactable", Screenshot: "shots/row1.png"},
			{Row: 1, Index: 2, Action: "text", Locator: "id,welcome-msg", Status: boxk.StatusSkipped},
		},
	}
}

func TestRender(t *testing.T) {
	out, err := report.Render(testMakeRun(), "")
	if err != nil {
		t.Fatalf("error rendering: %s\n", err)
	}
	for _, want := range []string{
		"boxker test report",
		"login &lt;admin&gt;",
		"0b5c7a52",
		"1 passed, 1 failed, 1 skipped",
		"element not interactable",
		`href="shots/row1.png"`,
		"2.5s",
		"1.2s",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected report to contain %q\n%s\n", want, out)
		}
	}
	if strings.Contains(out, "no steps were run") {
		t.Fatalf("expected steps to be listed")
	}
}

func TestRenderEmpty(t *testing.T) {
	run := &boxk.Run{ID: "empty", Name: "nothing", Status: boxk.StatusSkipped}
	out, err := report.Render(run, "nightly")
	if err != nil {
		t.Fatalf("error rendering: %s\n", err)
	}
	if !strings.Contains(out, "nightly") || !strings.Contains(out, "no steps were run") {
		t.Fatalf("unexpected report\n%s\n", out)
	}
}

func TestWriteReport(t *testing.T) {
	dir, err := os.MkdirTemp("", "boxkerreport")
	if err != nil {
		t.Fatalf("error creating temp dir: %s\n", err)
	}
	defer os.RemoveAll(dir)

	path, err := report.WriteReport(filepath.Join(dir, "out"), testMakeRun(), "")
	if err != nil {
		t.Fatalf("error writing report: %s\n", err)
	}
	if path != filepath.Join(dir, "out", "0b5c7a52.html") {
		t.Fatalf("unexpected path %s\n", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("error reading report: %s\n", err)
	}
	if !strings.Contains(string(raw), "<table id=\"steps\">") {
		t.Fatalf("unexpected report content\n%s\n", raw)
	}
}
