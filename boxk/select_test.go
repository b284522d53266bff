package boxk_test

import (
	"testing"

	"github.com/pkg/errors"
	"gitlab.com/boxker/boxk"
)

func TestParseSelectMode(t *testing.T) {
	expected := map[string]boxk.SelectMode{
		"t":     boxk.SelectText,
		"text":  boxk.SelectText,
		"v":     boxk.SelectValue,
		"value": boxk.SelectValue,
		"i":     boxk.SelectIndex,
		"index": boxk.SelectIndex,
	}
	for in, mode := range expected {
		got, err := boxk.ParseSelectMode(in)
		if err != nil {
			t.Fatalf("error parsing %s: %s\n", in, err)
		}
		if got != mode {
			t.Fatalf("expected %s got %s\n", mode, got)
		}
	}

	for _, in := range []string{"", "label", "Text", "idx"} {
		_, err := boxk.ParseSelectMode(in)
		if !errors.Is(err, boxk.ErrInvalidSelectMode) {
			t.Fatalf("expected ErrInvalidSelectMode for %q got %v\n", in, err)
		}
	}
}

func TestParseBrowser(t *testing.T) {
	if boxk.ParseBrowser("Chrome") != boxk.Chrome {
		t.Fatalf("expected chrome")
	}
	if boxk.ParseBrowser("Firefox") != boxk.Firefox {
		t.Fatalf("expected firefox")
	}
	for _, name := range []string{"Ie", "", "chrome", "Safari"} {
		if boxk.ParseBrowser(name) != boxk.InternetExplorer {
			t.Fatalf("expected %q to fall back to internet explorer\n", name)
		}
	}
}

func TestFrameRef(t *testing.T) {
	if !boxk.FrameByIndex(0).IsIndex() {
		t.Fatalf("index 0 ref should be index based")
	}
	if boxk.FrameByName("main").IsIndex() {
		t.Fatalf("name ref should not be index based")
	}
	ref := boxk.FrameByLocator(boxk.ByID("content"))
	if ref.String() != "id,content" {
		t.Fatalf("unexpected frame string %s\n", ref)
	}
}
