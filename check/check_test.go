package check_test

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"gitlab.com/boxker/check"
)

func TestPassingChecks(t *testing.T) {
	var nilMap map[string]string
	checks := map[string]*check.AssertionError{
		"equal":          check.Equal("Welcome, user1", "Welcome, user1"),
		"not_equal":      check.NotEqual("a", "b"),
		"in substring":   check.In("user1", "Welcome, user1"),
		"in slice":       check.In("b", []string{"a", "b"}),
		"in map":         check.In("k", map[string]int{"k": 1}),
		"not_in":         check.NotIn("x", "Welcome"),
		"not_in slice":   check.NotIn("c", []string{"a", "b"}),
		"true":           check.True(true),
		"false":          check.False(false),
		"nil":            check.Nil(nil),
		"nil typed":      check.Nil(nilMap),
		"not_nil":        check.NotNil("x"),
		"compare equal":  check.Compare(check.KindEqual, 1, 1),
		"compare not_in": check.Compare(check.KindNotIn, "z", "abc"),
	}
	for name, err := range checks {
		if err != nil {
			t.Fatalf("%s: expected pass got %s\n", name, err)
		}
	}
}

func TestFailingChecks(t *testing.T) {
	checks := map[check.Kind]*check.AssertionError{
		check.KindEqual:    check.Equal("Welcome", "Welcome, user1"),
		check.KindNotEqual: check.NotEqual(1, 1),
		check.KindIn:       check.In("user2", "Welcome, user1"),
		check.KindNotIn:    check.NotIn("a", []string{"a", "b"}),
		check.KindTrue:     check.True(false),
		check.KindFalse:    check.False(true),
		check.KindNil:      check.Nil("x"),
		check.KindNotNil:   check.NotNil(nil),
	}
	for kind, err := range checks {
		if err == nil {
			t.Fatalf("%s: expected failure\n", kind)
		}
		if err.Kind != kind {
			t.Fatalf("expected kind %s got %s\n", kind, err.Kind)
		}
		if err.Message == "" || err.Detail == "" {
			t.Fatalf("%s: expected message and detail got %#v\n", kind, err)
		}
	}
}

func TestAssertionErrorFields(t *testing.T) {
	err := check.Equal("Welcome", "Welcome, user1")
	if err.Actual != "Welcome" || err.Expected != "Welcome, user1" {
		t.Fatalf("unexpected fields %#v\n", err)
	}
	if !strings.Contains(err.Error(), "Welcome, user1") {
		t.Fatalf("expected message to name expected value got %s\n", err.Error())
	}

	var wrapped error = errors.Wrap(err, "step 3")
	var target *check.AssertionError
	if !errors.As(wrapped, &target) || target.Kind != check.KindEqual {
		t.Fatalf("expected AssertionError to unwrap")
	}
}

func TestCompareUnknown(t *testing.T) {
	err := check.Compare(check.Kind("bigger"), 1, 2)
	if err == nil || !strings.Contains(err.Message, "unknown check") {
		t.Fatalf("expected unknown check error got %v\n", err)
	}
}
