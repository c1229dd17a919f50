// Package testutil holds assertions shared by package tests.
package testutil

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// TB is the subset of testing.TB used by the helpers.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// Diff returns a unified diff between want and got, or "" when they match.
func Diff(name, want, got string) string {
	if want == got {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: fmt.Sprintf("%s expected", name),
		ToFile:   fmt.Sprintf("%s actual", name),
		Context:  3,
	}
	udiff, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("diff %s: %v\nexpected: %q\nactual:   %q", name, err, want, got)
	}
	// Whitespace-only differences produce an unreadable diff.
	return fmt.Sprintf("%s\nexpected: %q\nactual:   %q", udiff, want, got)
}

// EqualScript reports a unified diff when two scripts differ.
func EqualScript(t TB, name, want, got string) {
	t.Helper()
	if d := Diff(name, want, got); d != "" {
		t.Errorf("\n%s", d)
	}
}

// RequireScript is EqualScript but stops the test.
func RequireScript(t TB, name, want, got string) {
	t.Helper()
	if d := Diff(name, want, got); d != "" {
		t.Fatalf("\n%s", d)
	}
}
