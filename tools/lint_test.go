package tools

import (
	"strings"
	"testing"
)

func codeSet(issues []*LintIssue) map[string]bool {
	set := make(map[string]bool)
	for _, issue := range issues {
		set[issue.Code] = true
	}
	return set
}

func TestLint_ValidImage(t *testing.T) {
	image := `@80000000
93 02 10 00
73 00 10 00
`
	linter := NewLinter(DefaultLintOptions())
	issues := linter.Lint(strings.NewReader(image), "test.hex")

	if linter.HasErrors() {
		t.Errorf("expected no errors for a valid image, got %v", issues)
	}
}

func TestLint_MissingAddrDirective(t *testing.T) {
	image := `93 02 10 00
`
	linter := NewLinter(DefaultLintOptions())
	issues := linter.Lint(strings.NewReader(image), "test.hex")

	if !codeSet(issues)["MISSING_ADDR"] {
		t.Errorf("expected MISSING_ADDR, got %v", issues)
	}
}

func TestLint_NoAddrAtAll(t *testing.T) {
	linter := NewLinter(DefaultLintOptions())
	issues := linter.Lint(strings.NewReader(""), "test.hex")

	if !codeSet(issues)["NO_ADDR"] {
		t.Errorf("expected NO_ADDR for an empty image, got %v", issues)
	}
}

func TestLint_BadAddrDirective(t *testing.T) {
	image := `@zzzz
93 02 10 00
`
	linter := NewLinter(DefaultLintOptions())
	issues := linter.Lint(strings.NewReader(image), "test.hex")

	if !codeSet(issues)["BAD_ADDR"] {
		t.Errorf("expected BAD_ADDR, got %v", issues)
	}
}

func TestLint_MalformedByteToken(t *testing.T) {
	image := `@80000000
93 02 1 00
`
	linter := NewLinter(DefaultLintOptions())
	issues := linter.Lint(strings.NewReader(image), "test.hex")

	if !codeSet(issues)["BAD_TOKEN"] {
		t.Errorf("expected BAD_TOKEN, got %v", issues)
	}
}

func TestLint_OutOfRange(t *testing.T) {
	image := `@00001000
93 02 10 00
`
	linter := NewLinter(DefaultLintOptions())
	issues := linter.Lint(strings.NewReader(image), "test.hex")

	if !codeSet(issues)["OUT_OF_RANGE"] {
		t.Errorf("expected OUT_OF_RANGE, got %v", issues)
	}
}

func TestLint_OverlappingSegments(t *testing.T) {
	image := `@80000000
93 02 10 00 93 02 10 00
@80000002
00 00 00 00
`
	linter := NewLinter(DefaultLintOptions())
	issues := linter.Lint(strings.NewReader(image), "test.hex")

	if !codeSet(issues)["OVERLAP"] {
		t.Errorf("expected OVERLAP, got %v", issues)
	}
}

func TestLint_UnalignedSegment(t *testing.T) {
	image := `@80000001
93 02 10 00
`
	linter := NewLinter(DefaultLintOptions())
	issues := linter.Lint(strings.NewReader(image), "test.hex")

	if !codeSet(issues)["UNALIGNED_SEGMENT"] {
		t.Errorf("expected UNALIGNED_SEGMENT, got %v", issues)
	}
}

func TestLint_StrictTreatsWarningsAsErrors(t *testing.T) {
	image := `@80000001
93 02 10 00
`
	opts := DefaultLintOptions()
	opts.Strict = true
	linter := NewLinter(opts)
	linter.Lint(strings.NewReader(image), "test.hex")

	// UNALIGNED_SEGMENT is LintInfo, not a warning, so strict mode alone
	// shouldn't flip HasErrors here; add an overlap to confirm strict mode
	// actually elevates a warning.
	linter2 := NewLinter(opts)
	image2 := `@80000000
93 02 10 00 93 02 10 00
@80000002
00 00 00 00
`
	linter2.Lint(strings.NewReader(image2), "test.hex")
	if !linter2.HasErrors() {
		t.Error("expected strict mode to treat an overlap warning as an error")
	}
}

func TestLintIssue_String(t *testing.T) {
	issue := &LintIssue{Level: LintError, Line: 3, Message: "bad token", Code: "BAD_TOKEN"}
	s := issue.String()
	if !strings.Contains(s, "line 3") || !strings.Contains(s, "BAD_TOKEN") {
		t.Errorf("unexpected issue string: %s", s)
	}
}
