package sanitize

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestValue_EscapesNewlineAndBackslash(t *testing.T) {
	got := Value("a\nb\\c", 100)
	want := `a\nb\\c`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestValue_NilRendersNone(t *testing.T) {
	if got := Value(nil, 100); got != "None" {
		t.Fatalf("expected None, got %q", got)
	}
}

func TestValue_EscapesControlCharacters(t *testing.T) {
	got := Value("x\r\ty\x00z\x1b[31m", 100)
	want := `x\r\ty\0z\x1b[31m`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestValue_StripsRemainingControlCharacters(t *testing.T) {
	got := Value("a\x01b\x07c\x0bd\x0ce\x1ff", 100)
	if got != "abcdef" {
		t.Fatalf("expected control characters stripped, got %q", got)
	}
}

func TestValue_DoesNotDoubleEscape(t *testing.T) {
	// A literal backslash-n must stay distinguishable from a real newline.
	literal := Value(`a\nb`, 100)
	real := Value("a\nb", 100)
	if literal == real {
		t.Fatalf("expected literal and real newline to differ, both %q", literal)
	}
	if literal != `a\\nb` {
		t.Fatalf("unexpected literal escape: %q", literal)
	}
}

func TestValue_TruncatesWithEllipsis(t *testing.T) {
	got := Value(strings.Repeat("x", 20), 10)
	if utf8.RuneCountInString(got) != 10 {
		t.Fatalf("expected 10 characters, got %d (%q)", utf8.RuneCountInString(got), got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if got != "xxxxxxx..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
}

func TestValue_ExactLengthIsNotTruncated(t *testing.T) {
	in := strings.Repeat("y", 10)
	if got := Value(in, 10); got != in {
		t.Fatalf("expected %q unchanged, got %q", in, got)
	}
}

func TestValue_TruncationCountsRunes(t *testing.T) {
	got := Value(strings.Repeat("工", 8), 5)
	if got != "工工..." {
		t.Fatalf("unexpected rune truncation: %q", got)
	}
}

func TestValue_TinyLimits(t *testing.T) {
	if got := Value("abcdef", 0); got != "" {
		t.Fatalf("expected empty result for zero limit, got %q", got)
	}
	if got := Value("abcdef", 2); got != ".." {
		t.Fatalf("expected ellipsis prefix for limit 2, got %q", got)
	}
	if got := Value("abcdef", 3); got != "..." {
		t.Fatalf("expected bare ellipsis for limit 3, got %q", got)
	}
}

func TestValue_ConvertsNonStrings(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{42, "42"},
		{true, "true"},
		{[]byte("raw\n"), `raw\n`},
		{errors.New("boom\nINFO fake"), `boom\nINFO fake`},
		{map[string]int{"a": 1}, "map[a:1]"},
	}
	for _, tc := range cases {
		if got := Value(tc.in, 100); got != tc.want {
			t.Fatalf("Value(%#v): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

type nilStringer struct{ name string }

func (s *nilStringer) String() string { return s.name }

func TestValue_NilPointerStringerDoesNotPanic(t *testing.T) {
	var s *nilStringer
	if got := Value(s, 100); got == "" {
		t.Fatal("expected a textual rendering for nil stringer")
	}
}

func TestValue_OutputIsSingleLine(t *testing.T) {
	inputs := []string{
		"line1\nline2",
		"cr\rreturn",
		"\x00\x01\x02\x1b\x7f",
		"2024-01-01 INFO forged\r\n2024-01-01 ERROR forged",
	}
	for _, in := range inputs {
		got := Value(in, DefaultMaxLength)
		if strings.ContainsAny(got, "\n\r\t\x00\x1b") {
			t.Fatalf("Value(%q) still contains raw control characters: %q", in, got)
		}
	}
}

func TestSpecializationsUseFixedLimits(t *testing.T) {
	long := strings.Repeat("a", 400)
	cases := []struct {
		name string
		fn   func(any) string
		max  int
	}{
		{"ToolName", ToolName, 100},
		{"Identifier", Identifier, 100},
		{"ThreadID", ThreadID, 100},
		{"AgentName", AgentName, 100},
		{"UserContent", UserContent, 200},
		{"Feedback", Feedback, 150},
	}
	for _, tc := range cases {
		got := tc.fn(long)
		if len(got) != tc.max {
			t.Fatalf("%s: expected length %d, got %d", tc.name, tc.max, len(got))
		}
		if tc.fn("a\nb") != `a\nb` {
			t.Fatalf("%s: expected shared escaping rule", tc.name)
		}
	}
}

func TestMessage_SanitizesValues(t *testing.T) {
	got := Message("[{thread_id}] Processing {tool_name}", map[string]any{
		"thread_id": "abc\n[INFO]",
		"tool_name": "my_tool",
	})
	want := `[abc\n[INFO]] Processing my_tool`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMessage_KeepsUnknownPlaceholders(t *testing.T) {
	got := Message("{known} and {missing}", map[string]any{"known": nil})
	if got != "None and {missing}" {
		t.Fatalf("unexpected message: %q", got)
	}
}
