package toolparse

import (
	"reflect"
	"testing"

	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

func TestParseJSONBlock(t *testing.T) {
	text := `Sure, let me check.
<tool_call>
{"name": "read_file", "arguments": {"path": "README.md"}}
</tool_call>
Done.`
	got := Parse(text)
	want := []model.ToolCall{{Name: model.ToolReadFile, Args: []string{"README.md"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestParseJSONBlockStringifiedArguments(t *testing.T) {
	text := `<tool_call>{"name":"run_command","arguments":"{\"command\":\"ls -la\"}"}</tool_call>`
	got := Parse(text)
	want := []model.ToolCall{{Name: model.ToolRunCommand, Args: []string{"ls -la"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestParseJSONBlockUnknownToolIgnored(t *testing.T) {
	text := `<tool_call>{"name":"teleport","arguments":{}}</tool_call>`
	if got := Parse(text); len(got) != 0 {
		t.Fatalf("expected no calls, got %#v", got)
	}
}

func TestParseMalformedJSONFallsThroughToPhase2(t *testing.T) {
	text := `<tool_call>{not valid json</tool_call> @read_file("a.txt")`
	got := Parse(text)
	want := []model.ToolCall{{Name: model.ToolReadFile, Args: []string{"a.txt"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestParseInlineWriteFileMultiline(t *testing.T) {
	text := `@write_file(notes.txt, """line one
line two""")`
	got := Parse(text)
	want := []model.ToolCall{{Name: model.ToolWriteFile, Args: []string{"notes.txt", "line one\nline two"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestParseInlineSearchFiles(t *testing.T) {
	got := Parse(`@search_files(*.go, TODO)`)
	want := []model.ToolCall{{Name: model.ToolSearchFiles, Args: []string{"*.go", "TODO"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestParseInlineQuotedForms(t *testing.T) {
	cases := []struct {
		text string
		arg  string
	}{
		{`@read_file("a/b.txt")`, "a/b.txt"},
		{`@read_file('a/b.txt')`, "a/b.txt"},
		{`@read_file(a/b.txt)`, "a/b.txt"},
		{`@report_error("she said \"stop\"")`, `she said "stop"`},
	}
	for _, c := range cases {
		got := Parse(c.text)
		if len(got) != 1 || got[0].Args[0] != c.arg {
			t.Errorf("text %q: got %#v want arg %q", c.text, got, c.arg)
		}
	}
}

func TestParseWrapperPrefixesStripped(t *testing.T) {
	text := `[TOOL_CALL] @read_file("a.txt") [TOOL_CALLS]`
	got := Parse(text)
	want := []model.ToolCall{{Name: model.ToolReadFile, Args: []string{"a.txt"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestParseEmptyInputReturnsEmpty(t *testing.T) {
	if got := Parse(""); len(got) != 0 {
		t.Fatalf("expected empty, got %#v", got)
	}
}

func TestParseTextualOrder(t *testing.T) {
	text := `@read_file("a.txt") then @list_dir(".") then @run_command(ls)`
	got := Parse(text)
	if len(got) != 3 {
		t.Fatalf("expected 3 calls, got %d: %#v", len(got), got)
	}
	if got[0].Name != model.ToolReadFile || got[1].Name != model.ToolListDir || got[2].Name != model.ToolRunCommand {
		t.Fatalf("unexpected order: %#v", got)
	}
}

func TestRoundTripSerializeReparse(t *testing.T) {
	originals := []model.ToolCall{
		{Name: model.ToolReadFile, Args: []string{"a.txt"}},
		{Name: model.ToolWriteFile, Args: []string{"b.txt", "hello\nworld"}},
		{Name: model.ToolSearchFiles, Args: []string{"*.go", "TODO"}},
		{Name: model.ToolReportError, Args: []string{`quote " inside`}},
	}
	for _, tc := range originals {
		serialized := Serialize(tc)
		reparsed := Parse(serialized)
		if len(reparsed) != 1 {
			t.Fatalf("serialize(%#v) = %q did not reparse to exactly one call: %#v", tc, serialized, reparsed)
		}
		if !reflect.DeepEqual(reparsed[0], tc) {
			t.Fatalf("round trip mismatch: original %#v reparsed %#v (via %q)", tc, reparsed[0], serialized)
		}
	}
}
