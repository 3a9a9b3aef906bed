package delegation

import (
	"reflect"
	"testing"

	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

func TestParseBasic(t *testing.T) {
	got := Parse(`@delegate(QA, "run the tests")`)
	want := []model.Delegation{{TargetName: "QA", Task: "run the tests"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestParseSingleQuoted(t *testing.T) {
	got := Parse(`@delegate(Dev, 'fix the bug')`)
	want := []model.Delegation{{TargetName: "Dev", Task: "fix the bug"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestParseEscapedQuotesAndEmbedded(t *testing.T) {
	got := Parse(`@delegate(Dev, "say \"hi\" to QA")`)
	want := []model.Delegation{{TargetName: "Dev", Task: `say "hi" to QA`}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

// TestCodeBlockImmunity checks that delegations parsed from text T equal
// delegations parsed from T preceded by a fenced block containing
// arbitrary @delegate(...) text.
func TestCodeBlockImmunity(t *testing.T) {
	text := "Here's an example:\n```\n@delegate(Developer, \"example\")\n```\nNow for real: @delegate(QA, \"run tests\")"
	got := Parse(text)
	want := []model.Delegation{{TargetName: "QA", Task: "run tests"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestInlineBacktickImmunity(t *testing.T) {
	text := "Use `@delegate(Foo, \"bar\")` as the syntax. Real one: @delegate(QA, \"go\")"
	got := Parse(text)
	want := []model.Delegation{{TargetName: "QA", Task: "go"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestParseNoMatch(t *testing.T) {
	if got := Parse("nothing to see here"); len(got) != 0 {
		t.Fatalf("expected none, got %#v", got)
	}
}

func TestParseMultipleInOrder(t *testing.T) {
	text := `@delegate(D1, "task one") then @delegate(D1, "task two") and @delegate(D2, "task three")`
	got := Parse(text)
	if len(got) != 3 {
		t.Fatalf("expected 3, got %#v", got)
	}
	if got[0].Task != "task one" || got[1].Task != "task two" || got[2].Task != "task three" {
		t.Fatalf("unexpected order: %#v", got)
	}
}

func TestParseIncrementalGrowingPrefix(t *testing.T) {
	full := `@delegate(D1, "one") some more text @delegate(D2, "two")`
	prefixAfterFirst := full[:len(`@delegate(D1, "one")`)]
	got1 := Parse(prefixAfterFirst)
	if len(got1) != 1 || got1[0].Task != "one" {
		t.Fatalf("incremental prefix parse = %#v", got1)
	}
	got2 := Parse(full)
	if len(got2) != 2 {
		t.Fatalf("full parse = %#v", got2)
	}
	// The caller's detectedCount mechanism  relies on
	// indices 0..n being stable as the prefix grows; verify index 0 is
	// unchanged between the partial and full parse.
	if got1[0] != got2[0] {
		t.Fatalf("index 0 changed between partial and full parse: %#v vs %#v", got1[0], got2[0])
	}
}
