// Package delegation extracts @delegate(Agent,"task") commands from a
// growing string, excluding fenced and inline code spans. The excluded
// spans are located with regular expressions; the quoted task argument is
// read with a byte scan that honours backslash escapes.
package delegation

import (
	"regexp"
	"strings"

	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

var fencedBlockRe = regexp.MustCompile("(?s)```.*?```")
var inlineSpanRe = regexp.MustCompile("`[^`\n]*`")
var delegateOpenRe = regexp.MustCompile(`@delegate\(`)

// Parse returns, in textual order, every `@delegate(Agent,"task")`
// invocation in text that does not fall inside a fenced or inline
// backtick span.
func Parse(text string) []model.Delegation {
	excluded := excludedRanges(text)

	var out []model.Delegation
	for _, loc := range delegateOpenRe.FindAllStringIndex(text, -1) {
		start := loc[0]
		if inExcluded(excluded, start) {
			continue
		}
		rest := text[loc[1]:]
		d, ok := parseArgs(rest)
		if !ok {
			continue
		}
		out = append(out, d)
	}
	return out
}

type span struct{ start, end int }

func excludedRanges(text string) []span {
	var spans []span
	for _, loc := range fencedBlockRe.FindAllStringIndex(text, -1) {
		spans = append(spans, span{loc[0], loc[1]})
	}
	for _, loc := range inlineSpanRe.FindAllStringIndex(text, -1) {
		spans = append(spans, span{loc[0], loc[1]})
	}
	return spans
}

func inExcluded(spans []span, pos int) bool {
	for _, s := range spans {
		if pos >= s.start && pos < s.end {
			return true
		}
	}
	return false
}

// parseArgs parses `Agent, "task")` (or with single quotes) where Agent
// is everything up to the first comma, trimmed, and task is a quoted
// string with backslash escapes, requiring the closing quote to be
// followed by optional whitespace then `)`.
func parseArgs(rest string) (model.Delegation, bool) {
	commaIdx := strings.Index(rest, ",")
	if commaIdx < 0 {
		return model.Delegation{}, false
	}
	agent := strings.TrimSpace(rest[:commaIdx])
	if agent == "" {
		return model.Delegation{}, false
	}

	after := strings.TrimLeft(rest[commaIdx+1:], " \t\r\n")
	if len(after) == 0 {
		return model.Delegation{}, false
	}
	quote := after[0]
	if quote != '"' && quote != '\'' {
		return model.Delegation{}, false
	}
	task, ok := parseQuoted(after[1:], quote)
	if !ok {
		return model.Delegation{}, false
	}
	return model.Delegation{TargetName: agent, Task: task}, true
}

func parseQuoted(rest string, quote byte) (string, bool) {
	var sb strings.Builder
	i := 0
	for i < len(rest) {
		c := rest[i]
		if c == '\\' && i+1 < len(rest) {
			sb.WriteByte(rest[i+1])
			i += 2
			continue
		}
		if c == quote {
			tail := strings.TrimLeft(rest[i+1:], " \t\r\n")
			if strings.HasPrefix(tail, ")") {
				return sb.String(), true
			}
			return "", false
		}
		sb.WriteByte(c)
		i++
	}
	return "", false
}
