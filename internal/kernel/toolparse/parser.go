// Package toolparse extracts an ordered sequence of ToolCall from
// free-form model output, supporting two call syntaxes side by side.
// The scan is a pure, total function — malformed or unrecognised input
// is skipped rather than erroring. It reuses the general stateful-scan
// technique demonstrated by internal/tools/security/shell_parser.go's
// quote-aware scanning.
package toolparse

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

// wrapperPrefixes are stripped (blanked, to preserve byte offsets) before
// phase 2 inline scanning.
var wrapperPrefixes = []string{
	"<tool_call>", "</tool_call>", "<|tool_call|>", "<tool_use>", "[TOOL_CALL]", "[TOOL_CALLS]",
}

var knownTools = map[string]model.ToolName{
	"read_file":    model.ToolReadFile,
	"write_file":   model.ToolWriteFile,
	"append_file":  model.ToolAppendFile,
	"list_dir":     model.ToolListDir,
	"search_files": model.ToolSearchFiles,
	"run_command":  model.ToolRunCommand,
	"report_error": model.ToolReportError,
}

// argOrder lists the positional argument keys (with aliases, first match
// wins) for each tool's named JSON arguments.
var argOrder = map[model.ToolName][][]string{
	model.ToolReadFile:    {{"path", "file", "filename"}},
	model.ToolWriteFile:   {{"path", "file", "filename"}, {"content"}},
	model.ToolAppendFile:  {{"path", "file", "filename"}, {"content"}},
	model.ToolListDir:     {{"path", "file", "filename"}},
	model.ToolSearchFiles: {{"pattern", "glob"}, {"query", "search"}},
	model.ToolRunCommand:  {{"command", "cmd"}},
	model.ToolReportError: {{"description", "message", "error"}},
}

var toolCallBlockRe = regexp.MustCompile(`(?s)<tool_call>(.*?)</tool_call>`)

type positioned struct {
	pos int
	tc  model.ToolCall
}

// Parse extracts ToolCalls from text in textual order. It never panics
// and never returns a partial/invalid sequence: unrecognised or malformed
// input is simply skipped.
func Parse(text string) []model.ToolCall {
	var found []positioned

	working := []byte(text)

	for _, loc := range toolCallBlockRe.FindAllStringSubmatchIndex(text, -1) {
		blockStart, blockEnd := loc[0], loc[1]
		inner := text[loc[2]:loc[3]]
		if tc, ok := parseJSONBlock(inner); ok {
			found = append(found, positioned{pos: blockStart, tc: tc})
			blankRange(working, blockStart, blockEnd)
		} else {
			blankLiteral(working, text, blockStart, "<tool_call>")
			blankLiteral(working, text, blockEnd-len("</tool_call>"), "</tool_call>")
		}
	}

	workingText := string(working)
	for _, w := range wrapperPrefixes {
		workingText = blankAllOccurrences(workingText, w)
	}

	found = append(found, scanInline(workingText)...)

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	calls := make([]model.ToolCall, 0, len(found))
	for _, f := range found {
		calls = append(calls, f.tc)
	}
	return calls
}

func blankRange(working []byte, start, end int) {
	for i := start; i < end && i < len(working); i++ {
		working[i] = ' '
	}
}

func blankLiteral(working []byte, original string, at int, literal string) {
	if at < 0 || at+len(literal) > len(original) {
		return
	}
	if original[at:at+len(literal)] != literal {
		return
	}
	blankRange(working, at, at+len(literal))
}

func blankAllOccurrences(s, literal string) string {
	var sb strings.Builder
	rest := s
	for {
		idx := strings.Index(rest, literal)
		if idx < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:idx])
		sb.WriteString(strings.Repeat(" ", len(literal)))
		rest = rest[idx+len(literal):]
	}
	return sb.String()
}

// parseJSONBlock parses a <tool_call> JSON payload. Unrecognised tool
// names are ignored (treated as not-found); malformed JSON is treated as
// not-found so the caller falls through to phase 2.
func parseJSONBlock(raw string) (model.ToolCall, bool) {
	raw = strings.TrimSpace(raw)
	var envelope struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return model.ToolCall{}, false
	}
	toolName, ok := knownTools[envelope.Name]
	if !ok {
		return model.ToolCall{}, false
	}

	args := map[string]string{}
	argBytes := envelope.Arguments
	if len(argBytes) > 0 {
		// "arguments" may itself be a JSON-encoded string.
		var asString string
		if err := json.Unmarshal(argBytes, &asString); err == nil {
			argBytes = []byte(asString)
		}
		var asMap map[string]any
		if err := json.Unmarshal(argBytes, &asMap); err == nil {
			for k, v := range asMap {
				if s, ok := v.(string); ok {
					args[k] = s
				}
			}
		}
	}

	keys := argOrder[toolName]
	vector := make([]string, 0, len(keys))
	for _, aliases := range keys {
		val := ""
		for _, alias := range aliases {
			if v, ok := args[alias]; ok {
				val = v
				break
			}
		}
		vector = append(vector, val)
	}
	return model.ToolCall{Name: toolName, Args: vector}, true
}

var inlineOpenRe = regexp.MustCompile(`@(read_file|write_file|append_file|list_dir|search_files|run_command|report_error)\(`)

// scanInline implements phase 2: @tool(args) inline invocations.
func scanInline(text string) []positioned {
	var results []positioned
	seen := map[string]bool{}

	for _, loc := range inlineOpenRe.FindAllStringSubmatchIndex(text, -1) {
		start := loc[0]
		toolName := text[loc[2]:loc[3]]
		argsStart := loc[1]

		var (
			args    []string
			consume int
			ok      bool
		)
		switch model.ToolName(toolName) {
		case model.ToolWriteFile, model.ToolAppendFile:
			args, consume, ok = parseTwoArgMultiline(text[argsStart:])
		case model.ToolSearchFiles:
			args, consume, ok = parseSearchArgs(text[argsStart:])
		default:
			args, consume, ok = parseSingleArg(text[argsStart:])
		}
		if !ok {
			continue
		}
		key := toolName + "\x00" + strings.Join(args, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		_ = consume
		results = append(results, positioned{pos: start, tc: model.ToolCall{Name: model.ToolName(toolName), Args: args}})
	}
	return results
}

// parseTwoArgMultiline parses `path, """content"""` followed by `)`.
func parseTwoArgMultiline(rest string) ([]string, int, bool) {
	commaIdx := strings.Index(rest, ",")
	if commaIdx < 0 {
		return nil, 0, false
	}
	path := strings.TrimSpace(strings.Trim(rest[:commaIdx], `"'`))

	after := rest[commaIdx+1:]
	afterTrimmed := strings.TrimLeft(after, " \t\r\n")
	skipped := len(after) - len(afterTrimmed)
	if !strings.HasPrefix(afterTrimmed, `"""`) {
		return nil, 0, false
	}
	bodyStart := skipped + 3
	closeIdx := strings.Index(after[bodyStart:], `"""`)
	if closeIdx < 0 {
		return nil, 0, false
	}
	content := after[bodyStart : bodyStart+closeIdx]
	tailStart := bodyStart + closeIdx + 3
	tail := after[tailStart:]
	tailTrimmed := strings.TrimLeft(tail, " \t\r\n")
	if !strings.HasPrefix(tailTrimmed, ")") {
		return nil, 0, false
	}
	return []string{path, content}, 0, true
}

// parseSearchArgs parses `pattern, query)` as two trimmed tokens.
func parseSearchArgs(rest string) ([]string, int, bool) {
	closeIdx := strings.Index(rest, ")")
	if closeIdx < 0 {
		return nil, 0, false
	}
	inner := rest[:closeIdx]
	commaIdx := strings.Index(inner, ",")
	if commaIdx < 0 {
		return nil, 0, false
	}
	pattern := strings.TrimSpace(inner[:commaIdx])
	query := strings.TrimSpace(inner[commaIdx+1:])
	return []string{pattern, query}, 0, true
}

// parseSingleArg parses one argument: double-quoted, single-quoted (both
// with backslash escapes), or unquoted up to the next `)`.
func parseSingleArg(rest string) ([]string, int, bool) {
	if len(rest) == 0 {
		return nil, 0, false
	}
	if rest[0] == '"' {
		if val, ok := parseQuoted(rest[1:], '"'); ok {
			return []string{val}, 0, true
		}
		return nil, 0, false
	}
	if rest[0] == '\'' {
		if val, ok := parseQuoted(rest[1:], '\''); ok {
			return []string{val}, 0, true
		}
		return nil, 0, false
	}
	closeIdx := strings.Index(rest, ")")
	if closeIdx < 0 {
		return nil, 0, false
	}
	return []string{strings.TrimSpace(rest[:closeIdx])}, 0, true
}

// parseQuoted scans a backslash-escaped quoted string body and requires
// the closing quote to be followed by optional whitespace then `)`.
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
