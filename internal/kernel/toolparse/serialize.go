package toolparse

import (
	"fmt"
	"strings"

	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

// Serialize renders a ToolCall back into the documented @tool(args) form,
// used by the round-trip test. The tool vocabulary taught in prompts is
// a fixed text in the engine package, not built with Serialize.
func Serialize(tc model.ToolCall) string {
	switch tc.Name {
	case model.ToolWriteFile, model.ToolAppendFile:
		path := argAt(tc.Args, 0)
		content := argAt(tc.Args, 1)
		return fmt.Sprintf(`@%s(%s, """%s""")`, tc.Name, path, content)
	case model.ToolSearchFiles:
		return fmt.Sprintf("@%s(%s, %s)", tc.Name, argAt(tc.Args, 0), argAt(tc.Args, 1))
	default:
		arg := argAt(tc.Args, 0)
		escaped := strings.ReplaceAll(strings.ReplaceAll(arg, `\`, `\\`), `"`, `\"`)
		return fmt.Sprintf(`@%s("%s")`, tc.Name, escaped)
	}
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
