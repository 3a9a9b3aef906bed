// Package dispatch implements the Tool Dispatcher: sandboxed
// execution of the fixed tool vocabulary against a bound project root.
// Grounded on internal/tools/files/{resolver,read}.go and
// internal/tools/exec/manager.go's shell-execution shape.
package dispatch

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agentmesh/swarmkernel/internal/kernel/kerrors"
	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

const (
	maxCommandOutput   = 10000
	maxCommandBuffer   = 1 << 20 // 1 MiB
	commandTimeout     = 30 * time.Second
	searchGlobTimeout  = 10 * time.Second
	searchGrepTimeout  = 5 * time.Second
	maxSearchFiles     = 20
	maxMatchesPerFile  = 5
)

// Dispatcher executes ToolCalls against a single bound project root.
type Dispatcher struct {
	resolver Resolver
}

// New creates a Dispatcher bound to projectRoot.
func New(projectRoot string) *Dispatcher {
	return &Dispatcher{resolver: Resolver{Root: projectRoot}}
}

// Dispatch executes one ToolCall and returns its ToolResult. Only
// tool-internal errors (filesystem errors, timeouts, containment
// violations) set Success=false; a non-zero run_command exit is not a
// dispatcher failure .
func (d *Dispatcher) Dispatch(ctx context.Context, call model.ToolCall) model.ToolResult {
	result := model.ToolResult{Name: call.Name, Args: call.Args}

	if call.Name == model.ToolReportError {
		description := argOrEmpty(call.Args, 0)
		result.Success = true
		result.IsErrorReport = true
		result.Result = description
		return result
	}

	if err := d.resolver.CheckRoot(); err != nil {
		result.Error = err.Error()
		return result
	}

	var (
		text string
		err  error
	)
	switch call.Name {
	case model.ToolReadFile:
		text, err = d.readFile(argOrEmpty(call.Args, 0))
	case model.ToolWriteFile:
		text, err = d.writeFile(argOrEmpty(call.Args, 0), argOrEmpty(call.Args, 1))
	case model.ToolAppendFile:
		text, err = d.appendFile(argOrEmpty(call.Args, 0), argOrEmpty(call.Args, 1))
	case model.ToolListDir:
		text, err = d.listDir(argOrEmpty(call.Args, 0))
	case model.ToolSearchFiles:
		text, err = d.searchFiles(ctx, argOrEmpty(call.Args, 0), argOrEmpty(call.Args, 1))
	case model.ToolRunCommand:
		var truncated bool
		text, truncated, err = d.runCommand(ctx, argOrEmpty(call.Args, 0))
		result.Truncated = truncated
	default:
		err = fmt.Errorf("unknown tool %q", call.Name)
	}

	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.Result = text
	return result
}

func argOrEmpty(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func (d *Dispatcher) readFile(path string) (string, error) {
	abs, err := d.resolver.Resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", kerrors.NewToolError("read_file", err)
	}
	return string(data), nil
}

func (d *Dispatcher) writeFile(path, content string) (string, error) {
	abs, err := d.resolver.Resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", kerrors.NewToolError("write_file", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return "", kerrors.NewToolError("write_file", err)
	}
	return fmt.Sprintf("wrote %d bytes", len(content)), nil
}

func (d *Dispatcher) appendFile(path, content string) (string, error) {
	abs, err := d.resolver.Resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", kerrors.NewToolError("append_file", err)
	}
	existing, readErr := os.ReadFile(abs)
	prefix := ""
	if readErr == nil && len(existing) > 0 && existing[len(existing)-1] != '\n' {
		prefix = "\n"
	}
	f, err := os.OpenFile(abs, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", kerrors.NewToolError("append_file", err)
	}
	defer f.Close()
	if _, err := f.WriteString(prefix + content); err != nil {
		return "", kerrors.NewToolError("append_file", err)
	}
	return fmt.Sprintf("appended %d bytes", len(content)), nil
}

func (d *Dispatcher) listDir(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := d.resolver.Resolve(path)
	if err != nil {
		return "", err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return "", kerrors.NewToolError("list_dir", err)
	}
	var dirs, files []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, e.Name()+"/")
		} else {
			files = append(files, e.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)
	all := append(dirs, files...)
	return strings.Join(all, "\n"), nil
}

func (d *Dispatcher) searchFiles(ctx context.Context, pattern, query string) (string, error) {
	globCtx, cancel := context.WithTimeout(ctx, searchGlobTimeout)
	defer cancel()

	root := d.resolver.Root
	var candidates []string
	walkErr := filepath.WalkDir(root, func(path string, de os.DirEntry, err error) error {
		if globCtx.Err() != nil {
			return globCtx.Err()
		}
		if err != nil || de.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		matched, matchErr := filepath.Match(pattern, rel)
		if matchErr == nil && matched {
			candidates = append(candidates, path)
		} else if matchErr == nil {
			if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
				candidates = append(candidates, path)
			}
		}
		return nil
	})
	if walkErr != nil {
		return "", kerrors.NewToolError("search_files", walkErr)
	}

	grepCtx, cancel2 := context.WithTimeout(ctx, searchGrepTimeout)
	defer cancel2()

	queryLower := strings.ToLower(query)
	var sb strings.Builder
	matchedFiles := 0
	for _, path := range candidates {
		if grepCtx.Err() != nil {
			break
		}
		if matchedFiles >= maxSearchFiles {
			break
		}
		lines, ok := grepFile(path, queryLower)
		if !ok {
			continue
		}
		matchedFiles++
		rel, _ := filepath.Rel(root, path)
		sb.WriteString(fmt.Sprintf("--- %s ---\n", rel))
		for _, l := range lines {
			sb.WriteString(l)
			sb.WriteString("\n")
		}
	}
	if matchedFiles == 0 {
		return "No matches found", nil
	}
	return sb.String(), nil
}

func grepFile(path, queryLower string) ([]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var matches []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(strings.ToLower(line), queryLower) {
			matches = append(matches, line)
			if len(matches) >= maxMatchesPerFile {
				break
			}
		}
	}
	return matches, len(matches) > 0
}

func (d *Dispatcher) runCommand(ctx context.Context, command string) (string, bool, error) {
	if IsBlocked(command) {
		return "", false, kerrors.ErrCommandBlocked
	}

	runCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "/bin/sh", "-c", command)
	cmd.Dir = d.resolver.Root

	out := newLimitedBuffer(maxCommandBuffer)
	cmd.Stdout = out
	cmd.Stderr = out

	runErr := cmd.Run()
	combined := out.String()
	truncated := false
	if len(combined) > maxCommandOutput {
		combined = combined[:maxCommandOutput]
		truncated = true
	}

	if runCtx.Err() != nil {
		return combined, truncated, kerrors.NewToolError("run_command", runCtx.Err()).WithType(kerrors.ToolErrorTimeout)
	}

	// A non-zero exit is not a dispatcher failure: only
	// record the exit status in the returned text.
	if exitErr, ok := asExitError(runErr); ok {
		combined = fmt.Sprintf("%s\n(exit code %d)", combined, exitErr.ExitCode())
	}
	return combined, truncated, nil
}

func asExitError(err error) (*exec.ExitError, bool) {
	ee, ok := err.(*exec.ExitError)
	return ee, ok
}

// limitedBuffer is a size-capped, concurrency-safe byte sink that
// silently truncates writes past its limit (adapted from
// internal/tools/exec/manager.go's limitedBuffer).
type limitedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func newLimitedBuffer(max int) *limitedBuffer { return &limitedBuffer{max: max} }

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && b.buf.Len() >= b.max {
		return len(p), nil
	}
	remaining := b.max - b.buf.Len()
	if b.max > 0 && len(p) > remaining {
		b.buf.Write(p[:remaining])
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
