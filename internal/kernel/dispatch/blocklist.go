package dispatch

import (
	"fmt"
	"regexp"
	"sync"
)

// Blocklist is the static, compiled-in command blocklist. A
// match yields kerrors.ErrCommandBlocked and the dispatcher does not
// invoke a shell at all.
var Blocklist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)rm\s+-rf`),
	regexp.MustCompile(`(?i)rm\s+.*\/`),
	regexp.MustCompile(`(?i)curl.*\|.*sh`),
	regexp.MustCompile(`(?i)wget.*\|.*sh`),
	regexp.MustCompile(`(?i)>\s*\/dev`),
	regexp.MustCompile(`(?i)dd\s+if=`),
	regexp.MustCompile(`(?i)mkfs`),
	regexp.MustCompile(`(?i)format`),
}

// extra holds operator-supplied patterns layered on top of Blocklist,
// replaceable at runtime (the config hot-reload path in cmd/kernel swaps
// this on every config file change rather than restarting the process).
var (
	extraMu sync.RWMutex
	extra   []*regexp.Regexp
)

// SetExtraBlocklist compiles and installs patterns as additional blocked
// commands, replacing whatever was previously installed. A compile
// failure leaves the existing extra list untouched.
func SetExtraBlocklist(patterns []string) error {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("compile blocklist pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	extraMu.Lock()
	extra = compiled
	extraMu.Unlock()
	return nil
}

// IsBlocked reports whether command matches any blocklist entry, static
// or operator-supplied.
func IsBlocked(command string) bool {
	for _, re := range Blocklist {
		if re.MatchString(command) {
			return true
		}
	}
	extraMu.RLock()
	defer extraMu.RUnlock()
	for _, re := range extra {
		if re.MatchString(command) {
			return true
		}
	}
	return false
}
