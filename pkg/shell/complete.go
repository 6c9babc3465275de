package shell

import (
	"errors"
	"strings"

	"github.com/siptools/sipcli/pkg/logger"
)

// ErrNoCandidate is returned by Nth for an index beyond the candidate
// list computed by the last Begin.
var ErrNoCandidate = errors.New("no completion candidate at index")

// Engine is the two-stage tab-completion engine. A completion request
// is an explicit two-call protocol: Begin computes and caches the
// candidate list, Nth replays it index by index without recomputing.
type Engine struct {
	reg     *Registry
	matches []string
}

func NewEngine(reg *Registry) *Engine {
	return &Engine{reg: reg}
}

// Begin starts a new completion request for line with the word under
// completion spanning [begin, end) and returns the candidate list.
func (e *Engine) Begin(line string, begin, end int) []string {
	e.matches = e.compute(line, begin, end)
	return e.matches
}

// Nth replays candidate i of the current request.
func (e *Engine) Nth(i int) (string, error) {
	if i < 0 || i >= len(e.matches) {
		return "", ErrNoCandidate
	}
	return e.matches[i], nil
}

func (e *Engine) compute(line string, begin, end int) []string {
	stripped := strings.TrimLeft(line, " \t")
	offset := len(line) - len(stripped)
	begin -= offset
	end -= offset
	partial := slice(stripped, begin, end)

	// Stage 1: the cursor sits at the start of the logical line, so
	// a module name is being completed.
	if begin <= 0 {
		return e.moduleCandidates(partial)
	}

	fields := strings.Fields(stripped)
	if len(fields) == 0 {
		return e.moduleCandidates(partial)
	}
	desc, ok := e.reg.Lookup(fields[0])
	if !ok {
		logger.Error("BUG: module '" + fields[0] + "' not found")
		return nil
	}

	// Fewer than two words, or exactly two while still typing the
	// second, means the command name is being completed.
	if len(fields) < 2 || (len(fields) == 2 && !strings.HasSuffix(stripped, " ")) {
		if len(desc.Commands) == 0 {
			return []string{""}
		}
		return uniqueSpace(filterPrefix(desc.Commands, partial))
	}

	// Command-argument stage: delegate to the module.
	c, ok := desc.Instance.(Completer)
	if !ok {
		return []string{""}
	}
	cands := c.Complete(fields[1], partial, stripped, begin, end)
	if len(cands) == 0 {
		return nil
	}
	return cands
}

func (e *Engine) moduleCandidates(prefix string) []string {
	return uniqueSpace(filterPrefix(e.reg.Names(), prefix))
}

func filterPrefix(items []string, prefix string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.HasPrefix(item, prefix) {
			out = append(out, item)
		}
	}
	return out
}

// uniqueSpace appends the word separator to a unique match so the next
// keystroke starts the following token.
func uniqueSpace(items []string) []string {
	if len(items) == 1 {
		items[0] += " "
	}
	return items
}

func slice(s string, begin, end int) string {
	if begin < 0 {
		begin = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if begin >= end {
		return ""
	}
	return s[begin:end]
}

// lineCompleter adapts the engine to readline's AutoCompleter, which
// wants candidate suffixes relative to the word under the cursor.
type lineCompleter struct {
	eng *Engine
}

func (c *lineCompleter) Do(line []rune, pos int) ([][]rune, int) {
	s := string(line[:pos])
	start := wordStart(s)
	partial := s[start:]

	out := make([][]rune, 0, 4)
	for _, cand := range c.eng.Begin(s, start, len(s)) {
		if cand == "" || !strings.HasPrefix(cand, partial) {
			continue
		}
		out = append(out, []rune(cand[len(partial):]))
	}
	return out, len([]rune(partial))
}

func wordStart(s string) int {
	if i := strings.LastIndexAny(s, " \t"); i >= 0 {
		return i + 1
	}
	return 0
}
