package shell

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/siptools/sipcli/pkg/logger"
)

// History is the bounded line-history buffer. The persisted form is a
// plain line-oriented file; the newest entry is last.
type History struct {
	max   int
	lines []string
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = 1000
	}
	return &History{max: max}
}

// SetMax changes the capacity, truncating oldest entries first.
func (h *History) SetMax(max int) {
	if max <= 0 {
		return
	}
	h.max = max
	h.truncate()
}

// Load replaces the buffer with the file's contents. A missing file
// leaves the buffer empty and is not an error.
func (h *History) Load(path string) error {
	h.lines = nil
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading history %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			h.lines = append(h.lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading history %s: %w", path, err)
	}
	h.truncate()
	logger.DebugCF("history", "using history file", map[string]any{"path": path, "lines": len(h.lines)})
	return nil
}

// Append records one accepted input line.
func (h *History) Append(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	h.lines = append(h.lines, line)
	h.truncate()
}

// Save flushes the buffer to path.
func (h *History) Save(path string) error {
	data := strings.Join(h.lines, "\n")
	if data != "" {
		data += "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		return fmt.Errorf("saving history %s: %w", path, err)
	}
	return nil
}

// Lines returns the buffer contents, oldest first.
func (h *History) Lines() []string {
	out := make([]string, len(h.lines))
	copy(out, h.lines)
	return out
}

func (h *History) Len() int {
	return len(h.lines)
}

func (h *History) truncate() {
	if len(h.lines) > h.max {
		h.lines = h.lines[len(h.lines)-h.max:]
	}
}
