// Package instance lists and switches configuration instance profiles
// from inside the shell. Switching mutates the live current instance;
// the switch controller refreshes the session after the dispatch
// returns.
package instance

import (
	"context"
	"fmt"
	"strings"

	"github.com/siptools/sipcli/pkg/shell"
)

type Module struct {
	deps shell.Deps
}

func New(deps shell.Deps) shell.Module {
	return &Module{deps: deps}
}

func (m *Module) Exclude() bool {
	return false
}

func (m *Module) Commands() []string {
	return []string{"list", "show", "switch"}
}

func (m *Module) Invoke(_ context.Context, command string, args []string) (int, error) {
	cfg := m.deps.Config

	switch command {
	case "list":
		current := cfg.CurrentInstance()
		for _, name := range cfg.InstanceNames() {
			marker := "  "
			if name == current {
				marker = "* "
			}
			fmt.Println(marker + name)
		}
		return 0, nil

	case "show":
		fmt.Println("instance:", cfg.CurrentInstance())
		fmt.Println("comm_type:", cfg.Get("comm_type"))
		if handler := m.deps.Handler(); handler != nil {
			fmt.Println("target:", handler.Target())
		}
		return 0, nil

	case "switch":
		if len(args) < 1 {
			return -1, fmt.Errorf("usage: instance switch <name>")
		}
		name := args[0]
		if !cfg.HasInstance(name) {
			return -1, fmt.Errorf("unknown instance '%s'", name)
		}
		cfg.SetInstance(name)
		return 0, nil
	}
	return -1, fmt.Errorf("unhandled instance command %q", command)
}

// Complete offers instance names as the argument of switch.
func (m *Module) Complete(prev, partial, line string, begin, end int) []string {
	if prev != "switch" {
		return nil
	}
	var out []string
	for _, name := range m.deps.Config.InstanceNames() {
		if strings.HasPrefix(name, partial) {
			out = append(out, name)
		}
	}
	return out
}
