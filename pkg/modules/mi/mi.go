// Package mi exposes the proxy's raw management-interface commands as
// a shell module.
package mi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/siptools/sipcli/pkg/shell"
)

var commands = []string{
	"uptime",
	"version",
	"ps",
	"which",
	"list_statistics",
	"get_statistics",
	"reset_statistics",
}

// Statistic groups the proxy exports; used for argument completion of
// the statistics commands.
var statGroups = []string{
	"core:",
	"shmem:",
	"load:",
	"tm:",
	"sl:",
	"usrloc:",
	"dialog:",
}

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
	return commands
}

func (m *Module) Invoke(ctx context.Context, command string, args []string) (int, error) {
	handler := m.deps.Handler()
	if handler == nil {
		return -1, errors.New("no management connection available")
	}

	var params any
	if len(args) > 0 {
		params = args
	}
	result, err := handler.Call(ctx, command, params)
	if err != nil {
		return -1, err
	}
	fmt.Println(render(result))
	return 0, nil
}

// Complete offers statistic group names as arguments of the statistics
// commands.
func (m *Module) Complete(prev, partial, line string, begin, end int) []string {
	switch prev {
	case "get_statistics", "reset_statistics", "list_statistics":
		out := make([]string, 0, len(statGroups))
		for _, group := range statGroups {
			if strings.HasPrefix(group, partial) {
				out = append(out, group)
			}
		}
		return out
	}
	return nil
}

func render(result gjson.Result) string {
	switch result.Type {
	case gjson.String:
		return result.String()
	case gjson.JSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(result.Raw), "", "  "); err == nil {
			return buf.String()
		}
	}
	return result.Raw
}
