package shell

import (
	"context"
	"slices"

	sh "mvdan.cc/sh/v3/shell"

	"github.com/siptools/sipcli/pkg/logger"
)

// Result is the outcome of one dispatch. Invoked is false when
// resolution failed and no module operation ran.
type Result struct {
	Invoked bool
	Status  int
	Err     error
}

// Dispatcher routes parsed lines to module operations. Resolution
// failures are reported to the operator and abort only the current
// command.
type Dispatcher struct {
	reg *Registry
}

func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// SplitLine splits a raw input line shell-style, honoring quoting and
// escaping.
func SplitLine(line string) ([]string, error) {
	return sh.Fields(line, nil)
}

// DispatchLine parses a raw line and dispatches it: first token is the
// module, second the command, the rest positional arguments.
func (d *Dispatcher) DispatchLine(ctx context.Context, line string) Result {
	fields, err := SplitLine(line)
	if err != nil {
		logger.Error("cannot parse command '" + line + "': " + err.Error())
		return Result{}
	}
	if len(fields) < 2 {
		logger.Error("incomplete command '" + line + "'")
		return Result{}
	}
	return d.Run(ctx, fields[0], fields[1], fields[2:])
}

// Run resolves module and command and invokes the module operation
// exactly once. On resolution failure it logs a diagnostic and returns
// with Invoked false.
func (d *Dispatcher) Run(ctx context.Context, module, command string, args []string) Result {
	desc, ok := d.reg.Lookup(module)
	if !ok || desc.Instance == nil {
		logger.Error("no module '" + module + "' loaded")
		return Result{}
	}
	if desc.Commands != nil && !slices.Contains(desc.Commands, command) {
		logger.Error("no command '" + command + "' in module '" + module + "'")
		return Result{}
	}
	logger.DebugCF("dispatch", "running command", map[string]any{
		"module":  module,
		"command": command,
		"args":    args,
	})
	status, err := desc.Instance.Invoke(ctx, command, args)
	return Result{Invoked: true, Status: status, Err: err}
}
