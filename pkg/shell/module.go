// Package shell implements the interactive management shell core: the
// module registry, dispatcher, completion engine, history manager and
// the controller that reloads session resources when the active
// configuration instance changes.
package shell

import (
	"context"

	"github.com/siptools/sipcli/pkg/comm"
	"github.com/siptools/sipcli/pkg/config"
)

// Module is the capability contract every shell module satisfies.
type Module interface {
	// Exclude reports whether the module is unavailable under the
	// current configuration (missing backend, unset keys). It must be
	// a pure function of configuration.
	Exclude() bool

	// Commands returns the module's command names. A nil result means
	// the module accepts any trailing text and the dispatcher skips
	// the membership check.
	Commands() []string

	// Invoke runs one command. The returned status becomes the exit
	// status in one-shot mode.
	Invoke(ctx context.Context, command string, args []string) (int, error)
}

// Completer is optionally implemented by modules that complete command
// arguments. A nil return means "no suggestions"; a single empty
// candidate means the request was handled but nothing is offered.
type Completer interface {
	Complete(prev, partial, line string, begin, end int) []string
}

// Deps hands session facilities to module factories. Handler and
// SearchPath are live accessors: the registry is built once but both
// are swapped by the instance-switch controller.
type Deps struct {
	Config     *config.Config
	Handler    func() comm.Handler
	SearchPath func() []string
}

// Entry is one manifest line: a module name bound to its factory.
type Entry struct {
	Name string
	New  func(Deps) Module
}

// Descriptor is a loaded registry entry. Instance is nil for builtins;
// a nil Commands slice is the "none" sentinel, distinct from an empty
// command set.
type Descriptor struct {
	Name     string
	Instance Module
	Commands []string
}
