package shell

import (
	"slices"
	"sort"

	"github.com/siptools/sipcli/pkg/logger"
)

// Builtins are served by the shell itself and are always registered.
var Builtins = []string{"clear", "help", "history", "exit", "quit"}

// Registry is the loaded table of module name to descriptor. It is
// populated in full at load time; nothing inserts into it afterwards.
type Registry struct {
	descriptors map[string]Descriptor
}

// Load validates the manifest against the skip list and builds the
// registry. Any single entry's failure is logged and isolated; it
// never aborts the overall load.
func Load(manifest []Entry, skip []string, deps Deps) *Registry {
	r := &Registry{descriptors: make(map[string]Descriptor, len(manifest)+len(Builtins))}

	for _, name := range Builtins {
		r.descriptors[name] = Descriptor{Name: name}
	}

	for _, e := range manifest {
		if e.Name == "" {
			logger.DebugC("loader", "skipping unnamed manifest entry")
			continue
		}
		if slices.Contains(skip, e.Name) {
			logger.DebugC("loader", "skipping module '"+e.Name+"' - on the skip list")
			continue
		}
		if _, dup := r.descriptors[e.Name]; dup {
			logger.DebugC("loader", "skipping module '"+e.Name+"' - name already registered")
			continue
		}
		if e.New == nil {
			logger.DebugC("loader", "skipping module '"+e.Name+"' - module implementation not found")
			continue
		}
		mod := e.New(deps)
		if mod == nil {
			logger.DebugC("loader", "skipping module '"+e.Name+"' - module implementation not found")
			continue
		}
		if mod.Exclude() {
			logger.DebugC("loader", "skipping module '"+e.Name+"' - excluded on purpose")
			continue
		}
		logger.DebugC("loader", "loaded module '"+e.Name+"'")
		r.descriptors[e.Name] = Descriptor{Name: e.Name, Instance: mod, Commands: mod.Commands()}
	}

	return r
}

// Lookup resolves a module name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.descriptors[name]
	return d, ok
}

// Names returns all registered module names, builtins included, in
// sorted order so manifest order cannot affect behavior.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBuiltin reports whether name is served by the shell itself.
func (r *Registry) IsBuiltin(name string) bool {
	return slices.Contains(Builtins, name)
}
