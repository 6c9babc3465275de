package shell

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/siptools/sipcli/pkg/comm"
	"github.com/siptools/sipcli/pkg/config"
)

type fakeModule struct {
	cmds     []string
	excluded bool
	status   int
	err      error

	invoked  int
	lastCmd  string
	lastArgs []string
}

func (m *fakeModule) Exclude() bool { return m.excluded }

func (m *fakeModule) Commands() []string { return m.cmds }

func (m *fakeModule) Invoke(_ context.Context, command string, args []string) (int, error) {
	m.invoked++
	m.lastCmd = command
	m.lastArgs = args
	return m.status, m.err
}

// completingModule additionally satisfies Completer.
type completingModule struct {
	fakeModule
	completeFn func(prev, partial, line string, begin, end int) []string
}

func (m *completingModule) Complete(prev, partial, line string, begin, end int) []string {
	return m.completeFn(prev, partial, line, begin, end)
}

type fakeHandler struct {
	target string
	closed bool
}

func (h *fakeHandler) Call(context.Context, string, any) (gjson.Result, error) {
	return gjson.Parse(`"ok"`), nil
}

func (h *fakeHandler) Target() string { return h.target }

func (h *fakeHandler) Close() error {
	h.closed = true
	return nil
}

// fakeInitComm records every handler it hands out.
func fakeInitComm(created *[]*fakeHandler) InitComm {
	return func(cfg *config.Config) (comm.Handler, error) {
		h := &fakeHandler{target: cfg.Get("url")}
		*created = append(*created, h)
		return h, nil
	}
}

func entryFor(name string, mod Module) Entry {
	return Entry{Name: name, New: func(Deps) Module { return mod }}
}

func loadRegistry(entries ...Entry) *Registry {
	return Load(entries, nil, Deps{})
}
