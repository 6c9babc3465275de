package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/siptools/sipcli/pkg/comm"
	"github.com/siptools/sipcli/pkg/config"
	"github.com/siptools/sipcli/pkg/logger"
)

const helpText = `Usage: <module> <command> [args...]

Type a module name followed by one of its commands. Tab completes
module names, command names and, where a module supports it, command
arguments. Builtin commands: clear, help, history, exit, quit.`

// Options configures a Shell.
type Options struct {
	Debug         bool
	Instance      string
	CustomOptions map[string]string
	Manifest      []Entry
	InitComm      InitComm
}

// Shell ties the registry, dispatcher, completion engine and session
// together into the interactive loop and the one-shot runner.
type Shell struct {
	cfg      *config.Config
	reg      *Registry
	disp     *Dispatcher
	eng      *Engine
	sess     *Session
	switcher *Switcher
	out      io.Writer
}

// New builds the shell: validates the requested instance (degrading to
// the default with a warning when unknown), opens the session and
// loads the full module registry.
func New(cfg *config.Config, opts Options) *Shell {
	if opts.InitComm == nil {
		opts.InitComm = func(*config.Config) (comm.Handler, error) {
			return nil, errors.New("no communication collaborator configured")
		}
	}

	instance := opts.Instance
	if instance == "" {
		instance = config.DefaultInstance
	}
	if !cfg.HasInstance(instance) {
		logger.Warn("unknown instance '" + instance + "', using default instance '" + config.DefaultInstance + "'")
		instance = config.DefaultInstance
	}
	cfg.SetInstance(instance)
	if opts.CustomOptions != nil {
		cfg.SetCustomOptions(opts.CustomOptions)
	}

	sess := NewSession(cfg, opts.Debug)
	sess.updateInstance(cfg.CurrentInstance(), opts.InitComm)

	reg := Load(opts.Manifest, cfg.GetStrings("skip_modules"), sess.Deps())

	return &Shell{
		cfg:      cfg,
		reg:      reg,
		disp:     NewDispatcher(reg),
		eng:      NewEngine(reg),
		sess:     sess,
		switcher: NewSwitcher(sess, opts.InitComm),
		out:      os.Stdout,
	}
}

// Run is the interactive read-eval-print loop. It returns 0 on
// deliberate termination (exit, quit, end-of-input or an interrupt
// during the read) and a negative status on any other loop exit.
func (s *Shell) Run() int {
	s.sess.preloop()
	defer s.sess.Shutdown()

	fmt.Fprintln(s.out, s.sess.Intro())

	rl, err := s.newReadline()
	if err != nil {
		logger.Error("cannot initialize terminal: " + err.Error())
		return -1
	}
	defer func() { rl.Close() }()

	ctx := context.Background()
	for {
		line, err := rl.Readline()
		if err != nil {
			return s.finishRead(err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.sess.History().Append(line)
		rl.SaveHistory(line)

		fields := strings.Fields(line)
		if s.reg.IsBuiltin(fields[0]) {
			if stop := s.runBuiltin(fields[0], fields[1:]); stop {
				return 0
			}
		} else {
			res := s.disp.DispatchLine(ctx, line)
			if res.Err != nil {
				logger.Error(res.Err.Error())
			}
		}

		if s.switcher.Check() {
			// New prompt and history buffer; the readline instance is
			// rebuilt so both take effect.
			rl.Close()
			rl, err = s.newReadline()
			if err != nil {
				logger.Error("cannot reinitialize terminal: " + err.Error())
				return -1
			}
		}
	}
}

// RunOnce executes one pre-split module/command/argument triple and
// returns the process exit status.
func (s *Shell) RunOnce(ctx context.Context, command []string) int {
	defer s.sess.Shutdown()

	if len(command) < 1 {
		logger.Error("no modules to run specified")
		return -1
	}
	if len(command) < 2 {
		logger.Error("no method to run in '" + command[0] + "' specified")
		return -1
	}
	logger.DebugCF("dispatch", "running in non-interactive mode", map[string]any{"command": command})

	res := s.disp.Run(ctx, command[0], command[1], command[2:])
	if res.Err != nil {
		logger.Error(res.Err.Error())
	}
	if !res.Invoked {
		return 0
	}
	return res.Status
}

// finishRead maps a failed blocking read to the loop's exit status.
// An interrupt aborts only the pending read and, like end-of-input,
// terminates the loop with success; anything else is a failure.
func (s *Shell) finishRead(err error) int {
	switch {
	case errors.Is(err, readline.ErrInterrupt):
		fmt.Fprintln(s.out, "^C")
		return 0
	case errors.Is(err, io.EOF):
		fmt.Fprintln(s.out, "^D")
		return 0
	default:
		logger.Error("reading input: " + err.Error())
		return -1
	}
}

func (s *Shell) newReadline() (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 s.sess.Prompt(),
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
		AutoComplete:           &lineCompleter{eng: s.eng},
		HistoryLimit:           s.cfg.GetInt("history_file_size", 1000),
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return nil, err
	}
	for _, line := range s.sess.History().Lines() {
		rl.SaveHistory(line)
	}
	return rl, nil
}

// runBuiltin serves the commands handled by the shell itself; these
// never reach the dispatcher. It reports whether the loop should stop.
func (s *Shell) runBuiltin(name string, args []string) bool {
	switch name {
	case "exit", "quit":
		return true
	case "clear":
		fmt.Fprint(s.out, "\033[2J\033[H")
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "history":
		if len(args) == 0 {
			s.printHistory()
		}
	}
	return false
}

// printHistory prints the persisted history file, 1-indexed.
func (s *Shell) printHistory() {
	saved := NewHistory(s.cfg.GetInt("history_file_size", 1000))
	if err := saved.Load(s.cfg.Get("history_file")); err != nil {
		logger.ErrorC("history", err.Error())
		return
	}
	for i, line := range saved.Lines() {
		fmt.Fprintf(s.out, "%d %s\n", i+1, line)
	}
}
