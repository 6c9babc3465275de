package shell

import (
	"os"
	"slices"
	"sync"

	"github.com/siptools/sipcli/pkg/comm"
	"github.com/siptools/sipcli/pkg/config"
	"github.com/siptools/sipcli/pkg/logger"
)

// InitComm opens a communication handler for the currently active
// instance. Injectable so tests can run without a live proxy.
type InitComm func(*config.Config) (comm.Handler, error)

// Session holds all per-instance state: prompt and intro text, the
// single live communication handler, the module search path and the
// history buffer. It is mutated only between dispatches.
type Session struct {
	cfg   *config.Config
	debug bool

	instance    string
	prompt      string
	intro       string
	handler     comm.Handler
	searchPath  []string
	insertedDir string
	history     *History
	historyPath string

	exitOnce sync.Once
	exitHook func()
}

func NewSession(cfg *config.Config, debug bool) *Session {
	return &Session{
		cfg:     cfg,
		debug:   debug,
		history: NewHistory(cfg.GetInt("history_file_size", 1000)),
	}
}

// Deps exposes the session facilities modules are built against. The
// handler and search-path accessors stay valid across instance
// switches.
func (s *Session) Deps() Deps {
	return Deps{
		Config:     s.cfg,
		Handler:    func() comm.Handler { return s.handler },
		SearchPath: func() []string { return slices.Clone(s.searchPath) },
	}
}

func (s *Session) Instance() string { return s.instance }

func (s *Session) Prompt() string { return s.prompt }

func (s *Session) Intro() string { return s.intro }

func (s *Session) History() *History { return s.history }

func (s *Session) SearchPath() []string { return slices.Clone(s.searchPath) }

// updateLogger recomputes the log level from configuration; global
// debug mode always forces DEBUG.
func (s *Session) updateLogger() {
	if s.debug {
		logger.SetLevel(logger.DEBUG)
		return
	}
	logger.SetLevel(logger.ParseLevel(s.cfg.Get("log_level")))
}

// clearInstance tears down state owned by the outgoing instance: the
// history is flushed before anything else is touched, then the
// inserted search-path entry is removed.
func (s *Session) clearInstance() {
	s.flushHistory()
	if s.insertedDir != "" {
		if i := slices.Index(s.searchPath, s.insertedDir); i >= 0 {
			s.searchPath = slices.Delete(s.searchPath, i, i+1)
		}
		s.insertedDir = ""
	}
}

// updateInstance points the session at instance: refreshes logging,
// prompt and intro, inserts the instance's module directory into the
// search path and replaces the communication handler.
func (s *Session) updateInstance(instance string, initComm InitComm) {
	s.instance = instance
	s.updateLogger()

	s.intro = s.cfg.Get("prompt_intro")
	s.prompt = "(" + s.cfg.Get("prompt_name") + "): "

	modulesDir := s.cfg.Get("modules_dir")
	if _, err := os.Stat(modulesDir); err != nil {
		logger.Warn("modules dir '" + modulesDir + "' does not exist")
	} else if !slices.Contains(s.searchPath, modulesDir) {
		s.searchPath = append([]string{modulesDir}, s.searchPath...)
		s.insertedDir = modulesDir
	}

	if s.handler != nil {
		if err := s.handler.Close(); err != nil {
			logger.DebugC("session", "closing previous handler: "+err.Error())
		}
		s.handler = nil
	}
	handler, err := initComm(s.cfg)
	if err != nil {
		logger.Error("cannot initialize communication: " + err.Error())
		return
	}
	s.handler = handler
}

// preloop reloads the history buffer for the active instance and
// arranges the termination flush. The flush registration is effective
// once per process lifetime no matter how many switches occur.
func (s *Session) preloop() {
	// resolve and remember the file now: by flush time the live
	// current instance may already point elsewhere
	s.historyPath = s.cfg.Get("history_file")
	s.history.SetMax(s.cfg.GetInt("history_file_size", 1000))
	if err := s.history.Load(s.historyPath); err != nil {
		logger.WarnC("history", err.Error())
	}
	s.exitOnce.Do(func() {
		s.exitHook = s.flushHistory
	})
}

func (s *Session) flushHistory() {
	if s.historyPath == "" {
		return
	}
	logger.DebugCF("history", "saving history", map[string]any{"path": s.historyPath})
	if err := s.history.Save(s.historyPath); err != nil {
		logger.ErrorC("history", err.Error())
	}
}

// Shutdown runs the registered termination flush and closes the live
// handler.
func (s *Session) Shutdown() {
	if s.exitHook != nil {
		s.exitHook()
		s.exitHook = nil
	}
	if s.handler != nil {
		s.handler.Close()
		s.handler = nil
	}
}
