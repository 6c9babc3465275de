package shell

import (
	"github.com/siptools/sipcli/pkg/logger"
)

type switchState int

const (
	stateIdle switchState = iota
	stateSwitching
)

// Switcher detects active-configuration-instance changes and refreshes
// the session's resources. It runs strictly between dispatches, never
// concurrently with an in-flight invocation.
type Switcher struct {
	sess     *Session
	initComm InitComm
	state    switchState
}

func NewSwitcher(sess *Session, initComm InitComm) *Switcher {
	return &Switcher{sess: sess, initComm: initComm}
}

// Check compares the session's cached instance name to the live current
// instance and performs the switch sequence on mismatch. It reports
// whether a switch happened so the loop can refresh its prompt.
func (w *Switcher) Check() bool {
	live := w.sess.cfg.CurrentInstance()
	if w.sess.instance == live {
		return false
	}

	w.state = stateSwitching
	defer func() { w.state = stateIdle }()

	logger.DebugCF("switch", "switching instance", map[string]any{
		"from": w.sess.instance,
		"to":   live,
	})
	w.sess.clearInstance()
	w.sess.updateInstance(live, w.initComm)
	w.sess.preloop()
	return true
}
