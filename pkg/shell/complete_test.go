package shell

import (
	"errors"
	"slices"
	"testing"
)

func TestBegin_EmptyLineReturnsAllModules(t *testing.T) {
	reg := loadRegistry(
		entryFor("mi", &fakeModule{cmds: []string{"uptime"}}),
		entryFor("db", &fakeModule{}),
	)
	eng := NewEngine(reg)

	cands := eng.Begin("", 0, 0)
	if !slices.Equal(cands, reg.Names()) {
		t.Fatalf("candidates = %v, want every registered name (builtins included)", cands)
	}
}

func TestNth_ReplaysWithoutRecompute(t *testing.T) {
	eng := NewEngine(loadRegistry(entryFor("mi", &fakeModule{})))

	cands := eng.Begin("", 0, 0)
	for i, want := range cands {
		got, err := eng.Nth(i)
		if err != nil || got != want {
			t.Fatalf("Nth(%d) = %q, %v; want %q", i, got, err, want)
		}
	}
	if _, err := eng.Nth(len(cands)); !errors.Is(err, ErrNoCandidate) {
		t.Fatalf("index beyond candidate count should fail with ErrNoCandidate, got %v", err)
	}
}

func TestBegin_ModulePrefixUniqueMatchGetsSeparator(t *testing.T) {
	eng := NewEngine(loadRegistry(entryFor("mi", &fakeModule{})))

	cands := eng.Begin("m", 0, 1)
	if !slices.Equal(cands, []string{"mi "}) {
		t.Fatalf("candidates = %v, want unique match with trailing separator", cands)
	}
}

func TestBegin_CommandStage(t *testing.T) {
	mod := &fakeModule{cmds: []string{"get_statistics", "get_uptime", "ps"}}
	eng := NewEngine(loadRegistry(entryFor("mi", mod)))

	cands := eng.Begin("mi get", 3, 6)
	want := []string{"get_statistics", "get_uptime"}
	if !slices.Equal(cands, want) {
		t.Fatalf("candidates = %v, want %v", cands, want)
	}

	cands = eng.Begin("mi ps", 3, 5)
	if !slices.Equal(cands, []string{"ps "}) {
		t.Fatalf("unique command match = %v, want trailing separator", cands)
	}
}

func TestBegin_EmptyCommandSetYieldsEmptyCandidate(t *testing.T) {
	eng := NewEngine(loadRegistry(entryFor("open", &fakeModule{})))

	cands := eng.Begin("open x", 5, 6)
	if !slices.Equal(cands, []string{""}) {
		t.Fatalf("candidates = %v, want single empty candidate", cands)
	}
}

func TestBegin_BuiltinSecondToken(t *testing.T) {
	eng := NewEngine(loadRegistry())

	cands := eng.Begin("help x", 5, 6)
	if !slices.Equal(cands, []string{""}) {
		t.Fatalf("candidates = %v, builtins offer no command completion", cands)
	}
}

func TestBegin_ArgumentStageDelegates(t *testing.T) {
	var gotPrev, gotPartial, gotLine string
	var gotBegin, gotEnd int
	mod := &completingModule{
		fakeModule: fakeModule{cmds: []string{"get_statistics"}},
		completeFn: func(prev, partial, line string, begin, end int) []string {
			gotPrev, gotPartial, gotLine = prev, partial, line
			gotBegin, gotEnd = begin, end
			return []string{"tm:", "sl:"}
		},
	}
	eng := NewEngine(loadRegistry(entryFor("mi", mod)))

	line := "mi get_statistics t"
	cands := eng.Begin(line, 18, 19)
	if !slices.Equal(cands, []string{"tm:", "sl:"}) {
		t.Fatalf("candidates = %v", cands)
	}
	if gotPrev != "get_statistics" || gotPartial != "t" || gotLine != line {
		t.Errorf("delegated with prev=%q partial=%q line=%q", gotPrev, gotPartial, gotLine)
	}
	if gotBegin != 18 || gotEnd != 19 {
		t.Errorf("delegated span = [%d,%d)", gotBegin, gotEnd)
	}
}

func TestBegin_ArgumentStageNoCompleter(t *testing.T) {
	mod := &fakeModule{cmds: []string{"run"}}
	eng := NewEngine(loadRegistry(entryFor("plain", mod)))

	cands := eng.Begin("plain run x", 10, 11)
	if !slices.Equal(cands, []string{""}) {
		t.Fatalf("candidates = %v, want handled-but-nothing-offered", cands)
	}
}

func TestBegin_CompleterDecliningYieldsNoCandidates(t *testing.T) {
	mod := &completingModule{
		fakeModule: fakeModule{cmds: []string{"run"}},
		completeFn: func(string, string, string, int, int) []string { return nil },
	}
	eng := NewEngine(loadRegistry(entryFor("mi", mod)))

	if cands := eng.Begin("mi run x", 7, 8); cands != nil {
		t.Fatalf("candidates = %v, want none", cands)
	}
}

func TestBegin_UnregisteredModuleYieldsNoCandidates(t *testing.T) {
	eng := NewEngine(loadRegistry())

	if cands := eng.Begin("ghost cmd", 6, 9); cands != nil {
		t.Fatalf("candidates = %v, want none for unregistered module", cands)
	}
}

func TestBegin_LeadingWhitespaceFallsBackToModuleStage(t *testing.T) {
	eng := NewEngine(loadRegistry(entryFor("mi", &fakeModule{})))

	cands := eng.Begin("   m", 3, 4)
	if !slices.Equal(cands, []string{"mi "}) {
		t.Fatalf("candidates = %v", cands)
	}
}

func TestLineCompleter_SuffixesAndLength(t *testing.T) {
	eng := NewEngine(loadRegistry(entryFor("mi", &fakeModule{})))
	c := &lineCompleter{eng: eng}

	got, length := c.Do([]rune("m"), 1)
	if length != 1 {
		t.Fatalf("length = %d, want 1", length)
	}
	if len(got) != 1 || string(got[0]) != "i " {
		t.Fatalf("suffixes = %q", got)
	}
}
