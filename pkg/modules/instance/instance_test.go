package instance

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/siptools/sipcli/pkg/comm"
	"github.com/siptools/sipcli/pkg/config"
	"github.com/siptools/sipcli/pkg/shell"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sipcli.toml")
	content := "[staging]\nprompt_name = \"s\"\n\n[prod]\nprompt_name = \"p\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := config.New()
	if err := cfg.Parse(path); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func depsFor(cfg *config.Config) shell.Deps {
	return shell.Deps{
		Config:     cfg,
		Handler:    func() comm.Handler { return nil },
		SearchPath: func() []string { return nil },
	}
}

func TestSwitch_SetsLiveInstance(t *testing.T) {
	cfg := testConfig(t)
	m := New(depsFor(cfg))

	status, err := m.Invoke(context.Background(), "switch", []string{"staging"})
	if err != nil || status != 0 {
		t.Fatalf("status = %d, err = %v", status, err)
	}
	if cfg.CurrentInstance() != "staging" {
		t.Fatalf("current instance = %q", cfg.CurrentInstance())
	}
}

func TestSwitch_UnknownInstance(t *testing.T) {
	cfg := testConfig(t)
	m := New(depsFor(cfg))

	status, err := m.Invoke(context.Background(), "switch", []string{"nope"})
	if err == nil || status != -1 {
		t.Fatalf("status = %d, err = %v", status, err)
	}
	if cfg.CurrentInstance() != config.DefaultInstance {
		t.Fatal("failed switch must not change the live instance")
	}
}

func TestSwitch_MissingArgument(t *testing.T) {
	m := New(depsFor(testConfig(t)))

	status, err := m.Invoke(context.Background(), "switch", nil)
	if err == nil || status != -1 {
		t.Fatalf("status = %d, err = %v", status, err)
	}
}

func TestComplete_InstanceNames(t *testing.T) {
	m := New(depsFor(testConfig(t))).(*Module)

	got := m.Complete("switch", "p", "instance switch p", 16, 17)
	if !slices.Equal(got, []string{"prod"}) {
		t.Errorf("candidates = %v", got)
	}
	if got := m.Complete("list", "", "instance list ", 14, 14); got != nil {
		t.Errorf("list takes no completable argument, got %v", got)
	}
}
