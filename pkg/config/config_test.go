package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sipcli.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse_InstanceSections(t *testing.T) {
	path := writeConfig(t, `[default]
prompt_name = "sipctl"
history_file_size = 50

[staging]
prompt_name = "staging-proxy"
url = "http://staging:8888/mi"
`)

	cfg := New()
	if err := cfg.Parse(path); err != nil {
		t.Fatal(err)
	}

	if got := cfg.Get("prompt_name"); got != "sipctl" {
		t.Errorf("prompt_name = %q", got)
	}
	if got := cfg.GetInt("history_file_size", 0); got != 50 {
		t.Errorf("history_file_size = %d", got)
	}

	cfg.SetInstance("staging")
	if got := cfg.Get("prompt_name"); got != "staging-proxy" {
		t.Errorf("staging prompt_name = %q", got)
	}
	if got := cfg.Get("url"); got != "http://staging:8888/mi" {
		t.Errorf("staging url = %q", got)
	}
}

func TestParse_MissingFileUsesDefaults(t *testing.T) {
	cfg := New()
	if err := cfg.Parse(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("explicit missing file should error")
	}

	cfg = New()
	if got := cfg.Get("comm_type"); got != "http" {
		t.Errorf("default comm_type = %q", got)
	}
	if got := cfg.Get("prompt_name"); got != "sipctl" {
		t.Errorf("default prompt_name = %q", got)
	}
}

func TestGet_LayerPrecedence(t *testing.T) {
	path := writeConfig(t, `[default]
url = "http://from-file:8888/mi"
log_level = "WARN"
`)

	cfg := New()
	if err := cfg.Parse(path); err != nil {
		t.Fatal(err)
	}
	cfg.ApplyEnv(Env{URL: "http://from-env:8888/mi"})

	// env beats the instance section
	if got := cfg.Get("url"); got != "http://from-env:8888/mi" {
		t.Errorf("url = %q", got)
	}
	// instance section still wins where env is silent
	if got := cfg.Get("log_level"); got != "WARN" {
		t.Errorf("log_level = %q", got)
	}

	// CLI custom options beat everything
	cfg.SetCustomOptions(map[string]string{"url": "http://from-cli:8888/mi"})
	if got := cfg.Get("url"); got != "http://from-cli:8888/mi" {
		t.Errorf("url = %q", got)
	}
}

func TestHasInstance(t *testing.T) {
	path := writeConfig(t, "[staging]\nprompt_name = \"s\"\n")

	cfg := New()
	if err := cfg.Parse(path); err != nil {
		t.Fatal(err)
	}

	if !cfg.HasInstance(DefaultInstance) {
		t.Error("default instance always exists")
	}
	if !cfg.HasInstance("staging") {
		t.Error("configured instance should exist")
	}
	if cfg.HasInstance("nope") {
		t.Error("unknown instance should not exist")
	}
}

func TestInstanceNames_DefaultFirstRestSorted(t *testing.T) {
	path := writeConfig(t, "[zeta]\nx = \"1\"\n\n[alpha]\nx = \"1\"\n")

	cfg := New()
	if err := cfg.Parse(path); err != nil {
		t.Fatal(err)
	}

	want := []string{DefaultInstance, "alpha", "zeta"}
	if got := cfg.InstanceNames(); !slices.Equal(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
}

func TestGetInt_MalformedFallsBack(t *testing.T) {
	cfg := New()
	cfg.SetCustomOptions(map[string]string{"history_file_size": "lots"})

	if got := cfg.GetInt("history_file_size", 42); got != 42 {
		t.Errorf("got %d, want fallback", got)
	}
}

func TestGetStrings(t *testing.T) {
	cfg := New()
	cfg.SetCustomOptions(map[string]string{"skip_modules": "database, mi ,"})

	want := []string{"database", "mi"}
	if got := cfg.GetStrings("skip_modules"); !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := cfg.GetStrings("no_such_key"); got != nil {
		t.Errorf("absent key should yield nil, got %v", got)
	}
}

func TestExists(t *testing.T) {
	cfg := New()
	if cfg.Exists("database_url") {
		t.Error("database_url has no default and should not exist")
	}
	if !cfg.Exists("comm_type") {
		t.Error("comm_type has a default and should exist")
	}
}
