// Package database provisions the proxy's sqlite backend. Schema
// scripts are resolved through the session search path, so each
// configuration instance can ship its own.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/siptools/sipcli/pkg/logger"
	"github.com/siptools/sipcli/pkg/shell"
)

type Module struct {
	deps shell.Deps
}

func New(deps shell.Deps) shell.Module {
	return &Module{deps: deps}
}

// Exclude hides the module when no database backend is configured.
func (m *Module) Exclude() bool {
	return !m.deps.Config.Exists("database_url")
}

func (m *Module) Commands() []string {
	return []string{"create", "drop", "tables"}
}

func (m *Module) Invoke(ctx context.Context, command string, args []string) (int, error) {
	path := databasePath(m.deps.Config.Get("database_url"))

	switch command {
	case "create":
		return m.create(ctx, path)
	case "drop":
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return -1, fmt.Errorf("dropping database %s: %w", path, err)
		}
		logger.InfoC("database", "dropped "+path)
		return 0, nil
	case "tables":
		return m.tables(ctx, path)
	}
	return -1, fmt.Errorf("unhandled database command %q", command)
}

func (m *Module) create(ctx context.Context, path string) (int, error) {
	scripts := m.schemaScripts()
	if len(scripts) == 0 {
		return -1, fmt.Errorf("no schema scripts found on the search path")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return -1, fmt.Errorf("opening database %s: %w", path, err)
	}
	defer db.Close()

	for _, script := range scripts {
		ddl, err := os.ReadFile(script)
		if err != nil {
			return -1, fmt.Errorf("reading schema %s: %w", script, err)
		}
		if _, err := db.ExecContext(ctx, string(ddl)); err != nil {
			return -1, fmt.Errorf("applying schema %s: %w", script, err)
		}
		logger.DebugC("database", "applied schema "+filepath.Base(script))
	}
	logger.InfoC("database", fmt.Sprintf("created %s (%d schemas)", path, len(scripts)))
	return 0, nil
}

func (m *Module) tables(ctx context.Context, path string) (int, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return -1, fmt.Errorf("opening database %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return -1, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return -1, err
		}
		fmt.Println(name)
	}
	return 0, rows.Err()
}

// schemaScripts gathers *.sql files from every search-path directory,
// sorted by filename so application order is stable.
func (m *Module) schemaScripts() []string {
	var scripts []string
	for _, dir := range m.deps.SearchPath() {
		matches, err := filepath.Glob(filepath.Join(dir, "*.sql"))
		if err != nil {
			continue
		}
		scripts = append(scripts, matches...)
	}
	sort.Slice(scripts, func(i, j int) bool {
		return filepath.Base(scripts[i]) < filepath.Base(scripts[j])
	})
	return scripts
}

func databasePath(url string) string {
	url = strings.TrimPrefix(url, "sqlite://")
	return strings.TrimPrefix(url, "file:")
}
