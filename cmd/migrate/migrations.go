package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type database interface {
	Exec(query string, args ...any) (sql.Result, error)
	Get(dest any, query string, args ...any) error
	Select(dest any, query string, args ...any) error
}

type migrationState struct {
	Name    string
	Applied bool
}

func ensureTable(db database) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (filename text primary key, applied_at timestamptz default now())`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

func migrationFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// migrateUp applies pending files in name order and returns the names it applied. It stops at
// the first failure.
func migrateUp(db database, dir string) ([]string, error) {
	if err := ensureTable(db); err != nil {
		return nil, err
	}
	files, err := migrationFiles(dir)
	if err != nil {
		return nil, err
	}
	var applied []string
	for _, file := range files {
		filename := filepath.Base(file)
		var exists bool
		if err := db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`, filename); err != nil {
			return applied, fmt.Errorf("read migration state: %w", err)
		}
		if exists {
			continue
		}
		if err := applyFile(db, file); err != nil {
			return applied, fmt.Errorf("apply %s: %w", filename, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations (filename) VALUES ($1)`, filename); err != nil {
			return applied, fmt.Errorf("record %s: %w", filename, err)
		}
		applied = append(applied, filename)
	}
	return applied, nil
}

func migrationStatus(db database, dir string) ([]migrationState, error) {
	if err := ensureTable(db); err != nil {
		return nil, err
	}
	files, err := migrationFiles(dir)
	if err != nil {
		return nil, err
	}
	var done []string
	if err := db.Select(&done, `SELECT filename FROM schema_migrations`); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(done))
	for _, name := range done {
		seen[name] = true
	}
	states := make([]migrationState, 0, len(files))
	for _, file := range files {
		name := filepath.Base(file)
		states = append(states, migrationState{Name: name, Applied: seen[name]})
	}
	return states, nil
}

func applyFile(db database, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	up := strings.Split(string(content), "-- +migrate Down")[0]
	for _, stmt := range splitSQL(up) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func splitSQL(sqlText string) []string {
	var statements []string
	var current strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(sqlText))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		current.WriteString(line)
		current.WriteRune('\n')
		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}
	return statements
}
