package cache

import (
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Graph is the provisioning cache's many-to-many edge set of spec.md §3:
// `installed(tool,version) ↔ required_by(env_hash)`. Backed by an
// embedded, pure-Go, wazero-driven SQLite database rather than a
// hand-rolled JSON adjacency list.
type Graph struct {
	db *sql.DB
}

// Open opens (creating if absent) the graph database at path.
func Open(path string) (*Graph, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening provisioning graph: %w", err)
	}
	g := &Graph{db: db}
	if err := g.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return g, nil
}

func (g *Graph) migrate() error {
	_, err := g.db.Exec(`
		CREATE TABLE IF NOT EXISTS installed (
			tool    TEXT NOT NULL,
			version TEXT NOT NULL,
			backend TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (tool, version, backend)
		);
		CREATE TABLE IF NOT EXISTS required_by (
			tool     TEXT NOT NULL,
			version  TEXT NOT NULL,
			backend  TEXT NOT NULL DEFAULT '',
			env_hash TEXT NOT NULL,
			PRIMARY KEY (tool, version, backend, env_hash)
		);
	`)
	return err
}

func (g *Graph) Close() error { return g.db.Close() }

// RecordInstalled upserts an installed(tool,version) row.
func (g *Graph) RecordInstalled(tool, version, backend string) error {
	_, err := g.db.Exec(`INSERT OR IGNORE INTO installed (tool, version, backend) VALUES (?, ?, ?)`, tool, version, backend)
	return err
}

// RecordRequiredBy records that envHash depends on tool@version, per
// spec.md §4.3's "required_by edge recorded against the current env
// hash". The provisioning engine calls it for each tool as soon as that
// tool's install succeeds, so an up run that stops part-way keeps the
// edges of the tools it had already installed.
func (g *Graph) RecordRequiredBy(tool, version, backend, envHash string) error {
	_, err := g.db.Exec(`INSERT OR IGNORE INTO required_by (tool, version, backend, env_hash) VALUES (?, ?, ?, ?)`, tool, version, backend, envHash)
	return err
}

// ReleaseEnv removes every required_by edge for envHash, e.g. when an
// environment is torn down or superseded.
func (g *Graph) ReleaseEnv(envHash string) error {
	_, err := g.db.Exec(`DELETE FROM required_by WHERE env_hash = ?`, envHash)
	return err
}

// Unreferenced returns installed rows with no incoming required_by edge,
// the candidate set for cleanup per spec.md §4.3 "Cleanup".
func (g *Graph) Unreferenced() ([]InstalledRow, error) {
	rows, err := g.db.Query(`
		SELECT i.tool, i.version, i.backend
		FROM installed i
		LEFT JOIN required_by r
			ON r.tool = i.tool AND r.version = i.version AND r.backend = i.backend
		WHERE r.env_hash IS NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InstalledRow
	for rows.Next() {
		var r InstalledRow
		if err := rows.Scan(&r.Tool, &r.Version, &r.Backend); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Forget removes an installed row, e.g. after a successful uninstall.
func (g *Graph) Forget(tool, version, backend string) error {
	_, err := g.db.Exec(`DELETE FROM installed WHERE tool = ? AND version = ? AND backend = ?`, tool, version, backend)
	return err
}

// InstalledRow is one row of the installed table.
type InstalledRow struct {
	Tool    string
	Version string
	Backend string
}
