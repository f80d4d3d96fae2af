// Package store persists generated platform graphs to SQLite. The
// graph generator itself defines no on-disk format; this package is
// the persistence side of the CLI consumer.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dmaris/platnav/pkg/navgraph"
	"github.com/dmaris/platnav/pkg/world"
)

const schema = `
CREATE TABLE IF NOT EXISTS graphs (
	build_id     TEXT PRIMARY KEY,
	generated_at TEXT NOT NULL,
	node_count   INTEGER NOT NULL,
	link_count   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS nodes (
	build_id TEXT NOT NULL REFERENCES graphs(build_id) ON DELETE CASCADE,
	id       INTEGER NOT NULL,
	x        REAL NOT NULL,
	y        REAL NOT NULL,
	kind     INTEGER NOT NULL,
	one_way  INTEGER NOT NULL,
	PRIMARY KEY (build_id, id)
);
CREATE TABLE IF NOT EXISTS links (
	build_id TEXT NOT NULL REFERENCES graphs(build_id) ON DELETE CASCADE,
	from_id  INTEGER NOT NULL,
	to_id    INTEGER NOT NULL,
	kind     INTEGER NOT NULL,
	cost     REAL NOT NULL
);
`

// Open opens (or creates) a graph database. Use ":memory:" for an
// in-process throwaway database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return db, nil
}

// Snapshot is the persistable view of one generated graph. Source
// shape handles are engine-side identities and are not stored; loaded
// nodes carry a nil SourceShape.
type Snapshot struct {
	Meta  navgraph.Meta
	Nodes []navgraph.Node
	Links []navgraph.Link
}

// Save writes one snapshot in a single transaction.
func Save(db *sql.DB, snap Snapshot) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO graphs (build_id, generated_at, node_count, link_count) VALUES (?, ?, ?, ?)`,
		snap.Meta.BuildID,
		snap.Meta.GeneratedAt.UTC().Format(time.RFC3339Nano),
		len(snap.Nodes),
		len(snap.Links),
	)
	if err != nil {
		return fmt.Errorf("store: insert graph: %w", err)
	}

	nodeStmt, err := tx.Prepare(`INSERT INTO nodes (build_id, id, x, y, kind, one_way) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare nodes: %w", err)
	}
	defer nodeStmt.Close()
	for _, n := range snap.Nodes {
		oneWay := 0
		if n.OneWay {
			oneWay = 1
		}
		if _, err := nodeStmt.Exec(snap.Meta.BuildID, n.ID, n.Position.X, n.Position.Y, int(n.Kind), oneWay); err != nil {
			return fmt.Errorf("store: insert node %d: %w", n.ID, err)
		}
	}

	linkStmt, err := tx.Prepare(`INSERT INTO links (build_id, from_id, to_id, kind, cost) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare links: %w", err)
	}
	defer linkStmt.Close()
	for _, l := range snap.Links {
		if _, err := linkStmt.Exec(snap.Meta.BuildID, l.From, l.To, int(l.Kind), l.Cost); err != nil {
			return fmt.Errorf("store: insert link %d->%d: %w", l.From, l.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Load reads back the snapshot with the given build id.
func Load(db *sql.DB, buildID string) (Snapshot, error) {
	var snap Snapshot
	var generatedAt string
	err := db.QueryRow(
		`SELECT build_id, generated_at, node_count, link_count FROM graphs WHERE build_id = ?`,
		buildID,
	).Scan(&snap.Meta.BuildID, &generatedAt, &snap.Meta.NodeCount, &snap.Meta.LinkCount)
	if err != nil {
		return Snapshot{}, fmt.Errorf("store: load graph %s: %w", buildID, err)
	}
	if snap.Meta.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt); err != nil {
		return Snapshot{}, fmt.Errorf("store: parse generated_at: %w", err)
	}

	rows, err := db.Query(`SELECT id, x, y, kind, one_way FROM nodes WHERE build_id = ? ORDER BY id`, buildID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("store: load nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n navgraph.Node
		var pos world.Vec2
		var kind, oneWay int
		if err := rows.Scan(&n.ID, &pos.X, &pos.Y, &kind, &oneWay); err != nil {
			return Snapshot{}, fmt.Errorf("store: scan node: %w", err)
		}
		n.Position = pos
		n.Kind = navgraph.NodeKind(kind)
		n.OneWay = oneWay != 0
		snap.Nodes = append(snap.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("store: iterate nodes: %w", err)
	}

	linkRows, err := db.Query(`SELECT from_id, to_id, kind, cost FROM links WHERE build_id = ? ORDER BY from_id, to_id`, buildID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("store: load links: %w", err)
	}
	defer linkRows.Close()
	for linkRows.Next() {
		var l navgraph.Link
		var kind int
		if err := linkRows.Scan(&l.From, &l.To, &kind, &l.Cost); err != nil {
			return Snapshot{}, fmt.Errorf("store: scan link: %w", err)
		}
		l.Kind = navgraph.LinkKind(kind)
		snap.Links = append(snap.Links, l)
	}
	if err := linkRows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("store: iterate links: %w", err)
	}

	return snap, nil
}
