package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ashrindy/dvscenetool/internal/scene"
	"github.com/ashrindy/dvscenetool/internal/templates"
)

// ErrNotFound is returned when a path or revision holds no scene.
var ErrNotFound = errors.New("store: scene not found")

// UnknownDefinitionsError rejects a document naming definitions the
// database does not know.
type UnknownDefinitionsError struct {
	Path  string
	Names []string // full names, element definitions prefixed "element:"
}

func (e *UnknownDefinitionsError) Error() string {
	return fmt.Sprintf("load %s: unknown definitions: %s", e.Path, strings.Join(e.Names, ", "))
}

// Entry summarizes a stored scene.
type Entry struct {
	Path      string
	RootGUID  string
	RootName  string
	NodeCount int
	Seq       int64 // latest revision
}

// Revision is one save of a path.
type Revision struct {
	Seq       int64
	NodeCount int
	Hash      string
}

// Load decodes the scene stored at path. When db is non-nil every node
// must name a known node definition, and every element a known element
// definition. Returns ErrNotFound if path holds no scene.
func (s *Store) Load(ctx context.Context, path string, db *templates.Database) (*scene.Scene, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM scenes WHERE path = ?`, path).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return decode(path, doc, db)
}

// LoadRevision decodes revision seq of path.
func (s *Store) LoadRevision(ctx context.Context, path string, seq int64, db *templates.Database) (*scene.Scene, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `
		SELECT document FROM revisions
		WHERE path = ? AND seq = ?
	`, path, seq).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %s@%d: %w", path, seq, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s@%d: %w", path, seq, err)
	}
	return decode(path, doc, db)
}

func decode(path, doc string, db *templates.Database) (*scene.Scene, error) {
	sc, err := scene.UnmarshalDocument([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if db == nil {
		return sc, nil
	}
	unknown := db.Resolve(sc)
	if len(unknown) == 0 {
		return sc, nil
	}
	seen := map[string]bool{}
	var names []string
	for _, u := range unknown {
		name := u.FullName
		if u.Element {
			name = "element:" + name
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return nil, &UnknownDefinitionsError{Path: path, Names: names}
}

// List returns every stored scene ordered by path.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, root_guid, root_name, node_count, seq
		FROM scenes
		ORDER BY path COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Path, &e.RootGUID, &e.RootName, &e.NodeCount, &e.Seq); err != nil {
			return nil, fmt.Errorf("list scenes: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Revisions returns the save history of path, oldest first. Returns
// ErrNotFound if path was never saved.
func (s *Store) Revisions(ctx context.Context, path string) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, node_count, hash
		FROM revisions
		WHERE path = ?
		ORDER BY seq ASC
	`, path)
	if err != nil {
		return nil, fmt.Errorf("revisions %s: %w", path, err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.Seq, &r.NodeCount, &r.Hash); err != nil {
			return nil, fmt.Errorf("revisions %s: %w", path, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("revisions %s: %w", path, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("revisions %s: %w", path, ErrNotFound)
	}
	return out, nil
}
