package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ashrindy/dvscenetool/internal/scene"
)

// Save encodes sc and stores it under path, appending a revision. Saving
// a document identical to the latest revision of path writes nothing.
func (s *Store) Save(ctx context.Context, path string, sc *scene.Scene) error {
	if path == "" {
		return errors.New("save: empty path")
	}
	data, err := scene.MarshalDocument(sc)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	hash := DocumentHash(data)
	root := sc.Tree.Node(sc.Tree.Root())
	count := sc.Tree.Len()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save %s: begin transaction: %w", path, err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after Commit is a no-op

	var latest sql.NullString
	var seq int64
	err = tx.QueryRowContext(ctx, `
		SELECT hash, seq FROM revisions
		WHERE path = ?
		ORDER BY seq DESC
		LIMIT 1
	`, path).Scan(&latest, &seq)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("save %s: read latest revision: %w", path, err)
	}
	if latest.Valid && latest.String == hash {
		slog.Debug("scene unchanged", "path", path, "seq", seq)
		return nil
	}
	seq++

	_, err = tx.ExecContext(ctx, `
		INSERT INTO revisions (path, seq, node_count, hash, document)
		VALUES (?, ?, ?, ?, ?)
	`, path, seq, count, hash, string(data))
	if err != nil {
		return fmt.Errorf("save %s: write revision: %w", path, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scenes (path, root_guid, root_name, node_count, seq, hash, document)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			root_guid = excluded.root_guid,
			root_name = excluded.root_name,
			node_count = excluded.node_count,
			seq = excluded.seq,
			hash = excluded.hash,
			document = excluded.document
	`, path, root.GUID.String(), root.Name, count, seq, hash, string(data))
	if err != nil {
		return fmt.Errorf("save %s: write scene: %w", path, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save %s: commit: %w", path, err)
	}
	slog.Debug("scene saved", "path", path, "seq", seq, "nodes", count)
	return nil
}

// Delete removes the scene at path together with its revisions.
// Returns ErrNotFound if path holds no scene.
func (s *Store) Delete(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete %s: begin transaction: %w", path, err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after Commit is a no-op

	res, err := tx.ExecContext(ctx, `DELETE FROM scenes WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", path, ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM revisions WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete %s: revisions: %w", path, err)
	}
	return tx.Commit()
}
