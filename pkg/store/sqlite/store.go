// Package sqlite provides the relational MetadataStore implementation,
// backed by modernc.org/sqlite (pure Go, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/codeSantiago/nospace/pkg/drive"
	"github.com/codeSantiago/nospace/pkg/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS folders (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    depth INTEGER NOT NULL,
    route TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    owner_username TEXT NOT NULL,
    parent_id TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (parent_id) REFERENCES folders(id)
);

CREATE INDEX IF NOT EXISTS idx_folders_location ON folders(depth, name, owner_username);
CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(parent_id);

CREATE TABLE IF NOT EXISTS files (
    id TEXT PRIMARY KEY,
    route TEXT NOT NULL,
    filename TEXT NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at INTEGER NOT NULL,
    folder_id TEXT NOT NULL,
    FOREIGN KEY (folder_id) REFERENCES folders(id)
);

CREATE INDEX IF NOT EXISTS idx_files_folder ON files(folder_id);
`

// SQLiteMetadataStoreConfig contains configuration for creating a SQLite
// metadata store.
type SQLiteMetadataStoreConfig struct {
	// Path is the database file location. ":memory:" gives a throwaway
	// in-process database.
	Path string
}

// SQLiteMetadataStore implements store.MetadataStore on a SQLite database.
//
// This is the primary backend: folder and file records live in two tables
// tied by a folder_id reference, the (depth, name, owner_username) lookup is
// index-backed, and the delete cascade runs as recursive statements inside
// one transaction.
//
// Timestamps are persisted as integer unix nanoseconds so ordering
// comparisons are exact and round-trips lose nothing.
//
// Thread Safety:
// Safe for concurrent use. The pool is capped at a single connection since
// SQLite allows one writer at a time; the cap turns would-be SQLITE_BUSY
// failures into queueing.
type SQLiteMetadataStore struct {
	db *sql.DB
}

// NewSQLiteMetadataStore opens (creating if necessary) the database at
// config.Path and ensures the schema exists.
func NewSQLiteMetadataStore(config SQLiteMetadataStoreConfig) (*SQLiteMetadataStore, error) {
	if config.Path == "" {
		return nil, &store.StoreError{Code: store.ErrInvalidArgument, Message: "sqlite store requires a path"}
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database at %s: %w", config.Path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}

	return &SQLiteMetadataStore{db: db}, nil
}

// ============================================================================
// Folders
// ============================================================================

// SaveFolder inserts or fully replaces the record with folder.ID.
func (s *SQLiteMetadataStore) SaveFolder(ctx context.Context, folder *drive.Folder) error {
	if err := store.ValidateFolder(folder); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO folders (id, name, depth, route, owner_id, owner_username, parent_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			depth = excluded.depth,
			route = excluded.route,
			owner_id = excluded.owner_id,
			owner_username = excluded.owner_username,
			parent_id = excluded.parent_id,
			created_at = excluded.created_at
	`, folder.ID, folder.Name, folder.Depth, folder.Route,
		folder.OwnerID, folder.OwnerUsername, nullable(folder.ParentID), folder.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save folder %s: %w", folder.ID, err)
	}
	return nil
}

// UpdateFolderName changes only the name and route columns.
func (s *SQLiteMetadataStore) UpdateFolderName(ctx context.Context, id, newName, newRoute string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE folders SET name = ?, route = ? WHERE id = ?", newName, newRoute, id)
	if err != nil {
		return fmt.Errorf("failed to rename folder %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to rename folder %s: %w", id, err)
	}
	if affected == 0 {
		return &store.StoreError{Code: store.ErrNotFound, Message: "folder not found", Ref: id}
	}
	return nil
}

const folderColumns = "id, name, depth, route, owner_id, owner_username, parent_id, created_at"

// FindFolder retrieves a folder by id.
func (s *SQLiteMetadataStore) FindFolder(ctx context.Context, id string) (*drive.Folder, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE id = ?", id)

	folder, err := scanFolder(row)
	if err == sql.ErrNoRows {
		return nil, &store.StoreError{Code: store.ErrNotFound, Message: "folder not found", Ref: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load folder %s: %w", id, err)
	}
	return folder, nil
}

// FindFolderAt retrieves a folder by (depth, name, owner username); the
// earliest created wins when sibling-name duplicates exist.
func (s *SQLiteMetadataStore) FindFolderAt(ctx context.Context, depth int, name, ownerUsername string) (*drive.Folder, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE depth = ? AND name = ? AND owner_username = ? ORDER BY created_at, id LIMIT 1",
		depth, name, ownerUsername)

	folder, err := scanFolder(row)
	if err == sql.ErrNoRows {
		return nil, &store.StoreError{
			Code:    store.ErrNotFound,
			Message: "no folder matches the given depth, name and owner",
			Ref:     name,
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up folder %s for %s: %w", name, ownerUsername, err)
	}
	return folder, nil
}

// ChildFolders lists direct children of parentID ordered by creation then id.
func (s *SQLiteMetadataStore) ChildFolders(ctx context.Context, parentID string) ([]*drive.Folder, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE parent_id = ? ORDER BY created_at, id", parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children of %s: %w", parentID, err)
	}
	defer rows.Close()

	children := make([]*drive.Folder, 0)
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to list children of %s: %w", parentID, err)
		}
		children = append(children, folder)
	}
	return children, rows.Err()
}

// DeleteFolder removes the folder and its whole subtree (descendant folders
// and every contained file) in one transaction.
func (s *SQLiteMetadataStore) DeleteFolder(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to delete folder %s: %w", id, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM folders WHERE id = ?
			UNION ALL
			SELECT f.id FROM folders f JOIN subtree s ON f.parent_id = s.id
		)
		DELETE FROM files WHERE folder_id IN (SELECT id FROM subtree)
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete files under folder %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM folders WHERE id = ?
			UNION ALL
			SELECT f.id FROM folders f JOIN subtree s ON f.parent_id = s.id
		)
		DELETE FROM folders WHERE id IN (SELECT id FROM subtree)
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete folder %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete folder %s: %w", id, err)
	}
	if affected == 0 {
		return &store.StoreError{Code: store.ErrNotFound, Message: "folder not found", Ref: id}
	}

	return tx.Commit()
}

// ============================================================================
// Files
// ============================================================================

// SaveFile inserts or fully replaces the record with file.ID after checking
// the containing folder exists.
func (s *SQLiteMetadataStore) SaveFile(ctx context.Context, file *drive.File) error {
	if err := store.ValidateFile(file); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to save file %s: %w", file.ID, err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM folders WHERE id = ?", file.FolderID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to save file %s: %w", file.ID, err)
	}
	if exists == 0 {
		return &store.StoreError{Code: store.ErrNotFound, Message: "containing folder not found", Ref: file.FolderID}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO files (id, route, filename, size, uploaded_at, folder_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			route = excluded.route,
			filename = excluded.filename,
			size = excluded.size,
			uploaded_at = excluded.uploaded_at,
			folder_id = excluded.folder_id
	`, file.ID, file.Route, file.Filename, file.Size, file.UploadedAt.UnixNano(), file.FolderID)
	if err != nil {
		return fmt.Errorf("failed to save file %s: %w", file.ID, err)
	}

	return tx.Commit()
}

// FindFile retrieves a file by id.
func (s *SQLiteMetadataStore) FindFile(ctx context.Context, id string) (*drive.File, error) {
	var file drive.File
	var uploadedAt int64

	err := s.db.QueryRowContext(ctx,
		"SELECT id, route, filename, size, uploaded_at, folder_id FROM files WHERE id = ?", id).
		Scan(&file.ID, &file.Route, &file.Filename, &file.Size, &uploadedAt, &file.FolderID)
	if err == sql.ErrNoRows {
		return nil, &store.StoreError{Code: store.ErrNotFound, Message: "file not found", Ref: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load file %s: %w", id, err)
	}

	file.UploadedAt = time.Unix(0, uploadedAt)
	return &file, nil
}

// FilesInFolder lists the files directly inside folderID ordered by upload
// time then id.
func (s *SQLiteMetadataStore) FilesInFolder(ctx context.Context, folderID string) ([]*drive.File, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, route, filename, size, uploaded_at, folder_id FROM files WHERE folder_id = ? ORDER BY uploaded_at, id",
		folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files in folder %s: %w", folderID, err)
	}
	defer rows.Close()

	files := make([]*drive.File, 0)
	for rows.Next() {
		var file drive.File
		var uploadedAt int64
		if err := rows.Scan(&file.ID, &file.Route, &file.Filename, &file.Size, &uploadedAt, &file.FolderID); err != nil {
			return nil, fmt.Errorf("failed to list files in folder %s: %w", folderID, err)
		}
		file.UploadedAt = time.Unix(0, uploadedAt)
		files = append(files, &file)
	}
	return files, rows.Err()
}

// ============================================================================
// Lifecycle
// ============================================================================

// Healthcheck pings the database.
func (s *SQLiteMetadataStore) Healthcheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *SQLiteMetadataStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Helpers
// ============================================================================

type scannable interface {
	Scan(dest ...any) error
}

func scanFolder(row scannable) (*drive.Folder, error) {
	var folder drive.Folder
	var parentID sql.NullString
	var createdAt int64

	err := row.Scan(&folder.ID, &folder.Name, &folder.Depth, &folder.Route,
		&folder.OwnerID, &folder.OwnerUsername, &parentID, &createdAt)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		folder.ParentID = parentID.String
	}
	folder.CreatedAt = time.Unix(0, createdAt)
	return &folder, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
