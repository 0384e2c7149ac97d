// Package fs provides the local-filesystem PhysicalMirror implementation.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codeSantiago/nospace/pkg/mirror"
)

// FSMirror implements mirror.PhysicalMirror on a local directory tree.
//
// Every route maps to a path under the configured base directory, so the
// owner root "/ada/" becomes "<base>/ada". Routes are decomposed and
// validated segment by segment before touching the disk; a route that
// cannot be decomposed, or that smuggles a relative segment, never reaches
// the filesystem.
//
// Thread Safety:
// The underlying filesystem operations are thread-safe at the OS level.
// Concurrent operations on the same route follow filesystem semantics
// (last write wins, moves are atomic within a filesystem).
type FSMirror struct {
	basePath    string
	stagingPath string
}

// FSMirrorConfig contains configuration for creating a filesystem mirror.
type FSMirrorConfig struct {
	// BasePath is the directory the mirrored tree lives under.
	BasePath string `mapstructure:"base_path"`

	// StagingPath is where archive exports are assembled before being read
	// back. Defaults to the operating system's temporary directory.
	StagingPath string `mapstructure:"staging_path"`
}

// NewFSMirror creates a filesystem mirror rooted at config.BasePath,
// creating the base and staging directories if they do not exist.
func NewFSMirror(ctx context.Context, config FSMirrorConfig) (*FSMirror, error) {
	// ========================================================================
	// Step 1: Check context before filesystem operations
	// ========================================================================

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if config.BasePath == "" {
		return nil, &mirror.MirrorError{Code: mirror.ErrInvalidPath, Message: "filesystem mirror requires a base path"}
	}

	// ========================================================================
	// Step 2: Create the base and staging directories
	// ========================================================================

	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	stagingPath := config.StagingPath
	if stagingPath == "" {
		stagingPath = os.TempDir()
	} else if err := os.MkdirAll(stagingPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	return &FSMirror{
		basePath:    config.BasePath,
		stagingPath: stagingPath,
	}, nil
}

// directoryPath maps a folder route onto the disk.
func (m *FSMirror) directoryPath(route string) (string, error) {
	segments, err := mirror.DirectorySegments(route)
	if err != nil {
		return "", err
	}
	return filepath.Join(m.basePath, filepath.Join(segments...)), nil
}

// filePath maps a file route onto the disk.
func (m *FSMirror) filePath(route string) (string, error) {
	segments, err := mirror.FileSegments(route)
	if err != nil {
		return "", err
	}
	return filepath.Join(m.basePath, filepath.Join(segments...)), nil
}

// CreateDirectory materializes the directory for a folder route, creating
// missing ancestors. Creating an existing directory succeeds.
func (m *FSMirror) CreateDirectory(ctx context.Context, route string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := m.directoryPath(route)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", route, err)
	}
	return nil
}

// MoveDirectory relocates the directory at oldRoute to newRoute, carrying
// its entire contents.
func (m *FSMirror) MoveDirectory(ctx context.Context, oldRoute, newRoute string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	oldPath, err := m.directoryPath(oldRoute)
	if err != nil {
		return err
	}
	newPath, err := m.directoryPath(newRoute)
	if err != nil {
		return err
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		if os.IsNotExist(err) {
			return &mirror.MirrorError{Code: mirror.ErrNotFound, Message: "no directory to move", Path: oldRoute}
		}
		return fmt.Errorf("failed to move %s to %s: %w", oldRoute, newRoute, err)
	}
	return nil
}

// RemoveTree deletes the directory at route and everything beneath it.
// Removing an absent route succeeds.
func (m *FSMirror) RemoveTree(ctx context.Context, route string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := m.directoryPath(route)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove tree at %s: %w", route, err)
	}
	return nil
}

// DirectoryExists reports whether the folder route has a directory behind
// it.
func (m *FSMirror) DirectoryExists(ctx context.Context, route string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path, err := m.directoryPath(route)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", route, err)
	}
	return info.IsDir(), nil
}

// WriteFile stores file bytes at a file route, creating missing parent
// directories. Existing content at the route is replaced.
func (m *FSMirror) WriteFile(ctx context.Context, fileRoute string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := m.filePath(fileRoute)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", fileRoute, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file at %s: %w", fileRoute, err)
	}
	return nil
}

// Healthcheck verifies the base directory still exists and is a directory.
func (m *FSMirror) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(m.basePath)
	if err != nil {
		return fmt.Errorf("mirror base directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("mirror base path %s is not a directory", m.basePath)
	}
	return nil
}

// Close releases resources. The filesystem mirror holds none.
func (m *FSMirror) Close() error {
	return nil
}
