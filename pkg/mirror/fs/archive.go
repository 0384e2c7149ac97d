package fs

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/codeSantiago/nospace/internal/logger"
	"github.com/codeSantiago/nospace/pkg/mirror"
)

// ArchiveSubtree walks everything beneath the folder route and returns a
// zip archive with one top-level entry per regular file, named by its base
// filename. The archive is assembled in a staging file that is removed
// before returning, success or not.
//
// Unreadable entries are logged and skipped; the export delivers what it
// can rather than failing the whole archive for one bad file.
func (m *FSMirror) ArchiveSubtree(ctx context.Context, route string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := m.directoryPath(route)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &mirror.MirrorError{Code: mirror.ErrNotFound, Message: "nothing to archive", Path: route}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", route, err)
	}
	if !info.IsDir() {
		return nil, &mirror.MirrorError{Code: mirror.ErrInvalidPath, Message: "archive target is not a directory", Path: route}
	}

	staging, err := os.CreateTemp(m.stagingPath, "nospace-export-*.zip")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging archive: %w", err)
	}
	defer func() {
		_ = staging.Close()
		if err := os.Remove(staging.Name()); err != nil && !os.IsNotExist(err) {
			logger.Warn("archive export: failed to remove staging file %s: %v", staging.Name(), err)
		}
	}()

	zipWriter := zip.NewWriter(staging)

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable subdirectory or vanished entry; deliver the rest.
			logger.Warn("archive export: skipping %s: %v", path, err)
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if err := addArchiveEntry(zipWriter, path, entry.Name()); err != nil {
			logger.Warn("archive export: skipping %s: %v", path, err)
		}
		return nil
	})
	if walkErr != nil {
		_ = zipWriter.Close()
		return nil, walkErr
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive for %s: %w", route, err)
	}
	if err := staging.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush staging archive: %w", err)
	}

	data, err := os.ReadFile(staging.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read staging archive: %w", err)
	}
	return data, nil
}

// addArchiveEntry copies one file into the archive as a flat entry.
func addArchiveEntry(zipWriter *zip.Writer, path, name string) error {
	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	entry, err := zipWriter.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, source)
	return err
}
