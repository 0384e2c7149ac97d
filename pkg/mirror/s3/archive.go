package s3

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/codeSantiago/nospace/internal/logger"
	"github.com/codeSantiago/nospace/pkg/mirror"
)

// ArchiveSubtree downloads every object under the folder route's prefix
// and returns a zip archive with one top-level entry per file, named by
// its base filename. Directory markers are not archived. The archive is
// assembled in a staging file that is removed before returning, success
// or not.
//
// Objects that cannot be downloaded are logged and skipped; the export
// delivers what it can rather than failing the whole archive for one bad
// object.
func (m *S3Mirror) ArchiveSubtree(ctx context.Context, route string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix, err := m.directoryKey(route)
	if err != nil {
		return nil, err
	}

	keys, err := m.listKeys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, &mirror.MirrorError{Code: mirror.ErrNotFound, Message: "nothing to archive", Path: route}
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

	for _, key := range keys {
		if ctxErr := ctx.Err(); ctxErr != nil {
			_ = zipWriter.Close()
			return nil, ctxErr
		}
		// Directory markers carry no file bytes.
		if strings.HasSuffix(key, "/") {
			continue
		}
		if err := m.addArchiveEntry(ctx, zipWriter, key); err != nil {
			logger.Warn("archive export: skipping %s: %v", key, err)
		}
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

// addArchiveEntry downloads one object into the archive as a flat entry.
func (m *S3Mirror) addArchiveEntry(ctx context.Context, zipWriter *zip.Writer, key string) error {
	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	defer result.Body.Close()

	entry, err := zipWriter.Create(path.Base(key))
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, result.Body)
	return err
}
