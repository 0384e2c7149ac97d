// Package s3 provides the object-storage PhysicalMirror implementation,
// for Amazon S3 or any S3-compatible service.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/codeSantiago/nospace/pkg/mirror"
)

// S3Mirror implements mirror.PhysicalMirror on an S3 bucket.
//
// Key Design:
// A folder route maps to an object key prefix, the folder itself being a
// zero-byte marker object whose key ends with "/". The route "/ada/docs/"
// becomes the marker "ada/docs/" and the file "/ada/docs/a.txt" the object
// "ada/docs/a.txt", so the bucket stays human-readable and the tree can be
// rebuilt from a bucket listing alone.
//
// S3 has no rename, so MoveDirectory is copy-then-delete over every key
// under the prefix. It is not atomic: a crash mid-move leaves objects under
// both prefixes until the move is replayed.
//
// Thread Safety:
// Safe for concurrent use. Concurrent writes to the same key follow S3's
// last-write-wins semantics.
type S3Mirror struct {
	client      *s3.Client
	bucket      string
	keyPrefix   string
	stagingPath string
}

// S3MirrorConfig contains configuration for creating an S3 mirror.
type S3MirrorConfig struct {
	// Client is the configured S3 client
	Client *s3.Client

	// Bucket is the S3 bucket name. The bucket must already exist.
	Bucket string `mapstructure:"bucket"`

	// KeyPrefix is an optional prefix for all object keys, so several
	// deployments can share a bucket.
	KeyPrefix string `mapstructure:"key_prefix"`

	// StagingPath is where archive exports are assembled before being read
	// back. Defaults to the operating system's temporary directory.
	StagingPath string `mapstructure:"staging_path"`
}

// NewS3Mirror creates an S3 mirror and verifies bucket access.
func NewS3Mirror(ctx context.Context, config S3MirrorConfig) (*S3Mirror, error) {
	// ========================================================================
	// Step 1: Check context and validate configuration
	// ========================================================================

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if config.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	// ========================================================================
	// Step 2: Prepare local staging and verify bucket access
	// ========================================================================

	if config.StagingPath != "" {
		if err := os.MkdirAll(config.StagingPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create staging directory: %w", err)
		}
	}

	_, err := config.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(config.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", config.Bucket, err)
	}

	return &S3Mirror{
		client:      config.Client,
		bucket:      config.Bucket,
		keyPrefix:   config.KeyPrefix,
		stagingPath: config.StagingPath,
	}, nil
}

// directoryKey maps a folder route onto its marker key, which doubles as
// the listing prefix for the whole subtree.
func (m *S3Mirror) directoryKey(route string) (string, error) {
	segments, err := mirror.DirectorySegments(route)
	if err != nil {
		return "", err
	}
	return m.keyPrefix + strings.Join(segments, "/") + "/", nil
}

// fileKey maps a file route onto its object key.
func (m *S3Mirror) fileKey(route string) (string, error) {
	segments, err := mirror.FileSegments(route)
	if err != nil {
		return "", err
	}
	return m.keyPrefix + strings.Join(segments, "/"), nil
}

// CreateDirectory writes the zero-byte marker object for a folder route.
// Re-creating an existing directory overwrites the marker and succeeds.
func (m *S3Mirror) CreateDirectory(ctx context.Context, route string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, err := m.directoryKey(route)
	if err != nil {
		return err
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return fmt.Errorf("failed to create directory marker for %s: %w", route, err)
	}
	return nil
}

// MoveDirectory copies every object under the old prefix to the new prefix
// and deletes the originals.
func (m *S3Mirror) MoveDirectory(ctx context.Context, oldRoute, newRoute string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	oldPrefix, err := m.directoryKey(oldRoute)
	if err != nil {
		return err
	}
	newPrefix, err := m.directoryKey(newRoute)
	if err != nil {
		return err
	}

	keys, err := m.listKeys(ctx, oldPrefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return &mirror.MirrorError{Code: mirror.ErrNotFound, Message: "no directory to move", Path: oldRoute}
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}

		destination := newPrefix + strings.TrimPrefix(key, oldPrefix)
		_, err := m.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(m.bucket),
			CopySource: aws.String(url.PathEscape(m.bucket + "/" + key)),
			Key:        aws.String(destination),
		})
		if err != nil {
			return fmt.Errorf("failed to copy %s to %s: %w", key, destination, err)
		}
	}

	if err := m.deleteKeys(ctx, keys); err != nil {
		return fmt.Errorf("moved %s but failed to delete the originals: %w", oldRoute, err)
	}
	return nil
}

// RemoveTree deletes every object under the folder route's prefix.
// Removing an absent route succeeds.
func (m *S3Mirror) RemoveTree(ctx context.Context, route string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix, err := m.directoryKey(route)
	if err != nil {
		return err
	}

	keys, err := m.listKeys(ctx, prefix)
	if err != nil {
		return err
	}
	return m.deleteKeys(ctx, keys)
}

// DirectoryExists reports whether any object lives under the folder
// route's prefix, marker included.
func (m *S3Mirror) DirectoryExists(ctx context.Context, route string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	prefix, err := m.directoryKey(route)
	if err != nil {
		return false, err
	}

	result, err := m.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(m.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("failed to list %s: %w", route, err)
	}
	return len(result.Contents) > 0, nil
}

// WriteFile stores file bytes at a file route. Existing content at the
// route is replaced.
func (m *S3Mirror) WriteFile(ctx context.Context, fileRoute string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, err := m.fileKey(fileRoute)
	if err != nil {
		return err
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to write file at %s: %w", fileRoute, err)
	}
	return nil
}

// Healthcheck verifies the bucket is still reachable.
func (m *S3Mirror) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := m.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(m.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to access bucket %q: %w", m.bucket, err)
	}
	return nil
}

// Close releases resources. The S3 client holds none that need closing.
func (m *S3Mirror) Close() error {
	return nil
}

// listKeys collects every object key under prefix.
func (m *S3Mirror) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(m.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		for _, object := range page.Contents {
			if object.Key != nil {
				keys = append(keys, *object.Key)
			}
		}
	}
	return keys, nil
}

// deleteKeys removes objects in batches of up to 1000, the S3 limit per
// delete request.
func (m *S3Mirror) deleteKeys(ctx context.Context, keys []string) error {
	const maxBatchSize = 1000

	for start := 0; start < len(keys); start += maxBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + maxBatchSize
		if end > len(keys) {
			end = len(keys)
		}

		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
		}

		result, err := m.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(m.bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects: %w", err)
		}
		if len(result.Errors) > 0 {
			first := result.Errors[0]
			detail := "unknown error"
			if first.Code != nil && first.Message != nil {
				detail = *first.Code + ": " + *first.Message
			}
			return fmt.Errorf("failed to delete %d objects, first: %s", len(result.Errors), detail)
		}
	}
	return nil
}
