package config

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateMetadataStore_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := &StoreConfig{
		Type:   "memory",
		Memory: map[string]any{},
	}

	store, err := CreateMetadataStore(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create memory metadata store: %v", err)
	}

	if store == nil {
		t.Fatal("Expected non-nil store")
	}
}

func TestCreateMetadataStore_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &StoreConfig{
		Type: "sqlite",
		SQLite: map[string]any{
			"path": filepath.Join(t.TempDir(), "meta.db"),
		},
	}

	store, err := CreateMetadataStore(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create sqlite metadata store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if store == nil {
		t.Fatal("Expected non-nil store")
	}
}

func TestCreateMetadataStore_SQLiteMissingPath(t *testing.T) {
	ctx := context.Background()
	cfg := &StoreConfig{
		Type:   "sqlite",
		SQLite: map[string]any{},
	}

	_, err := CreateMetadataStore(ctx, cfg)
	if err == nil {
		t.Fatal("Expected error for missing path")
	}
	if !strings.Contains(err.Error(), "path is required") {
		t.Errorf("Expected 'path is required' error, got: %v", err)
	}
}

func TestCreateMetadataStore_BadgerInMemory(t *testing.T) {
	ctx := context.Background()
	cfg := &StoreConfig{
		Type: "badger",
		Badger: map[string]any{
			"in_memory": true,
		},
	}

	store, err := CreateMetadataStore(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create badger metadata store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if store == nil {
		t.Fatal("Expected non-nil store")
	}
}

func TestCreateMetadataStore_BadgerMissingPath(t *testing.T) {
	ctx := context.Background()
	cfg := &StoreConfig{
		Type:   "badger",
		Badger: map[string]any{},
	}

	_, err := CreateMetadataStore(ctx, cfg)
	if err == nil {
		t.Fatal("Expected error for missing db_path")
	}
	if !strings.Contains(err.Error(), "db_path is required") {
		t.Errorf("Expected 'db_path is required' error, got: %v", err)
	}
}

func TestCreateMetadataStore_UnknownType(t *testing.T) {
	ctx := context.Background()
	cfg := &StoreConfig{
		Type: "postgres",
	}

	_, err := CreateMetadataStore(ctx, cfg)
	if err == nil {
		t.Fatal("Expected error for unknown store type")
	}
	if !strings.Contains(err.Error(), "unknown metadata store type") {
		t.Errorf("Expected 'unknown metadata store type' error, got: %v", err)
	}
}

func TestCreateMirror_Filesystem(t *testing.T) {
	ctx := context.Background()
	cfg := &MirrorConfig{
		Type: "filesystem",
		Filesystem: map[string]any{
			"base_path": t.TempDir(),
		},
	}

	mirror, err := CreateMirror(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create filesystem mirror: %v", err)
	}

	if mirror == nil {
		t.Fatal("Expected non-nil mirror")
	}
}

func TestCreateMirror_FilesystemMissingPath(t *testing.T) {
	ctx := context.Background()
	cfg := &MirrorConfig{
		Type:       "filesystem",
		Filesystem: map[string]any{},
	}

	_, err := CreateMirror(ctx, cfg)
	if err == nil {
		t.Fatal("Expected error for missing base_path")
	}
	if !strings.Contains(err.Error(), "base_path is required") {
		t.Errorf("Expected 'base_path is required' error, got: %v", err)
	}
}

func TestCreateMirror_UnknownType(t *testing.T) {
	ctx := context.Background()
	cfg := &MirrorConfig{
		Type: "ftp",
	}

	_, err := CreateMirror(ctx, cfg)
	if err == nil {
		t.Fatal("Expected error for unknown mirror type")
	}
	if !strings.Contains(err.Error(), "unknown mirror type") {
		t.Errorf("Expected 'unknown mirror type' error, got: %v", err)
	}
}

func TestCreateMirror_S3MissingBucket(t *testing.T) {
	ctx := context.Background()
	cfg := &MirrorConfig{
		Type: "s3",
		S3: map[string]any{
			"region": "us-east-1",
		},
	}

	_, err := CreateMirror(ctx, cfg)
	if err == nil {
		t.Fatal("Expected error for missing bucket")
	}
	if !strings.Contains(err.Error(), "bucket is required") {
		t.Errorf("Expected 'bucket is required' error, got: %v", err)
	}
}

func TestCreateMirror_S3MissingRegion(t *testing.T) {
	ctx := context.Background()
	cfg := &MirrorConfig{
		Type: "s3",
		S3: map[string]any{
			"bucket": "nospace-drive",
		},
	}

	_, err := CreateMirror(ctx, cfg)
	if err == nil {
		t.Fatal("Expected error for missing region")
	}
	if !strings.Contains(err.Error(), "region is required") {
		t.Errorf("Expected 'region is required' error, got: %v", err)
	}
}

func TestCreateMirror_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	cfg := &MirrorConfig{
		Type: "filesystem",
		Filesystem: map[string]any{
			"base_path": t.TempDir(),
		},
	}

	_, err := CreateMirror(ctx, cfg)
	if err == nil {
		t.Fatal("Expected error for canceled context")
	}
	// The error may be wrapped, so check with errors.Is or just check it's not nil
	if !strings.Contains(err.Error(), "context canceled") {
		t.Errorf("Expected context canceled error, got: %v", err)
	}
}

func TestCreateMetadataStore_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	cfg := &StoreConfig{
		Type:   "memory",
		Memory: map[string]any{},
	}

	_, err := CreateMetadataStore(ctx, cfg)
	if err == nil {
		t.Fatal("Expected error for canceled context")
	}
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled error, got: %v", err)
	}
}
