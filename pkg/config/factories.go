package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/codeSantiago/nospace/internal/logger"
	"github.com/codeSantiago/nospace/pkg/mirror"
	mirrorFs "github.com/codeSantiago/nospace/pkg/mirror/fs"
	mirrorS3 "github.com/codeSantiago/nospace/pkg/mirror/s3"
	"github.com/codeSantiago/nospace/pkg/store"
	"github.com/codeSantiago/nospace/pkg/store/badger"
	"github.com/codeSantiago/nospace/pkg/store/memory"
	"github.com/codeSantiago/nospace/pkg/store/sqlite"
)

// CreateMetadataStore creates a metadata store based on configuration.
//
// This factory function uses the Type field to determine which store
// implementation to create, then decodes the type-specific configuration
// from the corresponding map and passes it to the store's constructor.
//
// Supported types:
//   - "memory": Uses pkg/store/memory (in-memory storage, ephemeral)
//   - "sqlite": Uses pkg/store/sqlite (SQLite storage, persistent)
//   - "badger": Uses pkg/store/badger (BadgerDB storage, persistent)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Metadata store configuration
//
// Returns:
//   - store.MetadataStore: Initialized metadata store
//   - error: Configuration or initialization error
func CreateMetadataStore(ctx context.Context, cfg *StoreConfig) (store.MetadataStore, error) {
	switch cfg.Type {
	case "memory":
		return createMemoryStore(ctx)
	case "sqlite":
		return createSQLiteStore(ctx, cfg.SQLite)
	case "badger":
		return createBadgerStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown metadata store type: %q (supported: memory, sqlite, badger)", cfg.Type)
	}
}

// createMemoryStore creates an in-memory metadata store.
func createMemoryStore(ctx context.Context) (store.MetadataStore, error) {
	// Check context before creating store
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return memory.NewMemoryMetadataStore(), nil
}

// createSQLiteStore creates a SQLite-backed persistent metadata store.
func createSQLiteStore(ctx context.Context, options map[string]any) (store.MetadataStore, error) {
	// Check context before creating store
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Decode store-specific options
	type SQLiteStoreOptions struct {
		Path string `mapstructure:"path"`
	}

	var storeOpts SQLiteStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode sqlite metadata store options: %w", err)
	}

	// Validate required fields
	if storeOpts.Path == "" {
		return nil, fmt.Errorf("sqlite metadata store: path is required")
	}

	metadataStore, err := sqlite.NewSQLiteMetadataStore(sqlite.SQLiteMetadataStoreConfig{
		Path: storeOpts.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite metadata store: %w", err)
	}

	return metadataStore, nil
}

// createBadgerStore creates a BadgerDB-backed persistent metadata store.
func createBadgerStore(ctx context.Context, options map[string]any) (store.MetadataStore, error) {
	// Check context before creating store
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Decode store-specific options
	type BadgerStoreOptions struct {
		DBPath   string `mapstructure:"db_path"`
		InMemory bool   `mapstructure:"in_memory"`
	}

	var storeOpts BadgerStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode badger metadata store options: %w", err)
	}

	// Validate required fields
	if storeOpts.DBPath == "" && !storeOpts.InMemory {
		return nil, fmt.Errorf("badger metadata store: db_path is required")
	}

	metadataStore, err := badger.NewBadgerMetadataStore(ctx, badger.BadgerMetadataStoreConfig{
		DBPath:   storeOpts.DBPath,
		InMemory: storeOpts.InMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger metadata store: %w", err)
	}

	return metadataStore, nil
}

// CreateMirror creates a physical mirror based on configuration.
//
// This factory function uses the Type field to determine which mirror
// implementation to create, then decodes the type-specific configuration
// from the corresponding map and passes it to the mirror's constructor.
//
// Supported types:
//   - "filesystem": Uses pkg/mirror/fs (local directory tree)
//   - "s3": Uses pkg/mirror/s3 (Amazon S3 or compatible storage)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Physical mirror configuration
//
// Returns:
//   - mirror.PhysicalMirror: Initialized mirror
//   - error: Configuration or initialization error
func CreateMirror(ctx context.Context, cfg *MirrorConfig) (mirror.PhysicalMirror, error) {
	switch cfg.Type {
	case "filesystem":
		return createFilesystemMirror(ctx, cfg.Filesystem)
	case "s3":
		return createS3Mirror(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown mirror type: %q (supported: filesystem, s3)", cfg.Type)
	}
}

// createFilesystemMirror creates a local-filesystem mirror.
func createFilesystemMirror(ctx context.Context, options map[string]any) (mirror.PhysicalMirror, error) {
	// Decode the options into the mirror's own config struct
	var mirrorCfg mirrorFs.FSMirrorConfig
	if err := mapstructure.Decode(options, &mirrorCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem mirror config: %w", err)
	}

	// Validate required fields
	if mirrorCfg.BasePath == "" {
		return nil, fmt.Errorf("filesystem mirror: base_path is required")
	}

	physical, err := mirrorFs.NewFSMirror(ctx, mirrorCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem mirror: %w", err)
	}

	return physical, nil
}

// createS3Mirror creates an S3-backed mirror.
func createS3Mirror(ctx context.Context, options map[string]any) (mirror.PhysicalMirror, error) {
	// Define the configuration struct for the S3 mirror
	type S3MirrorOptions struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		StagingPath     string `mapstructure:"staging_path"`
		ForcePathStyle  bool   `mapstructure:"force_path_style"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	// Decode the options into the config struct
	var mirrorOpts S3MirrorOptions
	if err := mapstructure.Decode(options, &mirrorOpts); err != nil {
		return nil, fmt.Errorf("failed to decode S3 mirror config: %w", err)
	}

	// Validate required fields
	if mirrorOpts.Bucket == "" {
		return nil, fmt.Errorf("S3 mirror: bucket is required")
	}

	if mirrorOpts.Region == "" {
		return nil, fmt.Errorf("S3 mirror: region is required")
	}

	// ========================================================================
	// Step 1: Build AWS Config
	// ========================================================================

	var configOptions []func(*awsConfig.LoadOptions) error

	// Set region
	configOptions = append(configOptions, awsConfig.WithRegion(mirrorOpts.Region))

	// Set custom endpoint if provided (for MinIO, Localstack, etc.)
	if mirrorOpts.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               mirrorOpts.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Set credentials if provided, otherwise use default credential chain
	if mirrorOpts.AccessKeyID != "" && mirrorOpts.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			mirrorOpts.AccessKeyID,
			mirrorOpts.SecretAccessKey,
			"", // session token (empty for static credentials)
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	// Configure retries for better resilience against temporary S3 failures
	// Default to 10 retries if not specified (increased from AWS default of 3)
	maxRetries := mirrorOpts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10 // Default: 10 attempts
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries // Retry for transient errors (502, 503, timeouts, etc.)
		})
	}))

	// Load AWS config
	cfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// ========================================================================
	// Step 2: Create S3 Client
	// ========================================================================

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// Force path-style addressing for compatibility with MinIO/Localstack
		if mirrorOpts.Endpoint != "" || mirrorOpts.ForcePathStyle {
			o.UsePathStyle = true
		}
	})

	// ========================================================================
	// Step 3: Create S3 Mirror
	// ========================================================================

	physical, err := mirrorS3.NewS3Mirror(ctx, mirrorS3.S3MirrorConfig{
		Client:      client,
		Bucket:      mirrorOpts.Bucket,
		KeyPrefix:   mirrorOpts.KeyPrefix,
		StagingPath: mirrorOpts.StagingPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 mirror: %w", err)
	}

	logger.Info("S3 mirror initialized: bucket=%s, region=%s, prefix=%s",
		mirrorOpts.Bucket, mirrorOpts.Region, mirrorOpts.KeyPrefix)

	return physical, nil
}
