package cmd

import (
	"context"
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/arborlabs/keytree/internal/config"
	"github.com/arborlabs/keytree/pkg/store"
	"github.com/arborlabs/keytree/pkg/store/fs"
	"github.com/arborlabs/keytree/pkg/store/s3"
)

var (
	flagBackend   string
	flagBaseDir   string
	flagBucket    string
	flagRegion    string
	flagEndpoint  string
	flagProfile   string
	flagPathStyle bool
)

// registerStoreFlags adds the backend selection flags to a command.
// Flag values override the layered configuration.
func registerStoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagBackend, "backend", "", "Storage backend (fs|s3)")
	cmd.Flags().StringVar(&flagBaseDir, "base-dir", "", "Base directory for the fs backend")
	cmd.Flags().StringVar(&flagBucket, "bucket", "", "Bucket for the s3 backend")
	cmd.Flags().StringVar(&flagRegion, "region", "", "Region for the s3 backend")
	cmd.Flags().StringVar(&flagEndpoint, "endpoint", "", "Custom endpoint for S3-compatible stores")
	cmd.Flags().StringVar(&flagProfile, "profile", "", "AWS profile for the s3 backend")
	cmd.Flags().BoolVar(&flagPathStyle, "path-style", false, "Force path-style S3 URLs")
}

// loadStoreConfig merges flag overrides over the layered config.
func loadStoreConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	if flagBackend != "" {
		cfg.Store.Backend = flagBackend
	}
	if flagBaseDir != "" {
		cfg.Store.FS.BaseDir = flagBaseDir
	}
	if flagBucket != "" {
		cfg.Store.S3.Bucket = flagBucket
	}
	if flagRegion != "" {
		cfg.Store.S3.Region = flagRegion
	}
	if flagEndpoint != "" {
		cfg.Store.S3.Endpoint = flagEndpoint
	}
	if flagProfile != "" {
		cfg.Store.S3.Profile = flagProfile
	}
	if flagPathStyle {
		cfg.Store.S3.ForcePathStyle = true
	}

	return cfg, nil
}

// buildStore constructs the configured storage backend. The caller
// owns the returned store and must Close it.
func buildStore(ctx context.Context) (store.Store, error) {
	cfg, err := loadStoreConfig(ctx)
	if err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
	}

	switch cfg.Store.Backend {
	case "fs", "":
		st, err := fs.New(fs.Config{BaseDir: cfg.Store.FS.BaseDir})
		if err != nil {
			return nil, exitError(foundry.ExitInvalidArgument, "Invalid fs backend configuration", err)
		}
		return st, nil
	case "s3":
		st, err := s3.New(ctx, s3.Config{
			Bucket:          cfg.Store.S3.Bucket,
			Region:          cfg.Store.S3.Region,
			Endpoint:        cfg.Store.S3.Endpoint,
			Profile:         cfg.Store.S3.Profile,
			AccessKeyID:     cfg.Store.S3.AccessKeyID,
			SecretAccessKey: cfg.Store.S3.SecretAccessKey,
			ForcePathStyle:  cfg.Store.S3.ForcePathStyle,
			MaxKeys:         cfg.Store.S3.MaxKeys,
		})
		if err != nil {
			return nil, exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to S3", err)
		}
		return st, nil
	default:
		return nil, exitError(foundry.ExitInvalidArgument, "Unsupported backend",
			fmt.Errorf("backend %q is not supported (fs|s3)", cfg.Store.Backend))
	}
}
