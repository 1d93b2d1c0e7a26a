package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// StorageConfig holds storage configuration for uploaded-image retention
type StorageConfig struct {
	Backend   string `env:"STORAGE_BACKEND" yaml:"backend" default:"local"`        // "local" or "s3"
	LocalDir  string `env:"STORAGE_LOCAL_DIR" yaml:"local_dir" default:"./images"` // Base directory for local storage
	S3Bucket  string `env:"STORAGE_S3_BUCKET" yaml:"s3_bucket"`                    // S3 bucket name
	S3Prefix  string `env:"STORAGE_S3_PREFIX" yaml:"s3_prefix"`                    // S3 object key prefix (optional)
	S3Region  string `env:"STORAGE_S3_REGION" yaml:"s3_region"`                    // AWS region
	S3Profile string `env:"STORAGE_S3_PROFILE" yaml:"s3_profile"`                  // AWS profile name (optional)
}

// Validate checks StorageConfig for a known backend and its required settings
func (s StorageConfig) Validate() error {
	var result error

	switch s.Backend {
	case "local":
		if s.LocalDir == "" {
			result = multierror.Append(result, fmt.Errorf("storage_local_dir is required for the local backend"))
		}
	case "s3":
		if s.S3Bucket == "" {
			result = multierror.Append(result, fmt.Errorf("storage_s3_bucket is required for the s3 backend"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("storage_backend must be 'local' or 's3', got %q", s.Backend))
	}

	return result
}
