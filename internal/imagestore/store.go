package imagestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lewisedginton/cooking_assistant/internal/config"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
)

// Store keeps uploaded images around so the assistant can refer back to
// them in later turns. Keys are derived from content, so re-uploading the
// same photo is idempotent.
type Store struct {
	provider FileProvider
	log      logger.Logger
}

// New builds a store from the storage configuration, choosing the backend
// the config names.
func New(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (*Store, error) {
	switch cfg.Backend {
	case "local":
		if cfg.LocalDir == "" {
			return nil, fmt.Errorf("local storage needs a directory")
		}
		return NewWithProvider(NewLocalFileProvider(cfg.LocalDir), log), nil

	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 storage needs a bucket")
		}
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.S3Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
		}
		if cfg.S3Profile != "" {
			opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.S3Profile))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		client := NewAWSS3Client(s3.NewFromConfig(awsCfg))
		return NewWithProvider(NewS3FileProvider(cfg.S3Bucket, cfg.S3Prefix, client), log), nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// NewWithProvider builds a store over an existing provider.
func NewWithProvider(provider FileProvider, log logger.Logger) *Store {
	return &Store{provider: NewPrefixedFileProvider(provider, "images"), log: log}
}

// SaveImage stores image bytes and returns the key it was stored under.
// The same bytes always produce the same key.
func (s *Store) SaveImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image")
	}

	key := imageKey(data, mimeType)
	exists, err := s.provider.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to check image %s: %w", key, err)
	}
	if exists {
		return key, nil
	}

	if err := s.provider.Write(ctx, key, data); err != nil {
		return "", fmt.Errorf("failed to store image %s: %w", key, err)
	}
	s.log.Debug("Image stored",
		logger.StringField("key", key),
		logger.IntField("bytes", len(data)),
	)
	return key, nil
}

// LoadImage returns the bytes stored under key.
func (s *Store) LoadImage(ctx context.Context, key string) ([]byte, error) {
	return s.provider.Read(ctx, key)
}

// DeleteImage removes a stored image.
func (s *Store) DeleteImage(ctx context.Context, key string) error {
	return s.provider.Delete(ctx, key)
}

func imageKey(data []byte, mimeType string) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + extensionFor(mimeType)
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
