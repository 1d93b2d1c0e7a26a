// Package imagestore persists images users upload for analysis, on the
// local filesystem or in S3, keyed by content hash.
package imagestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileProvider is the storage backend abstraction for stored images.
type FileProvider interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// LocalFileProvider stores images under a base directory.
type LocalFileProvider struct {
	baseDir string
}

// NewLocalFileProvider creates a provider rooted at baseDir.
func NewLocalFileProvider(baseDir string) *LocalFileProvider {
	return &LocalFileProvider{baseDir: baseDir}
}

func (p *LocalFileProvider) Read(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(p.baseDir, path))
}

func (p *LocalFileProvider) Write(ctx context.Context, path string, data []byte) error {
	fullPath := filepath.Join(p.baseDir, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return os.WriteFile(fullPath, data, 0o600)
}

func (p *LocalFileProvider) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(filepath.Join(p.baseDir, path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (p *LocalFileProvider) Delete(ctx context.Context, path string) error {
	err := os.Remove(filepath.Join(p.baseDir, path))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (p *LocalFileProvider) List(ctx context.Context, prefix string) ([]string, error) {
	searchPath := filepath.Join(p.baseDir, prefix)

	var result []string
	err := filepath.Walk(searchPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			if rel, relErr := filepath.Rel(p.baseDir, path); relErr == nil {
				result = append(result, rel)
			}
		}
		return nil
	})
	if err != nil && os.IsNotExist(err) {
		return []string{}, nil
	}
	return result, err
}

// PrefixedFileProvider namespaces another provider under a fixed prefix so
// image storage can share a bucket or directory with other data.
type PrefixedFileProvider struct {
	provider FileProvider
	prefix   string
}

// NewPrefixedFileProvider wraps provider under prefix.
func NewPrefixedFileProvider(provider FileProvider, prefix string) *PrefixedFileProvider {
	return &PrefixedFileProvider{provider: provider, prefix: prefix}
}

func (p *PrefixedFileProvider) Read(ctx context.Context, path string) ([]byte, error) {
	return p.provider.Read(ctx, p.join(path))
}

func (p *PrefixedFileProvider) Write(ctx context.Context, path string, data []byte) error {
	return p.provider.Write(ctx, p.join(path), data)
}

func (p *PrefixedFileProvider) Exists(ctx context.Context, path string) (bool, error) {
	return p.provider.Exists(ctx, p.join(path))
}

func (p *PrefixedFileProvider) Delete(ctx context.Context, path string) error {
	return p.provider.Delete(ctx, p.join(path))
}

func (p *PrefixedFileProvider) List(ctx context.Context, prefix string) ([]string, error) {
	files, err := p.provider.List(ctx, p.join(prefix))
	if err != nil {
		return nil, err
	}
	cut := len(p.join(""))
	var result []string
	for _, f := range files {
		if len(f) >= cut {
			result = append(result, f[cut:])
		}
	}
	return result, nil
}

func (p *PrefixedFileProvider) join(path string) string {
	if p.prefix == "" {
		return path
	}
	return p.prefix + "/" + path
}
