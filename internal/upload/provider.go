// Package upload ships run artifacts (result and failure files) to a
// remote storage provider after a batch run finishes.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Provider is a destination for run artifacts.
type Provider interface {
	// Store writes the content of reader under remotePath.
	Store(ctx context.Context, reader io.Reader, remotePath string) error

	// Configure prepares the provider from key=value settings.
	Configure(settings map[string]string) error

	// Name identifies the provider.
	Name() string
}

// Factory builds an unconfigured provider instance.
type Factory func() Provider

var registry = make(map[string]Factory)

// Register makes a provider available by name.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// New returns a fresh provider instance by name.
func New(name string) (Provider, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown upload provider: %s", name)
	}
	return factory(), nil
}

// Artifacts uploads each local file under remoteDir, keeping its base
// name. Missing files are skipped: a clean run produces no failures file.
func Artifacts(ctx context.Context, provider Provider, remoteDir string, paths ...string) error {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("open artifact %s: %w", path, err)
		}

		remotePath := filepath.Join(remoteDir, filepath.Base(path))
		err = provider.Store(ctx, f, remotePath)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("upload artifact %s: %w", path, err)
		}
	}
	return nil
}

func init() {
	Register("minio", func() Provider { return &MinioProvider{} })
}
