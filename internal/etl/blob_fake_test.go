package etl_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// dirBlob stores objects under a local directory.
type dirBlob struct {
	root string

	mu       sync.Mutex
	uploaded []string
}

func newDirBlob(t *testing.T) *dirBlob {
	t.Helper()
	return &dirBlob{root: t.TempDir()}
}

func (b *dirBlob) objectPath(bucket, key string) string {
	return filepath.Join(b.root, bucket, filepath.FromSlash(key))
}

func (b *dirBlob) put(t *testing.T, bucket, key string, data []byte) {
	t.Helper()
	p := b.objectPath(bucket, key)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
}

func (b *dirBlob) Download(_ context.Context, bucket, key, path string) error {
	src := b.objectPath(bucket, key)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("no object %s/%s", bucket, key)
	}
	return copyFile(src, path)
}

func (b *dirBlob) Upload(_ context.Context, bucket, key, path string) error {
	dst := b.objectPath(bucket, key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	b.mu.Lock()
	b.uploaded = append(b.uploaded, bucket+"/"+key)
	b.mu.Unlock()
	return copyFile(path, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
