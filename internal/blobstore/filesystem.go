package blobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStore implements Store on a local directory tree, one directory
// per container. Blob metadata is written alongside the blob as a .meta.json
// file.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates a Store rooted at dir.
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &FilesystemStore{root: dir}, nil
}

func (s *FilesystemStore) path(container, name string) (string, error) {
	p := filepath.Join(s.root, container, filepath.FromSlash(name))
	// Keep blob names inside the root.
	if !strings.HasPrefix(p, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	return p, nil
}

func (s *FilesystemStore) Put(_ context.Context, container, name string, data []byte, metadata map[string]string) (string, error) {
	p, err := s.path(container, name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("creating blob directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}

	if len(metadata) > 0 {
		meta, err := json.Marshal(metadata)
		if err != nil {
			return "", fmt.Errorf("marshalling blob metadata: %w", err)
		}
		if err := os.WriteFile(p+".meta.json", meta, 0o644); err != nil {
			return "", fmt.Errorf("writing blob metadata: %w", err)
		}
	}

	return "file://" + filepath.ToSlash(p), nil
}

func (s *FilesystemStore) Get(_ context.Context, container, name string) ([]byte, error) {
	p, err := s.path(container, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return data, nil
}

func (s *FilesystemStore) GetProperties(_ context.Context, container, name string) (*Properties, error) {
	p, err := s.path(container, name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("stat blob: %w", err)
	}
	return &Properties{Size: info.Size(), LastModified: info.ModTime()}, nil
}

func (s *FilesystemStore) Delete(_ context.Context, container, name string) error {
	p, err := s.path(container, name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting blob: %w", err)
	}
	if err := os.Remove(p + ".meta.json"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting blob metadata: %w", err)
	}
	return nil
}
