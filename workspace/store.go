package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const tmpPrefix = ".voicecode-tmp-"

// FileStore 抽象工作区的持久化：磁盘目录或内存。
// Read 对不存在的文件返回满足 errors.Is(err, fs.ErrNotExist) 的错误。
type FileStore interface {
	Ensure(ctx context.Context) error
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) (string, error)
	Write(ctx context.Context, name, content string) error
}

// ValidateName accepts only flat names directly under the workspace root.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "",
		name == ".", name == "..",
		filepath.IsAbs(name),
		strings.ContainsAny(name, `/\`),
		strings.HasPrefix(name, tmpPrefix):
		return ErrInvalidName
	}
	return nil
}

// DirStore keeps one file per artifact in a flat directory.
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

func (s *DirStore) Root() string { return s.root }

func (s *DirStore) Ensure(_ context.Context) error {
	return os.MkdirAll(s.root, 0o755)
}

func (s *DirStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *DirStore) Read(_ context.Context, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	path := filepath.Join(s.root, name)
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	// 与 List 一致：目录等非普通文件不属于工作区。
	if !info.Mode().IsRegular() {
		return "", &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write replaces name atomically: temp file in the same directory, then rename.
func (s *DirStore) Write(_ context.Context, name, content string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.root, tmpPrefix+"*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, filepath.Join(s.root, name))
}

// MemStore is an in-memory FileStore, used by tests and dry runs.
type MemStore struct {
	mu    sync.Mutex
	files map[string]string
}

func NewMemStore(files ...map[string]string) *MemStore {
	m := &MemStore{files: make(map[string]string)}
	for _, set := range files {
		for k, v := range set {
			m.files[k] = v
		}
	}
	return m
}

func (m *MemStore) Ensure(context.Context) error { return nil }

func (m *MemStore) List(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemStore) Read(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[name]
	if !ok {
		return "", &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return content, nil
}

func (m *MemStore) Write(_ context.Context, name, content string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = content
	return nil
}
