package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrUnknownFormat is returned when a descriptor file's extension is not
// recognized.
var ErrUnknownFormat = errors.New("catalog: unknown descriptor format")

// Repository stores component descriptors keyed by designator.
type Repository interface {
	List() []Descriptor
	Search(query string) []Descriptor
	Upsert(descs ...Descriptor)
	Lookup(designator string) (Descriptor, bool)
}

// MemoryRepository is an in-memory Repository that preserves insertion
// order. It is safe for concurrent use.
type MemoryRepository struct {
	mu    sync.RWMutex
	items []Descriptor
	index map[string]int
}

// NewMemoryRepository creates a repository preloaded with descs.
func NewMemoryRepository(descs ...Descriptor) *MemoryRepository {
	r := &MemoryRepository{index: make(map[string]int)}
	r.Upsert(descs...)
	return r
}

// List returns a copy of every descriptor in insertion order.
func (r *MemoryRepository) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, len(r.items))
	copy(out, r.items)
	return out
}

// Search implements the Repository interface using Filter.
func (r *MemoryRepository) Search(query string) []Descriptor {
	return Filter(r.List(), query)
}

// Upsert adds descriptors, replacing in place any with the same designator.
// Descriptors with an empty designator are skipped.
func (r *MemoryRepository) Upsert(descs ...Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range descs {
		d.Designator = strings.TrimSpace(d.Designator)
		if d.Designator == "" {
			continue
		}
		if i, ok := r.index[d.Designator]; ok {
			r.items[i] = d
			continue
		}
		r.index[d.Designator] = len(r.items)
		r.items = append(r.items, d)
	}
}

// Lookup implements the Repository interface.
func (r *MemoryRepository) Lookup(designator string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[designator]
	if !ok {
		return Descriptor{}, false
	}
	return r.items[i], true
}

// Len returns the number of descriptors.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// LoadFiles parses the provided descriptor files and upserts their contents.
func (r *MemoryRepository) LoadFiles(paths ...string) error {
	for _, path := range paths {
		descs, err := LoadFile(path)
		if err != nil {
			return err
		}
		r.Upsert(descs...)
	}
	return nil
}

// LoadDir recursively loads every descriptor file (.json, .yaml, .yml, .net)
// below root.
func (r *MemoryRepository) LoadDir(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !IsDescriptorFile(path) {
			return nil
		}
		descs, err := LoadFile(path)
		if err != nil {
			return err
		}
		r.Upsert(descs...)
		return nil
	})
}

// LoadFile reads one descriptor file, choosing the format by extension.
func LoadFile(path string) ([]Descriptor, error) {
	if !IsDescriptorFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	var descs []Descriptor
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		descs, err = LoadJSON(f)
	case ".yaml", ".yml":
		descs, err = LoadYAML(f)
	case ".net":
		descs, err = LoadKiCadNetlist(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return descs, nil
}

// IsDescriptorFile reports whether the path has a supported extension.
func IsDescriptorFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".yaml", ".yml", ".net":
		return true
	default:
		return false
	}
}
