package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/nthnn/ura/domain/entities"
	"github.com/nthnn/ura/domain/errors"
	"github.com/nthnn/ura/domain/ports"
)

// FSSource reads binaries from an fs.FS rooted at the directory that
// contains asm/.
type FSSource struct {
	fsys    fs.FS
	maxSize int64
}

var (
	_ ports.BinarySource = (*FSSource)(nil)
	_ ports.Catalog      = (*FSSource)(nil)
)

// NewFSSource creates a source over fsys.
func NewFSSource(fsys fs.FS, opts ...Option) *FSSource {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FSSource{fsys: fsys, maxSize: cfg.maxSize}
}

// NewDirSource creates a source over the directory root.
func NewDirSource(root string, opts ...Option) *FSSource {
	return NewFSSource(os.DirFS(root), opts...)
}

// Fetch implements ports.BinarySource.
func (s *FSSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.fsys.Open(p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", p, fs.ErrNotExist)
	}
	if s.maxSize > 0 && info.Size() > s.maxSize {
		return nil, &errors.SizeLimitError{Path: p, Size: info.Size(), Limit: s.maxSize}
	}

	return readLimited(f, p, s.maxSize)
}

// List implements ports.Catalog.
func (s *FSSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(s.fsys, entities.ResourceDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entities.ResourceDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != entities.ResourceExt {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), entities.ResourceExt))
	}
	sort.Strings(names)
	return names, nil
}

// readLimited reads r fully, failing once more than limit bytes arrive.
// A limit of zero or less reads without bound.
func readLimited(r io.Reader, p string, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, &errors.SizeLimitError{Path: p, Size: -1, Limit: limit}
	}
	return data, nil
}
