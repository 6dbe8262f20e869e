// Package localloader resolves module sources that are local filesystem
// paths. It sits last in the chain.
package localloader

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/tflens/modres/pkg/loader"
)

// Loader resolves relative and absolute path sources against the scan root.
type Loader struct {
	rootDir string
}

var _ loader.SourceLoader = (*Loader)(nil)

func New(rootDir string) *Loader {
	return &Loader{rootDir: rootDir}
}

// Matches claims path-shaped sources that exist on disk.
func (l *Loader) Matches(_ context.Context, ref loader.ModuleReference, rctx *loader.ResolutionContext) bool {
	source := ref.Source
	if !strings.HasPrefix(source, "./") && !strings.HasPrefix(source, "../") && !filepath.IsAbs(source) {
		return false
	}
	dir := source
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(l.rootDir, dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	rctx.DestDir = dir
	return true
}

// Load returns the path itself; local modules are never copied.
func (l *Loader) Load(_ context.Context, _ loader.ModuleReference, rctx *loader.ResolutionContext) loader.ResolvedModule {
	return loader.Resolved(rctx.DestDir, "")
}
