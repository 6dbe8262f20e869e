// Package urlloader resolves module sources that are plain http(s) URLs,
// including the indirection URLs a registry hands out via X-Terraform-Get.
package urlloader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tflens/modres/pkg/getter"
	"github.com/tflens/modres/pkg/loader"
	"github.com/tflens/modres/pkg/logging"
	"go.uber.org/zap"
)

// Loader fetches a URL-addressed archive or tree through the ContentFetcher.
type Loader struct {
	fetcher    getter.ContentFetcher
	rootDir    string
	modulesDir string
}

var _ loader.SourceLoader = (*Loader)(nil)

func New(fetcher getter.ContentFetcher, rootDir, modulesDir string) *Loader {
	return &Loader{fetcher: fetcher, rootDir: rootDir, modulesDir: modulesDir}
}

// Matches claims http:// and https:// sources.
func (l *Loader) Matches(_ context.Context, ref loader.ModuleReference, rctx *loader.ResolutionContext) bool {
	if !strings.HasPrefix(ref.Source, "http://") && !strings.HasPrefix(ref.Source, "https://") {
		return false
	}
	rctx.EffectiveSource = ref.Source
	rctx.DestDir = filepath.Join(l.rootDir, l.modulesDir, sanitizeURL(ref.Source))
	return true
}

// Load fetches the URL into the destination directory.
func (l *Loader) Load(ctx context.Context, ref loader.ModuleReference, rctx *loader.ResolutionContext) loader.ResolvedModule {
	if _, err := os.Stat(rctx.DestDir); err == nil {
		return loader.Resolved(rctx.DestDir, "")
	}
	if err := l.fetcher.Fetch(ctx, rctx.EffectiveSource, rctx.DestDir); err != nil && !errors.Is(err, getter.ErrAlreadyExists) {
		logging.C(ctx).Warn("failed to fetch module URL",
			zap.String("source", ref.Source),
			zap.Error(err))
		return loader.Failed(ref.Source, fmt.Errorf("%w: %v", loader.ErrExtractionFailed, err))
	}
	return loader.Resolved(rctx.DestDir, "")
}

// sanitizeURL maps a URL to a stable relative directory under the external
// modules folder.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return filepath.FromSlash(strings.NewReplacer("://", "/", "?", "/").Replace(raw))
	}
	p := strings.Trim(u.Path, "/")
	return filepath.Join(u.Host, filepath.FromSlash(p))
}
