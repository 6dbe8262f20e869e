// Package registryloader resolves module sources hosted on a Terraform-style
// module registry, public or private.
package registryloader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tflens/modres/pkg/config"
	"github.com/tflens/modres/pkg/getter"
	"github.com/tflens/modres/pkg/loader"
	"github.com/tflens/modres/pkg/logging"
	"github.com/tflens/modres/pkg/modcache"
	"github.com/tflens/modres/pkg/registry"
	"github.com/tflens/modres/pkg/versions"
	"go.uber.org/zap"
)

// vcsPrefixes are source grammars that belong to the version-control loader.
// The registry loader sits first in the chain and must never shadow them.
var vcsPrefixes = []string{"github.com", "bitbucket.org", "git::"}

// Loader is the registry SourceLoader strategy.
type Loader struct {
	cfg     *config.Config
	cache   *modcache.Cache
	client  registry.Client
	fetcher getter.ContentFetcher
	rootDir string
}

var _ loader.SourceLoader = (*Loader)(nil)

// New builds a registry loader. The cache is shared with every other
// registry loader in the process; cfg is captured, never re-read from the
// environment.
func New(cfg *config.Config, cache *modcache.Cache, client registry.Client, fetcher getter.ContentFetcher, rootDir string) *Loader {
	return &Loader{
		cfg:     cfg,
		cache:   cache,
		client:  client,
		fetcher: fetcher,
		rootDir: rootDir,
	}
}

// Matches classifies the source, negotiates the best version for the
// declared constraint and computes the destination directory. It declines
// version-control sources, sources whose versions URL escapes the registry
// prefix, and sources whose version list cannot be obtained.
func (l *Loader) Matches(ctx context.Context, ref loader.ModuleReference, rctx *loader.ResolutionContext) bool {
	for _, prefix := range vcsPrefixes {
		if strings.HasPrefix(ref.Source, prefix) {
			return false
		}
	}

	source := splitInnerModule(ref.Source, rctx)

	prefix := l.cfg.RegistryURLPrefix
	if strings.HasPrefix(source, l.cfg.PrivateRegistryHost) {
		prefix = l.cfg.PrivateRegistryURLPrefix()
		source = strings.TrimPrefix(source, l.cfg.PrivateRegistryHost+"/")
	}
	rctx.EffectiveSource = source
	rctx.RegistryPrefix = prefix
	rctx.VersionsURL = strings.Join([]string{prefix, source, "versions"}, "/")

	// Local paths and other non-registry strings escape the prefix once the
	// URL path is normalized.
	if !strings.HasPrefix(normalizeURL(rctx.VersionsURL), prefix) {
		return false
	}

	list, cached := l.cache.Get(rctx.VersionsURL)
	if !cached {
		fetched, err := l.client.Versions(ctx, rctx.VersionsURL)
		if err != nil {
			logging.C(ctx).Debug("declining source",
				zap.String("url", rctx.VersionsURL),
				zap.Error(fmt.Errorf("%w: %v", loader.ErrVersionListUnavailable, err)))
			return false
		}
		list = versions.OrderDescending(fetched)
		l.cache.Put(rctx.VersionsURL, list)
	}

	rctx.BestVersion = versions.BestMatch(list, ref.VersionConstraint)
	logging.C(ctx).Debug("selected module version",
		zap.String("source", rctx.EffectiveSource),
		zap.String("version", rctx.BestVersion))

	// An inner-module reference resolved by its parent already carries a
	// destination; everything else gets the canonical layout.
	if rctx.DestDir == "" {
		segments := append(
			[]string{l.rootDir, l.cfg.ExternalModulesDir, l.cfg.PrivateRegistryHost},
			strings.Split(rctx.EffectiveSource, "/")...,
		)
		segments = append(segments, rctx.BestVersion)
		rctx.DestDir = filepath.Join(segments...)
	}

	if dirExists(rctx.DestDir) {
		return true
	}
	// A concurrent resolution may have populated the cache meanwhile.
	if _, ok := l.cache.Get(rctx.VersionsURL); ok {
		return true
	}
	return false
}

// Load fetches the module content. When the destination directory already
// exists the content is reused without any network access.
func (l *Loader) Load(ctx context.Context, ref loader.ModuleReference, rctx *loader.ResolutionContext) loader.ResolvedModule {
	if dirExists(rctx.DestDir) {
		return loader.Resolved(l.moduleDir(rctx), rctx.BestVersion)
	}

	downloadURL := strings.Join([]string{rctx.RegistryPrefix, rctx.EffectiveSource, rctx.BestVersion, "download"}, "/")
	location, err := l.client.DownloadLocation(ctx, downloadURL)
	if err != nil {
		logging.C(ctx).Warn("module download request failed",
			zap.String("source", ref.Source),
			zap.String("url", downloadURL),
			zap.Error(err))
		return loader.Failed(ref.Source, fmt.Errorf("%w: %v", loader.ErrDownloadFailed, err))
	}

	if !strings.HasPrefix(location, config.ArchiveObjectURLPrefix) {
		// Not a terminal archive location: the caller must re-resolve
		// against it.
		return loader.Redirect(location)
	}

	if err := l.fetcher.Fetch(ctx, location, rctx.DestDir); err != nil && !errors.Is(err, getter.ErrAlreadyExists) {
		logging.C(ctx).Error("failed to fetch module archive",
			zap.String("source", ref.Source),
			zap.Error(err))
		return loader.Failed(ref.Source, fmt.Errorf("%w: %v", loader.ErrExtractionFailed, err))
	}
	return loader.Resolved(l.moduleDir(rctx), rctx.BestVersion)
}

// moduleDir returns the directory to hand to the scanner: the destination
// itself, or the inner-module subpath inside it.
func (l *Loader) moduleDir(rctx *loader.ResolutionContext) string {
	if rctx.InnerModule != "" {
		return filepath.Join(rctx.DestDir, rctx.InnerModule)
	}
	return rctx.DestDir
}

// splitInnerModule strips an inner-module suffix from the source. For
// "terraform-aws-modules/security-group/aws//modules/http-80" the effective
// source is the part before the first "//", the inner module the part after,
// and any pre-set destination directory is truncated at its own first "//".
func splitInnerModule(source string, rctx *loader.ResolutionContext) string {
	idx := strings.Index(source, "//")
	if idx < 0 {
		return source
	}
	rctx.InnerModule = source[idx+2:]
	if j := strings.Index(rctx.DestDir, "//"); j >= 0 {
		rctx.DestDir = rctx.DestDir[:j]
	}
	return source[:idx]
}

// normalizeURL cleans the path component so that relative segments in a
// source ("../foo") cannot appear to live under the registry prefix.
func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Path = path.Clean(u.Path)
	return u.String()
}

func dirExists(dir string) bool {
	if dir == "" {
		return false
	}
	_, err := os.Stat(dir)
	return err == nil
}
