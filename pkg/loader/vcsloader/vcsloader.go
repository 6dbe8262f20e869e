// Package vcsloader resolves module sources addressed through a version
// control system (github.com/..., bitbucket.org/..., git::...).
package vcsloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogetter "github.com/hashicorp/go-getter"
	"github.com/tflens/modres/pkg/loader"
	"github.com/tflens/modres/pkg/logging"
	"go.uber.org/zap"
)

var sourcePrefixes = []string{"github.com", "bitbucket.org", "git::"}

// Loader fetches VCS-hosted module trees with go-getter, which detects the
// host grammar and honors a ref embedded in the source (?ref=v1.2.3). No
// version negotiation happens here.
type Loader struct {
	rootDir    string
	modulesDir string
}

var _ loader.SourceLoader = (*Loader)(nil)

func New(rootDir, modulesDir string) *Loader {
	return &Loader{rootDir: rootDir, modulesDir: modulesDir}
}

// Matches claims sources with a known VCS prefix.
func (l *Loader) Matches(_ context.Context, ref loader.ModuleReference, rctx *loader.ResolutionContext) bool {
	for _, prefix := range sourcePrefixes {
		if strings.HasPrefix(ref.Source, prefix) {
			rctx.EffectiveSource = ref.Source
			rctx.DestDir = filepath.Join(l.rootDir, l.modulesDir, sanitizeSource(ref.Source))
			return true
		}
	}
	return false
}

// Load clones the source tree into the destination directory, reusing it
// when a previous resolution already populated it.
func (l *Loader) Load(ctx context.Context, ref loader.ModuleReference, rctx *loader.ResolutionContext) loader.ResolvedModule {
	if _, err := os.Stat(rctx.DestDir); err == nil {
		return loader.Resolved(rctx.DestDir, "")
	}
	client := &gogetter.Client{
		Ctx:  ctx,
		Src:  rctx.EffectiveSource,
		Dst:  rctx.DestDir,
		Mode: gogetter.ClientModeAny,
	}
	if err := client.Get(); err != nil {
		logging.C(ctx).Warn("failed to fetch VCS module",
			zap.String("source", ref.Source),
			zap.Error(err))
		return loader.Failed(ref.Source, fmt.Errorf("%w: %v", loader.ErrDownloadFailed, err))
	}
	return loader.Resolved(rctx.DestDir, "")
}

// sanitizeSource turns a VCS source string into a stable relative directory.
func sanitizeSource(source string) string {
	r := strings.NewReplacer(
		"git::", "",
		"https://", "",
		"http://", "",
		"ssh://", "",
		"?ref=", "/",
		"//", "/",
	)
	return filepath.FromSlash(r.Replace(source))
}
