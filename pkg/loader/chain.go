package loader

import (
	"context"
	"fmt"

	"github.com/tflens/modres/pkg/logging"
	"go.uber.org/zap"
)

// Chain tries an ordered list of loaders and returns the first claimed
// result. Priority order is a correctness rule: earlier loaders must refuse
// sources they would resolve incorrectly, so that later loaders get them.
type Chain struct {
	loaders      []SourceLoader
	maxRedirects int
}

// NewChain builds a chain over the given loaders, in priority order.
// maxRedirects bounds the registry indirection hops followed per reference.
func NewChain(maxRedirects int, loaders ...SourceLoader) *Chain {
	return &Chain{loaders: loaders, maxRedirects: maxRedirects}
}

// Resolve finds the loader that recognizes the reference and returns its
// result. Redirect outcomes are re-resolved against the chain up to the hop
// limit; exhausting it yields a failure of the download class. When no loader
// recognizes the source, ErrUnrecognizedSource is returned.
func (c *Chain) Resolve(ctx context.Context, ref ModuleReference) (ResolvedModule, error) {
	source := ref.Source
	for hop := 0; hop <= c.maxRedirects; hop++ {
		res, err := c.resolveOnce(ctx, ModuleReference{
			Source:            source,
			VersionConstraint: ref.VersionConstraint,
		})
		if err != nil {
			return ResolvedModule{}, err
		}
		if res.NextURL == "" {
			return res, nil
		}
		logging.C(ctx).Debug("following registry indirection",
			zap.String("source", source),
			zap.String("next_url", res.NextURL),
			zap.Int("hop", hop+1))
		source = res.NextURL
	}
	return Failed(ref.Source, fmt.Errorf("%w after %d hops", ErrRedirectLoopExceeded, c.maxRedirects)), nil
}

func (c *Chain) resolveOnce(ctx context.Context, ref ModuleReference) (ResolvedModule, error) {
	for _, l := range c.loaders {
		rctx := &ResolutionContext{}
		if !l.Matches(ctx, ref, rctx) {
			continue
		}
		return l.Load(ctx, ref, rctx), nil
	}
	return ResolvedModule{}, fmt.Errorf("%w: %q", ErrUnrecognizedSource, ref.Source)
}
