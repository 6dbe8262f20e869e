// Package loader resolves module references found in IaC configuration to
// local directories, dispatching over an ordered chain of source-grammar
// strategies.
package loader

import "context"

// ModuleReference is a raw module declaration: the source string as written
// in configuration and its version constraint ("latest", a pin, or a range).
// References are immutable; everything derived during resolution lives in a
// ResolutionContext.
type ModuleReference struct {
	Source            string
	VersionConstraint string
}

// ResolutionContext carries the state derived while resolving one reference.
// Each resolution attempt gets its own context, so concurrent resolutions of
// different references never share mutable state.
type ResolutionContext struct {
	// EffectiveSource is the module source after stripping a private
	// registry host and any inner-module suffix.
	EffectiveSource string
	// InnerModule is the subpath after the first "//" in the source, if any.
	InnerModule string
	// DestDir is where the module tree is (or will be) laid out on disk.
	DestDir string
	// BestVersion is the version selected for the declared constraint.
	BestVersion string
	// VersionsURL is the registry "list versions" endpoint for this module.
	VersionsURL string
	// RegistryPrefix is the registry API prefix the reference resolved to.
	RegistryPrefix string
}

// SourceLoader is one strategy in the chain: it recognizes a source grammar
// and, when it does, fetches the module tree.
type SourceLoader interface {
	// Matches reports whether this loader claims the reference. Recognition
	// may perform network access and populates rctx for a later Load call.
	Matches(ctx context.Context, ref ModuleReference, rctx *ResolutionContext) bool
	// Load resolves the reference to a directory. Called only after Matches
	// returned true with the same rctx.
	Load(ctx context.Context, ref ModuleReference, rctx *ResolutionContext) ResolvedModule
}

// ResolvedModule is the outcome of one resolution attempt. Exactly one of
// Dir, NextURL and FailedSource is populated.
type ResolvedModule struct {
	// Dir is the local directory holding the module files.
	Dir string
	// Version is the concrete version that was selected, when the source
	// grammar negotiates one.
	Version string
	// NextURL, when set, means resolution must be retried against this URL
	// (registry indirection).
	NextURL string
	// FailedSource tags a failed resolution with the module source.
	FailedSource string
	// Err carries the failure cause when FailedSource is set.
	Err error
}

// Resolved builds a success outcome.
func Resolved(dir, version string) ResolvedModule {
	return ResolvedModule{Dir: dir, Version: version}
}

// Redirect builds an indirection outcome.
func Redirect(nextURL string) ResolvedModule {
	return ResolvedModule{NextURL: nextURL}
}

// Failed builds a failure outcome tagged with the module source.
func Failed(source string, err error) ResolvedModule {
	return ResolvedModule{FailedSource: source, Err: err}
}

// OK reports whether the resolution produced a usable directory.
func (r ResolvedModule) OK() bool {
	return r.Dir != ""
}
