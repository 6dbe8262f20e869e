package loader

import "errors"

var (
	// ErrUnrecognizedSource is returned by the chain when no loader claims a
	// module source.
	ErrUnrecognizedSource = errors.New("no loader recognizes module source")

	// ErrVersionListUnavailable means the registry query for available
	// versions failed; recognition declines and the chain falls through.
	ErrVersionListUnavailable = errors.New("module version list unavailable")

	// ErrDownloadFailed means the download request failed with a status
	// other than the tolerated ones.
	ErrDownloadFailed = errors.New("module download failed")

	// ErrExtractionFailed means the archive fetch or extraction failed for a
	// reason other than the destination already existing.
	ErrExtractionFailed = errors.New("module extraction failed")

	// ErrRedirectLoopExceeded means the bounded hop count for registry
	// indirection was exhausted.
	ErrRedirectLoopExceeded = errors.New("registry redirect limit exceeded")
)
