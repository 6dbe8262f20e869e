//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=getter.go -destination=mock.gen.go -package=getter
package getter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogetter "github.com/hashicorp/go-getter"
)

// ErrAlreadyExists reports that the destination directory is already
// populated. Two workers racing to extract the same module version both
// succeed; the loser observes this error and treats it as success.
var ErrAlreadyExists = errors.New("destination directory already exists")

// ContentFetcher retrieves a remote archive or tree and extracts it into a
// local directory.
type ContentFetcher interface {
	Fetch(ctx context.Context, url, dstDir string) error
}

type archiveFetcher struct{}

var _ ContentFetcher = (*archiveFetcher)(nil)

// NewArchiveFetcher returns a ContentFetcher backed by go-getter, which
// understands archive URLs as well as the git/http source grammars.
func NewArchiveFetcher() ContentFetcher {
	return &archiveFetcher{}
}

func (f *archiveFetcher) Fetch(ctx context.Context, url, dstDir string) error {
	client := &gogetter.Client{
		Ctx:  ctx,
		Src:  url,
		Dst:  dstDir,
		Mode: gogetter.ClientModeAny,
	}
	if err := client.Get(); err != nil {
		if isAlreadyExists(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	return nil
}

// isAlreadyExists recognizes the errors go-getter and git report when the
// destination was populated by a concurrent worker.
func isAlreadyExists(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "file exists") ||
		strings.Contains(msg, "File exists") ||
		strings.Contains(msg, "already exists and is not an empty directory")
}
