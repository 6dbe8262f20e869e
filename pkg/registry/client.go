//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=client.go -destination=mock.gen.go -package=registry
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
)

// xTerraformGet carries the module location on download responses.
const xTerraformGet = "X-Terraform-Get"

// Client speaks the Terraform-style module registry protocol.
type Client interface {
	// Versions lists the available version strings for a module, in the
	// order the registry reports them.
	Versions(ctx context.Context, versionsURL string) ([]string, error)
	// DownloadLocation asks the registry where a concrete module version
	// lives and returns the X-Terraform-Get header value. The registry may
	// answer 200 or 204; both are acceptable.
	DownloadLocation(ctx context.Context, downloadURL string) (string, error)
}

type client struct {
	http *retryablehttp.Client
}

var _ Client = (*client)(nil)

// New creates a registry client. Requests carry the bearer token when one is
// configured and are bounded by the given timeout.
func New(token string, timeout time.Duration) Client {
	base := cleanhttp.DefaultPooledClient()
	httpClient := base
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = oauth2.NewClient(ctx, ts)
	}
	httpClient.Timeout = timeout

	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.RetryMax = 2
	rc.Logger = nil
	return &client{http: rc}
}

// moduleVersionsResponse mirrors the registry "list versions" body:
// {"modules":[{"versions":[{"version":"1.2.3"},...]}]}
type moduleVersionsResponse struct {
	Modules []struct {
		Versions []struct {
			Version string `json:"version"`
		} `json:"versions"`
	} `json:"modules"`
}

func (c *client) Versions(ctx context.Context, versionsURL string) ([]string, error) {
	resp, err := c.get(ctx, versionsURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing module versions from %s: %s", versionsURL, resp.Status)
	}

	var body moduleVersionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding module versions from %s: %w", versionsURL, err)
	}
	if len(body.Modules) == 0 {
		return nil, fmt.Errorf("no module entry in versions response from %s", versionsURL)
	}

	versions := make([]string, 0, len(body.Modules[0].Versions))
	for _, v := range body.Modules[0].Versions {
		versions = append(versions, v.Version)
	}
	return versions, nil
}

func (c *client) DownloadLocation(ctx context.Context, downloadURL string) (string, error) {
	resp, err := c.get(ctx, downloadURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return "", fmt.Errorf("module download request to %s: %s", downloadURL, resp.Status)
	}
	return resp.Header.Get(xTerraformGet), nil
}

func (c *client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	return resp, nil
}
