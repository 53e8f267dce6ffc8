package lookupsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/marmos91/oakd/pkg/config"
	"github.com/marmos91/oakd/pkg/ombox"
)

// TokenSource supplies the bearer token used to authenticate an http(s)
// lookup-data fetch. Grounded in the teacher's pluggable credential-source
// shape (an interface with one no-op implementation and one
// metadata-service-backed implementation).
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// noopTokenSource never supplies a token; used when LookupDataAuth.Strategy
// is empty.
type noopTokenSource struct{}

func (noopTokenSource) Token(ctx context.Context) (string, error) { return "", nil }

// staticTokenSource returns a fixed, config-supplied token verbatim.
type staticTokenSource struct {
	token string
}

func (s staticTokenSource) Token(ctx context.Context) (string, error) { return s.token, nil }

// metadataTokenSource fetches a token from a cloud metadata service
// endpoint (GCE/AWS-instance-metadata style: GET the URL, treat the
// response body as the raw token).
type metadataTokenSource struct {
	url    string
	client *http.Client
}

func (s metadataTokenSource) Token(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", ombox.Wrap(ombox.ErrInvalidArgument, err)
	}
	req.Header.Set("Metadata-Flavor", "Google")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", ombox.Wrap(ombox.ErrInternal, fmt.Errorf("metadata token fetch: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ombox.New(ombox.ErrInternal, "metadata token fetch: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", ombox.Wrap(ombox.ErrInternal, err)
	}
	return strings.TrimSpace(string(body)), nil
}

// NewTokenSource builds the TokenSource named by cfg.Strategy.
func NewTokenSource(cfg config.LookupDataAuthConfig) TokenSource {
	switch cfg.Strategy {
	case "static":
		return staticTokenSource{token: cfg.Token}
	case "metadata":
		return metadataTokenSource{url: cfg.MetadataURL, client: &http.Client{Timeout: 5 * time.Second}}
	default:
		return noopTokenSource{}
	}
}
