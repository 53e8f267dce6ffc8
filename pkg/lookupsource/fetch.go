package lookupsource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/marmos91/oakd/pkg/ombox"
)

// Fetch acquires lookup data from location and decodes it. location is
// either a bare filesystem path, an http(s):// URL, or an s3:// URI
// (bucket/key). auth supplies the bearer token for an authenticated
// http(s) fetch; it is ignored for file and s3 locations.
func Fetch(ctx context.Context, location string, auth TokenSource) (map[string][]byte, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" {
		return fetchFile(location)
	}

	switch u.Scheme {
	case "http", "https":
		return fetchHTTP(ctx, location, auth)
	case "s3":
		return fetchS3(ctx, u)
	default:
		return nil, ombox.New(ombox.ErrInvalidArgument, "unsupported lookup_data scheme %q", u.Scheme)
	}
}

func fetchFile(path string) (map[string][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ombox.Wrap(ombox.ErrInvalidArgument, fmt.Errorf("open lookup data %s: %w", path, err))
	}
	defer f.Close()
	return Decode(f)
}

// fetchHTTP downloads location with cenkalti/backoff/v4 exponential
// retry: a transient network failure or 5xx response is retried up to the
// backoff policy's max elapsed time before giving up.
func fetchHTTP(ctx context.Context, location string, auth TokenSource) (map[string][]byte, error) {
	var body []byte

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		token, err := auth.Token(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err // transient: retry
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("lookup data fetch: server error %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("lookup data fetch: unexpected status %d", resp.StatusCode))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = data
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, ombox.Wrap(ombox.ErrInternal, fmt.Errorf("fetch lookup data from %s: %w", location, err))
	}
	return Decode(bytes.NewReader(body))
}
