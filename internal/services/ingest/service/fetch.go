package service

import (
	"context"
	"io"
	"net/http"
	"time"

	perr "bookmarkhub/internal/platform/errors"
)

const (
	fetchTimeout     = 30 * time.Second
	fetchMaxBody     = 10 << 20 // 10 MB
	fetchMaxRedirect = 5
	fetchUserAgent   = "Mozilla/5.0 (compatible; bookmarkhub/1.0; +https://bookmarkhub.invalid/bot)"
)

// httpFetcher is a plain net/http GET with a body cap and bounded redirects.
// No ecosystem HTTP client in the reference stack adds anything a transitive
// dependency would: this is a single unauthenticated GET against arbitrary
// third-party hosts, so the resilient-client idiom used for readability/llm
// (token rotation, typed status errors for a *known* upstream) doesn't apply;
// non-2xx here is classified by the orchestrator as RETRY, not retried here.
type httpFetcher struct {
	http *http.Client
}

// newHTTPFetcher builds a Fetcher bounded to fetchMaxRedirect hops.
func newHTTPFetcher() *httpFetcher {
	return &httpFetcher{
		http: &http.Client{
			Timeout: fetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= fetchMaxRedirect {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", perr.InvalidArgf("invalid url %q: %v", url, err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return "", perr.Unavailablef("fetch %q: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", perr.Unavailablef("fetch %q: status %d", url, resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, fetchMaxBody+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return "", perr.Unavailablef("fetch %q: read body: %v", url, err)
	}
	if len(body) > fetchMaxBody {
		return "", perr.InvalidArgf("fetch %q: body exceeds %d bytes", url, fetchMaxBody)
	}
	return string(body), nil
}
