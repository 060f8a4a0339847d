package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// noRedirectClient returns a shallow copy of c that hands 3xx responses back
// to the caller instead of following them. The source URL's 302 is part of
// the protocol and must be observed, not followed.
func noRedirectClient(c *http.Client) *http.Client {
	if c == nil {
		c = http.DefaultClient
	}
	cp := *c
	cp.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &cp
}

// get issues a GET for rawURL, wrapping transport failures in ErrNetwork.
func get(ctx context.Context, client *http.Client, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrNetwork, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return resp, nil
}

// discardAndClose drains a small remainder of body so the connection can be
// reused, then closes it.
func discardAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}

// resolveArchiveLocation requests sourceURL and returns the redirect target.
// The response must be a 302 carrying a Location header.
func resolveArchiveLocation(ctx context.Context, client *http.Client, sourceURL string) (string, error) {
	resp, err := get(ctx, client, sourceURL)
	if err != nil {
		return "", err
	}
	defer discardAndClose(resp.Body)

	if resp.StatusCode != http.StatusFound {
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	// Location resolves relative references against the request URL.
	loc, err := resp.Location()
	if err != nil {
		if errors.Is(err, http.ErrNoLocation) {
			return "", fmt.Errorf("%w: %s", ErrMissingLocation, sourceURL)
		}
		return "", fmt.Errorf("%w: %w", ErrMissingLocation, err)
	}
	return loc.String(), nil
}

// openArchive requests location and returns the response body. The caller
// must close it. The response must be a 200.
func openArchive(ctx context.Context, client *http.Client, location string) (io.ReadCloser, error) {
	resp, err := get(ctx, client, location)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		discardAndClose(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Location: location}
	}
	return resp.Body, nil
}
