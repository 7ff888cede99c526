package reader

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// The resource class wraps a streamable file or remote resource.
type resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *resource) Path() string {
	return r.url.String()
}

// Returns true if the resource is streamed over http/https.
func (r *resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Resolve a resource path. If relTo is specified and pathToResource does not
// define a scheme, the path is resolved relative to the location of relTo.
func resolveResource(pathToResource string, relTo *resource) (*url.URL, error) {
	resURL, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	if resURL.Scheme != "" || relTo == nil || filepath.IsAbs(resURL.Path) {
		return resURL, nil
	}

	// Remote parents resolve using URL semantics
	if relTo.IsRemote() {
		return relTo.url.ResolveReference(&url.URL{Path: resURL.Path}), nil
	}

	prefix, err := filepath.Abs(relTo.url.Path)
	if err != nil {
		return nil, fmt.Errorf("resource: could not detect abs path for %s: %w", relTo.url.Path, err)
	}
	return &url.URL{Path: filepath.Join(filepath.Dir(prefix), resURL.Path)}, nil
}

// Open a resource data stream. Paths without a scheme are opened from the
// local filesystem; http and https URLs are fetched using net/http. The
// caller must close the returned resource.
func newResource(pathToResource string, relTo *resource) (*resource, error) {
	resURL, err := resolveResource(pathToResource, relTo)
	if err != nil {
		return nil, err
	}

	var reader io.ReadCloser
	switch resURL.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(resURL.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		resp, err := http.Get(resURL.String())
		if err != nil {
			return nil, fmt.Errorf("resource: could not fetch '%s': %w", resURL.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("resource: could not fetch '%s': status %d", resURL.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", resURL.Scheme)
	}

	return &resource{
		ReadCloser: reader,
		url:        resURL,
	}, nil
}
