package gitlab

import (
	"context"
	"strings"
)

// nextPageLink extracts the rel="next" URL from a Link response header and
// strips the transport's base URL so the result can be re-issued as a path.
// Returns "" when no next relation exists.
//
// Link header format: <url>; rel="next", <url>; rel="last"
func nextPageLink(linkHeader, baseURL string) string {
	if linkHeader == "" {
		return ""
	}
	for _, link := range strings.Split(linkHeader, ",") {
		parts := strings.Split(link, ";")
		if len(parts) < 2 {
			continue
		}
		// The rel parameter is not necessarily the first one after the URL.
		next := false
		for _, param := range parts[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				next = true
				break
			}
		}
		if !next {
			continue
		}
		url := strings.TrimSpace(parts[0])
		if strings.HasPrefix(url, "<") && strings.HasSuffix(url, ">") {
			url = url[1 : len(url)-1]
		}
		return strings.TrimPrefix(url, baseURL)
	}
	return ""
}

// collectPages fetches every page of a listing by following rel="next"
// links until exhausted and returns the flattened collection.
func collectPages[T any](ctx context.Context, t *Transport, path string) ([]T, error) {
	var all []T
	for path != "" {
		var page []T
		header, err := t.GetJSON(ctx, path, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		path = nextPageLink(header.Get("Link"), t.BaseURL())
	}
	return all, nil
}
