package urlutil

import (
	"fmt"
	"net/url"
)

// Origin reduces a URL to its scheme://host origin, as matched by browsers
// in CORS checks. Path, query and fragment are discarded.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no origin", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
