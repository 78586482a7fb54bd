package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize canonicalizes a URL for deduplication and returns an error if
// the URL cannot be crawled at all.
//
// Two URLs that normalize identically are treated as the same page, so
// the rules here directly define what "already visited" means:
//   - scheme and host are lowercased
//   - the fragment is dropped (#anchor does not change content)
//   - an empty path becomes "/" (http://a.test and http://a.test/ are one page)
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

// DomainOf returns the host component of a URL, the partition key for
// politeness throttling. Returns "" for unparseable input; callers only
// see normalized URLs, so that path is effectively dead.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
