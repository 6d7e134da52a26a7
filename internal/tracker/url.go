package tracker

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"valorant-match-scraper/internal/constants"
)

var errMatchPath = errors.New("path is not a match page")

// MatchURLs validates and builds match page URLs for one provider.
type MatchURLs struct {
	base *url.URL
}

func NewMatchURLs(base *url.URL) MatchURLs {
	return MatchURLs{base: base}
}

func (m MatchURLs) prefix() string {
	return strings.TrimRight(m.base.Path, "/") + "/" + constants.MatchPathSegment + "/"
}

// Validate accepts only <scheme>://<host><base path>/match/<id>.
func (m MatchURLs) Validate(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, errors.New("url must be absolute")
	}
	if !strings.EqualFold(u.Scheme, m.base.Scheme) {
		return nil, fmt.Errorf("scheme %q not allowed", u.Scheme)
	}
	if !strings.EqualFold(u.Host, m.base.Host) {
		return nil, fmt.Errorf("host %q does not belong to provider %q", u.Host, m.base.Host)
	}

	p := path.Clean(u.Path)
	prefix := m.prefix()
	if !strings.HasPrefix(p, prefix) {
		return nil, errMatchPath
	}
	id := strings.TrimPrefix(p, prefix)
	if id == "" || strings.Contains(id, "/") {
		return nil, errMatchPath
	}
	return u, nil
}

// ForID builds the match page URL for a bare match id.
func (m MatchURLs) ForID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "/?#") {
		return "", fmt.Errorf("invalid match id %q", id)
	}
	u := *m.base
	u.Path = m.prefix() + id
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// MatchID returns the last non-empty path segment of raw.
func MatchID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}
