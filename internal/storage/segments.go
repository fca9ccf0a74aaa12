package storage

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ExtractSegments derives the normalized comparison tokens for a URL: the
// registrable host label followed by each non-empty path segment, all
// lowercased. Query strings and fragments are ignored.
func ExtractSegments(rawURL string) ([]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedURL, rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q: missing scheme or host", ErrMalformedURL, rawURL)
	}

	var segments []string
	if host := u.Hostname(); host != "" {
		segments = append(segments, strings.ToLower(hostLabel(host)))
	}

	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "" {
			continue
		}
		segments = append(segments, strings.ToLower(seg))
	}

	return segments, nil
}

// hostLabel picks the registrable label of a hostname: the label one
// position before the top-level suffix, so api.example.com and example.com
// both yield "example". Single-label hosts (localhost) and IP addresses are
// used verbatim. Multi-part public suffixes (.co.uk) are not special-cased.
func hostLabel(host string) string {
	if net.ParseIP(host) != nil {
		return host
	}
	labels := strings.Split(host, ".")
	if len(labels) >= 2 {
		return labels[len(labels)-2]
	}
	return labels[0]
}

// lastSegment returns the final token, or "" for an empty sequence.
func lastSegment(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}
