// Package classify decides whether a raw address string is a complete URL
// or an abbreviated fuzzy pattern over path segments.
package classify

import (
	"net/url"
	"strings"
)

// InputType distinguishes the two classification outcomes.
type InputType int

const (
	// FullURL means the address resolved to a launchable URL.
	FullURL InputType = iota
	// FuzzyPattern means the address is an ordered list of match tokens.
	FuzzyPattern
)

// Input is a classified address: exactly one of URL or Pattern is set,
// according to Type.
type Input struct {
	Type    InputType
	URL     *url.URL
	Pattern []string
}

// ClassifyInput classifies a raw address string. An address with an explicit
// scheme is a full URL; one that parses after an inferred scheme and looks
// like a host (dotted name or explicit port) is a full URL with that scheme
// prepended; anything else is a fuzzy pattern split on "/".
//
// Callers must reject empty addresses before classification.
func ClassifyInput(address string) Input {
	if strings.Contains(address, "://") {
		if u, err := url.Parse(address); err == nil && u.Scheme != "" && u.Host != "" {
			return Input{Type: FullURL, URL: canonicalize(u)}
		}
	}

	// No scheme given. A colon suggests a host:port form, which usually means
	// a local http service; otherwise assume https.
	scheme := "https"
	if strings.Contains(address, ":") {
		scheme = "http"
	}

	if u, err := url.Parse(scheme + "://" + address); err == nil && u.Host != "" {
		if strings.Contains(u.Hostname(), ".") || u.Port() != "" {
			return Input{Type: FullURL, URL: canonicalize(u)}
		}
	}

	pattern := []string{}
	for _, seg := range strings.Split(address, "/") {
		if seg == "" {
			continue
		}
		pattern = append(pattern, strings.ToLower(seg))
	}

	return Input{Type: FuzzyPattern, Pattern: pattern}
}

// canonicalize normalizes a parsed URL to its stored string form: lowercase
// host, and "/" for an empty path so host-only URLs round-trip consistently
// with the prune-by-pattern exact anchors.
func canonicalize(u *url.URL) *url.URL {
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u
}
