package domain

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var (
	tokenSeparators = regexp.MustCompile(`[,\s;/|]+`)
	urlSeparators   = regexp.MustCompile(`[\s,]+`)
	schemePattern   = regexp.MustCompile(`(?i)^https?://`)
)

// TokenSet is an ordered set of tracking tokens.
type TokenSet []string

// ToToken canonicalizes a tracking identifier for comparison: trimmed, upper-cased, no whitespace.
func ToToken(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, strings.TrimSpace(raw))
}

// ToTokenSet splits a multi-value tracking field on commas, whitespace, semicolons, slashes and pipes.
func ToTokenSet(raw string) TokenSet {
	var set TokenSet
	for _, piece := range tokenSeparators.Split(raw, -1) {
		set = set.Add(ToToken(piece))
	}
	return set
}

// Add appends token when it is non-empty and not already present.
func (s TokenSet) Add(token string) TokenSet {
	if token == "" || s.Contains(token) {
		return s
	}
	return append(s, token)
}

// Contains reports whether token is in the set.
func (s TokenSet) Contains(token string) bool {
	for _, t := range s {
		if t == token {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share at least one token.
func (s TokenSet) Intersects(other TokenSet) bool {
	for _, t := range s {
		if other.Contains(t) {
			return true
		}
	}
	return false
}

// NormalizeURL returns raw as an absolute URL, or "" when it cannot be made into one.
// Only the first whitespace/comma separated token is considered and https is assumed
// when no scheme is given.
func NormalizeURL(raw string) string {
	var first string
	for _, piece := range urlSeparators.Split(strings.TrimSpace(raw), -1) {
		if piece != "" {
			first = piece
			break
		}
	}
	if first == "" {
		return ""
	}

	if !schemePattern.MatchString(first) {
		first = "https://" + first
	}

	u, err := url.Parse(first)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ""
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u.String()
}
