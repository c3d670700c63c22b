// Package search implements the keyword search over published posts.
//
// Queries are split on whitespace (ASCII and the ideographic space U+3000) into
// tokens. A post matches when every token occurs in its title or content after
// both sides are normalized: full-width letters, digits and symbols fold to
// their half-width forms, half-width katakana widens, and text is lowercased.
// Matching is a linear scan over the posts handed in; there is no index.
package search

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"mdblog/internal/model"
)

// Normalize folds character width and case so that visually equivalent text
// compares equal, e.g. "ＧＯ１２" and "go12".
func Normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(width.Fold.String(s)))
}

// Tokenize decodes a raw query and returns its normalized, non-empty tokens.
// A blank query yields no tokens.
func Tokenize(query string) []string {
	fields := strings.Split(collapseSpace(decode(query)), " ")

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := Normalize(f); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Matches reports whether every token is a substring of the post's normalized
// title and content. Tokens must already be normalized.
func Matches(p model.Post, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	text := Normalize(p.Title) + " " + Normalize(p.Content)
	for _, t := range tokens {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}

// Filter returns the posts matching all tokens of query, preserving order.
func Filter(posts []model.Post, query string) []model.Post {
	tokens := Tokenize(query)
	out := make([]model.Post, 0)
	if len(tokens) == 0 {
		return out
	}
	for _, p := range posts {
		if Matches(p, tokens) {
			out = append(out, p)
		}
	}
	return out
}

// decode undoes percent-encoding left in the query. Input that is not valid
// percent-encoding (e.g. "100%") is used as is.
func decode(s string) string {
	if d, err := url.PathUnescape(s); err == nil {
		return d
	}
	return s
}

// collapseSpace trims s and replaces every whitespace run with one ASCII space.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range strings.TrimFunc(s, unicode.IsSpace) {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
