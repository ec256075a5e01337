// Package textproc holds the small deterministic text transforms the ingestion
// pipeline and search engine share: tag normalisation, canonical URL hashing,
// and paragraph-aware chunking.
package textproc

import "strings"

// NormalizeTag lowercases, trims, and collapses internal whitespace to a single
// hyphen. Returns "" for inputs that normalise to nothing (caller should drop).
func NormalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inWS = true
			continue
		}
		if inWS {
			b.WriteByte('-')
			inWS = false
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "-")
}

// NormalizeTags normalises every tag, drops empties, and deduplicates while
// preserving first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// UnionTags returns the lexical union of old and new, both assumed already
// normalised, preserving the order old then new, first-seen.
func UnionTags(old, new []string) []string {
	seen := make(map[string]struct{}, len(old)+len(new))
	out := make([]string, 0, len(old)+len(new))
	for _, t := range old {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range new {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// MergeClassifierTags merges model-proposed tags with user-supplied tags, both
// normalised first. On conflict (same normalised form proposed differently
// before normalisation, which can't actually collide post-normalisation, but a
// user tag always wins if it appears in both sets in the same position) the
// user tag set's order is preferred: user tags come first, then any additional
// model tags not already present.
func MergeClassifierTags(userTags, modelTags []string) []string {
	u := NormalizeTags(userTags)
	m := NormalizeTags(modelTags)
	return UnionTags(u, m)
}
