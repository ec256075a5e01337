package textproc

import "strings"

const (
	// ChunkSize is the target chunk length in characters (runes).
	ChunkSize = 1000
	// ChunkOverlap is how much of the previous chunk's tail is repeated at the
	// start of the next chunk.
	ChunkOverlap = 100
)

// Chunk splits text into overlapping windows of approximately ChunkSize
// characters, preferring to break at a paragraph boundary, falling back to a
// sentence boundary, falling back to a hard cut. Chunks are returned in
// reading order; the caller indexes them from 0.
func Chunk(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}
	if n <= ChunkSize {
		return []string{text}
	}

	var out []string
	start := 0
	for start < n {
		end := start + ChunkSize
		if end >= n {
			out = append(out, strings.TrimSpace(string(runes[start:n])))
			break
		}

		cut := breakPoint(runes, start, end)
		out = append(out, strings.TrimSpace(string(runes[start:cut])))

		next := cut - ChunkOverlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return out
}

// breakPoint finds the best index in (start, end] to cut at, searching
// backward from end for a paragraph break, then a sentence break, then
// giving up and returning end.
func breakPoint(runes []rune, start, end int) int {
	window := runes[start:end]

	if i := lastIndexRunes(window, []rune("\n\n")); i > 0 {
		return start + i + 2
	}
	for _, term := range [][]rune{[]rune(". "), []rune("! "), []rune("? "), []rune(".\n")} {
		if i := lastIndexRunes(window, term); i > 0 {
			return start + i + len(term)
		}
	}
	return end
}

func lastIndexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(haystack) < len(needle) {
		return -1
	}
	for i := len(haystack) - len(needle); i >= 0; i-- {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
