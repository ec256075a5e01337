package textproc

import (
	"strings"
	"testing"
)

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Rust", "rust"},
		{"collapses whitespace to hyphen", "  Web   Dev ", "web-dev"},
		{"trims stray hyphens", " -tokio- ", "tokio"},
		{"empty stays empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTag(tt.in); got != tt.want {
				t.Fatalf("NormalizeTag(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTags_DedupPreservesOrder(t *testing.T) {
	got := NormalizeTags([]string{"Rust", "tokio", "RUST", "", "Tokio"})
	want := []string{"rust", "tokio"}
	if !equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestUnionTags_FirstSeenOrder(t *testing.T) {
	old := []string{"rust", "tokio"}
	new := []string{"tokio", "tracing"}
	got := UnionTags(old, new)
	want := []string{"rust", "tokio", "tracing"}
	if !equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestMergeClassifierTags_UserTagsFirst(t *testing.T) {
	got := MergeClassifierTags([]string{"Rust", "Tokio"}, []string{"async", "rust"})
	want := []string{"rust", "tokio", "async"}
	if !equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestCanonicalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTPS://Example.COM/path", "https://example.com/path"},
		{"strips default https port", "https://example.com:443/path", "https://example.com/path"},
		{"strips fragment", "https://example.com/path#section", "https://example.com/path"},
		{"sorts query params", "https://example.com/p?b=2&a=1", "https://example.com/p?a=1&b=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalizeURL(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("CanonicalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBookmarkID_Deterministic(t *testing.T) {
	id1, err := BookmarkID("https://tokio.rs/tokio/topics/tracing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, err := BookmarkID("HTTPS://Tokio.rs/tokio/topics/tracing#ignored")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected equal ids for equivalent URLs, got %q and %q", id1, id2)
	}
	if len(id1) == 0 || len(id1) > 512 {
		t.Fatalf("bookmark id length out of bounds: %d", len(id1))
	}
}

func TestValidHTTPURL(t *testing.T) {
	if !ValidHTTPURL("https://example.com") {
		t.Fatalf("expected valid")
	}
	if ValidHTTPURL("ftp://example.com") {
		t.Fatalf("expected invalid scheme rejected")
	}
	if ValidHTTPURL("not a url") {
		t.Fatalf("expected invalid rejected")
	}
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	got := Chunk("short text")
	if len(got) != 1 || got[0] != "short text" {
		t.Fatalf("got %v", got)
	}
}

func TestChunk_LongTextOverlapsAndOrders(t *testing.T) {
	para := strings.Repeat("word ", 50) + "\n\n"
	text := strings.Repeat(para, 20) // well over ChunkSize
	chunks := Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) == 0 {
			t.Fatalf("chunk %d is empty", i)
		}
		if i > 0 {
			head := string([]rune(c)[:20])
			if !strings.Contains(chunks[i-1], head) {
				t.Fatalf("chunk %d does not start inside the tail of chunk %d", i, i-1)
			}
		}
	}
}

func TestChunk_Empty(t *testing.T) {
	if got := Chunk(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
