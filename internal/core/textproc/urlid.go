package textproc

import (
	"encoding/base64"
	"hash/fnv"
	"net/url"
	"sort"
	"strings"
)

// CanonicalizeURL lowercases scheme and host, strips a default port, removes
// the fragment, and sorts query parameters, producing a stable string two
// differently-formatted inputs of the same resource should agree on.
func CanonicalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if host, port, ok := strings.Cut(u.Host, ":"); ok {
		if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
			u.Host = host
		}
	}

	if q := u.Query(); len(q) > 0 {
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		vals := url.Values{}
		for _, k := range keys {
			vs := q[k]
			sort.Strings(vs)
			for _, v := range vs {
				vals.Add(k, v)
			}
		}
		u.RawQuery = vals.Encode()
	}

	return u.String(), nil
}

// BookmarkID derives a stable, URL-safe base64 identifier from the canonical
// form of a URL. FNV-128a is sufficient: we need determinism and a low
// collision rate, not cryptographic resistance.
func BookmarkID(raw string) (string, error) {
	canon, err := CanonicalizeURL(raw)
	if err != nil {
		return "", err
	}
	h := fnv.New128a()
	_, _ = h.Write([]byte(canon))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

// Domain extracts the registrable host from a URL already known to be valid
// http/https. It does not attempt public-suffix-list-aware eTLD+1 reduction;
// it returns the full host, which is sufficient for display and grouping.
func Domain(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return strings.ToLower(u.Hostname()), nil
}

// ValidHTTPURL reports whether raw parses as an absolute http or https URL.
func ValidHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
