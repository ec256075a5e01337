// Package http provides the HTTP transport for the Search Engine
// (component F): lexical, semantic, and fused retrieval over a user's
// bookmarks.
package http

import (
	stdhttp "net/http"
	"strconv"

	"bookmarkhub/internal/modkit/httpkit"
	"bookmarkhub/internal/services/search/domain"
)

// Register mounts the search endpoint on the given router.
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	r.Get("/", httpkit.Call(h.search))
}

type handlers struct {
	svc domain.ServicePort
}

// @Summary     Search the caller's bookmarks
// @Tags        Search
// @Produce     json
// @Param       q     query string false "query text; empty lists newest-first"
// @Param       mode  query string false "lexical|semantic|fused (default fused)"
// @Param       limit query int    false "max hits"
// @Success     200 {array} domain.Hit
// @Router      /search [get]
func (h *handlers) search(r *stdhttp.Request) (any, error) {
	userID, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}

	q := r.URL.Query()
	query := q.Get("q")
	limit := atoiOr(q.Get("limit"), 0)

	switch q.Get("mode") {
	case "lexical":
		return h.svc.Lexical(r.Context(), userID, query, limit)
	case "semantic":
		return h.svc.Semantic(r.Context(), userID, query, limit)
	default:
		w := domain.DefaultWeights()
		if lw := q.Get("lexical_weight"); lw != "" {
			if f, err := strconv.ParseFloat(lw, 64); err == nil {
				w.Lexical = f
				w.Semantic = 1 - f
			}
		}
		return h.svc.Fused(r.Context(), userID, query, limit, w)
	}
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
