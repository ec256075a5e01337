// Package service implements the Search Engine (component F): lexical,
// tag-facet, semantic, and fused retrieval over a user's bookmarks.
package service

import (
	"context"
	"sort"

	"bookmarkhub/internal/modkit/repokit"
	"bookmarkhub/internal/services/search/domain"
	"bookmarkhub/internal/services/search/repo"
)

// DefaultLimit bounds unspecified-limit queries; same value as bookmark
// listing's default page size. A caller-supplied limit is not capped.
const DefaultLimit = 50

// Service is the search engine's behavioural contract.
type Service interface{ domain.ServicePort }

// Svc implements Service over a bound Repo and an Embedder for query
// vectorisation.
type Svc struct {
	repo repo.Repo
	emb  domain.Embedder
}

// New constructs the search engine service.
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], emb domain.Embedder) *Svc {
	if db == nil {
		panic("search.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("search.Service requires a non nil Repo binder")
	}
	if emb == nil {
		panic("search.Service requires a non nil Embedder")
	}
	return &Svc{repo: binder.Bind(db), emb: emb}
}

func (s *Svc) Lexical(ctx context.Context, userID, query string, limit int) ([]domain.Hit, error) {
	limit = normalizeLimit(limit)
	rows, err := s.repo.Lexical(ctx, userID, toTSQuery(query), limit)
	if err != nil {
		return nil, err
	}
	return toHits(rows), nil
}

func (s *Svc) Semantic(ctx context.Context, userID, query string, limit int) ([]domain.Hit, error) {
	limit = normalizeLimit(limit)
	vecs, err := s.emb.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Semantic(ctx, userID, vecs[0], limit)
	if err != nil {
		return nil, err
	}
	return toHits(rows), nil
}

// Fused blends normalised lexical and semantic scores per bookmark.
func (s *Svc) Fused(ctx context.Context, userID, query string, limit int, w domain.Weights) ([]domain.Hit, error) {
	limit = normalizeLimit(limit)

	lexical, err := s.Lexical(ctx, userID, query, limit)
	if err != nil {
		return nil, err
	}
	semantic, err := s.Semantic(ctx, userID, query, limit)
	if err != nil {
		return nil, err
	}

	normalize(lexical)
	normalize(semantic)

	type blended struct {
		hit   domain.Hit
		score float64
	}
	byID := make(map[string]*blended, len(lexical)+len(semantic))
	order := make([]string, 0, len(lexical)+len(semantic))
	for _, h := range lexical {
		byID[h.BookmarkID] = &blended{hit: h, score: h.Score * w.Lexical}
		order = append(order, h.BookmarkID)
	}
	for _, h := range semantic {
		if b, ok := byID[h.BookmarkID]; ok {
			b.score += h.Score * w.Semantic
			if b.hit.Snippet == "" {
				b.hit.Snippet = h.Snippet
			}
		} else {
			byID[h.BookmarkID] = &blended{hit: h, score: h.Score * w.Semantic}
			order = append(order, h.BookmarkID)
		}
	}

	out := make([]domain.Hit, 0, len(order))
	for _, id := range order {
		b := byID[id]
		b.hit.Score = b.score
		out = append(out, b.hit)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// normalize rescales scores into [0,1] in place so lexical ts_rank and
// semantic cosine-similarity values become comparable before blending.
func normalize(hits []domain.Hit) {
	if len(hits) == 0 {
		return
	}
	min, max := hits[0].Score, hits[0].Score
	for _, h := range hits {
		if h.Score < min {
			min = h.Score
		}
		if h.Score > max {
			max = h.Score
		}
	}
	if max == min {
		for i := range hits {
			hits[i].Score = 1
		}
		return
	}
	for i := range hits {
		hits[i].Score = (hits[i].Score - min) / (max - min)
	}
}

func toHits(rows []repo.RowHit) []domain.Hit {
	out := make([]domain.Hit, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Hit{
			BookmarkID: r.BookmarkID,
			Title:      r.Title,
			URL:        r.URL,
			Score:      r.Score,
			Snippet:    r.Snippet,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out
}
