package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ai-research-be/internal/pkg/logger"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const (
	// Weighting of the fused score.
	vectorWeight  = 0.7
	keywordWeight = 0.3

	keywordResultCap = 10

	defaultCacheTTL = 5 * time.Minute
)

// Engine fuses keyword and vector search results into a single ranked list.
// Vector search failures degrade to keyword-only results rather than failing
// the whole retrieval.
type Engine struct {
	keyword KeywordSearcher
	vector  VectorSearcher
	docs    DocStore
	log     logger.ILogger
	cache   *gocache.Cache
}

func NewEngine(keyword KeywordSearcher, vector VectorSearcher, docs DocStore, log logger.ILogger) *Engine {
	return &Engine{
		keyword: keyword,
		vector:  vector,
		docs:    docs,
		log:     log,
		cache:   gocache.New(defaultCacheTTL, 10*time.Minute),
	}
}

func cacheKey(query string, requirements []string, limit int) string {
	return fmt.Sprintf("%s|%s|%d", query, strings.Join(requirements, ","), limit)
}

// Fuse runs both search paths concurrently, merges hits by document id and
// ranks them by the weighted final score.
func (e *Engine) Fuse(ctx context.Context, query string, requirements []string, limit int) ([]*Hit, error) {
	if limit <= 0 {
		limit = 10
	}

	key := cacheKey(query, requirements, limit)
	if cached, ok := e.cache.Get(key); ok {
		return cached.([]*Hit), nil
	}

	var (
		keywordHits []*KeywordHit
		keywordErr  error
		vectorHits  []*VectorHit
		vectorErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := e.keyword.Search(gctx, query, requirements, keywordResultCap)
		if err != nil {
			// Keyword failures yield an empty side, vector results still serve
			keywordErr = err
			return nil
		}
		keywordHits = hits
		return nil
	})
	g.Go(func() error {
		// Vector side over-fetches so fusion has enough candidates after dedup
		hits, err := e.vector.Search(gctx, query, limit*2)
		if err != nil {
			vectorErr = err
			return nil
		}
		vectorHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if keywordErr != nil {
		e.warn("keyword search failed, serving vector side only", keywordErr)
	}

	if vectorErr != nil {
		e.warn("vector search failed, degrading to keyword-only results", vectorErr)
		// Degraded mode: keyword results only
		hits := make([]*Hit, 0, len(keywordHits))
		for _, kh := range keywordHits {
			scaled := kh.RankingScore * 100
			hits = append(hits, &Hit{
				DocID:        kh.DocID,
				Title:        kh.Title,
				Content:      kh.Content,
				Metadata:     kh.Metadata,
				KeywordScore: scaled,
				FinalScore:   scaled,
				Source:       SourceKeyword,
			})
		}
		if len(hits) > limit {
			hits = hits[:limit]
		}
		return hits, nil
	}

	combined := make(map[string]*Hit)
	order := make([]string, 0, len(keywordHits)+len(vectorHits))

	for _, kh := range keywordHits {
		if kh.DocID == "" {
			continue
		}
		if _, ok := combined[kh.DocID]; ok {
			continue
		}
		combined[kh.DocID] = &Hit{
			DocID:        kh.DocID,
			Title:        kh.Title,
			Content:      kh.Content,
			Metadata:     kh.Metadata,
			KeywordScore: kh.RankingScore * 100,
			Source:       SourceKeyword,
		}
		order = append(order, kh.DocID)
	}

	for _, vh := range vectorHits {
		if vh.DocID == "" {
			continue
		}
		if existing, ok := combined[vh.DocID]; ok {
			// Duplicate chunks of one document keep the first (highest)
			// similarity; only a keyword hit is promoted to "both".
			if existing.Source == SourceKeyword {
				existing.VectorScore = vh.Similarity * 100
				existing.Source = SourceBoth
			}
			continue
		}

		hit := &Hit{
			DocID:       vh.DocID,
			Content:     vh.Content,
			Metadata:    vh.Metadata,
			VectorScore: vh.Similarity * 100,
			Source:      SourceVector,
		}
		// Vector-only hits carry chunk text, not the full document.
		// Enrich from the primary store when possible.
		if e.docs != nil {
			if doc, err := e.docs.FetchDoc(ctx, vh.DocID); err == nil && doc != nil {
				hit.Title = doc.Title
				if doc.Content != "" {
					hit.Content = doc.Content
				}
				if len(doc.Metadata) > 0 {
					hit.Metadata = doc.Metadata
				}
			}
		}
		combined[vh.DocID] = hit
		order = append(order, vh.DocID)
	}

	results := make([]*Hit, 0, len(order))
	for _, id := range order {
		hit := combined[id]
		hit.FinalScore = finalScore(hit.VectorScore, hit.KeywordScore)
		results = append(results, hit)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	if len(results) > limit {
		results = results[:limit]
	}

	e.cache.Set(key, results, gocache.DefaultExpiration)
	return results, nil
}

func (e *Engine) warn(message string, err error) {
	if e.log == nil {
		return
	}
	e.log.Warn("retrieval", message, map[string]interface{}{
		"error": err.Error(),
	})
}

// finalScore weights the two paths 70/30. Keyword scores are divided by 10
// and capped at 100 before weighting, which keeps a perfect keyword match
// from drowning out semantic relevance.
func finalScore(vectorScore, keywordScore float64) float64 {
	if keywordScore > 0 {
		keywordScore = keywordScore / 10
		if keywordScore > 100 {
			keywordScore = 100
		}
	}
	return vectorScore*vectorWeight + keywordScore*keywordWeight
}
