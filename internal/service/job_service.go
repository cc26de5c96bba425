package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/ai"
	"github.com/jobscout/jobscout/internal/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type searchStore interface {
	List(ctx context.Context, limit, offset uint) ([]model.Job, error)
	FindSimilar(ctx context.Context, vec []float32, limit uint) ([]model.ScoredJob, error)
}

// SearchResult distinguishes a vector-ranked result from the recency
// fallback taken when no query embedding could be produced.
type SearchResult struct {
	Items  []model.ScoredJob `json:"items"`
	Ranked bool              `json:"ranked"`
}

type JobService struct {
	jobs     searchStore
	embedder *ai.Embedder
	cache    *expirable.LRU[string, []float32]
}

func NewJobService(jobs searchStore, embedder *ai.Embedder) *JobService {
	// Query texts repeat heavily (saved searches, pagination); reusing the
	// vector skips the slowest call in the path.
	cache := expirable.NewLRU[string, []float32](4096, nil, 30*time.Minute)
	return &JobService{jobs: jobs, embedder: embedder, cache: cache}
}

// GetJobs is the recency listing. page starts at 1.
func (s *JobService) GetJobs(ctx context.Context, page, limit int) ([]model.Job, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := uint(page-1) * uint(limit)
	return s.jobs.List(ctx, uint(limit), offset)
}

// SearchJobs embeds the query text and ranks stored jobs by similarity.
// When no embedding is available the caller still gets jobs, just ordered
// by recency.
func (s *JobService) SearchJobs(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	vec := s.queryVector(ctx, query)
	if vec == nil {
		return s.recencyFallback(ctx, limit)
	}
	return s.FindSimilarJobs(ctx, vec, limit)
}

// MatchesForProfile ranks jobs against the profile-derived phrase.
func (s *JobService) MatchesForProfile(ctx context.Context, profile *model.Profile, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	text := ""
	if profile != nil {
		text = profile.MatchText()
	}
	vec := s.queryVector(ctx, text)
	if vec == nil {
		return s.recencyFallback(ctx, limit)
	}
	return s.FindSimilarJobs(ctx, vec, limit)
}

// FindSimilarJobs ranks against an already-computed vector.
func (s *JobService) FindSimilarJobs(ctx context.Context, vec []float32, limit int) (*SearchResult, error) {
	items, err := s.jobs.FindSimilar(ctx, vec, uint(limit))
	if err != nil {
		return nil, err
	}
	return &SearchResult{Items: items, Ranked: true}, nil
}

func (s *JobService) queryVector(ctx context.Context, text string) []float32 {
	if text == "" {
		return nil
	}
	key := cacheKey(text)
	if cached, ok := s.cache.Get(key); ok {
		return cached
	}
	vec := s.embedder.EmbedOrNil(ctx, text, ai.TaskQuery)
	if vec != nil {
		s.cache.Add(key, vec)
	}
	return vec
}

func (s *JobService) recencyFallback(ctx context.Context, limit int) (*SearchResult, error) {
	logutil.GetLogger(ctx).Debug("no query embedding, falling back to recency", zap.Int("limit", limit))
	jobs, err := s.jobs.List(ctx, uint(limit), 0)
	if err != nil {
		return nil, err
	}
	items := make([]model.ScoredJob, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, model.ScoredJob{Job: job})
	}
	return &SearchResult{Items: items, Ranked: false}, nil
}

func cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}
