package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jobscout/jobscout/internal/ai"
	"github.com/jobscout/jobscout/internal/model"
)

type fakeSearchStore struct {
	listed    []model.Job
	similar   []model.ScoredJob
	lastLimit uint
}

func (f *fakeSearchStore) List(ctx context.Context, limit, offset uint) ([]model.Job, error) {
	f.lastLimit = limit
	return f.listed, nil
}

func (f *fakeSearchStore) FindSimilar(ctx context.Context, vec []float32, limit uint) ([]model.ScoredJob, error) {
	f.lastLimit = limit
	return f.similar, nil
}

type staticProvider struct {
	vec   []float32
	calls int
}

func (p *staticProvider) Name() string { return "static" }

func (p *staticProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	return "", ai.ErrUnavailable
}

func (p *staticProvider) Embed(ctx context.Context, model, text, taskType string) ([]float32, error) {
	p.calls++
	return p.vec, nil
}

func TestSearchJobsRanked(t *testing.T) {
	store := &fakeSearchStore{similar: []model.ScoredJob{
		{Job: model.Job{URL: "https://a/1"}, Similarity: 0.91},
	}}
	provider := &staticProvider{vec: []float32{0.1, 0.2}}
	svc := NewJobService(store, ai.NewEmbedder(provider, "embed-1", 0, 0))

	result, err := svc.SearchJobs(context.Background(), "golang backend", 10)
	require.NoError(t, err)
	require.True(t, result.Ranked)
	require.Len(t, result.Items, 1)
	require.InDelta(t, 0.91, float64(result.Items[0].Similarity), 0.001)
}

func TestSearchJobsFallsBackToRecency(t *testing.T) {
	store := &fakeSearchStore{listed: []model.Job{
		{URL: "https://a/1"}, {URL: "https://a/2"},
	}}
	svc := NewJobService(store, nil)

	result, err := svc.SearchJobs(context.Background(), "golang", 10)
	require.NoError(t, err)
	require.False(t, result.Ranked)
	require.Len(t, result.Items, 2)
}

func TestSearchJobsCachesQueryVector(t *testing.T) {
	store := &fakeSearchStore{}
	provider := &staticProvider{vec: []float32{0.5}}
	svc := NewJobService(store, ai.NewEmbedder(provider, "embed-1", 0, 0))

	for i := 0; i < 3; i++ {
		_, err := svc.SearchJobs(context.Background(), "same query", 10)
		require.NoError(t, err)
	}
	require.Equal(t, 1, provider.calls)
}

func TestMatchesForProfile(t *testing.T) {
	store := &fakeSearchStore{similar: []model.ScoredJob{{Job: model.Job{URL: "https://a/1"}}}}
	provider := &staticProvider{vec: []float32{0.5}}
	svc := NewJobService(store, ai.NewEmbedder(provider, "embed-1", 0, 0))

	result, err := svc.MatchesForProfile(context.Background(), &model.Profile{Headline: "Go engineer"}, 10)
	require.NoError(t, err)
	require.True(t, result.Ranked)
}

func TestMatchesForProfileEmptyProfileFallsBack(t *testing.T) {
	store := &fakeSearchStore{listed: []model.Job{{URL: "https://a/1"}}}
	provider := &staticProvider{vec: []float32{0.5}}
	svc := NewJobService(store, ai.NewEmbedder(provider, "embed-1", 0, 0))

	result, err := svc.MatchesForProfile(context.Background(), &model.Profile{}, 10)
	require.NoError(t, err)
	require.False(t, result.Ranked)
	require.Equal(t, 0, provider.calls)
}

func TestGetJobsClampsPaging(t *testing.T) {
	store := &fakeSearchStore{}
	svc := NewJobService(store, nil)

	_, err := svc.GetJobs(context.Background(), -3, 10000)
	require.NoError(t, err)
	require.Equal(t, uint(100), store.lastLimit)
}
