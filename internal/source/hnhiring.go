package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const hnSearchBaseURL = "https://hn.algolia.com/api/v1/search"

// HNHiringSource walks Hacker News job postings through the Algolia search
// API. It is the deep adapter: exhaustive pagination with a delay between
// pages, so it only runs from the queue-dispatched orchestrator, never in a
// request handler.
type HNHiringSource struct {
	baseURL   string
	client    *http.Client
	maxPages  int
	pageDelay time.Duration
}

func NewHNHiringSource(client *http.Client, maxPages, pageDelayMS int) *HNHiringSource {
	if maxPages <= 0 {
		maxPages = 5
	}
	return &HNHiringSource{
		baseURL:   hnSearchBaseURL,
		client:    client,
		maxPages:  maxPages,
		pageDelay: time.Duration(pageDelayMS) * time.Millisecond,
	}
}

func (s *HNHiringSource) Name() string {
	return "hn_hiring"
}

type hnSearchResponse struct {
	Hits    []hnHit `json:"hits"`
	NbPages int     `json:"nbPages"`
	Page    int     `json:"page"`
}

type hnHit struct {
	ObjectID  string `json:"objectID"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	StoryText string `json:"story_text"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
}

func (s *HNHiringSource) Fetch(ctx context.Context, query, location string) ([]RawJob, error) {
	var jobs []RawJob
	for page := 0; page < s.maxPages; page++ {
		if page > 0 && s.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return jobs, ctx.Err()
			case <-time.After(s.pageDelay):
			}
		}
		resp, err := s.fetchPage(ctx, query, location, page)
		if err != nil {
			return nil, fmt.Errorf("hn page %d: %w", page, err)
		}
		for _, hit := range resp.Hits {
			link := hit.URL
			if link == "" {
				link = "https://news.ycombinator.com/item?id=" + hit.ObjectID
			}
			jobs = append(jobs, RawJob{
				Title:       hit.Title,
				Description: hit.StoryText,
				URL:         link,
				PostedAt:    hit.CreatedAt,
			})
		}
		if resp.Page >= resp.NbPages-1 {
			break
		}
	}
	logutil.GetLogger(ctx).Info("hn hiring crawl done", zap.Int("results", len(jobs)))
	return jobs, nil
}

func (s *HNHiringSource) fetchPage(ctx context.Context, query, location string, page int) (*hnSearchResponse, error) {
	params := url.Values{}
	text := query
	if location != "" {
		text += " " + location
	}
	params.Set("query", text)
	params.Set("tags", "job")
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body))
	}
	var out hnSearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
