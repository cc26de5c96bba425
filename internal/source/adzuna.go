package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3
)

// AdzunaSource fetches from the Adzuna public API. With no credentials
// configured it returns an empty result without error, so the fan-out just
// sees a quiet source.
type AdzunaSource struct {
	appID   string
	appKey  string
	country string
	baseURL string
	client  *http.Client
}

func NewAdzunaSource(appID, appKey, country string, client *http.Client) *AdzunaSource {
	if country == "" {
		country = "us"
	}
	return &AdzunaSource{
		appID:   appID,
		appKey:  appKey,
		country: country,
		baseURL: adzunaBaseURL,
		client:  client,
	}
}

func (s *AdzunaSource) Name() string {
	return "adzuna"
}

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
}

type adzunaResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	RedirectURL string  `json:"redirect_url"`
	Created     string  `json:"created"`
}

func (s *AdzunaSource) Fetch(ctx context.Context, query, location string) ([]RawJob, error) {
	if s.appID == "" || s.appKey == "" {
		logutil.GetLogger(ctx).Debug("adzuna credentials not set, skipping")
		return nil, nil
	}
	var jobs []RawJob
	for page := 1; page <= adzunaMaxPages; page++ {
		batch, err := s.fetchPage(ctx, query, location, page)
		if err != nil {
			return nil, fmt.Errorf("adzuna page %d: %w", page, err)
		}
		jobs = append(jobs, batch...)
		if len(batch) < adzunaPageSize {
			break
		}
	}
	return jobs, nil
}

func (s *AdzunaSource) fetchPage(ctx context.Context, query, location string, page int) ([]RawJob, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", s.baseURL, s.country, page)
	params := url.Values{}
	params.Set("app_id", s.appID)
	params.Set("app_key", s.appKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("what", query)
	params.Set("where", location)
	params.Set("sort_by", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
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
	var out adzunaResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	jobs := make([]RawJob, 0, len(out.Results))
	for _, r := range out.Results {
		jobs = append(jobs, RawJob{
			Title:       r.Title,
			Company:     r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: r.Description,
			Salary:      formatSalaryRange(r.SalaryMin, r.SalaryMax),
			URL:         r.RedirectURL,
			PostedAt:    r.Created,
		})
	}
	logutil.GetLogger(ctx).Debug("adzuna page fetched", zap.Int("page", page), zap.Int("results", len(jobs)))
	return jobs, nil
}

func formatSalaryRange(min, max float64) string {
	switch {
	case min > 0 && max > 0:
		return fmt.Sprintf("%.0f-%.0f", min, max)
	case min > 0:
		return fmt.Sprintf("%.0f", min)
	case max > 0:
		return fmt.Sprintf("%.0f", max)
	}
	return ""
}

func truncateBody(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
