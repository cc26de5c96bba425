package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const remotiveBaseURL = "https://remotive.com/api/remote-jobs"

// RemotiveSource fetches from the Remotive public API. All listings are
// remote, so the location filter is applied client-side as a substring
// match on the advertised candidate location.
type RemotiveSource struct {
	baseURL string
	client  *http.Client
}

func NewRemotiveSource(client *http.Client) *RemotiveSource {
	return &RemotiveSource{baseURL: remotiveBaseURL, client: client}
}

func (s *RemotiveSource) Name() string {
	return "remotive"
}

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

type remotiveJob struct {
	URL              string `json:"url"`
	Title            string `json:"title"`
	CompanyName      string `json:"company_name"`
	CandidateLoc     string `json:"candidate_required_location"`
	Salary           string `json:"salary"`
	Description      string `json:"description"`
	PublicationDate  string `json:"publication_date"`
}

func (s *RemotiveSource) Fetch(ctx context.Context, query, location string) ([]RawJob, error) {
	params := url.Values{}
	if query != "" {
		params.Set("search", query)
	}
	endpoint := s.baseURL
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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
		return nil, fmt.Errorf("remotive status %d: %s", resp.StatusCode, truncateBody(body))
	}
	var out remotiveResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	jobs := make([]RawJob, 0, len(out.Jobs))
	for _, j := range out.Jobs {
		if location != "" && !containsFold(j.CandidateLoc, location) {
			continue
		}
		jobs = append(jobs, RawJob{
			Title:       j.Title,
			Company:     j.CompanyName,
			Location:    j.CandidateLoc,
			Description: j.Description,
			Salary:      j.Salary,
			URL:         j.URL,
			PostedAt:    j.PublicationDate,
		})
	}
	logutil.GetLogger(ctx).Debug("remotive fetched", zap.Int("results", len(jobs)))
	return jobs, nil
}
