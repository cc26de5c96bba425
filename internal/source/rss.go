package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// RSSSource reads a job board's RSS feed. Feeds carry no server-side search,
// so query and location are applied as substring filters over the item text.
type RSSSource struct {
	name   string
	url    string
	client *http.Client
}

func NewRSSSource(name, feedURL string, client *http.Client) *RSSSource {
	return &RSSSource{name: name, url: feedURL, client: client}
}

func (s *RSSSource) Name() string {
	return s.name
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Region      string `xml:"region"`
}

func (s *RSSSource) Fetch(ctx context.Context, query, location string) ([]RawJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
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
		return nil, fmt.Errorf("%s status %d: %s", s.name, resp.StatusCode, truncateBody(body))
	}
	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	jobs := make([]RawJob, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		if item.Link == "" {
			continue
		}
		if query != "" && !containsFold(item.Title+" "+item.Description, query) {
			continue
		}
		loc := strings.TrimSpace(item.Region)
		if location != "" && loc != "" && !containsFold(loc, location) {
			continue
		}
		jobs = append(jobs, RawJob{
			Title:       strings.TrimSpace(item.Title),
			Location:    loc,
			Description: item.Description,
			URL:         strings.TrimSpace(item.Link),
			PostedAt:    item.PubDate,
		})
	}
	logutil.GetLogger(ctx).Debug("rss feed fetched", zap.String("feed", s.name), zap.Int("results", len(jobs)))
	return jobs, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
