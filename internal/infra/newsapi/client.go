// Package newsapi provides a client for the external news-search API.
// The upstream service speaks an Event Registry-style complex query
// language over JSON POST requests; this package builds the queries and
// normalizes the results for the collection pipeline.
package newsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Result is one normalized search hit.
type Result struct {
	URI       string
	URL       string
	Title     string
	Body      string
	Sentiment float64
	Published time.Time
}

// Client queries the news-search API.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a Client with the given configuration.
// A nil httpClient falls back to a client with the configured timeout.
func NewClient(config Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	return &Client{config: config, httpClient: httpClient}
}

// apiRequest is the wire format of a search request.
type apiRequest struct {
	Query        map[string]any `json:"query"`
	ResultType   string         `json:"resultType"`
	ArticlesPage int            `json:"articlesPage"`
	Count        int            `json:"articlesCount"`
	SortBy       string         `json:"articlesSortBy"`
	IncludeBody  bool           `json:"includeArticleBody"`
	APIKey       string         `json:"apiKey"`
}

// apiResponse is the wire format of a search response.
type apiResponse struct {
	Articles struct {
		Results []apiArticle `json:"results"`
	} `json:"articles"`
	Error string `json:"error"`
}

type apiArticle struct {
	URI       string  `json:"uri"`
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	Sentiment float64 `json:"sentiment"`
	DateTime  string  `json:"dateTime"`
}

// SearchTopic runs one topic query restricted to [dateStart, dateEnd]
// (inclusive, YYYY-MM-DD). Network errors, non-2xx statuses and API-level
// errors all surface as errors; per the batch design the caller aborts
// the run rather than retrying.
func (c *Client) SearchTopic(ctx context.Context, topic TopicQuery, dateStart, dateEnd string) ([]Result, error) {
	reqBody := apiRequest{
		Query:        c.buildQuery(topic, dateStart, dateEnd),
		ResultType:   "articles",
		ArticlesPage: 1,
		Count:        c.config.MaxItems,
		SortBy:       "socialScore",
		IncludeBody:  true,
		APIKey:       c.config.APIKey,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("news API rejected credentials (status %d)", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("news API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("news API error: %s", parsed.Error)
	}

	results := make([]Result, 0, len(parsed.Articles.Results))
	for _, art := range parsed.Articles.Results {
		if art.Title == "" {
			continue
		}
		uri := art.URI
		if uri == "" {
			uri = art.URL
		}
		if uri == "" {
			continue
		}
		results = append(results, Result{
			URI:       uri,
			URL:       art.URL,
			Title:     art.Title,
			Body:      art.Body,
			Sentiment: art.Sentiment,
			Published: parseDateTime(art.DateTime),
		})
	}
	return results, nil
}

// buildQuery wraps a topic query with the standing filters the collection
// job always applies (news data type, duplicate skipping, source rank).
func (c *Client) buildQuery(topic TopicQuery, dateStart, dateEnd string) map[string]any {
	base := map[string]any{
		"lang":      "eng",
		"dateStart": dateStart,
		"dateEnd":   dateEnd,
	}

	if len(topic.Keywords) > 0 {
		base["keyword"] = map[string]any{"$or": topic.Keywords}
		base["keywordLoc"] = "title"
	}
	if len(topic.CategoryURIs) > 0 {
		base["categoryUri"] = map[string]any{"$or": topic.CategoryURIs}
	}
	if len(topic.ConceptURIs) > 0 {
		base["conceptUri"] = map[string]any{"$and": topic.ConceptURIs}
	}
	if len(c.config.Sources) > 0 {
		base["sourceUri"] = map[string]any{"$or": c.config.Sources}
	}

	return map[string]any{
		"$query": base,
		"$filter": map[string]any{
			"dataType":                 "news",
			"isDuplicate":              "skipDuplicates",
			"hasDuplicate":             "skipHasDuplicates",
			"startSourceRankPercentile": 0,
			"endSourceRankPercentile":   90,
		},
	}
}

// parseDateTime parses the API timestamp, falling back to the zero time.
func parseDateTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
