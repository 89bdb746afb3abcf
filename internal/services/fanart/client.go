package fanart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"reelscan/internal/services/tmdb"
)

type thumb struct {
	URL   string `json:"url"`
	Lang  string `json:"lang"`
	Likes string `json:"likes"`
}

type moviePayload struct {
	MovieThumbs []thumb `json:"moviethumb"`
}

// Client provides access to the fanart.tv API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a fanart.tv client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("fanart api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("fanart base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.ToLower(strings.TrimSpace(language)),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FindPoster resolves a movie thumb for a filename carrying an embedded
// TMDB ID. fanart.tv keys TV art by TVDB ID, which filenames do not embed,
// so only the movie catalog is consulted. Empty URL with nil error means no
// art was found.
func (c *Client) FindPoster(ctx context.Context, filename string) (int64, string, error) {
	id, ok := tmdb.ExtractID(filename)
	if !ok {
		return 0, "", nil
	}
	posterURL, err := c.MoviePoster(ctx, id)
	if err != nil {
		return 0, "", err
	}
	if posterURL == "" {
		return 0, "", nil
	}
	return id, posterURL, nil
}

// MoviePoster fetches the best movie thumb for a TMDB ID: preferred-language
// thumbs sorted by likes, falling back to English, then any language.
func (c *Client) MoviePoster(ctx context.Context, tmdbID int64) (string, error) {
	if tmdbID <= 0 {
		return "", errors.New("tmdb id must be positive")
	}
	endpoint, err := url.Parse(fmt.Sprintf("%s/movies/%d", c.baseURL, tmdbID))
	if err != nil {
		return "", fmt.Errorf("parse fanart url: %w", err)
	}
	params := url.Values{"api_key": {c.apiKey}}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", nil
	default:
		return "", fmt.Errorf("fanart returned %d", resp.StatusCode)
	}

	var payload moviePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode fanart response: %w", err)
	}
	return pickThumb(payload.MovieThumbs, c.language), nil
}

// pickThumb applies the language preference chain over like-sorted thumbs.
func pickThumb(thumbs []thumb, language string) string {
	if len(thumbs) == 0 {
		return ""
	}
	buckets := make([][]thumb, 0, 3)
	if language != "" {
		buckets = append(buckets, filterByLang(thumbs, language))
	}
	if language != "en" {
		buckets = append(buckets, filterByLang(thumbs, "en"))
	}
	buckets = append(buckets, thumbs)

	for _, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		sorted := make([]thumb, len(bucket))
		copy(sorted, bucket)
		sort.SliceStable(sorted, func(i, j int) bool {
			return likes(sorted[i]) > likes(sorted[j])
		})
		if sorted[0].URL != "" {
			return sorted[0].URL
		}
	}
	return ""
}

func filterByLang(thumbs []thumb, language string) []thumb {
	var out []thumb
	for _, t := range thumbs {
		if strings.ToLower(t.Lang) == language {
			out = append(out, t)
		}
	}
	return out
}

func likes(t thumb) int {
	count, err := strconv.Atoi(strings.TrimSpace(t.Likes))
	if err != nil {
		return 0
	}
	return count
}

// IsImageURL reports whether a URL points at the fanart.tv asset host.
func IsImageURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme == "https" &&
		parsed.Host == "assets.fanart.tv" &&
		strings.HasPrefix(parsed.Path, "/fanart/")
}
