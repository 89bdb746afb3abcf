package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MediaType selects the TMDB catalog to query.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Poster is the display metadata resolved for a title.
type Poster struct {
	URL    string
	Title  string
	Year   string
	Rating float64
	Plot   string
}

type detailsPayload struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
}

type searchPayload struct {
	Results []detailsPayload `json:"results"`
}

type creditsPayload struct {
	Crew []struct {
		Name string `json:"name"`
		Job  string `json:"job"`
	} `json:"crew"`
	Cast []struct {
		Name string `json:"name"`
	} `json:"cast"`
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	imageURL   string
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

// New creates a TMDB client.
func New(apiKey, baseURL, imageURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		imageURL = "https://image.tmdb.org/t/p/original"
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		imageURL:   strings.TrimRight(imageURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FindPoster resolves display metadata for a filename: an embedded TMDB ID
// is tried first against the movie catalog and then TV; without an ID the
// cleaned title is searched the same way. A nil Poster with nil error means
// nothing matched.
func (c *Client) FindPoster(ctx context.Context, filename string) (int64, *Poster, error) {
	if id, ok := ExtractID(filename); ok {
		for _, mediaType := range []MediaType{MediaTypeMovie, MediaTypeTV} {
			poster, err := c.PosterByID(ctx, mediaType, id)
			if err != nil {
				return 0, nil, err
			}
			if poster != nil {
				return id, poster, nil
			}
		}
	}

	query := CleanTitle(filename)
	if query == "" {
		return 0, nil, nil
	}
	for _, mediaType := range []MediaType{MediaTypeMovie, MediaTypeTV} {
		poster, err := c.SearchPoster(ctx, mediaType, query)
		if err != nil {
			return 0, nil, err
		}
		if poster != nil {
			return 0, poster, nil
		}
	}
	return 0, nil, nil
}

// PosterByID fetches display metadata for a known TMDB ID. The configured
// language is tried first; when it yields no backdrop, English is retried.
// A nil Poster with nil error means the title has no backdrop or does not
// exist.
func (c *Client) PosterByID(ctx context.Context, mediaType MediaType, id int64) (*Poster, error) {
	if id <= 0 {
		return nil, errors.New("tmdb id must be positive")
	}
	endpoint := fmt.Sprintf("%s/%s/%d", c.baseURL, mediaType, id)

	for _, language := range c.languageChain() {
		var payload detailsPayload
		found, err := c.get(ctx, endpoint, url.Values{"language": {language}}, &payload)
		if err != nil {
			return nil, err
		}
		if !found || payload.BackdropPath == "" {
			continue
		}
		return c.posterFrom(payload, mediaType), nil
	}
	return nil, nil
}

// TitleAndYear fetches only the title and release year for a TMDB ID.
func (c *Client) TitleAndYear(ctx context.Context, mediaType MediaType, id int64) (title, year string, err error) {
	if id <= 0 {
		return "", "", errors.New("tmdb id must be positive")
	}
	endpoint := fmt.Sprintf("%s/%s/%d", c.baseURL, mediaType, id)

	for _, language := range c.languageChain() {
		var payload detailsPayload
		found, err := c.get(ctx, endpoint, url.Values{"language": {language}}, &payload)
		if err != nil {
			return "", "", err
		}
		if !found {
			continue
		}
		if t, y := titleAndYear(payload, mediaType); t != "" {
			return t, y, nil
		}
	}
	return "", "", nil
}

// SearchPoster searches the catalog by title and returns the first result
// carrying a backdrop.
func (c *Client) SearchPoster(ctx context.Context, mediaType MediaType, query string) (*Poster, error) {
	query = strings.TrimSpace(query)
	if query == "" || len(query) > 200 {
		return nil, errors.New("query must be between 1 and 200 characters")
	}
	endpoint := fmt.Sprintf("%s/search/%s", c.baseURL, mediaType)

	for _, language := range c.languageChain() {
		var payload searchPayload
		found, err := c.get(ctx, endpoint, url.Values{"query": {query}, "language": {language}}, &payload)
		if err != nil {
			return nil, err
		}
		if !found || len(payload.Results) == 0 {
			continue
		}
		first := payload.Results[0]
		if first.BackdropPath == "" {
			continue
		}
		return c.posterFrom(first, mediaType), nil
	}
	return nil, nil
}

// Credits fetches up to three directors and ten cast members for a TMDB ID.
func (c *Client) Credits(ctx context.Context, mediaType MediaType, id int64) (directors, cast []string, err error) {
	if id <= 0 {
		return nil, nil, errors.New("tmdb id must be positive")
	}
	endpoint := fmt.Sprintf("%s/%s/%d/credits", c.baseURL, mediaType, id)

	var payload creditsPayload
	found, err := c.get(ctx, endpoint, url.Values{}, &payload)
	if err != nil || !found {
		return nil, nil, err
	}

	for _, member := range payload.Crew {
		if member.Job != "Director" {
			continue
		}
		if name := strings.TrimSpace(member.Name); name != "" {
			directors = append(directors, name)
			if len(directors) == 3 {
				break
			}
		}
	}
	for _, actor := range payload.Cast {
		if len(cast) == 10 {
			break
		}
		if name := strings.TrimSpace(actor.Name); name != "" {
			cast = append(cast, name)
		}
	}
	return directors, cast, nil
}

func (c *Client) languageChain() []string {
	language := c.language
	if language == "" {
		language = "en"
	}
	if language == "en" {
		return []string{"en"}
	}
	return []string{language, "en"}
}

// get performs a request and decodes the payload. The boolean is false for
// 404 responses, which signal absence rather than failure.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) (bool, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return false, fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	parsed.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("tmdb returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode tmdb response: %w", err)
	}
	return true, nil
}

func (c *Client) posterFrom(payload detailsPayload, mediaType MediaType) *Poster {
	title, year := titleAndYear(payload, mediaType)
	return &Poster{
		URL:    c.imageURL + payload.BackdropPath,
		Title:  title,
		Year:   year,
		Rating: payload.VoteAverage,
		Plot:   payload.Overview,
	}
}

func titleAndYear(payload detailsPayload, mediaType MediaType) (string, string) {
	title := payload.Title
	date := payload.ReleaseDate
	if mediaType == MediaTypeTV {
		title = payload.Name
		date = payload.FirstAirDate
	}
	year := ""
	if len(date) >= 4 {
		year = date[:4]
	}
	return title, year
}
