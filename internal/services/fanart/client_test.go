package fanart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const moviePayloadJSON = `{
  "moviethumb": [
    {"url": "https://assets.fanart.tv/fanart/movies/603/thumb/de-popular.jpg", "lang": "de", "likes": "14"},
    {"url": "https://assets.fanart.tv/fanart/movies/603/thumb/en-top.jpg", "lang": "en", "likes": "9"},
    {"url": "https://assets.fanart.tv/fanart/movies/603/thumb/en-low.jpg", "lang": "en", "likes": "2"},
    {"url": "https://assets.fanart.tv/fanart/movies/603/thumb/jp.jpg", "lang": "ja", "likes": "40"}
  ]
}`

func newTestClient(t *testing.T, handler http.Handler, language string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New("test-key", server.URL, language, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func movieHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movies/603" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(moviePayloadJSON))
	})
}

func TestMoviePosterPrefersConfiguredLanguage(t *testing.T) {
	client := newTestClient(t, movieHandler(t), "de")

	url, err := client.MoviePoster(context.Background(), 603)
	if err != nil {
		t.Fatalf("MoviePoster: %v", err)
	}
	if url != "https://assets.fanart.tv/fanart/movies/603/thumb/de-popular.jpg" {
		t.Fatalf("url = %q", url)
	}
}

func TestMoviePosterEnglishFallbackSortsByLikes(t *testing.T) {
	client := newTestClient(t, movieHandler(t), "fr")

	url, err := client.MoviePoster(context.Background(), 603)
	if err != nil {
		t.Fatalf("MoviePoster: %v", err)
	}
	// No French thumbs; the most-liked English thumb wins over the more
	// popular Japanese one.
	if url != "https://assets.fanart.tv/fanart/movies/603/thumb/en-top.jpg" {
		t.Fatalf("url = %q", url)
	}
}

func TestMoviePosterAnyLanguageLastResort(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"moviethumb": [{"url": "https://assets.fanart.tv/fanart/movies/1/thumb/jp.jpg", "lang": "ja", "likes": "3"}]}`))
	})
	client := newTestClient(t, handler, "de")

	url, err := client.MoviePoster(context.Background(), 1)
	if err != nil {
		t.Fatalf("MoviePoster: %v", err)
	}
	if url != "https://assets.fanart.tv/fanart/movies/1/thumb/jp.jpg" {
		t.Fatalf("url = %q", url)
	}
}

func TestMoviePosterNotFound(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler(), "en")

	url, err := client.MoviePoster(context.Background(), 42)
	if err != nil {
		t.Fatalf("MoviePoster: %v", err)
	}
	if url != "" {
		t.Fatalf("url = %q", url)
	}
}

func TestFindPosterRequiresEmbeddedID(t *testing.T) {
	client := newTestClient(t, movieHandler(t), "en")

	id, url, err := client.FindPoster(context.Background(), "The Matrix {tmdb-603}.mkv")
	if err != nil {
		t.Fatalf("FindPoster: %v", err)
	}
	if id != 603 || url == "" {
		t.Fatalf("id=%d url=%q", id, url)
	}

	id, url, err = client.FindPoster(context.Background(), "The Matrix.mkv")
	if err != nil {
		t.Fatalf("FindPoster: %v", err)
	}
	if id != 0 || url != "" {
		t.Fatalf("expected no result without an embedded ID, got id=%d url=%q", id, url)
	}
}

func TestIsImageURL(t *testing.T) {
	cases := map[string]bool{
		"https://assets.fanart.tv/fanart/movies/603/x.jpg": true,
		"http://assets.fanart.tv/fanart/movies/603/x.jpg":  false,
		"https://assets.fanart.tv/other/x.jpg":             false,
		"https://evil.example.com/fanart/x.jpg":            false,
	}
	for raw, want := range cases {
		if got := IsImageURL(raw); got != want {
			t.Fatalf("IsImageURL(%q) = %v, want %v", raw, got, want)
		}
	}
}
