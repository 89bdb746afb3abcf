package scanner

import (
	"context"

	"reelscan/internal/services/fanart"
	"reelscan/internal/services/tmdb"
)

// Metadata is the display information resolved for a file from external
// catalogs. A zero value means the file stays uncatalogued.
type Metadata struct {
	TMDBID    int64
	PosterURL string
	Title     string
	Year      string
	Rating    float64
	Plot      string
	Directors []string
	Cast      []string
}

// MetadataResolver looks up catalog metadata for a filename. Resolvers
// return a zero Metadata when nothing matches; errors are reserved for
// transport failures.
type MetadataResolver interface {
	Resolve(ctx context.Context, filename string) (Metadata, error)
}

// TMDBResolver resolves posters, titles, and credits from TMDB.
type TMDBResolver struct {
	client *tmdb.Client
}

// NewTMDBResolver constructs a resolver over a TMDB client.
func NewTMDBResolver(client *tmdb.Client) *TMDBResolver {
	return &TMDBResolver{client: client}
}

// Resolve finds the poster by embedded ID or title search, then fetches
// credits when an ID is known.
func (r *TMDBResolver) Resolve(ctx context.Context, filename string) (Metadata, error) {
	id, poster, err := r.client.FindPoster(ctx, filename)
	if err != nil {
		return Metadata{}, err
	}
	if poster == nil {
		return Metadata{}, nil
	}
	meta := Metadata{
		TMDBID:    id,
		PosterURL: poster.URL,
		Title:     poster.Title,
		Year:      poster.Year,
		Rating:    poster.Rating,
		Plot:      poster.Plot,
	}
	if id > 0 {
		meta.Directors, meta.Cast = resolveCredits(ctx, r.client, id)
	}
	return meta, nil
}

// FanartResolver resolves artwork from fanart.tv and backfills title, year,
// rating, and credits from TMDB when a client is available.
type FanartResolver struct {
	fanart *fanart.Client
	tmdb   *tmdb.Client
}

// NewFanartResolver constructs a resolver. tmdbClient may be nil, in which
// case records carry artwork only.
func NewFanartResolver(fanartClient *fanart.Client, tmdbClient *tmdb.Client) *FanartResolver {
	return &FanartResolver{fanart: fanartClient, tmdb: tmdbClient}
}

// Resolve finds artwork by the filename's embedded TMDB ID.
func (r *FanartResolver) Resolve(ctx context.Context, filename string) (Metadata, error) {
	id, posterURL, err := r.fanart.FindPoster(ctx, filename)
	if err != nil {
		return Metadata{}, err
	}
	if posterURL == "" {
		return Metadata{}, nil
	}
	meta := Metadata{TMDBID: id, PosterURL: posterURL}

	if r.tmdb != nil && id > 0 {
		for _, mediaType := range []tmdb.MediaType{tmdb.MediaTypeMovie, tmdb.MediaTypeTV} {
			poster, err := r.tmdb.PosterByID(ctx, mediaType, id)
			if err != nil || poster == nil {
				continue
			}
			meta.Title = poster.Title
			meta.Year = poster.Year
			meta.Rating = poster.Rating
			meta.Plot = poster.Plot
			break
		}
		meta.Directors, meta.Cast = resolveCredits(ctx, r.tmdb, id)
	}
	return meta, nil
}

// resolveCredits tries the movie catalog first and falls back to TV.
func resolveCredits(ctx context.Context, client *tmdb.Client, id int64) (directors, cast []string) {
	for _, mediaType := range []tmdb.MediaType{tmdb.MediaTypeMovie, tmdb.MediaTypeTV} {
		directors, cast, _ = client.Credits(ctx, mediaType, id)
		if len(directors) > 0 || len(cast) > 0 {
			return directors, cast
		}
	}
	return nil, nil
}
