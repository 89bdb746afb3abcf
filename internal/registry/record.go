package registry

import "time"

// Record is the persisted characterization of a single media file, keyed by
// its absolute path.
type Record struct {
	Filename         string
	Path             string
	Format           string
	FormatDetail     string
	DVProfile        int
	DVELType         string
	Resolution       string
	AudioCodec       string
	AudioBitrateKbps int64
	VideoBitrateKbps int64
	DurationSeconds  float64
	FileSizeBytes    int64
	TMDBID           int64
	PosterURL        string
	Title            string
	Year             string
	Rating           float64
	Plot             string
	Directors        []string
	Cast             []string
	ScannedAt        time.Time
}
