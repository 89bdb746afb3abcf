package tmdb

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	idPattern         = regexp.MustCompile(`(?i)\{tmdb-(\d+)\}`)
	yearPattern       = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	resolutionPattern = regexp.MustCompile(`(?i)\b(480|720|1080|2160)[pi]\b`)
	codecPattern      = regexp.MustCompile(`(?i)\b(x264|x265|h264|h265|hevc)\b`)
	sourcePattern     = regexp.MustCompile(`(?i)\b(BluRay|BRRip|WEBRip|WEB-DL|HDRip|DVDRip)\b`)
	hdrPattern        = regexp.MustCompile(`(?i)\b(DV|HDR10\+?|HLG|SDR|Dolby[\.\s]?Vision)\b`)
	bracketPattern    = regexp.MustCompile(`[\[\(].*?[\]\)]`)
	separatorPattern  = regexp.MustCompile(`[._\-]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ExtractID pulls an embedded TMDB identifier from a filename following the
// {tmdb-12345} convention.
func ExtractID(filename string) (int64, bool) {
	match := idPattern.FindStringSubmatch(filename)
	if match == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// CleanTitle strips release metadata from a filename, leaving a search
// query: extension, embedded ID, year, resolution, codec, source, HDR
// markers, and bracketed content are removed, separators become spaces.
func CleanTitle(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = idPattern.ReplaceAllString(name, "")
	name = yearPattern.ReplaceAllString(name, "")
	name = resolutionPattern.ReplaceAllString(name, "")
	name = codecPattern.ReplaceAllString(name, "")
	name = sourcePattern.ReplaceAllString(name, "")
	name = hdrPattern.ReplaceAllString(name, "")
	name = bracketPattern.ReplaceAllString(name, "")
	name = separatorPattern.ReplaceAllString(name, " ")
	name = whitespacePattern.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// IsImageURL reports whether a URL points at the TMDB image host. Guards
// the poster downloader against fetching arbitrary origins.
func IsImageURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme == "https" &&
		parsed.Host == "image.tmdb.org" &&
		strings.HasPrefix(parsed.Path, "/t/p/")
}
