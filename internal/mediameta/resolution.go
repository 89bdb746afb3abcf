package mediameta

import "fmt"

type dimensions struct {
	width  int
	height int
}

// resolutionLabels maps exact frame dimensions to their conventional names.
var resolutionLabels = map[dimensions]string{
	{3840, 2160}: "4K (UHD)",
	{1920, 1080}: "1080p (Full HD)",
	{1280, 720}:  "720p (HD)",
	{7680, 4320}: "8K (UHD)",
	{2560, 1440}: "1440p",
	{4096, 2160}: "4K DCI",
	{1366, 768}:  "768p",
	{854, 480}:   "480p (SD)",
	{640, 480}:   "480p (SD)",
}

// ResolutionLabel renders a friendly name for exact well-known dimensions
// and falls back to "WxH" otherwise. Unusable dimensions render as
// "Unknown".
func ResolutionLabel(width, height int) string {
	if width <= 0 || height <= 0 {
		return "Unknown"
	}
	if label, ok := resolutionLabels[dimensions{width, height}]; ok {
		return label
	}
	return fmt.Sprintf("%dx%d", width, height)
}
