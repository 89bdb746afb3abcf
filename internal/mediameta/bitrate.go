package mediameta

import (
	"regexp"
	"strconv"
	"strings"
)

// bitratePattern matches MediaInfo's rendered bitrate strings once spaces
// are stripped, e.g. "55.3Mb/s", "9039kb/s", "1.5Gb/s".
var bitratePattern = regexp.MustCompile(`(?i)([\d.]+)(Mb|Gb|Kb|b)/s`)

// ParseBitrateString converts a MediaInfo bitrate string to kbit/s. It
// tolerates thousand-separator spaces ("9 039 kb/s"). The second return is
// false when the string carries no parseable rate.
func ParseBitrateString(value string) (int64, bool) {
	if strings.TrimSpace(value) == "" {
		return 0, false
	}
	cleaned := strings.ReplaceAll(value, " ", "")
	match := bitratePattern.FindStringSubmatch(cleaned)
	if match == nil {
		return 0, false
	}
	rate, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	var kbps int64
	switch strings.ToLower(match[2]) {
	case "gb":
		kbps = int64(rate * 1_000_000)
	case "mb":
		kbps = int64(rate * 1_000)
	case "kb":
		kbps = int64(rate)
	case "b":
		kbps = int64(rate / 1_000)
	}
	if kbps <= 0 {
		return 0, false
	}
	return kbps, true
}
