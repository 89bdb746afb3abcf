package audio

import (
	"strconv"
	"strings"

	"reelscan/internal/probe/ffprobe"
	"reelscan/internal/probe/mediainfo"
)

// Source identifies which probe tool reported a track. Scoring and label
// rendering differ between the two because they expose disjoint schemas:
// MediaInfo carries commercial format names, ffprobe only codec identifiers.
type Source int

const (
	SourceMediaInfo Source = iota
	SourceFFProbe
)

// Track is a probe-independent view of one audio track.
type Track struct {
	Source           Source
	Codec            string // ffprobe codec_name
	Profile          string // ffprobe profile
	Format           string // MediaInfo Format
	FormatCommercial string // MediaInfo Format_Commercial_IfAny
	FormatAdditional string // MediaInfo Format_AdditionalFeatures
	FormatProfile    string // MediaInfo Format_Profile
	Title            string
	Language         string
	Channels         int
	BitRate          int64 // bits per second, 0 when unreported
	BitRateText      string
}

// FromMediaInfo converts a MediaInfo audio track.
func FromMediaInfo(track mediainfo.Track) Track {
	return Track{
		Source:           SourceMediaInfo,
		Format:           track.Field("Format"),
		FormatCommercial: track.Field("Format_Commercial_IfAny"),
		FormatAdditional: track.Field("Format_AdditionalFeatures"),
		FormatProfile:    track.Field("Format_Profile"),
		Title:            track.Field("Title"),
		Language:         strings.ToLower(track.Field("Language")),
		Channels:         int(track.Int64Field("Channels")),
		BitRate:          track.Int64Field("BitRate"),
		BitRateText:      track.Field("BitRate_String"),
	}
}

// FromFFProbe converts an ffprobe audio stream.
func FromFFProbe(stream ffprobe.Stream) Track {
	return Track{
		Source:      SourceFFProbe,
		Codec:       strings.ToLower(stream.CodecName),
		Profile:     stream.Profile,
		Title:       stream.Tag("title"),
		Language:    strings.ToLower(stream.Tag("language")),
		Channels:    stream.Channels,
		BitRate:     streamBitRate(stream),
		BitRateText: "",
	}
}

func streamBitRate(stream ffprobe.Stream) int64 {
	// MKV muxers report per-stream rates through the BPS tag instead of the
	// bit_rate field.
	if bps := parseInt64(stream.Tag("BPS")); bps > 0 {
		return bps
	}
	return stream.BitRateBits()
}

func parseInt64(value string) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}
