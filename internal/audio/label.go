package audio

import (
	"fmt"
	"strings"
)

// channelLayouts maps raw channel counts to conventional layout names.
var channelLayouts = map[int]string{
	1:  "1.0",
	2:  "2.0",
	3:  "2.1",
	4:  "3.1",
	5:  "4.1",
	6:  "5.1",
	7:  "6.1",
	8:  "7.1",
	9:  "8.1",
	10: "9.1",
}

// ChannelSuffix renders a channel count as a layout string ("5.1", "7.1").
// Unmapped counts render as "N.0"; zero or negative counts render empty.
func ChannelSuffix(channels int) string {
	if channels <= 0 {
		return ""
	}
	if layout, ok := channelLayouts[channels]; ok {
		return layout
	}
	return fmt.Sprintf("%d.0", channels)
}

// Label renders the human-readable codec name for a track, including the
// channel layout and any object-audio qualifier.
func Label(track Track) string {
	if track.Source == SourceMediaInfo {
		return labelMediaInfo(track)
	}
	return labelFFProbe(track)
}

func labelMediaInfo(track Track) string {
	commercial := track.FormatCommercial
	format := track.Format
	suffix := ""
	if layout := ChannelSuffix(track.Channels); layout != "" {
		suffix = " " + layout
	}
	imax := strings.Contains(strings.ToLower(track.Title), "imax")

	if strings.Contains(commercial, "Atmos") {
		switch {
		case strings.Contains(format, "TrueHD") || strings.Contains(commercial, "TrueHD") || format == "MLP FBA":
			return "Dolby TrueHD" + suffix + " (Atmos)"
		case strings.Contains(format, "E-AC-3") || strings.Contains(commercial, "E-AC-3"):
			return "Dolby Digital Plus" + suffix + " (Atmos)"
		case strings.Contains(format, "AC-3"):
			return "Dolby Digital" + suffix + " (Atmos)"
		default:
			return "Dolby Atmos" + suffix
		}
	}

	if isDTSXMediaInfo(strings.ToUpper(commercial), strings.ToUpper(format),
		strings.ToUpper(track.FormatAdditional), strings.ToUpper(track.Title)) {
		if imax {
			return "DTS:X (IMAX)" + suffix
		}
		return "DTS:X" + suffix
	}

	switch {
	case format == "MLP FBA" || strings.Contains(format, "TrueHD"):
		return "Dolby TrueHD" + suffix
	case format == "E-AC-3" || strings.Contains(commercial, "E-AC-3"):
		return "Dolby Digital Plus" + suffix
	case format == "AC-3":
		return "Dolby Digital" + suffix
	case strings.Contains(format, "DTS XLL") || strings.Contains(commercial, "DTS-HD Master Audio"):
		return "DTS-HD MA" + suffix
	case strings.Contains(format, "DTS XBR") || strings.Contains(commercial, "DTS-HD High Resolution"):
		return "DTS-HD HRA" + suffix
	case format == "DTS":
		if strings.Contains(commercial, "DTS-HD") {
			return "DTS-HD" + suffix
		}
		return "DTS" + suffix
	case format == "AAC":
		return "AAC" + suffix
	case format == "FLAC":
		return "FLAC" + suffix
	case format == "MPEG Audio":
		if strings.Contains(track.FormatProfile, "Layer 3") {
			return "MP3" + suffix
		}
		return "MPEG Audio" + suffix
	case format == "Opus":
		return "Opus" + suffix
	case format == "Vorbis":
		return "Vorbis" + suffix
	case format == "PCM":
		return "PCM" + suffix
	}

	if format == "" {
		return "Unknown" + suffix
	}
	return format + suffix
}

func labelFFProbe(track Track) string {
	profile := strings.ToLower(track.Profile)
	title := strings.ToLower(track.Title)
	suffix := ""
	if layout := ChannelSuffix(track.Channels); layout != "" {
		suffix = " " + layout
	}
	atmos := strings.Contains(title, "atmos") || strings.Contains(profile, "atmos")
	imax := strings.Contains(title, "imax")

	switch track.Codec {
	case "ac3":
		return "Dolby Digital" + suffix
	case "eac3":
		if atmos {
			return "Dolby Digital Plus (Atmos)" + suffix
		}
		return "Dolby Digital Plus" + suffix
	case "truehd":
		if atmos {
			return "Dolby TrueHD (Atmos)" + suffix
		}
		return "Dolby TrueHD" + suffix
	case "dts", "dca":
		switch {
		case strings.Contains(title, "dts:x") || strings.Contains(title, "dtsx") || strings.Contains(title, "dts-x"):
			if imax {
				return "DTS:X (IMAX)" + suffix
			}
			return "DTS:X" + suffix
		case strings.Contains(profile, "ma") || strings.Contains(title, "dts-hd ma") || strings.Contains(title, "dts-hd master audio"):
			return "DTS-HD MA" + suffix
		case strings.Contains(profile, "hra") || strings.Contains(title, "dts-hd hra") || strings.Contains(title, "dts-hd high resolution"):
			return "DTS-HD HRA" + suffix
		case strings.Contains(profile, "hd") || strings.Contains(title, "dts-hd"):
			return "DTS-HD" + suffix
		default:
			return "DTS" + suffix
		}
	case "aac":
		return "AAC" + suffix
	case "flac":
		return "FLAC" + suffix
	case "mp3":
		return "MP3" + suffix
	case "opus":
		return "Opus" + suffix
	case "vorbis":
		return "Vorbis" + suffix
	}
	if strings.HasPrefix(track.Codec, "pcm") {
		return "PCM" + suffix
	}
	if track.Codec == "" {
		return "Unknown" + suffix
	}
	return strings.ToUpper(track.Codec) + suffix
}
