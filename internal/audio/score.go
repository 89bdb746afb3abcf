package audio

import "strings"

// Quality scores are ordinal, not proportional: they only need to sort
// codecs. Object-based formats outrank lossless, lossless outranks lossy,
// and Atmos sub-variants rank by their carrier codec.
const (
	scoreTrueHDAtmos  = 1000
	scoreDTSX         = 950
	scoreGenericAtmos = 950
	scoreEAC3Atmos    = 900
	scoreAC3Atmos     = 800
	scoreLossless     = 700
	scoreFLACPCM      = 650
	scoreDTSHDHRA     = 600
	scoreDTSHD        = 550
	scoreDTS          = 500
	scoreEAC3         = 400
	scoreAC3          = 300
	scoreAAC          = 250
	scoreOpus         = 200
	scoreVorbis       = 150
	scoreMP3          = 100
)

// Score rates a track's codec quality. Higher is better; unrecognized
// formats score zero.
func Score(track Track) int {
	if track.Source == SourceMediaInfo {
		return scoreMediaInfo(track)
	}
	return scoreFFProbe(track)
}

func scoreMediaInfo(track Track) int {
	commercial := strings.ToUpper(track.FormatCommercial)
	format := strings.ToUpper(track.Format)
	additional := strings.ToUpper(track.FormatAdditional)
	title := strings.ToUpper(track.Title)

	if strings.Contains(commercial, "ATMOS") {
		switch {
		case strings.Contains(format, "TRUEHD") || strings.Contains(commercial, "TRUEHD") || strings.Contains(format, "MLP FBA"):
			return scoreTrueHDAtmos
		case strings.Contains(format, "E-AC-3") || strings.Contains(commercial, "E-AC-3"):
			return scoreEAC3Atmos
		case strings.Contains(format, "AC-3"):
			return scoreAC3Atmos
		default:
			return scoreGenericAtmos
		}
	}

	if isDTSXMediaInfo(commercial, format, additional, title) {
		return scoreDTSX
	}

	switch {
	case strings.Contains(format, "DTS XLL") || strings.Contains(commercial, "DTS-HD MASTER AUDIO"):
		return scoreLossless
	case strings.Contains(format, "TRUEHD") || strings.Contains(format, "MLP FBA"):
		return scoreLossless
	case format == "FLAC" || format == "PCM":
		return scoreFLACPCM
	case strings.Contains(format, "DTS XBR") || strings.Contains(commercial, "DTS-HD HIGH RESOLUTION"):
		return scoreDTSHDHRA
	case strings.Contains(commercial, "DTS-HD"):
		return scoreDTSHD
	case format == "DTS":
		return scoreDTS
	case strings.Contains(format, "E-AC-3") || strings.Contains(commercial, "E-AC-3"):
		return scoreEAC3
	case format == "AC-3":
		return scoreAC3
	case format == "AAC":
		return scoreAAC
	case format == "OPUS":
		return scoreOpus
	case format == "VORBIS":
		return scoreVorbis
	case strings.Contains(format, "MPEG AUDIO"):
		return scoreMP3
	}
	return 0
}

func scoreFFProbe(track Track) int {
	profile := strings.ToLower(track.Profile)
	title := strings.ToLower(track.Title)
	atmos := strings.Contains(title, "atmos") || strings.Contains(profile, "atmos")
	dtsx := strings.Contains(title, "dts:x") || strings.Contains(title, "dtsx") || strings.Contains(title, "dts-x")

	switch track.Codec {
	case "truehd":
		if atmos {
			return scoreTrueHDAtmos
		}
		return scoreLossless
	case "eac3":
		if atmos {
			return scoreEAC3Atmos
		}
		return scoreEAC3
	case "ac3":
		if atmos {
			return scoreAC3Atmos
		}
		return scoreAC3
	case "dts", "dca":
		switch {
		case dtsx:
			return scoreDTSX
		case strings.Contains(profile, "ma") || strings.Contains(title, "dts-hd ma") || strings.Contains(title, "dts-hd master audio"):
			return scoreLossless
		case strings.Contains(profile, "hra") || strings.Contains(title, "dts-hd hra") || strings.Contains(title, "dts-hd high resolution"):
			return scoreDTSHDHRA
		case strings.Contains(profile, "hd") || strings.Contains(title, "dts-hd"):
			return scoreDTSHD
		default:
			return scoreDTS
		}
	case "flac":
		return scoreFLACPCM
	case "aac":
		return scoreAAC
	case "opus":
		return scoreOpus
	case "vorbis":
		return scoreVorbis
	case "mp3":
		return scoreMP3
	}
	if strings.HasPrefix(track.Codec, "pcm") {
		return scoreFLACPCM
	}
	return 0
}

// isDTSXMediaInfo spreads the DTS:X check across every field an encoder
// might stash it in; no single field is authoritative.
func isDTSXMediaInfo(commercial, format, additional, title string) bool {
	return strings.Contains(commercial, "DTS:X") || strings.Contains(commercial, "DTS-X") ||
		strings.Contains(format, "DTS XLL X") || strings.Contains(format, "XLL X") ||
		strings.Contains(additional, "DTS:X") ||
		strings.Contains(title, "DTS:X") || strings.Contains(title, "DTS-X")
}
