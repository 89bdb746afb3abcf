package audio

import (
	"context"
	"errors"
	"testing"

	"reelscan/internal/probe/ffprobe"
	"reelscan/internal/probe/mediainfo"
	"reelscan/internal/services"
)

func mediaInfoTrack(fields map[string]any) Track {
	track := mediainfo.Track{"@type": "Audio"}
	for key, value := range fields {
		track[key] = value
	}
	return FromMediaInfo(track)
}

func TestScoreMediaInfoFormats(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]any
		want   int
	}{
		{"truehd atmos", map[string]any{"Format": "MLP FBA", "Format_Commercial_IfAny": "Dolby TrueHD with Dolby Atmos"}, 1000},
		{"eac3 atmos", map[string]any{"Format": "E-AC-3 JOC", "Format_Commercial_IfAny": "Dolby Digital Plus with Dolby Atmos"}, 900},
		{"ac3 atmos", map[string]any{"Format": "AC-3", "Format_Commercial_IfAny": "Dolby Atmos"}, 800},
		{"atmos with unrecognized carrier", map[string]any{"Format": "DTS", "Format_Commercial_IfAny": "DTS with Dolby Atmos"}, 950},
		{"dts-x", map[string]any{"Format": "DTS XLL X", "Format_Commercial_IfAny": "DTS:X"}, 950},
		{"dts-hd ma", map[string]any{"Format": "DTS XLL", "Format_Commercial_IfAny": "DTS-HD Master Audio"}, 700},
		{"truehd plain", map[string]any{"Format": "MLP FBA"}, 700},
		{"flac", map[string]any{"Format": "FLAC"}, 650},
		{"pcm", map[string]any{"Format": "PCM"}, 650},
		{"dts-hd hra", map[string]any{"Format": "DTS XBR", "Format_Commercial_IfAny": "DTS-HD High Resolution Audio"}, 600},
		{"dts-hd generic", map[string]any{"Format": "DTS", "Format_Commercial_IfAny": "DTS-HD"}, 550},
		{"dts core", map[string]any{"Format": "DTS"}, 500},
		{"eac3", map[string]any{"Format": "E-AC-3"}, 400},
		{"ac3", map[string]any{"Format": "AC-3"}, 300},
		{"aac", map[string]any{"Format": "AAC"}, 250},
		{"opus", map[string]any{"Format": "Opus"}, 200},
		{"vorbis", map[string]any{"Format": "Vorbis"}, 150},
		{"mp3", map[string]any{"Format": "MPEG Audio", "Format_Profile": "Layer 3"}, 100},
		{"unknown", map[string]any{"Format": "Weird"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(mediaInfoTrack(tc.fields)); got != tc.want {
				t.Fatalf("score = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestScoreFFProbeFormats(t *testing.T) {
	cases := []struct {
		name  string
		track Track
		want  int
	}{
		{"truehd atmos via title", Track{Source: SourceFFProbe, Codec: "truehd", Title: "TrueHD Atmos 7.1"}, 1000},
		{"dts-x via title", Track{Source: SourceFFProbe, Codec: "dts", Title: "DTS:X 7.1"}, 950},
		{"dts-hd ma via profile", Track{Source: SourceFFProbe, Codec: "dts", Profile: "DTS-HD MA"}, 700},
		{"pcm prefix", Track{Source: SourceFFProbe, Codec: "pcm_s24le"}, 650},
		{"plain ac3", Track{Source: SourceFFProbe, Codec: "ac3"}, 300},
		{"unknown", Track{Source: SourceFFProbe, Codec: "wma"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.track); got != tc.want {
				t.Fatalf("score = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestChannelSuffix(t *testing.T) {
	cases := map[int]string{
		0:  "",
		1:  "1.0",
		2:  "2.0",
		6:  "5.1",
		8:  "7.1",
		10: "9.1",
		12: "12.0",
	}
	for channels, want := range cases {
		if got := ChannelSuffix(channels); got != want {
			t.Fatalf("ChannelSuffix(%d) = %q, want %q", channels, got, want)
		}
	}
}

func TestLabelRendering(t *testing.T) {
	atmos := mediaInfoTrack(map[string]any{
		"Format":                  "MLP FBA",
		"Format_Commercial_IfAny": "Dolby TrueHD with Dolby Atmos",
		"Channels":                "8",
	})
	if got := Label(atmos); got != "Dolby TrueHD 7.1 (Atmos)" {
		t.Fatalf("label = %q", got)
	}

	dtsx := mediaInfoTrack(map[string]any{
		"Format":   "DTS XLL X",
		"Title":    "IMAX Enhanced",
		"Channels": "8",
	})
	if got := Label(dtsx); got != "DTS:X (IMAX) 7.1" {
		t.Fatalf("label = %q", got)
	}

	ffprobeAtmos := FromFFProbe(ffprobe.Stream{
		CodecName: "eac3",
		Channels:  6,
		Tags:      map[string]string{"title": "Atmos"},
	})
	if got := Label(ffprobeAtmos); got != "Dolby Digital Plus (Atmos) 5.1" {
		t.Fatalf("label = %q", got)
	}

	unknown := FromFFProbe(ffprobe.Stream{CodecName: "wmav2", Channels: 2})
	if got := Label(unknown); got != "WMAV2 2.0" {
		t.Fatalf("label = %q", got)
	}
}

func TestLanguageTags(t *testing.T) {
	got := LanguageTags("de")
	want := []string{"ger", "deu", "de", "german"}
	if len(got) != len(want) {
		t.Fatalf("tags = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tags = %v, want %v", got, want)
		}
	}
	// Region subtags resolve to their base language.
	if tags := LanguageTags("en-US"); len(tags) != 3 || tags[0] != "eng" {
		t.Fatalf("en-US tags = %v", tags)
	}
	// Unknown languages fall back to a literal match.
	if tags := LanguageTags("xx"); len(tags) != 1 || tags[0] != "xx" {
		t.Fatalf("xx tags = %v", tags)
	}
	if tags := LanguageTags(""); tags != nil {
		t.Fatalf("empty tags = %v", tags)
	}
}

// The canonical determinism fixture: a stereo and a 5.1 AC-3 track in
// English plus a 5.1 DTS track in French. With English preference the 5.1
// AC-3 track must win: language bucketing trumps the DTS track's higher
// codec score, and channel count breaks the tie between the English tracks.
func TestSelectBestLanguageBucketsTrumpScore(t *testing.T) {
	tracks := []Track{
		{Source: SourceFFProbe, Codec: "ac3", Channels: 2, Language: "eng"},
		{Source: SourceFFProbe, Codec: "ac3", Channels: 6, Language: "eng"},
		{Source: SourceFFProbe, Codec: "dts", Channels: 6, Language: "fra"},
	}

	chosen, ok := SelectBest(tracks, "en")
	if !ok {
		t.Fatal("expected a selection")
	}
	if chosen.Codec != "ac3" || chosen.Channels != 6 || chosen.Language != "eng" {
		t.Fatalf("chose %+v", chosen)
	}
}

func TestSelectBestFallsBackToEnglishThenAll(t *testing.T) {
	tracks := []Track{
		{Source: SourceFFProbe, Codec: "aac", Channels: 2, Language: "eng"},
		{Source: SourceFFProbe, Codec: "dts", Channels: 6, Language: "jpn"},
	}

	// Preferred language German matches nothing; English bucket wins even
	// though the Japanese track scores higher.
	chosen, ok := SelectBest(tracks, "de")
	if !ok || chosen.Language != "eng" {
		t.Fatalf("chose %+v ok=%v", chosen, ok)
	}

	// No preferred or English matches: the full list competes on score.
	noEnglish := []Track{
		{Source: SourceFFProbe, Codec: "aac", Channels: 2, Language: "ita"},
		{Source: SourceFFProbe, Codec: "dts", Channels: 6, Language: "jpn"},
	}
	chosen, ok = SelectBest(noEnglish, "de")
	if !ok || chosen.Codec != "dts" {
		t.Fatalf("chose %+v ok=%v", chosen, ok)
	}
}

func TestSelectBestFirstSeenWinsTies(t *testing.T) {
	tracks := []Track{
		{Source: SourceFFProbe, Codec: "ac3", Channels: 6, Language: "eng", Title: "first"},
		{Source: SourceFFProbe, Codec: "ac3", Channels: 6, Language: "eng", Title: "second"},
	}
	chosen, ok := SelectBest(tracks, "en")
	if !ok || chosen.Title != "first" {
		t.Fatalf("chose %+v", chosen)
	}
}

func TestSelectBestEmpty(t *testing.T) {
	if _, ok := SelectBest(nil, "en"); ok {
		t.Fatal("expected no selection from empty input")
	}
}

type stubTrackProber struct {
	report mediainfo.Report
	err    error
}

func (s stubTrackProber) Inspect(context.Context, string) (mediainfo.Report, error) {
	return s.report, s.err
}

type stubStreamProber struct {
	result ffprobe.Result
	err    error
}

func (s stubStreamProber) Inspect(context.Context, string) (ffprobe.Result, error) {
	return s.result, s.err
}

func TestSelectorPrefersMediaInfo(t *testing.T) {
	report := mediainfo.NewReport(mediainfo.Track{
		"@type":                   "Audio",
		"Format":                  "MLP FBA",
		"Format_Commercial_IfAny": "Dolby TrueHD with Dolby Atmos",
		"Channels":                "8",
		"Language":                "en",
	})
	selector := NewSelector(stubTrackProber{report: report}, stubStreamProber{}, "en", nil)

	selection, err := selector.Select(context.Background(), "/media/film.mkv")
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if !selection.Found || selection.Label != "Dolby TrueHD 7.1 (Atmos)" {
		t.Fatalf("selection = %+v", selection)
	}
}

func TestSelectorFallsBackToFFProbe(t *testing.T) {
	result := ffprobe.Result{Streams: []ffprobe.Stream{
		{CodecType: "audio", CodecName: "dts", Profile: "DTS-HD MA", Channels: 6, Tags: map[string]string{"language": "eng"}},
	}}
	selector := NewSelector(
		stubTrackProber{err: services.Wrap(services.ErrToolExit, "mediainfo", "inspect", "boom", nil)},
		stubStreamProber{result: result},
		"en", nil,
	)

	selection, err := selector.Select(context.Background(), "/media/film.mkv")
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if !selection.Found || selection.Label != "DTS-HD MA 5.1" {
		t.Fatalf("selection = %+v", selection)
	}
}

func TestSelectorBothProbesFailing(t *testing.T) {
	selector := NewSelector(
		stubTrackProber{err: services.Wrap(services.ErrToolTimeout, "mediainfo", "inspect", "deadline", nil)},
		stubStreamProber{err: services.Wrap(services.ErrToolTimeout, "ffprobe", "inspect", "deadline", nil)},
		"en", nil,
	)

	selection, err := selector.Select(context.Background(), "/media/film.mkv")
	if err == nil || !errors.Is(err, services.ErrToolTimeout) {
		t.Fatalf("expected joined timeout error, got %v", err)
	}
	if selection.Found || selection.Label != "Unknown" {
		t.Fatalf("selection = %+v", selection)
	}
}
