package hdr

import (
	"context"
	"testing"

	"reelscan/internal/probe/dovi"
	"reelscan/internal/probe/mediainfo"
	"reelscan/internal/services"
)

type stubDovi struct {
	info dovi.Info
	err  error
}

func (s stubDovi) Detect(context.Context, string) (dovi.Info, error) {
	return s.info, s.err
}

type stubTracks struct {
	tracks []mediainfo.Track
	err    error
}

func (s stubTracks) Inspect(context.Context, string) (mediainfo.Report, error) {
	if s.err != nil {
		return mediainfo.Report{}, s.err
	}
	return mediainfo.NewReport(s.tracks...), nil
}

func videoTrack(format, compatibility string) mediainfo.Track {
	return mediainfo.Track{
		"@type":                    "Video",
		"HDR_Format":               format,
		"HDR_Format_Compatibility": compatibility,
	}
}

type stubColor struct {
	transfer  string
	primaries string
	colorErr  error
	text      string
	textErr   error
}

func (s stubColor) ColorMetadata(context.Context, string) (string, string, error) {
	return s.transfer, s.primaries, s.colorErr
}

func (s stubColor) VideoStreamText(context.Context, string) (string, error) {
	return s.text, s.textErr
}

func probeFailure(op string) error {
	return services.Wrap(services.ErrToolExit, "test", op, "boom", nil)
}

func TestDolbyVisionShortCircuitsEverything(t *testing.T) {
	classifier := NewClassifier(
		stubDovi{info: dovi.Info{Present: true, Profile: 7, ELType: "FEL"}},
		stubTracks{tracks: []mediainfo.Track{videoTrack("SMPTE ST 2094 App 4", "HDR10+")}},
		stubColor{transfer: "smpte2084", primaries: "bt2020"},
		nil,
	)

	got, err := classifier.Classify(context.Background(), "/media/film.mkv")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if got.Format != FormatDolbyVision || got.Detail != "Profile 7" {
		t.Fatalf("got %+v", got)
	}
	if got.Profile != 7 || got.ELType != "FEL" {
		t.Fatalf("got profile=%d el_type=%q", got.Profile, got.ELType)
	}
}

func TestHDR10PlusFromStructuredFields(t *testing.T) {
	cases := []struct {
		name   string
		format string
		compat string
		want   Format
	}{
		{"explicit token in format", "HDR10+ Profile B", "", FormatHDR10Plus},
		{"explicit token in compatibility", "SMPTE ST 2086", "HDR10+, HDR10", FormatHDR10Plus},
		{"smpte 2094 app 4", "SMPTE ST 2094 App 4", "", FormatHDR10Plus},
		{"2094 with co-occurring 2084 excluded", "SMPTE ST 2084 / SMPTE ST 2094", "", FormatSDR},
		{"plain 2084 is not dynamic metadata", "SMPTE ST 2084", "", FormatSDR},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classifier := NewClassifier(
				stubDovi{},
				stubTracks{tracks: []mediainfo.Track{videoTrack(tc.format, tc.compat)}},
				stubColor{},
				nil,
			)
			got, err := classifier.Classify(context.Background(), "/media/film.mkv")
			if err != nil {
				t.Fatalf("Classify returned error: %v", err)
			}
			if got.Format != tc.want {
				t.Fatalf("format = %q, want %q", got.Format, tc.want)
			}
		})
	}
}

func TestHDR10PlusTextFallback(t *testing.T) {
	classifier := NewClassifier(
		stubDovi{},
		stubTracks{err: probeFailure("inspect")},
		stubColor{text: "[STREAM]\nside_data_type=SMPTE ST 2094-40 (HDR10+)\n[/STREAM]"},
		nil,
	)

	got, err := classifier.Classify(context.Background(), "/media/film.mkv")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if got.Format != FormatHDR10Plus {
		t.Fatalf("format = %q", got.Format)
	}
}

func TestStaticMetadataStage(t *testing.T) {
	cases := []struct {
		name      string
		transfer  string
		primaries string
		want      Format
	}{
		{"hlg transfer", "arib-std-b67", "bt2020", FormatHLG},
		{"pq transfer", "smpte2084", "bt2020", FormatHDR10},
		{"primaries only", "", "bt2020", FormatHDR10},
		{"nothing", "bt709", "bt709", FormatSDR},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classifier := NewClassifier(
				stubDovi{},
				stubTracks{},
				stubColor{transfer: tc.transfer, primaries: tc.primaries},
				nil,
			)
			got, err := classifier.Classify(context.Background(), "/media/film.mkv")
			if err != nil {
				t.Fatalf("Classify returned error: %v", err)
			}
			if got.Format != tc.want {
				t.Fatalf("format = %q, want %q", got.Format, tc.want)
			}
		})
	}
}

func TestAllStagesFailingYieldsUnknown(t *testing.T) {
	classifier := NewClassifier(
		stubDovi{err: probeFailure("detect")},
		stubTracks{err: probeFailure("inspect")},
		stubColor{colorErr: probeFailure("color"), textErr: probeFailure("text")},
		nil,
	)

	got, err := classifier.Classify(context.Background(), "/media/film.mkv")
	if err == nil {
		t.Fatal("expected a joined probe error")
	}
	if got.Format != FormatUnknown || got.Detail != "Error" {
		t.Fatalf("got %+v", got)
	}
}

func TestSingleProbeFailureStillReachesSDR(t *testing.T) {
	classifier := NewClassifier(
		stubDovi{err: probeFailure("detect")},
		stubTracks{},
		stubColor{},
		nil,
	)

	got, err := classifier.Classify(context.Background(), "/media/film.mkv")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if got.Format != FormatSDR {
		t.Fatalf("format = %q", got.Format)
	}
}

func TestTokenHelpers(t *testing.T) {
	if !DynamicMetadataSignal("", "HDR10+ Profile A") {
		t.Fatal("compatibility profile token should match")
	}
	if DynamicMetadataSignal("SMPTE ST 2084 / SMPTE ST 2094", "") {
		t.Fatal("2094 with 2084 must be excluded")
	}
	if TextSignalsDynamicMetadata("smpte st 2086 mastering display") {
		t.Fatal("static metadata text must not match")
	}
	if !TransferSignalsHLG("ARIB STD-B67") {
		t.Fatal("arib transfer should signal HLG")
	}
	if TransferSignalsPQ("bt709") {
		t.Fatal("bt709 must not signal PQ")
	}
	if !PrimariesSignalWideGamut("BT.2020") {
		t.Fatal("dotted bt.2020 spelling should match")
	}
}
