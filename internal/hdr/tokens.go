package hdr

import "strings"

// hdr10PlusTokens are the explicit dynamic-metadata markers accepted from any
// signaling field.
var hdr10PlusTokens = []string{"hdr10+", "hdr10plus"}

// smpte2094Tokens name the SMPTE ST 2094 family without relying on spacing or
// vendor phrasing.
var smpte2094Tokens = []string{"2094", "app 4", "app4", "smpte st 2094", "smpte2094"}

// textSearchTokens are the markers accepted during the free-text fallback
// search. Deliberately narrower than the structured-field checks: a bare
// "smpte" or "app 4" in stream text is too ambiguous.
var textSearchTokens = []string{"hdr10+", "hdr10plus", "smpte st 2094", "smpte2094", "smpte-st-2094"}

// DynamicMetadataSignal reports whether the structured HDR format and
// compatibility fields carry an HDR10+ signal. The SMPTE 2094 check excludes
// any field that also mentions 2084: that token denotes the PQ transfer
// function, which combined PQ+dynamic streams advertise alongside 2094, and
// matching it would misclassify plain HDR10.
func DynamicMetadataSignal(format, compatibility string) bool {
	lf := strings.ToLower(format)
	lc := strings.ToLower(compatibility)

	if containsAny(lf, hdr10PlusTokens) || containsAny(lc, hdr10PlusTokens) {
		return true
	}
	if containsAny(lf, smpte2094Tokens) && !strings.Contains(lf, "2084") {
		return true
	}
	return containsAny(lc, []string{"hdr10+ profile", "profile a", "hdr10+"})
}

// TextSignalsDynamicMetadata reports whether raw stream text mentions HDR10+
// explicitly.
func TextSignalsDynamicMetadata(text string) bool {
	return containsAny(strings.ToLower(text), textSearchTokens)
}

// TransferSignalsHLG reports whether a color-transfer tag names Hybrid
// Log-Gamma.
func TransferSignalsHLG(transfer string) bool {
	return containsAny(strings.ToLower(transfer), []string{"hlg", "arib"})
}

// TransferSignalsPQ reports whether a color-transfer tag names the SMPTE ST
// 2084 Perceptual Quantizer.
func TransferSignalsPQ(transfer string) bool {
	return containsAny(strings.ToLower(transfer), []string{"pq", "smpte2084", "smpte st 2084", "smpte-st-2084"})
}

// PrimariesSignalWideGamut reports whether color primaries name BT.2020.
// Used as a weaker HDR10 signal when the transfer tag is absent, since some
// encoders drop transfer characteristics but preserve primaries.
func PrimariesSignalWideGamut(primaries string) bool {
	return containsAny(strings.ToLower(primaries), []string{"bt2020", "bt.2020"})
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
