package audio

import (
	"strings"

	"golang.org/x/text/language"
)

// languageAliases maps ISO 639-1 codes to the tag spellings found in real
// container metadata. golang.org/x/text normalizes well-formed BCP 47 tags
// but cannot resolve the bibliographic ISO 639-2/B codes ("ger", "fre") that
// Matroska muxers emit, so those stay in an explicit table.
var languageAliases = map[string][]string{
	"en": {"eng", "en", "english"},
	"de": {"ger", "deu", "de", "german"},
	"ru": {"rus", "ru", "russian"},
	"bg": {"bul", "bg", "bulgarian"},
	"fr": {"fre", "fra", "fr", "french"},
	"es": {"spa", "es", "spanish"},
	"it": {"ita", "it", "italian"},
	"pt": {"por", "pt", "portuguese"},
	"ja": {"jpn", "ja", "japanese"},
	"ko": {"kor", "ko", "korean"},
	"zh": {"chi", "zho", "zh", "chinese"},
	"nl": {"dut", "nld", "nl", "dutch"},
	"pl": {"pol", "pl", "polish"},
	"sv": {"swe", "sv", "swedish"},
	"no": {"nor", "no", "norwegian"},
	"da": {"dan", "da", "danish"},
	"fi": {"fin", "fi", "finnish"},
	"tr": {"tur", "tr", "turkish"},
	"ar": {"ara", "ar", "arabic"},
	"he": {"heb", "he", "hebrew"},
	"hi": {"hin", "hi", "hindi"},
	"th": {"tha", "th", "thai"},
	"cs": {"cze", "ces", "cs", "czech"},
	"hu": {"hun", "hu", "hungarian"},
	"ro": {"rum", "ron", "ro", "romanian"},
	"el": {"gre", "ell", "el", "greek"},
	"uk": {"ukr", "uk", "ukrainian"},
}

// LanguageTags returns the set of track-tag spellings that count as a match
// for the given language code. The code may be any BCP 47 tag ("en",
// "en-US", "DE"); unknown languages fall back to matching the lowered code
// literally.
func LanguageTags(code string) []string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	base := code
	if tag, err := language.Parse(code); err == nil {
		if b, confidence := tag.Base(); confidence != language.No {
			base = b.String()
		}
	}
	if aliases, ok := languageAliases[base]; ok {
		return aliases
	}
	return []string{base}
}

func matchesAny(trackLanguage string, tags []string) bool {
	for _, tag := range tags {
		if trackLanguage == tag {
			return true
		}
	}
	return false
}
