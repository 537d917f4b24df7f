package route

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector identifies the language of a text fragment. Implementations must
// be safe for concurrent use.
type Detector interface {
	// Detect returns the top candidate as a lowercase ISO-639-1 code and the
	// detector's confidence in it. An empty code means detection failed.
	Detect(text string) (lang string, confidence float64)
}

// linguaLanguages maps the ISO-639-1 codes supported by the daemon onto
// lingua's statistical models.
var linguaLanguages = map[string]lingua.Language{
	"ar": lingua.Arabic,
	"de": lingua.German,
	"en": lingua.English,
	"es": lingua.Spanish,
	"fr": lingua.French,
	"it": lingua.Italian,
	"ja": lingua.Japanese,
	"ko": lingua.Korean,
	"nl": lingua.Dutch,
	"pl": lingua.Polish,
	"pt": lingua.Portuguese,
	"ru": lingua.Russian,
	"zh": lingua.Chinese,
}

// SupportedLanguages lists every ISO-639-1 code the detector can model,
// sorted for stable output.
func SupportedLanguages() []string {
	out := make([]string, 0, len(linguaLanguages))
	for c := range linguaLanguages {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// LinguaDetector implements Detector with lingua's n-gram models, restricted
// to the configured language set so close relatives don't steal detections.
type LinguaDetector struct {
	detector lingua.LanguageDetector
	codes    map[lingua.Language]string
}

// NewLinguaDetector builds a detector for the given ISO-639-1 codes.
func NewLinguaDetector(codes []string) (*LinguaDetector, error) {
	if len(codes) < 2 {
		return nil, fmt.Errorf("language detection needs at least two languages, got %d", len(codes))
	}
	langs := make([]lingua.Language, 0, len(codes))
	reverse := make(map[lingua.Language]string, len(codes))
	for _, c := range codes {
		c = NormalizeLang(c)
		l, ok := linguaLanguages[c]
		if !ok {
			return nil, fmt.Errorf("unsupported detection language %q", c)
		}
		langs = append(langs, l)
		reverse[l] = c
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(langs...).
		WithPreloadedLanguageModels().
		Build()
	return &LinguaDetector{detector: detector, codes: reverse}, nil
}

// Detect returns the most likely language and its confidence.
func (d *LinguaDetector) Detect(text string) (string, float64) {
	if strings.TrimSpace(text) == "" {
		return "", 0
	}
	values := d.detector.ComputeLanguageConfidenceValues(text)
	if len(values) == 0 {
		return "", 0
	}
	top := values[0]
	code, ok := d.codes[top.Language()]
	if !ok {
		return "", 0
	}
	return code, top.Value()
}

// iso639_2 maps the common three-letter codes (both bibliographic and
// terminological variants) onto their two-letter equivalents.
var iso639_2 = map[string]string{
	"ara": "ar",
	"deu": "de", "ger": "de",
	"eng": "en",
	"spa": "es",
	"fra": "fr", "fre": "fr",
	"ita": "it",
	"jpn": "ja",
	"kor": "ko",
	"nld": "nl", "dut": "nl",
	"pol": "pl",
	"por": "pt",
	"rus": "ru",
	"zho": "zh", "chi": "zh",
}

// NormalizeLang reduces a language tag to a bare lowercase ISO-639-1 code
// ("zh-CN" becomes "zh", "jpn" becomes "ja"). Codes it cannot map are
// returned lowercased as-is, so they miss the language tables instead of
// colliding with a real code.
func NormalizeLang(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	if two, ok := iso639_2[code]; ok {
		return two
	}
	return code
}
