package services

import "github.com/abadojack/whatlanggo"

// iso3to1 maps whatlanggo's ISO 639-3 codes to the two-letter codes used in
// configuration, for the languages lyrics realistically arrive in.
var iso3to1 = map[string]string{
	"eng": "en",
	"spa": "es",
	"fra": "fr",
	"deu": "de",
	"ita": "it",
	"por": "pt",
	"nld": "nl",
	"rus": "ru",
	"ukr": "uk",
	"pol": "pl",
	"swe": "sv",
	"tur": "tr",
	"ara": "ar",
	"hin": "hi",
	"jpn": "ja",
	"kor": "ko",
	"cmn": "zh",
}

// WhatlangDetector identifies lyrics language with the whatlanggo trigram
// classifier. It satisfies the pipeline's LanguageDetector contract.
type WhatlangDetector struct{}

// NewWhatlangDetector returns a ready detector; the classifier is stateless.
func NewWhatlangDetector() WhatlangDetector {
	return WhatlangDetector{}
}

// Detect returns the ISO 639-1 code for text's language and whether the
// classification is confident enough to act on. Languages without a
// two-letter code come back as their ISO 639-3 code.
func (WhatlangDetector) Detect(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	info := whatlanggo.Detect(text)
	code := whatlanggo.LangToString(info.Lang)
	if short, ok := iso3to1[code]; ok {
		code = short
	}
	return code, info.IsReliable()
}
