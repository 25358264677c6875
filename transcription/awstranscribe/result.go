package awstranscribe

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"

	"github.com/kbukum/audioscribe/errors"
)

// locales maps the short codes used on the command line to the locales
// Amazon Transcribe expects.
var locales = map[string]string{
	"de": "de-DE",
	"en": "en-US",
	"es": "es-ES",
	"fr": "fr-FR",
	"it": "it-IT",
	"ja": "ja-JP",
	"nl": "nl-NL",
	"pt": "pt-BR",
}

// languageCode resolves lang through overrides, then the built-in table.
// Values that already look like a locale ("fr-CA") pass through.
func languageCode(lang string, overrides map[string]string) (types.LanguageCode, error) {
	if code, ok := overrides[lang]; ok {
		return types.LanguageCode(code), nil
	}
	if strings.Contains(lang, "-") {
		return types.LanguageCode(lang), nil
	}
	if code, ok := locales[strings.ToLower(lang)]; ok {
		return types.LanguageCode(code), nil
	}
	return "", errors.InvalidInput("transcription.language",
		fmt.Sprintf("no Amazon Transcribe locale for %q; set transcription.awstranscribe.language_codes", lang))
}

// mediaFormat maps a file extension to the job media format.
func mediaFormat(ext string) types.MediaFormat {
	return types.MediaFormat(strings.TrimPrefix(ext, "."))
}

// result is the part of the job output JSON we read.
type result struct {
	Results struct {
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
		Items []struct {
			EndTime string `json:"end_time,omitempty"`
		} `json:"items"`
	} `json:"results"`
}

func decodeResult(r io.Reader) (*result, error) {
	var res result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode job output: %w", err)
	}
	if len(res.Results.Transcripts) == 0 {
		return nil, fmt.Errorf("job output has no transcript")
	}
	return &res, nil
}

func (r *result) text() string {
	parts := make([]string, 0, len(r.Results.Transcripts))
	for _, t := range r.Results.Transcripts {
		parts = append(parts, t.Transcript)
	}
	return strings.Join(parts, " ")
}

// duration is the end of the last timed item, 0 when none is timed.
func (r *result) duration() float64 {
	var end float64
	for _, it := range r.Results.Items {
		if v, err := strconv.ParseFloat(it.EndTime, 64); err == nil && v > end {
			end = v
		}
	}
	return end
}
