package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"videodub/types"
)

// Error wraps a failed translation with the upstream message attached.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to translate text: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("failed to translate text: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// languageNames maps ISO codes to the display names embedded in the
// translation instruction. Unmapped codes pass through verbatim.
var languageNames = map[string]string{
	"ms": "Malay",
	"id": "Indonesian",
	"zh": "Chinese (Mandarin)",
	"hi": "Hindi",
	"es": "Spanish",
	"ar": "Arabic",
	"fr": "French",
	"de": "German",
	"ja": "Japanese",
	"ko": "Korean",
	"en": "English",
}

// LanguageName resolves a language code to its display name, falling
// back to the code itself when unmapped.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// Translator sends text to a remote translation capability.
type Translator struct {
	provider Provider

	// partialFallback keeps original text at indices the batch response
	// omits instead of failing the whole batch. Synthesis has no such
	// leniency; the asymmetry is a deliberate, configurable policy.
	partialFallback bool
}

// New returns a Translator over the given provider.
func New(provider Provider, partialFallback bool) *Translator {
	return &Translator{provider: provider, partialFallback: partialFallback}
}

// Translate converts text into the target language, preserving tone and
// adapting idioms. Fails on empty input or upstream failure.
func (t *Translator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &Error{Message: "no text provided for translation"}
	}

	instruction := fmt.Sprintf(
		"You are a professional translator. Translate the following text into %s. "+
			"Maintain the original tone, meaning, and format. If there are any idioms "+
			"or cultural references, adapt them appropriately for the target language.",
		LanguageName(targetLanguage))

	translated, err := t.provider.Complete(ctx, instruction, text)
	if err != nil {
		return "", &Error{Message: "remote translation call failed", Err: err}
	}
	return translated, nil
}

// TranslateSegments translates an ordered batch of segments in one call,
// serializing the texts as a JSON array and re-zipping the response onto
// the original timestamps by position. Output length and order always
// equal the input; timestamps are returned unchanged.
func (t *Translator) TranslateSegments(ctx context.Context, segments []types.TranscriptSegment, targetLanguage string) ([]types.TranscriptSegment, error) {
	if len(segments) == 0 {
		return nil, &Error{Message: "no segments provided for translation"}
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	batch, err := json.Marshal(texts)
	if err != nil {
		return nil, &Error{Message: "failed to serialize segment batch", Err: err}
	}

	instruction := fmt.Sprintf(
		"You are a professional translator. Translate the following JSON array of text "+
			"segments into %s. Maintain the original tone and meaning. Return only the "+
			"translated JSON array with the same structure, no explanations.",
		LanguageName(targetLanguage))

	raw, err := t.provider.Complete(ctx, instruction, string(batch))
	if err != nil {
		return nil, &Error{Message: "remote translation call failed", Err: err}
	}

	var translated []string
	if err := json.Unmarshal([]byte(raw), &translated); err != nil {
		return nil, &Error{Message: "response is not a JSON array of segments", Err: err}
	}

	if !t.partialFallback && len(translated) != len(segments) {
		return nil, &Error{Message: fmt.Sprintf("response has %d segments, want %d", len(translated), len(segments))}
	}

	out := make([]types.TranscriptSegment, len(segments))
	for i, seg := range segments {
		out[i] = seg
		if i < len(translated) && translated[i] != "" {
			out[i].Text = translated[i]
		}
	}
	return out, nil
}
