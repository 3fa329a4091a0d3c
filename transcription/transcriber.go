package transcription

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"videodub/types"
)

// Error wraps a failed transcription with the upstream message attached.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to transcribe audio: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("failed to transcribe audio: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Options controls one transcription request. Repeated calls are not
// idempotent: wording may differ between runs of the same audio.
type Options struct {
	// LanguageHint is an ISO 639-1 code passed to the engine, or empty
	// for auto-detection.
	LanguageHint string

	// Segmented requests timestamped segments instead of plain text.
	Segmented bool
}

// Transcriber sends audio files to the Whisper API.
type Transcriber struct {
	client *openai.Client
	model  string
}

// New returns a Transcriber using the given client.
func New(client *openai.Client) *Transcriber {
	return &Transcriber{client: client, model: openai.Whisper1}
}

// Transcribe sends the audio file to the remote engine and returns the
// transcript. With Segmented set, the result carries ordered timestamped
// segments and the detected language.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, opts Options) (*types.Transcript, error) {
	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Language: opts.LanguageHint,
		Format:   openai.AudioResponseFormatText,
	}
	if opts.Segmented {
		req.Format = openai.AudioResponseFormatVerboseJSON
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, &Error{Message: "remote transcription call failed", Err: err}
	}

	transcript := &types.Transcript{Text: resp.Text}
	if opts.Segmented {
		transcript.Language = resp.Language
		transcript.Segments = make([]types.TranscriptSegment, 0, len(resp.Segments))
		for _, seg := range resp.Segments {
			transcript.Segments = append(transcript.Segments, types.TranscriptSegment{
				Text:  seg.Text,
				Start: seg.Start,
				End:   seg.End,
			})
		}
	}
	return transcript, nil
}

// DetectLanguage returns the language code the engine detects for the
// spoken audio.
func (t *Transcriber) DetectLanguage(ctx context.Context, audioPath string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return "", &Error{Message: "language detection failed", Err: err}
	}
	return resp.Language, nil
}
