package synthesis

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"videodub/types"
)

// Error wraps a failed synthesis with the upstream message attached.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to generate speech: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("failed to generate speech: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// SpeechClient is the slice of the OpenAI client the synthesizer needs.
type SpeechClient interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// Transformer is the slice of the media executor the synthesizer needs
// for concatenation and pitch/speed post-processing.
type Transformer interface {
	TransformAudio(ctx context.Context, inputPath, outputPath string, pitch, speed float64) error
	Concatenate(ctx context.Context, paths []string, outputPath string) error
}

// Synthesizer renders text to speech via the remote TTS capability.
type Synthesizer struct {
	tts   SpeechClient
	media Transformer
	model openai.SpeechModel
}

// New returns a Synthesizer over the given clients.
func New(tts SpeechClient, media Transformer) *Synthesizer {
	return &Synthesizer{tts: tts, media: media, model: openai.TTSModel1}
}

// VoiceFor maps voice settings to a TTS voice identifier. The custom
// type falls back to the default voice: the uploaded sample is stored
// but voice cloning is not implemented.
func VoiceFor(t types.VoiceType) openai.SpeechVoice {
	switch t {
	case types.VoiceMale1:
		return openai.VoiceOnyx
	case types.VoiceFemale1:
		return openai.VoiceNova
	case types.VoiceCustom:
		log.Printf("custom voice sample stored but not applied; using default voice")
		return openai.VoiceAlloy
	default:
		return openai.VoiceAlloy
	}
}

// Synthesize renders one audio artifact from text under the voice
// selected by settings, writing it to outputPath.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, settings types.VoiceSettings, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return &Error{Message: "no text provided for speech synthesis"}
	}

	resp, err := s.tts.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: s.model,
		Voice: VoiceFor(settings.Type),
		Input: text,
	})
	if err != nil {
		return &Error{Message: "remote synthesis call failed", Err: err}
	}
	defer resp.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return &Error{Message: "failed to create audio file", Err: err}
	}
	defer out.Close()

	if _, err := io.Copy(out, resp); err != nil {
		os.Remove(outputPath)
		return &Error{Message: "failed to write audio file", Err: err}
	}
	return nil
}

// SynthesizeSegments renders each segment into its own artifact and
// concatenates them in order. If any segment fails, the whole operation
// fails and no artifact is produced; partial files are removed.
func (s *Synthesizer) SynthesizeSegments(ctx context.Context, segments []types.TranscriptSegment, settings types.VoiceSettings, outputPath string) error {
	if len(segments) == 0 {
		return &Error{Message: "no segments provided for speech synthesis"}
	}

	dir := filepath.Dir(outputPath)
	segmentPaths := make([]string, 0, len(segments))
	cleanup := func() {
		for _, p := range segmentPaths {
			os.Remove(p)
		}
	}

	for i, seg := range segments {
		segmentPath := filepath.Join(dir, fmt.Sprintf("segment_%d.mp3", i))
		if err := s.Synthesize(ctx, seg.Text, settings, segmentPath); err != nil {
			cleanup()
			return &Error{Message: fmt.Sprintf("segment %d failed", i), Err: err}
		}
		segmentPaths = append(segmentPaths, segmentPath)
	}

	if err := s.media.Concatenate(ctx, segmentPaths, outputPath); err != nil {
		cleanup()
		return &Error{Message: "failed to concatenate segments", Err: err}
	}

	cleanup()
	return nil
}

// PostProcess applies the pitch/speed transform when requested,
// returning the path of the audio to deliver. With pitch=0 and speed=1
// the input path is returned untouched: a true no-op.
func (s *Synthesizer) PostProcess(ctx context.Context, inputPath, outputPath string, settings types.VoiceSettings) (string, error) {
	if !settings.NeedsPostProcessing() {
		return inputPath, nil
	}

	speed := settings.Speed
	if speed == 0 {
		speed = 1
	}
	if err := s.media.TransformAudio(ctx, inputPath, outputPath, settings.Pitch, speed); err != nil {
		return "", &Error{Message: "audio post-processing failed", Err: err}
	}
	return outputPath, nil
}
