package synthesis

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"videodub/types"
)

type fakeSpeechClient struct {
	calls   int
	failAt  int // 1-based call index that fails; 0 means never
	voices  []openai.SpeechVoice
	payload []byte
}

func (f *fakeSpeechClient) CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error) {
	f.calls++
	f.voices = append(f.voices, req.Voice)
	if f.failAt != 0 && f.calls == f.failAt {
		return openai.RawResponse{}, errors.New("tts unavailable")
	}
	payload := f.payload
	if payload == nil {
		payload = []byte("mp3-bytes")
	}
	return openai.RawResponse{ReadCloser: io.NopCloser(bytes.NewReader(payload))}, nil
}

type fakeTransformer struct {
	transformCalls int
	concatInputs   []string
	concatOutput   string
	concatErr      error
	transformErr   error
}

func (f *fakeTransformer) TransformAudio(ctx context.Context, inputPath, outputPath string, pitch, speed float64) error {
	f.transformCalls++
	if f.transformErr != nil {
		return f.transformErr
	}
	return os.WriteFile(outputPath, []byte("transformed"), 0o644)
}

func (f *fakeTransformer) Concatenate(ctx context.Context, paths []string, outputPath string) error {
	f.concatInputs = append([]string(nil), paths...)
	f.concatOutput = outputPath
	if f.concatErr != nil {
		return f.concatErr
	}
	return os.WriteFile(outputPath, []byte("concatenated"), 0o644)
}

func TestVoiceFor(t *testing.T) {
	cases := []struct {
		voice types.VoiceType
		want  openai.SpeechVoice
	}{
		{types.VoiceDefault, openai.VoiceAlloy},
		{types.VoiceMale1, openai.VoiceOnyx},
		{types.VoiceFemale1, openai.VoiceNova},
		{types.VoiceCustom, openai.VoiceAlloy},
	}
	for _, tc := range cases {
		if got := VoiceFor(tc.voice); got != tc.want {
			t.Fatalf("VoiceFor(%s): expected %s, got %s", tc.voice, tc.want, got)
		}
	}
}

func TestSynthesizeWritesAudio(t *testing.T) {
	tts := &fakeSpeechClient{payload: []byte("audio-data")}
	synth := New(tts, &fakeTransformer{})

	outputPath := filepath.Join(t.TempDir(), "tts.mp3")
	settings := types.VoiceSettings{Type: types.VoiceMale1}
	if err := synth.Synthesize(context.Background(), "hello", settings, outputPath); err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(data) != "audio-data" {
		t.Fatalf("unexpected output contents: %q", data)
	}
	if len(tts.voices) != 1 || tts.voices[0] != openai.VoiceOnyx {
		t.Fatalf("expected onyx voice, got %v", tts.voices)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	tts := &fakeSpeechClient{}
	synth := New(tts, &fakeTransformer{})

	err := synth.Synthesize(context.Background(), "  ", types.VoiceSettings{}, filepath.Join(t.TempDir(), "tts.mp3"))
	if err == nil {
		t.Fatal("expected error for empty text")
	}
	if tts.calls != 0 {
		t.Fatalf("expected no remote call, got %d", tts.calls)
	}
}

func TestSynthesizeSegmentsConcatenatesInOrder(t *testing.T) {
	tts := &fakeSpeechClient{}
	transformer := &fakeTransformer{}
	synth := New(tts, transformer)

	dir := t.TempDir()
	outputPath := filepath.Join(dir, "tts.mp3")
	segments := []types.TranscriptSegment{
		{Text: "one", Start: 0, End: 1},
		{Text: "two", Start: 1, End: 2},
	}
	if err := synth.SynthesizeSegments(context.Background(), segments, types.VoiceSettings{}, outputPath); err != nil {
		t.Fatalf("synthesize segments failed: %v", err)
	}

	want := []string{
		filepath.Join(dir, "segment_0.mp3"),
		filepath.Join(dir, "segment_1.mp3"),
	}
	if len(transformer.concatInputs) != 2 || transformer.concatInputs[0] != want[0] || transformer.concatInputs[1] != want[1] {
		t.Fatalf("unexpected concat inputs: %v", transformer.concatInputs)
	}
	if transformer.concatOutput != outputPath {
		t.Fatalf("expected concat output %q, got %q", outputPath, transformer.concatOutput)
	}

	// Per-segment intermediates are removed after concatenation.
	for _, p := range want {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed", p)
		}
	}
}

func TestSynthesizeSegmentsFailFast(t *testing.T) {
	tts := &fakeSpeechClient{failAt: 2}
	transformer := &fakeTransformer{}
	synth := New(tts, transformer)

	dir := t.TempDir()
	outputPath := filepath.Join(dir, "tts.mp3")
	segments := []types.TranscriptSegment{
		{Text: "one", Start: 0, End: 1},
		{Text: "two", Start: 1, End: 2},
		{Text: "three", Start: 2, End: 3},
	}
	err := synth.SynthesizeSegments(context.Background(), segments, types.VoiceSettings{}, outputPath)
	if err == nil {
		t.Fatal("expected failure when a segment fails")
	}

	// No remote call for the third segment, no partials, no artifact.
	if tts.calls != 2 {
		t.Fatalf("expected synthesis to stop after the failed segment, got %d calls", tts.calls)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "segment_0.mp3")); !os.IsNotExist(statErr) {
		t.Fatal("expected partial segment removed")
	}
	if _, statErr := os.Stat(outputPath); !os.IsNotExist(statErr) {
		t.Fatal("expected no final artifact")
	}
	if transformer.concatOutput != "" {
		t.Fatal("expected no concatenation after failure")
	}
}

func TestPostProcessNoOp(t *testing.T) {
	transformer := &fakeTransformer{}
	synth := New(&fakeSpeechClient{}, transformer)

	inputPath := filepath.Join(t.TempDir(), "tts.mp3")
	for _, settings := range []types.VoiceSettings{
		{Pitch: 0, Speed: 0},
		{Pitch: 0, Speed: 1},
	} {
		got, err := synth.PostProcess(context.Background(), inputPath, inputPath+".out", settings)
		if err != nil {
			t.Fatalf("post-process failed: %v", err)
		}
		if got != inputPath {
			t.Fatalf("expected input path returned untouched, got %q", got)
		}
	}
	if transformer.transformCalls != 0 {
		t.Fatalf("expected no transform calls, got %d", transformer.transformCalls)
	}
}

func TestPostProcessAppliesTransform(t *testing.T) {
	transformer := &fakeTransformer{}
	synth := New(&fakeSpeechClient{}, transformer)

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "tts.mp3")
	outputPath := filepath.Join(dir, "modified.mp3")

	got, err := synth.PostProcess(context.Background(), inputPath, outputPath, types.VoiceSettings{Pitch: 2, Speed: 1.25})
	if err != nil {
		t.Fatalf("post-process failed: %v", err)
	}
	if got != outputPath {
		t.Fatalf("expected output path, got %q", got)
	}
	if transformer.transformCalls != 1 {
		t.Fatalf("expected one transform call, got %d", transformer.transformCalls)
	}
}
