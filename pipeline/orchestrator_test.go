package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"videodub/transcription"
	"videodub/types"
)

type fakeMedia struct {
	extracted  []string
	replaced   bool
	burned     bool
	duration   float64
	extractErr error
}

func (f *fakeMedia) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	if f.extractErr != nil {
		return f.extractErr
	}
	f.extracted = append(f.extracted, audioPath)
	return os.WriteFile(audioPath, []byte("audio"), 0o644)
}

func (f *fakeMedia) ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	f.replaced = true
	return os.WriteFile(outputPath, []byte("dubbed"), 0o644)
}

func (f *fakeMedia) BurnSubtitles(ctx context.Context, videoPath string, segments []types.TranscriptSegment, outputPath string) error {
	f.burned = true
	return os.WriteFile(outputPath, []byte("subtitled"), 0o644)
}

func (f *fakeMedia) ProbeDuration(ctx context.Context, path string) (float64, error) {
	if f.duration == 0 {
		return 7.5, nil
	}
	return f.duration, nil
}

type fakeTranscriber struct {
	transcript *types.Transcript
	language   string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string, opts transcription.Options) (*types.Transcript, error) {
	if f.transcript != nil {
		return f.transcript, nil
	}
	return &types.Transcript{Text: "hello world", Language: "en"}, nil
}

func (f *fakeTranscriber) DetectLanguage(ctx context.Context, audioPath string) (string, error) {
	if f.language == "" {
		return "en", nil
	}
	return f.language, nil
}

type fakeTranslator struct{}

func (fakeTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	return "[" + targetLanguage + "] " + text, nil
}

func (fakeTranslator) TranslateSegments(ctx context.Context, segments []types.TranscriptSegment, targetLanguage string) ([]types.TranscriptSegment, error) {
	out := make([]types.TranscriptSegment, len(segments))
	for i, seg := range segments {
		out[i] = seg
		out[i].Text = "[" + targetLanguage + "] " + seg.Text
	}
	return out, nil
}

type fakeSynthesizer struct{}

func (fakeSynthesizer) Synthesize(ctx context.Context, text string, settings types.VoiceSettings, outputPath string) error {
	return os.WriteFile(outputPath, []byte("speech"), 0o644)
}

func (fakeSynthesizer) SynthesizeSegments(ctx context.Context, segments []types.TranscriptSegment, settings types.VoiceSettings, outputPath string) error {
	return os.WriteFile(outputPath, []byte("segmented speech"), 0o644)
}

func (fakeSynthesizer) PostProcess(ctx context.Context, inputPath, outputPath string, settings types.VoiceSettings) (string, error) {
	if !settings.NeedsPostProcessing() {
		return inputPath, nil
	}
	if err := os.WriteFile(outputPath, []byte("processed speech"), 0o644); err != nil {
		return "", err
	}
	return outputPath, nil
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *fakeMedia, SessionStore) {
	t.Helper()
	media := &fakeMedia{}
	store := NewMemoryStore()
	o := New(Deps{
		Media:       media,
		Transcriber: &fakeTranscriber{},
		Translator:  fakeTranslator{},
		Synthesizer: fakeSynthesizer{},
		Store:       store,
		TempDir:     filepath.Join(t.TempDir(), "tmp"),
		OutputDir:   filepath.Join(t.TempDir(), "output"),
	})
	return o, media, store
}

func assertTempClean(t *testing.T, o *Orchestrator) {
	t.Helper()
	entries, err := os.ReadDir(o.tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		t.Fatalf("failed to read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty temp dir, found %d entries", len(entries))
	}
}

func TestTranscribeUpdatesSessionAndCleansUp(t *testing.T) {
	o, media, _ := newTestOrchestrator(t)
	ctx := context.Background()

	session, err := o.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	transcript, err := o.Transcribe(ctx, session.ID, "clip.mp4", strings.NewReader("video-bytes"), transcription.Options{})
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if transcript.Text != "hello world" {
		t.Fatalf("unexpected transcript: %q", transcript.Text)
	}
	if len(media.extracted) != 1 {
		t.Fatalf("expected one extraction, got %d", len(media.extracted))
	}

	stored, err := o.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if stored.State != types.StateTranscribed {
		t.Fatalf("expected transcribed state, got %s", stored.State)
	}
	if stored.SourceName != "clip.mp4" {
		t.Fatalf("expected source name recorded, got %q", stored.SourceName)
	}

	assertTempClean(t, o)
}

func TestTranscribeWithoutSession(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)

	transcript, err := o.Transcribe(context.Background(), "", "clip.mp4", strings.NewReader("video-bytes"), transcription.Options{})
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if transcript.Text == "" {
		t.Fatal("expected transcript text")
	}
}

func TestTranscribeUnknownSession(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)

	_, err := o.Transcribe(context.Background(), "nope", "clip.mp4", strings.NewReader("x"), transcription.Options{})
	if err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSynthesizePublishesAudio(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	ctx := context.Background()

	session, err := o.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	audioURL, duration, err := o.Synthesize(ctx, session.ID, "helo dunia", nil, types.VoiceSettings{Type: types.VoiceDefault})
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	if !strings.HasPrefix(audioURL, "/output/translated_") || !strings.HasSuffix(audioURL, ".mp3") {
		t.Fatalf("unexpected audio URL: %q", audioURL)
	}
	if duration != 7.5 {
		t.Fatalf("expected probed duration, got %g", duration)
	}

	localPath := filepath.Join(o.outputDir, strings.TrimPrefix(audioURL, "/output/"))
	data, err := os.ReadFile(localPath)
	if err != nil {
		t.Fatalf("expected published artifact: %v", err)
	}
	if string(data) != "speech" {
		t.Fatalf("unexpected artifact contents: %q", data)
	}

	stored, err := o.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if stored.State != types.StateSynthesized || stored.FinalAudioURL != audioURL {
		t.Fatalf("session not updated: state=%s url=%q", stored.State, stored.FinalAudioURL)
	}

	assertTempClean(t, o)
}

func TestSynthesizeAppliesPostProcessing(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)

	audioURL, _, err := o.Synthesize(context.Background(), "", "helo", nil, types.VoiceSettings{Type: types.VoiceDefault, Pitch: 2})
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}

	localPath := filepath.Join(o.outputDir, strings.TrimPrefix(audioURL, "/output/"))
	data, err := os.ReadFile(localPath)
	if err != nil {
		t.Fatalf("expected published artifact: %v", err)
	}
	if string(data) != "processed speech" {
		t.Fatalf("expected post-processed artifact, got %q", data)
	}
}

func TestReTranslationInvalidatesFinalAudio(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	ctx := context.Background()

	session, err := o.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	if _, err := o.Transcribe(ctx, session.ID, "clip.mp4", strings.NewReader("v"), transcription.Options{}); err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if _, err := o.Translate(ctx, session.ID, "hello world", "ms"); err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if _, _, err := o.Synthesize(ctx, session.ID, "helo dunia", nil, types.VoiceSettings{Type: types.VoiceDefault}); err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}

	// Editing the text and re-translating must drop the stale audio.
	if _, err := o.Translate(ctx, session.ID, "hello edited world", "ms"); err != nil {
		t.Fatalf("re-translate failed: %v", err)
	}

	stored, err := o.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if stored.FinalAudioURL != "" {
		t.Fatalf("expected final audio invalidated, got %q", stored.FinalAudioURL)
	}
	if stored.State != types.StateTranslated {
		t.Fatalf("expected translated state, got %s", stored.State)
	}
}

func TestDubResolvesAudioURL(t *testing.T) {
	o, media, _ := newTestOrchestrator(t)
	ctx := context.Background()

	audioURL, _, err := o.Synthesize(ctx, "", "helo", nil, types.VoiceSettings{Type: types.VoiceDefault})
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}

	videoURL, err := o.Dub(ctx, "", strings.NewReader("video-bytes"), audioURL)
	if err != nil {
		t.Fatalf("dub failed: %v", err)
	}
	if !strings.HasPrefix(videoURL, "/output/dubbed_") || !strings.HasSuffix(videoURL, ".mp4") {
		t.Fatalf("unexpected video URL: %q", videoURL)
	}
	if !media.replaced {
		t.Fatal("expected audio replacement")
	}

	localPath := filepath.Join(o.outputDir, strings.TrimPrefix(videoURL, "/output/"))
	if _, err := os.Stat(localPath); err != nil {
		t.Fatalf("expected published dub: %v", err)
	}

	assertTempClean(t, o)
}

func TestDubRejectsForeignAudioURL(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)

	for _, url := range []string{
		"https://evil.example/a.mp3",
		"/output/../secret.mp3",
		"/output/",
		"",
	} {
		if _, err := o.Dub(context.Background(), "", strings.NewReader("v"), url); err == nil {
			t.Fatalf("expected rejection for %q", url)
		}
	}
}

func TestSubtitlePublishesVideo(t *testing.T) {
	o, media, _ := newTestOrchestrator(t)

	segments := []types.TranscriptSegment{{Text: "helo", Start: 0, End: 1}}
	videoURL, err := o.Subtitle(context.Background(), strings.NewReader("video-bytes"), segments)
	if err != nil {
		t.Fatalf("subtitle failed: %v", err)
	}
	if !strings.HasPrefix(videoURL, "/output/subtitled_") {
		t.Fatalf("unexpected video URL: %q", videoURL)
	}
	if !media.burned {
		t.Fatal("expected subtitles burned")
	}
}

func TestDetectLanguage(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)

	language, err := o.DetectLanguage(context.Background(), strings.NewReader("video-bytes"))
	if err != nil {
		t.Fatalf("detect language failed: %v", err)
	}
	if language != "en" {
		t.Fatalf("expected en, got %q", language)
	}
	assertTempClean(t, o)
}
