package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"videodub/common"
	"videodub/events"
	"videodub/publish"
	"videodub/transcription"
	"videodub/types"
)

// MediaExecutor is the slice of the media package the orchestrator needs.
type MediaExecutor interface {
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
	ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string) error
	BurnSubtitles(ctx context.Context, videoPath string, segments []types.TranscriptSegment, outputPath string) error
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Transcriber converts audio files to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, opts transcription.Options) (*types.Transcript, error)
	DetectLanguage(ctx context.Context, audioPath string) (string, error)
}

// Translator converts text between languages.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
	TranslateSegments(ctx context.Context, segments []types.TranscriptSegment, targetLanguage string) ([]types.TranscriptSegment, error)
}

// Synthesizer converts text to speech audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, settings types.VoiceSettings, outputPath string) error
	SynthesizeSegments(ctx context.Context, segments []types.TranscriptSegment, settings types.VoiceSettings, outputPath string) error
	PostProcess(ctx context.Context, inputPath, outputPath string, settings types.VoiceSettings) (string, error)
}

// Deps carries the explicitly injected collaborators; there is no hidden
// process-wide client state.
type Deps struct {
	Media       MediaExecutor
	Transcriber Transcriber
	Translator  Translator
	Synthesizer Synthesizer
	Store       SessionStore
	Events      *events.Publisher
	S3          *common.S3
	S3Bucket    string
	S3Prefix    string
	YouTube     *publish.Uploader
	TempDir     string
	OutputDir   string
}

// Orchestrator sequences the pipeline stages per session. Each stage is
// triggered by one explicit external request and runs to completion;
// nothing auto-advances, so callers can pause for human edits between
// stages. Any stage may be re-entered with new input.
type Orchestrator struct {
	media       MediaExecutor
	transcriber Transcriber
	translator  Translator
	synthesizer Synthesizer
	store       SessionStore
	events      *events.Publisher
	s3          *common.S3
	s3Bucket    string
	s3Prefix    string
	youtube     *publish.Uploader
	tempDir     string
	outputDir   string
}

// New constructs an Orchestrator from its dependencies.
func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		media:       deps.Media,
		transcriber: deps.Transcriber,
		translator:  deps.Translator,
		synthesizer: deps.Synthesizer,
		store:       deps.Store,
		events:      deps.Events,
		s3:          deps.S3,
		s3Bucket:    deps.S3Bucket,
		s3Prefix:    deps.S3Prefix,
		youtube:     deps.YouTube,
		tempDir:     deps.TempDir,
		outputDir:   deps.OutputDir,
	}
}

// CreateSession registers a new pipeline session.
func (o *Orchestrator) CreateSession(ctx context.Context) (*types.PipelineSession, error) {
	session := types.NewSession(uuid.NewString())
	if err := o.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

// GetSession returns the stored session state.
func (o *Orchestrator) GetSession(ctx context.Context, id string) (*types.PipelineSession, error) {
	return o.store.Load(ctx, id)
}

// Transcribe runs the Uploaded → Transcribed transition: persist the
// uploaded video into a scoped workspace, extract its audio, transcribe,
// and discard both temp files once text is obtained.
func (o *Orchestrator) Transcribe(ctx context.Context, sessionID, sourceName string, video io.Reader, opts transcription.Options) (*types.Transcript, error) {
	session, err := o.loadIfSet(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ws, err := NewWorkspace(o.tempDir)
	if err != nil {
		return nil, err
	}
	defer ws.Cleanup()

	token := Token()
	videoPath := ws.Path("video_" + token + ".mp4")
	audioPath := ws.Path("audio_" + token + ".mp3")

	if err := saveStream(videoPath, video); err != nil {
		return nil, fmt.Errorf("failed to save uploaded video: %w", err)
	}

	if err := o.media.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return nil, err
	}

	transcript, err := o.transcriber.Transcribe(ctx, audioPath, opts)
	if err != nil {
		return nil, err
	}

	if session != nil {
		session.SourceName = sourceName
		session.ApplyTranscript(transcript)
		if err := o.store.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		o.events.StageCompleted(session.ID, types.StateTranscribed, map[string]string{
			"language": transcript.Language,
		})
	}
	return transcript, nil
}

// DetectLanguage identifies the spoken language of an uploaded video
// without producing a transcript for editing.
func (o *Orchestrator) DetectLanguage(ctx context.Context, video io.Reader) (string, error) {
	ws, err := NewWorkspace(o.tempDir)
	if err != nil {
		return "", err
	}
	defer ws.Cleanup()

	token := Token()
	videoPath := ws.Path("video_" + token + ".mp4")
	audioPath := ws.Path("audio_" + token + ".mp3")

	if err := saveStream(videoPath, video); err != nil {
		return "", fmt.Errorf("failed to save uploaded video: %w", err)
	}
	if err := o.media.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return "", err
	}
	return o.transcriber.DetectLanguage(ctx, audioPath)
}

// Translate runs the Transcribed → Translated transition. The edited
// text is authoritative; the transcription result is never re-fetched.
func (o *Orchestrator) Translate(ctx context.Context, sessionID, text, targetLanguage string) (string, error) {
	session, err := o.loadIfSet(ctx, sessionID)
	if err != nil {
		return "", err
	}

	translated, err := o.translator.Translate(ctx, text, targetLanguage)
	if err != nil {
		return "", err
	}

	if session != nil {
		session.ApplyTranslation(text, targetLanguage, translated)
		if err := o.store.Save(ctx, session); err != nil {
			return "", fmt.Errorf("failed to save session: %w", err)
		}
		o.events.StageCompleted(session.ID, types.StateTranslated, map[string]string{
			"target_language": targetLanguage,
		})
	}
	return translated, nil
}

// TranslateSegments is the batch variant of Translate: one remote call,
// timestamps preserved by position.
func (o *Orchestrator) TranslateSegments(ctx context.Context, segments []types.TranscriptSegment, targetLanguage string) ([]types.TranscriptSegment, error) {
	return o.translator.TranslateSegments(ctx, segments, targetLanguage)
}

// Synthesize runs the Translated → Synthesized transition: render speech,
// optionally post-process pitch/speed, persist the final audio under the
// public output directory, and return its URL. Intermediate artifacts
// are discarded with the workspace.
func (o *Orchestrator) Synthesize(ctx context.Context, sessionID, text string, segments []types.TranscriptSegment, settings types.VoiceSettings) (string, float64, error) {
	session, err := o.loadIfSet(ctx, sessionID)
	if err != nil {
		return "", 0, err
	}

	ws, err := NewWorkspace(o.tempDir)
	if err != nil {
		return "", 0, err
	}
	defer ws.Cleanup()

	token := Token()

	// The custom voice sample is stored for a future cloning integration
	// but does not alter the synthesized voice.
	if settings.Type == types.VoiceCustom && len(settings.SampleBlob) > 0 {
		samplePath := ws.Path("voice_sample_" + token + ".mp3")
		if err := os.WriteFile(samplePath, settings.SampleBlob, 0o644); err != nil {
			return "", 0, fmt.Errorf("failed to store voice sample: %w", err)
		}
	}

	ttsPath := ws.Path("tts_" + token + ".mp3")
	if len(segments) > 0 {
		err = o.synthesizer.SynthesizeSegments(ctx, segments, settings, ttsPath)
	} else {
		err = o.synthesizer.Synthesize(ctx, text, settings, ttsPath)
	}
	if err != nil {
		return "", 0, err
	}

	processedPath, err := o.synthesizer.PostProcess(ctx, ttsPath, ws.Path("modified_"+token+".mp3"), settings)
	if err != nil {
		return "", 0, err
	}

	finalName := "translated_" + token + ".mp3"
	if err := o.publishArtifact(ctx, processedPath, finalName, "audio/mpeg"); err != nil {
		return "", 0, err
	}

	duration, err := o.media.ProbeDuration(ctx, filepath.Join(o.outputDir, finalName))
	if err != nil {
		log.Printf("failed to probe final audio duration: %v", err)
		duration = 0
	}

	audioURL := "/output/" + finalName
	if session != nil {
		session.ApplySynthesis(settings, audioURL)
		if err := o.store.Save(ctx, session); err != nil {
			return "", 0, fmt.Errorf("failed to save session: %w", err)
		}
		o.events.StageCompleted(session.ID, types.StateSynthesized, map[string]string{
			"audio_url": audioURL,
		})
	}
	return audioURL, duration, nil
}

// Dub remuxes a previously synthesized audio track into the uploaded
// video, producing a dubbed video under the public output directory.
func (o *Orchestrator) Dub(ctx context.Context, sessionID string, video io.Reader, audioURL string) (string, error) {
	session, err := o.loadIfSet(ctx, sessionID)
	if err != nil {
		return "", err
	}

	audioPath, err := o.resolveOutputURL(audioURL)
	if err != nil {
		return "", err
	}

	ws, err := NewWorkspace(o.tempDir)
	if err != nil {
		return "", err
	}
	defer ws.Cleanup()

	token := Token()
	videoPath := ws.Path("video_" + token + ".mp4")
	if err := saveStream(videoPath, video); err != nil {
		return "", fmt.Errorf("failed to save uploaded video: %w", err)
	}

	dubbedPath := ws.Path("dubbed_" + token + ".mp4")
	if err := o.media.ReplaceAudio(ctx, videoPath, audioPath, dubbedPath); err != nil {
		return "", err
	}

	finalName := "dubbed_" + token + ".mp4"
	if err := o.publishArtifact(ctx, dubbedPath, finalName, "video/mp4"); err != nil {
		return "", err
	}

	videoURL := "/output/" + finalName
	if session != nil {
		session.ApplyDub(videoURL)
		if err := o.store.Save(ctx, session); err != nil {
			return "", fmt.Errorf("failed to save session: %w", err)
		}
	}

	// Publishing is slow and best effort; the dub URL is already final.
	if o.youtube != nil && session != nil {
		metadata := publish.GenerateMetadata(session.SourceName, session.TargetLanguage)
		published := filepath.Join(o.outputDir, finalName)
		go func() {
			if _, err := o.youtube.UploadDub(published, metadata); err != nil {
				log.Printf("YouTube publish failed for %s: %v", finalName, err)
			}
		}()
	}
	return videoURL, nil
}

// Subtitle burns translated segments into the uploaded video as hard
// subtitles.
func (o *Orchestrator) Subtitle(ctx context.Context, video io.Reader, segments []types.TranscriptSegment) (string, error) {
	ws, err := NewWorkspace(o.tempDir)
	if err != nil {
		return "", err
	}
	defer ws.Cleanup()

	token := Token()
	videoPath := ws.Path("video_" + token + ".mp4")
	if err := saveStream(videoPath, video); err != nil {
		return "", fmt.Errorf("failed to save uploaded video: %w", err)
	}

	subtitledPath := ws.Path("subtitled_" + token + ".mp4")
	if err := o.media.BurnSubtitles(ctx, videoPath, segments, subtitledPath); err != nil {
		return "", err
	}

	finalName := "subtitled_" + token + ".mp4"
	if err := o.publishArtifact(ctx, subtitledPath, finalName, "video/mp4"); err != nil {
		return "", err
	}
	return "/output/" + finalName, nil
}

// loadIfSet returns the stored session when an id is given, nil when the
// caller runs a stage without session tracking.
func (o *Orchestrator) loadIfSet(ctx context.Context, sessionID string) (*types.PipelineSession, error) {
	if sessionID == "" {
		return nil, nil
	}
	return o.store.Load(ctx, sessionID)
}

// publishArtifact copies a finished artifact into the public output
// directory and replicates it to S3 when configured.
func (o *Orchestrator) publishArtifact(ctx context.Context, srcPath, name, contentType string) error {
	if err := os.MkdirAll(o.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	dstPath := filepath.Join(o.outputDir, name)
	if err := copyFile(srcPath, dstPath); err != nil {
		return fmt.Errorf("failed to publish artifact: %w", err)
	}

	if o.s3 != nil && o.s3Bucket != "" {
		key := o.s3Prefix + "output/" + name
		if exists, err := o.s3.Exists(ctx, o.s3Bucket, key); err == nil && exists {
			// Timestamp tokens make names unique, so an existing key
			// means this artifact was already replicated.
			return nil
		}

		file, err := os.Open(dstPath)
		if err != nil {
			return fmt.Errorf("failed to open artifact for replication: %w", err)
		}
		defer file.Close()

		if err := o.s3.Put(ctx, o.s3Bucket, key, file, contentType, "public, max-age=300", ""); err != nil {
			// Replication is best effort; the local artifact is the
			// source of truth.
			log.Printf("S3 replication failed for %s: %v", name, err)
		}
	}
	return nil
}

// resolveOutputURL maps a /output URL back to its local path, refusing
// anything outside the output directory.
func (o *Orchestrator) resolveOutputURL(url string) (string, error) {
	name := strings.TrimPrefix(url, "/output/")
	if name == url || name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid output reference %q", url)
	}
	path := filepath.Join(o.outputDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("output artifact not found: %s", name)
	}
	return path, nil
}

func saveStream(path string, r io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, r)
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
