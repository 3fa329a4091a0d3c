package types

import (
	"fmt"
	"time"

	"videodub/config"
)

// TranscriptSegment is the minimal span that translation and synthesis
// can process independently. Start/End are seconds into the source audio
// and stay fixed for the lifetime of a pipeline run: segment i always
// refers to the same temporal span, whatever language its text is in.
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the output of the transcription stage. Segments is empty
// when segmentation was not requested.
type Transcript struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments,omitempty"`
	Language string              `json:"language,omitempty"`
}

// VoiceType selects the synthesis voice.
type VoiceType string

const (
	VoiceDefault VoiceType = "default"
	VoiceCustom  VoiceType = "custom"
	VoiceMale1   VoiceType = "male1"
	VoiceFemale1 VoiceType = "female1"
)

// VoiceSettings controls speech synthesis and post-processing.
// SampleBlob is required when Type is "custom"; the sample is stored but
// does not alter the synthesized voice (cloning is not implemented).
type VoiceSettings struct {
	Type       VoiceType `json:"type"`
	Pitch      float64   `json:"pitch"`
	Speed      float64   `json:"speed"`
	SampleBlob []byte    `json:"sampleBlob,omitempty"`
}

// Validate checks voice type and slider ranges.
func (v VoiceSettings) Validate() error {
	switch v.Type {
	case VoiceDefault, VoiceCustom, VoiceMale1, VoiceFemale1, "":
	default:
		return fmt.Errorf("unknown voice type %q", v.Type)
	}
	if v.Type == VoiceCustom && len(v.SampleBlob) == 0 {
		return fmt.Errorf("custom voice requires a sample")
	}
	if v.Pitch < config.PitchMin || v.Pitch > config.PitchMax {
		return fmt.Errorf("pitch %.2f outside [%.0f, %.0f]", v.Pitch, config.PitchMin, config.PitchMax)
	}
	if v.Speed != 0 && (v.Speed < config.SpeedMin || v.Speed > config.SpeedMax) {
		return fmt.Errorf("speed %.2f outside [%.1f, %.1f]", v.Speed, config.SpeedMin, config.SpeedMax)
	}
	return nil
}

// NeedsPostProcessing reports whether the synthesized audio must be run
// through the pitch/speed filter chain.
func (v VoiceSettings) NeedsPostProcessing() bool {
	return v.Pitch != 0 || (v.Speed != 0 && v.Speed != 1)
}

// SessionState is one of the four ordered pipeline states.
type SessionState string

const (
	StateUploaded    SessionState = "uploaded"
	StateTranscribed SessionState = "transcribed"
	StateTranslated  SessionState = "translated"
	StateSynthesized SessionState = "synthesized"
)

// PipelineSession aggregates per-upload pipeline state. Fields populate
// monotonically left to right; re-applying an earlier stage invalidates
// everything derived from it.
type PipelineSession struct {
	ID        string       `json:"id"`
	State     SessionState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	SourceName       string         `json:"source_name,omitempty"`
	Transcript       *Transcript    `json:"transcript,omitempty"`
	EditedTranscript string         `json:"edited_transcript,omitempty"`
	TargetLanguage   string         `json:"target_language,omitempty"`
	TranslatedText   string         `json:"translated_text,omitempty"`
	Voice            *VoiceSettings `json:"voice,omitempty"`
	FinalAudioURL    string         `json:"final_audio_url,omitempty"`
	DubbedVideoURL   string         `json:"dubbed_video_url,omitempty"`
}

// NewSession returns a fresh session in the Uploaded state.
func NewSession(id string) *PipelineSession {
	now := time.Now().UTC()
	return &PipelineSession{
		ID:        id,
		State:     StateUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyTranscript records a transcription result and invalidates every
// downstream field.
func (s *PipelineSession) ApplyTranscript(t *Transcript) {
	s.Transcript = t
	s.EditedTranscript = ""
	s.TranslatedText = ""
	s.FinalAudioURL = ""
	s.DubbedVideoURL = ""
	s.State = StateTranscribed
	s.touch()
}

// ApplyTranslation records the caller-edited transcript and its
// translation. The edited text is authoritative; the original transcript
// is never re-fetched. Any previously synthesized audio is invalidated.
func (s *PipelineSession) ApplyTranslation(edited, targetLanguage, translated string) {
	s.EditedTranscript = edited
	s.TargetLanguage = targetLanguage
	s.TranslatedText = translated
	s.FinalAudioURL = ""
	s.DubbedVideoURL = ""
	s.State = StateTranslated
	s.touch()
}

// ApplySynthesis records the final audio artifact.
func (s *PipelineSession) ApplySynthesis(voice VoiceSettings, audioURL string) {
	v := voice
	s.Voice = &v
	s.FinalAudioURL = audioURL
	s.DubbedVideoURL = ""
	s.State = StateSynthesized
	s.touch()
}

// ApplyDub records the remuxed video artifact.
func (s *PipelineSession) ApplyDub(videoURL string) {
	s.DubbedVideoURL = videoURL
	s.touch()
}

func (s *PipelineSession) touch() {
	s.UpdatedAt = time.Now().UTC()
}
