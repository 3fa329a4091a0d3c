package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"videodub/media"
	"videodub/pipeline"
	"videodub/synthesis"
	"videodub/transcription"
	"videodub/translation"
	"videodub/types"
)

// Pipeline is the orchestrator surface the HTTP layer depends on.
type Pipeline interface {
	CreateSession(ctx context.Context) (*types.PipelineSession, error)
	GetSession(ctx context.Context, id string) (*types.PipelineSession, error)
	Transcribe(ctx context.Context, sessionID, sourceName string, video io.Reader, opts transcription.Options) (*types.Transcript, error)
	DetectLanguage(ctx context.Context, video io.Reader) (string, error)
	Translate(ctx context.Context, sessionID, text, targetLanguage string) (string, error)
	TranslateSegments(ctx context.Context, segments []types.TranscriptSegment, targetLanguage string) ([]types.TranscriptSegment, error)
	Synthesize(ctx context.Context, sessionID, text string, segments []types.TranscriptSegment, settings types.VoiceSettings) (string, float64, error)
	Dub(ctx context.Context, sessionID string, video io.Reader, audioURL string) (string, error)
	Subtitle(ctx context.Context, video io.Reader, segments []types.TranscriptSegment) (string, error)
}

// Server handles HTTP API requests for the dubbing pipeline.
type Server struct {
	pipeline Pipeline
}

// NewServer creates a new API server instance.
func NewServer(p Pipeline) *Server {
	return &Server{pipeline: p}
}

// RegisterPipelineRoutes wires the pipeline endpoints onto the engine.
func RegisterPipelineRoutes(r *gin.Engine, s *Server) {
	r.POST("/api/sessions", s.handleCreateSession)
	r.GET("/api/sessions/:id", s.handleGetSession)
	r.POST("/api/transcribe", s.handleTranscribe)
	r.POST("/api/detect-language", s.handleDetectLanguage)
	r.POST("/api/translate", s.handleTranslate)
	r.POST("/api/synthesize", s.handleSynthesize)
	r.POST("/api/dub", s.handleDub)
	r.POST("/api/subtitle", s.handleSubtitle)
}

func (s *Server) handleCreateSession(c *gin.Context) {
	session, err := s.pipeline.CreateSession(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": session.ID, "state": session.State})
}

func (s *Server) handleGetSession(c *gin.Context) {
	session, err := s.pipeline.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pipeline.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// handleTranscribe accepts a multipart video upload and returns its
// transcription. Optional form fields: sessionId, language (ISO 639-1
// hint). Query segmented=true requests timestamped segments.
func (s *Server) handleTranscribe(c *gin.Context) {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No video file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer file.Close()

	opts := transcription.Options{
		LanguageHint: c.PostForm("language"),
		Segmented:    c.Query("segmented") == "true",
	}

	transcript, err := s.pipeline.Transcribe(c.Request.Context(), c.PostForm("sessionId"), fileHeader.Filename, file, opts)
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := gin.H{"transcript": transcript.Text}
	if transcript.Language != "" {
		resp["language"] = transcript.Language
	}
	if opts.Segmented {
		resp["segments"] = transcript.Segments
	}
	c.JSON(http.StatusOK, resp)
}

// handleDetectLanguage reports the spoken language of an uploaded video
// as an ISO 639-1 code.
func (s *Server) handleDetectLanguage(c *gin.Context) {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No video file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer file.Close()

	language, err := s.pipeline.DetectLanguage(c.Request.Context(), file)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": language})
}

type translateRequest struct {
	Text           string                    `json:"text"`
	Segments       []types.TranscriptSegment `json:"segments"`
	TargetLanguage string                    `json:"targetLanguage"`
	SessionID      string                    `json:"sessionId"`
}

// handleTranslate translates edited text (or a segment batch) into the
// target language.
func (s *Server) handleTranslate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}
	if req.TargetLanguage == "" || (req.Text == "" && len(req.Segments) == 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing text or target language"})
		return
	}

	if len(req.Segments) > 0 {
		segments, err := s.pipeline.TranslateSegments(c.Request.Context(), req.Segments, req.TargetLanguage)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"segments": segments})
		return
	}

	translated, err := s.pipeline.Translate(c.Request.Context(), req.SessionID, req.Text, req.TargetLanguage)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"translatedText": translated})
}

type voiceSettingsPayload struct {
	Type       string  `json:"type"`
	Pitch      float64 `json:"pitch"`
	Speed      float64 `json:"speed"`
	SampleBlob []byte  `json:"sampleBlob"`
}

type synthesizeRequest struct {
	Text          string                    `json:"text"`
	Segments      []types.TranscriptSegment `json:"segments"`
	VoiceSettings voiceSettingsPayload      `json:"voiceSettings"`
	SessionID     string                    `json:"sessionId"`
}

// handleSynthesize renders translated text to speech and returns the
// public URL of the finished audio.
func (s *Server) handleSynthesize(c *gin.Context) {
	var req synthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}
	if req.Text == "" && len(req.Segments) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No text provided"})
		return
	}

	settings := types.VoiceSettings{
		Type:       types.VoiceType(req.VoiceSettings.Type),
		Pitch:      req.VoiceSettings.Pitch,
		Speed:      req.VoiceSettings.Speed,
		SampleBlob: req.VoiceSettings.SampleBlob,
	}
	if settings.Type == "" {
		settings.Type = types.VoiceDefault
	}
	if err := settings.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	audioURL, duration, err := s.pipeline.Synthesize(c.Request.Context(), req.SessionID, req.Text, req.Segments, settings)
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := gin.H{"audioUrl": audioURL}
	if duration > 0 {
		resp["duration"] = duration
	}
	c.JSON(http.StatusOK, resp)
}

// handleDub remuxes previously synthesized audio into an uploaded video.
func (s *Server) handleDub(c *gin.Context) {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No video file provided"})
		return
	}
	audioURL := c.PostForm("audioUrl")
	if audioURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No audio URL provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer file.Close()

	videoURL, err := s.pipeline.Dub(c.Request.Context(), c.PostForm("sessionId"), file, audioURL)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videoUrl": videoURL})
}

// handleSubtitle burns subtitle segments into an uploaded video. The
// segments arrive as a JSON array string in the multipart form.
func (s *Server) handleSubtitle(c *gin.Context) {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No video file provided"})
		return
	}

	var segments []types.TranscriptSegment
	if raw := c.PostForm("segments"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &segments); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid segments payload"})
			return
		}
	}
	if len(segments) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No segments provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer file.Close()

	videoURL, err := s.pipeline.Subtitle(c.Request.Context(), file, segments)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videoUrl": videoURL})
}

// fail logs the full error server-side and returns a sanitized message.
// Provider and tool errors can embed API keys or local paths in their
// detail, so only the stage-level summary goes back to the browser.
func (s *Server) fail(c *gin.Context, err error) {
	log.Printf("request failed: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": sanitizeError(err)})
}

func sanitizeError(err error) string {
	var toolErr *media.ToolError
	if errors.As(err, &toolErr) {
		return "Media processing failed"
	}
	var transcribeErr *transcription.Error
	if errors.As(err, &transcribeErr) {
		return "Failed to transcribe audio"
	}
	var translateErr *translation.Error
	if errors.As(err, &translateErr) {
		return "Failed to translate text"
	}
	var synthErr *synthesis.Error
	if errors.As(err, &synthErr) {
		return "Failed to generate speech"
	}
	if errors.Is(err, pipeline.ErrSessionNotFound) {
		return "Session not found"
	}
	return "Internal server error"
}
