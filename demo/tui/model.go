package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"videodub/demo/client"
	"videodub/types"
)

// State represents the demo state machine
type State string

const (
	StateIdle         State = "idle"
	StateTranscribing State = "transcribing"
	StateTranslating  State = "translating"
	StateSynthesizing State = "synthesizing"
	StateDubbing      State = "dubbing"
	StateComplete     State = "complete"
	StateError        State = "error"
)

// Model drives the demo: one video through the whole pipeline
type Model struct {
	Client *client.Client

	VideoPath      string
	TargetLanguage string
	Voice          types.VoiceSettings

	State      State
	Transcript string
	Translated string
	AudioURL   string
	VideoURL   string
	Logs       []string
	Err        error
}

// NewModel creates a new TUI model
func NewModel(serverURL, videoPath, targetLanguage string, voice types.VoiceSettings) Model {
	return Model{
		Client:         client.NewClient(serverURL),
		VideoPath:      videoPath,
		TargetLanguage: targetLanguage,
		Voice:          voice,
		State:          StateIdle,
		Logs:           make([]string, 0),
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return nil
}

// AddLog appends a log line, keeping the most recent few
func (m Model) AddLog(msg string) Model {
	m.Logs = append(m.Logs, msg)
	if len(m.Logs) > 8 {
		m.Logs = m.Logs[len(m.Logs)-8:]
	}
	return m
}

// getStateText returns the appropriate state message
func (m Model) getStateText() string {
	switch m.State {
	case StateIdle:
		return HighlightStyle.Render("👋 Ready to dub!") + "\n\n" +
			InfoStyle.Render("Press 'd' to run the pipeline")
	case StateTranscribing:
		return StatusStyle.Render("🎙  Extracting audio and transcribing...")
	case StateTranslating:
		return StatusStyle.Render(fmt.Sprintf("🌐 Translating into %s...", m.TargetLanguage))
	case StateSynthesizing:
		return StatusStyle.Render("🔊 Synthesizing speech...")
	case StateDubbing:
		return StatusStyle.Render("🎬 Muxing dubbed audio into video...")
	case StateComplete:
		return HighlightStyle.Render("✅ COMPLETE")
	case StateError:
		errMsg := "Unknown error"
		if m.Err != nil {
			errMsg = m.Err.Error()
		}
		return ErrorStyle.Render(fmt.Sprintf("❌ Error: %v", errMsg))
	default:
		return ""
	}
}

// preview truncates long text for display
func preview(text string, max int) string {
	if len(text) > max {
		return text[:max-3] + "..."
	}
	return text
}
