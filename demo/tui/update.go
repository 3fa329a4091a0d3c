package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case TranscribeDoneMsg:
		return m.handleTranscribeDone(msg)
	case TranslateDoneMsg:
		return m.handleTranslateDone(msg)
	case SynthesizeDoneMsg:
		return m.handleSynthesizeDone(msg)
	case DubDoneMsg:
		return m.handleDubDone(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "d", "D":
		if m.State == StateIdle {
			m.State = StateTranscribing
			m = m.AddLog("Uploading " + m.VideoPath)
			return m, transcribeCmd(m.Client, m.VideoPath)
		}
	}
	return m, nil
}

// handleTranscribeDone processes transcription completion
func (m Model) handleTranscribeDone(msg TranscribeDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.Transcript = msg.Text
	m.State = StateTranslating
	m = m.AddLog(fmt.Sprintf("Transcribed %d characters", len(msg.Text)))
	return m, translateCmd(m.Client, m.Transcript, m.TargetLanguage)
}

// handleTranslateDone processes translation completion
func (m Model) handleTranslateDone(msg TranslateDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.Translated = msg.Text
	m.State = StateSynthesizing
	m = m.AddLog("Translation complete")
	return m, synthesizeCmd(m.Client, m.Translated, m.Voice)
}

// handleSynthesizeDone processes synthesis completion
func (m Model) handleSynthesizeDone(msg SynthesizeDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.AudioURL = msg.AudioURL
	m.State = StateDubbing
	m = m.AddLog("Audio ready at " + msg.AudioURL)
	return m, dubCmd(m.Client, m.VideoPath, m.AudioURL)
}

// handleDubDone processes the finished dub
func (m Model) handleDubDone(msg DubDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.VideoURL = msg.VideoURL
	m.State = StateComplete
	m = m.AddLog("Dubbed video ready at " + msg.VideoURL)
	return m, nil
}
