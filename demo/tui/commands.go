package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"videodub/demo/client"
	"videodub/types"
)

// transcribeCmd uploads the video and transcribes it
func transcribeCmd(c *client.Client, videoPath string) tea.Cmd {
	return func() tea.Msg {
		text, err := c.Transcribe(context.Background(), videoPath)
		return TranscribeDoneMsg{Text: text, Err: err}
	}
}

// translateCmd translates the transcript
func translateCmd(c *client.Client, text, targetLanguage string) tea.Cmd {
	return func() tea.Msg {
		translated, err := c.Translate(context.Background(), text, targetLanguage)
		return TranslateDoneMsg{Text: translated, Err: err}
	}
}

// synthesizeCmd renders the translated text to speech
func synthesizeCmd(c *client.Client, text string, voice types.VoiceSettings) tea.Cmd {
	return func() tea.Msg {
		audioURL, err := c.Synthesize(context.Background(), text, voice)
		return SynthesizeDoneMsg{AudioURL: audioURL, Err: err}
	}
}

// dubCmd muxes the synthesized audio back into the video
func dubCmd(c *client.Client, videoPath, audioURL string) tea.Cmd {
	return func() tea.Msg {
		videoURL, err := c.Dub(context.Background(), videoPath, audioURL)
		return DubDoneMsg{VideoURL: videoURL, Err: err}
	}
}
