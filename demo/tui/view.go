package tui

import (
	"fmt"
	"strings"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	// Title
	b.WriteString(TitleStyle.Render("🎬 Video Dubbing Demo"))
	b.WriteString("\n\n")

	// Current state
	b.WriteString(m.getStateText())
	b.WriteString("\n\n")

	// Stage results so far
	if m.Transcript != "" {
		b.WriteString(InfoStyle.Render("📝 Transcript: " + preview(m.Transcript, 120)))
		b.WriteString("\n")
	}
	if m.Translated != "" {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("🌐 %s: %s", m.TargetLanguage, preview(m.Translated, 120))))
		b.WriteString("\n")
	}
	if m.AudioURL != "" {
		b.WriteString(InfoStyle.Render("🔊 Audio: " + m.AudioURL))
		b.WriteString("\n")
	}

	// Logs
	if len(m.Logs) > 0 {
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("📋 Recent Activity:"))
		b.WriteString("\n")
		for _, logMsg := range m.Logs {
			b.WriteString(InfoStyle.Render("   " + logMsg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Result
	if m.State == StateComplete {
		result := HighlightStyle.Render("Dubbed Video") + "\n\n" +
			fmt.Sprintf("Video: %s\nAudio: %s\n", m.VideoURL, m.AudioURL)
		b.WriteString(BoxStyle.Render(result))
		b.WriteString("\n\n")
	}

	// Help text
	if m.State == StateIdle {
		b.WriteString(InfoStyle.Render("Press 'd' to start | Press 'q' or Ctrl+C to quit"))
	} else if m.State != StateComplete {
		b.WriteString(InfoStyle.Render("Press 'q' or Ctrl+C to quit"))
	} else {
		b.WriteString(HighlightStyle.Render("Press 'q' or Ctrl+C to exit"))
	}

	return b.String()
}
