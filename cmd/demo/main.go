package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"videodub/demo/client"
	"videodub/demo/tui"
	"videodub/types"
)

func main() {
	video := flag.String("video", "", "path to the video file to dub")
	lang := flag.String("lang", "ms", "target language code (ISO 639-1)")
	voice := flag.String("voice", "default", "voice type: default, male1, female1")
	pitch := flag.Float64("pitch", 0, "pitch adjustment in semitone halves")
	speed := flag.Float64("speed", 1, "playback speed factor")
	server := flag.String("server", "", "dubbing server base URL")
	flag.Parse()

	_ = godotenv.Load()

	if *video == "" {
		fmt.Println("usage: demo -video <file.mp4> [-lang ms] [-voice default] [-pitch 0] [-speed 1] [-server http://localhost:8080]")
		os.Exit(1)
	}
	if _, err := os.Stat(*video); err != nil {
		fmt.Printf("cannot read video: %v\n", err)
		os.Exit(1)
	}

	serverURL := *server
	if serverURL == "" {
		serverURL = client.GetEnvOrDefault("DUB_SERVER_URL", "http://localhost:8080")
	}

	settings := types.VoiceSettings{
		Type:  types.VoiceType(*voice),
		Pitch: *pitch,
		Speed: *speed,
	}
	if err := settings.Validate(); err != nil {
		fmt.Printf("invalid voice settings: %v\n", err)
		os.Exit(1)
	}

	m := tui.NewModel(serverURL, *video, *lang, settings)
	program := tea.NewProgram(m)

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
