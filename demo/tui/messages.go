package tui

// Messages for the tea program (one per pipeline stage)

// TranscribeDoneMsg is sent when transcription finishes
type TranscribeDoneMsg struct {
	Text string
	Err  error
}

// TranslateDoneMsg is sent when translation finishes
type TranslateDoneMsg struct {
	Text string
	Err  error
}

// SynthesizeDoneMsg is sent when speech synthesis finishes
type SynthesizeDoneMsg struct {
	AudioURL string
	Err      error
}

// DubDoneMsg is sent when the dubbed video is ready
type DubDoneMsg struct {
	VideoURL string
	Err      error
}
