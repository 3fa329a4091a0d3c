package config

import "time"

// Audio Processing Constants
const (
	// SampleRate is the fixed sample rate for extracted and modified audio
	SampleRate = 44100

	// AudioCodec is the encoder used when demuxing audio from video
	AudioCodec = "libmp3lame"

	// AudioBitrate is the fixed bitrate for extracted audio
	AudioBitrate = "128k"

	// PitchMin and PitchMax bound the user-facing pitch adjustment
	PitchMin = -10.0
	PitchMax = 10.0

	// SpeedMin and SpeedMax bound the user-facing speed adjustment
	SpeedMin = 0.5
	SpeedMax = 2.0
)

// Upload Constants
const (
	// MaxUploadBytes caps the size of an uploaded video (200 MB)
	MaxUploadBytes = 200 << 20
)

// Directory Constants
const (
	// DefaultTempDir is the scratch directory for per-request artifacts
	DefaultTempDir = "tmp"

	// DefaultOutputDir is the publicly servable directory for final artifacts
	DefaultOutputDir = "public/output"
)

// Session Constants
const (
	// DefaultSessionTTL is how long session state is retained in the store
	DefaultSessionTTL = 24 * time.Hour
)
