package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"videodub/types"
)

// BurnSubtitles renders segment text onto the video as hard subtitles,
// copying the audio stream unchanged.
func (x *Executor) BurnSubtitles(ctx context.Context, videoPath string, segments []types.TranscriptSegment, outputPath string) error {
	if len(segments) == 0 {
		return fmt.Errorf("no segments to render")
	}

	srtPath := filepath.Join(filepath.Dir(outputPath), fmt.Sprintf("subtitles_%d.srt", time.Now().UnixNano()))
	if err := WriteSRT(segments, srtPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	defer os.Remove(srtPath)

	stream := ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{
			"vf":  "subtitles=" + srtPath,
			"c:a": "copy",
		}).
		OverWriteOutput()
	return x.run(ctx, stream)
}

// WriteSRT writes segments as a SubRip subtitle file.
func WriteSRT(segments []types.TranscriptSegment, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	for i, seg := range segments {
		fmt.Fprintf(file, "%d\n", i+1)
		fmt.Fprintf(file, "%s --> %s\n", formatSRTTimestamp(seg.Start), formatSRTTimestamp(seg.End))
		fmt.Fprintf(file, "%s\n\n", seg.Text)
	}

	return nil
}

// formatSRTTimestamp converts seconds to SRT format (HH:MM:SS,mmm).
func formatSRTTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
