package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"videodub/config"
)

// ToolError reports a failed external tool invocation. The stderr tail is
// kept for server-side logs; API layers should not expose it verbatim.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Executor wraps ffmpeg/ffprobe invocations. Every operation spawns one
// external process and resolves on its exit status; the process is killed
// when the caller's context is cancelled.
type Executor struct {
	sampleRate int
	bitrate    string
	codec      string
}

// NewExecutor returns an Executor with the fixed extraction parameters.
func NewExecutor() *Executor {
	return &Executor{
		sampleRate: config.SampleRate,
		bitrate:    config.AudioBitrate,
		codec:      config.AudioCodec,
	}
}

// ExtractAudio demuxes the video's audio track into an mp3 at the fixed
// sample rate and bitrate. The source video is left untouched.
func (x *Executor) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	stream := ffmpeg.Input(videoPath).
		Output(audioPath, ffmpeg.KwArgs{
			"vn":     "",
			"acodec": x.codec,
			"ab":     x.bitrate,
			"ar":     strconv.Itoa(x.sampleRate),
		}).
		OverWriteOutput()
	return x.run(ctx, stream)
}

// TransformAudio applies a speed change and/or a pitch shift. The pitch
// shift resamples and resamples back, which also changes duration;
// callers accept this coupling. Filters compose in a fixed order.
func (x *Executor) TransformAudio(ctx context.Context, inputPath, outputPath string, pitch, speed float64) error {
	kwargs := ffmpeg.KwArgs{}
	if chain := AudioFilter(pitch, speed); chain != "" {
		kwargs["af"] = chain
	}
	stream := ffmpeg.Input(inputPath).Output(outputPath, kwargs).OverWriteOutput()
	return x.run(ctx, stream)
}

// AudioFilter builds the -af chain for a pitch/speed transform. Speed
// uses atempo; pitch converts the slider value to semitones and shifts by
// resampling. Returns "" when no transform is requested.
func AudioFilter(pitch, speed float64) string {
	var filters []string
	if speed != 0 && speed != 1 {
		filters = append(filters, fmt.Sprintf("atempo=%g", speed))
	}
	if pitch != 0 {
		semitones := pitch / 2
		filters = append(filters, fmt.Sprintf(
			"asetrate=%d*2^(%g/12),aresample=%d",
			config.SampleRate, semitones, config.SampleRate))
	}
	return strings.Join(filters, ",")
}

// Concatenate joins audio artifacts in listed order using the concat
// demuxer with stream copy. Fails if codecs are incompatible.
func (x *Executor) Concatenate(ctx context.Context, paths []string, outputPath string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no inputs to concatenate")
	}

	listPath := filepath.Join(filepath.Dir(outputPath), fmt.Sprintf("filelist_%d.txt", time.Now().UnixNano()))
	if err := writeConcatList(listPath, paths); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	defer os.Remove(listPath)

	stream := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(outputPath, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput()
	return x.run(ctx, stream)
}

// writeConcatList writes a concat-demuxer file list, one `file 'path'`
// line per input.
func writeConcatList(listPath string, paths []string) error {
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "file '%s'\n", p)
	}
	return os.WriteFile(listPath, []byte(b.String()), 0o644)
}

// ReplaceAudio remuxes the video stream of videoPath with audioPath as
// the sole audio track, copying the video stream without re-encoding.
func (x *Executor) ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	video := ffmpeg.Input(videoPath)
	audio := ffmpeg.Input(audioPath)
	stream := ffmpeg.Output([]*ffmpeg.Stream{video, audio}, outputPath, ffmpeg.KwArgs{
		"map":      []string{"0:v", "1:a"},
		"c:v":      "copy",
		"shortest": "",
	}).OverWriteOutput()
	return x.run(ctx, stream)
}

// ProbeDuration returns the media duration in seconds.
func (x *Executor) ProbeDuration(ctx context.Context, path string) (float64, error) {
	var out string
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		out, err = ffmpeg.ProbeWithTimeout(path, time.Until(deadline), ffmpeg.KwArgs{})
	} else {
		out, err = ffmpeg.Probe(path)
	}
	if err != nil {
		return 0, &ToolError{Tool: "ffprobe", ExitCode: -1, Stderr: out, Err: err}
	}
	return parseProbeDuration(out)
}

// parseProbeDuration extracts format.duration from ffprobe JSON output.
func parseProbeDuration(probeJSON string) (float64, error) {
	var parsed struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(probeJSON), &parsed); err != nil {
		return 0, &ToolError{Tool: "ffprobe", ExitCode: 0, Stderr: probeJSON, Err: err}
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(parsed.Format.Duration), 64)
	if err != nil {
		return 0, &ToolError{Tool: "ffprobe", ExitCode: 0, Stderr: probeJSON, Err: err}
	}
	return duration, nil
}

// run compiles the stream into a command and executes it under ctx, so a
// session timeout terminates an in-flight transform. Diagnostic output is
// captured for logging only; success or failure follows the exit status.
func (x *Executor) run(ctx context.Context, stream *ffmpeg.Stream) error {
	compiled := stream.Compile()
	cmd := exec.CommandContext(ctx, compiled.Args[0], compiled.Args[1:]...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		tail := stderrTail(stderr.String())
		log.Printf("ffmpeg failed (exit %d): %s", exitCode, tail)
		return &ToolError{Tool: "ffmpeg", ExitCode: exitCode, Stderr: tail, Err: err}
	}
	return nil
}

// stderrTail keeps the last few lines of tool output for diagnostics.
func stderrTail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
