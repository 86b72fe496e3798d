package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	log "github.com/sirupsen/logrus"
)

// TranscodeParams describes one quality-variant pass. The compression tool is
// path-based, so both input and output must be real files.
type TranscodeParams struct {
	InputPath  string
	OutputPath string
	Quality    string // "720p" or "480p"
}

// ThumbnailParams describes a single-frame extraction.
type ThumbnailParams struct {
	InputPath  string
	OutputPath string
	Width      int
	SeekTime   float64 // seconds into the video
}

// qualityHeights maps quality labels to target frame heights. Width is left
// to ffmpeg (-2 keeps the aspect ratio and an even dimension).
var qualityHeights = map[string]int{
	"720p": 720,
	"480p": 480,
}

// FFmpeg runs transcode and thumbnail extraction through the ffmpeg binary.
type FFmpeg struct {
	bin string
}

// NewFFmpeg creates an FFmpeg runner. bin defaults to "ffmpeg" on PATH.
func NewFFmpeg(bin string) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin}
}

func transcodeArgs(p TranscodeParams) ([]string, error) {
	height, ok := qualityHeights[p.Quality]
	if !ok {
		return nil, fmt.Errorf("unsupported quality %q", p.Quality)
	}
	return []string{
		"-i", p.InputPath,
		"-vf", fmt.Sprintf("scale=-2:%d", height),
		"-c:v", "libx264",
		"-preset", "fast",
		"-c:a", "copy",
		"-y",
		p.OutputPath,
	}, nil
}

func thumbnailArgs(p ThumbnailParams) []string {
	return []string{
		"-ss", fmt.Sprintf("%g", p.SeekTime),
		"-i", p.InputPath,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:-2", p.Width),
		"-y",
		p.OutputPath,
	}
}

// TranscodeVideo produces one quality variant at OutputPath.
func (f *FFmpeg) TranscodeVideo(ctx context.Context, p TranscodeParams) error {
	args, err := transcodeArgs(p)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"quality": p.Quality, "input": p.InputPath}).Debug("Transcoding video")

	cmd := exec.CommandContext(ctx, f.bin, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg failed: %v: %s", err, string(output))
	}
	return nil
}

// ExtractThumbnail grabs one frame and returns the encoded JPEG bytes.
func (f *FFmpeg) ExtractThumbnail(ctx context.Context, p ThumbnailParams) ([]byte, error) {
	log.WithFields(log.Fields{"input": p.InputPath, "seek": p.SeekTime}).Debug("Extracting thumbnail")

	cmd := exec.CommandContext(ctx, f.bin, thumbnailArgs(p)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %v: %s", err, string(output))
	}

	data, err := os.ReadFile(p.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("read thumbnail output: %w", err)
	}
	return data, nil
}
