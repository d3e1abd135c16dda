// Package probe resolves video durations via ffprobe.
package probe

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Prober resolves the container duration of a video in seconds.
type Prober interface {
	DurationSeconds(ctx context.Context, videoRef string) (float64, error)
}

// FFProbe shells out to ffprobe. One process per call, no retry.
type FFProbe struct {
	bin string
}

func NewFFProbe(bin string) *FFProbe {
	if bin == "" {
		bin = "ffprobe"
	}
	return &FFProbe{bin: bin}
}

func (p *FFProbe) DurationSeconds(ctx context.Context, videoRef string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoRef,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}
