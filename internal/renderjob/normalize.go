package renderjob

import (
	"context"
	"math"
	"strings"

	"vidcap/internal/pkg/errors"
)

// RenderRequest is the body of POST /render.
type RenderRequest struct {
	Lines []string `json:"lines"`
}

// EditRequest is the body of POST /render-edit.
type EditRequest struct {
	VideoURL        string   `json:"videoUrl"`
	Lines           []string `json:"lines"`
	DurationSeconds float64  `json:"durationSeconds"`
	MusicURL        string   `json:"musicUrl"`
	VoiceoverURL    string   `json:"voiceoverUrl"`
	LogoURL         string   `json:"logoUrl"`
	PrimaryColor    string   `json:"primaryColor"`
}

// DurationFunc resolves a video's duration in seconds. It must always
// return a usable positive value (see probe.Resolve).
type DurationFunc func(ctx context.Context, videoURL string) float64

// NormalizeRender validates a new-video request.
func NormalizeRender(req RenderRequest) (*Job, error) {
	if len(req.Lines) == 0 {
		return nil, errors.Validation("lines_required")
	}
	return &Job{
		Template: TemplateSimpleVideo,
		Lines:    req.Lines,
	}, nil
}

// NormalizeEdit validates an edit request. The duration resolver runs only
// when the caller did not supply a positive durationSeconds.
func NormalizeEdit(ctx context.Context, req EditRequest, resolve DurationFunc) (*Job, error) {
	videoURL := strings.TrimSpace(req.VideoURL)
	if videoURL == "" {
		return nil, errors.Validation("videoUrl_required")
	}

	lines := req.Lines
	if len(lines) == 0 {
		// The composition always needs at least one caption slot.
		lines = []string{""}
	}

	seconds := req.DurationSeconds
	if !(seconds > 0) {
		seconds = resolve(ctx, videoURL)
	}

	return &Job{
		Template:         TemplateEditVideo,
		Lines:            lines,
		VideoURL:         videoURL,
		DurationInFrames: int(math.Ceil(seconds * FramesPerSecond)),
		MusicURL:         strings.TrimSpace(req.MusicURL),
		VoiceoverURL:     strings.TrimSpace(req.VoiceoverURL),
		LogoURL:          strings.TrimSpace(req.LogoURL),
		PrimaryColor:     strings.TrimSpace(req.PrimaryColor),
	}, nil
}
