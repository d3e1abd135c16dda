package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"vidcap/internal/delivery"
	"vidcap/internal/history"
	"vidcap/internal/httpkit"
	apperrors "vidcap/internal/pkg/errors"
	"vidcap/internal/pkg/logger"
	"vidcap/internal/probe"
	"vidcap/internal/renderer"
	"vidcap/internal/renderjob"
)

// PostRender renders a new caption video from scratch.
func (h *Handler) PostRender(w http.ResponseWriter, r *http.Request) {
	var req renderjob.RenderRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		// A non-array `lines` fails decoding; same caller mistake, same code.
		httpkit.WriteErr(w, http.StatusBadRequest, "lines_required")
		return
	}

	job, err := renderjob.NormalizeRender(req)
	if err != nil {
		h.writeValidation(w, err)
		return
	}

	h.runJob(w, r, job, "video", "render_failed")
}

// PostRenderEdit overlays captions (and optional music, voiceover, logo and
// brand color) onto an existing video.
func (h *Handler) PostRenderEdit(w http.ResponseWriter, r *http.Request) {
	var req renderjob.EditRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, http.StatusBadRequest, "videoUrl_required")
		return
	}

	job, err := renderjob.NormalizeEdit(r.Context(), req, func(ctx context.Context, videoURL string) float64 {
		return probe.Resolve(ctx, h.prober, videoURL)
	})
	if err != nil {
		h.writeValidation(w, err)
		return
	}

	h.runJob(w, r, job, "edit", "render_edit_failed")
}

// runJob drives the shared bundle → select → render → deliver pipeline and
// maps the outcome onto the response.
func (h *Handler) runJob(w http.ResponseWriter, r *http.Request, job *renderjob.Job, prefix, failCode string) {
	jobID := history.NewID()
	ctx := logger.ContextWithJobID(r.Context(), jobID)
	log := h.log.FromContext(ctx)

	if err := h.history.Start(ctx, jobID, string(job.Template)); err != nil {
		log.Warn("history record failed", "error", err.Error())
	}

	log.Info("render job started", "template", string(job.Template))
	start := time.Now()

	outputPath, outcome, err := h.pipeline(ctx, job, prefix)
	if err != nil {
		_ = h.history.Finish(ctx, jobID, history.StatusFailed, outputPath, "", err.Error())
		h.writeFailure(w, ctx, failCode, err)
		return
	}

	if err := h.history.Finish(ctx, jobID, history.StatusDone, outputPath, string(outcome.Kind), ""); err != nil {
		log.Warn("history record failed", "error", err.Error())
	}
	log.Info("render job completed",
		"outcome", string(outcome.Kind),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	resp := map[string]any{
		"status":     "ok",
		"outputPath": outputPath,
	}
	switch outcome.Kind {
	case delivery.KindCloud:
		resp["videoUrl"] = outcome.VideoURL
	case delivery.KindDrive:
		resp["webViewLink"] = outcome.WebViewLink
		resp["webContentLink"] = outcome.WebContentLink
	case delivery.KindSkipped:
		resp["driveUpload"] = "skipped"
		resp["message"] = outcome.SkipMessage
	}

	httpkit.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) pipeline(ctx context.Context, job *renderjob.Job, prefix string) (string, delivery.Outcome, error) {
	serveURL, err := h.bundle.Get(ctx)
	if err != nil {
		return "", delivery.Outcome{}, apperrors.Wrap(err, "render.bundle", "bundling failed")
	}

	comp, err := h.engine.SelectComposition(ctx, serveURL, string(job.Template), job)
	if err != nil {
		return "", delivery.Outcome{}, apperrors.Wrap(err, "render.select", "composition selection failed")
	}

	if err := os.MkdirAll(h.outDir, 0o755); err != nil {
		return "", delivery.Outcome{}, apperrors.Wrap(err, "render.outdir", "creating output directory failed")
	}
	outputPath := filepath.Join(h.outDir, fmt.Sprintf("%s-%d.mp4", prefix, time.Now().UnixMilli()))

	err = h.engine.Render(ctx, renderer.RenderRequest{
		ServeURL:       serveURL,
		CompositionID:  comp.ID,
		Codec:          "h264",
		OutputLocation: outputPath,
		InputProps:     job,
	})
	if err != nil {
		return outputPath, delivery.Outcome{}, apperrors.Wrap(err, "render.invoke", "render failed")
	}

	outcome, err := h.dispatcher.Deliver(ctx, outputPath)
	if err != nil {
		return outputPath, delivery.Outcome{}, err
	}

	return outputPath, outcome, nil
}

func (h *Handler) writeValidation(w http.ResponseWriter, err error) {
	code := "invalid_request"
	var e *apperrors.Error
	if apperrors.As(err, &e) {
		code = e.Message
	}
	httpkit.WriteErr(w, http.StatusBadRequest, code)
}

// writeFailure logs the error with its stack and answers 500. The original
// caller message is included so failures are diagnosable from the client
// side too.
func (h *Handler) writeFailure(w http.ResponseWriter, ctx context.Context, failCode string, err error) {
	log := h.log.FromContext(ctx)

	args := []any{"error", err.Error()}
	var e *apperrors.Error
	if apperrors.As(err, &e) {
		args = append(args, "op", e.Op, "code", string(e.Code))
		if trace := e.StackTrace(); trace != "" {
			args = append(args, "stack", trace)
		}
	}
	log.Error("render pipeline failed", args...)

	httpkit.WriteErrMessage(w, http.StatusInternalServerError, failCode, err.Error())
}
