package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"vidcap/internal/delivery"
	apperrors "vidcap/internal/pkg/errors"
	"vidcap/internal/ports"
	"vidcap/internal/renderer"
)

// fakeEngine records calls and writes the output file on Render, standing in
// for the sidecar.
type fakeEngine struct {
	bundleCalls int
	bundleErr   error
	selectErr   error
	renderErr   error

	lastCompositionID string
	lastProps         []byte
	lastOutput        string
}

func (f *fakeEngine) Bundle(ctx context.Context) (string, error) {
	f.bundleCalls++
	if f.bundleErr != nil {
		return "", f.bundleErr
	}
	return "http://localhost:3000/serve", nil
}

func (f *fakeEngine) SelectComposition(ctx context.Context, serveURL, compositionID string, inputProps any) (renderer.Composition, error) {
	if f.selectErr != nil {
		return renderer.Composition{}, f.selectErr
	}
	f.lastCompositionID = compositionID
	f.lastProps, _ = json.Marshal(inputProps)
	return renderer.Composition{ID: compositionID, Width: 1080, Height: 1920, FPS: 30}, nil
}

func (f *fakeEngine) Render(ctx context.Context, req renderer.RenderRequest) error {
	if f.renderErr != nil {
		return f.renderErr
	}
	f.lastOutput = req.OutputLocation
	return os.WriteFile(req.OutputLocation, []byte("mp4"), 0o644)
}

type fakeUploader struct {
	name   string
	result ports.UploadResult
	err    error
	calls  int
}

func (f *fakeUploader) Name() string { return f.name }

func (f *fakeUploader) Upload(ctx context.Context, localPath string) (ports.UploadResult, error) {
	f.calls++
	if f.err != nil {
		return ports.UploadResult{}, f.err
	}
	return f.result, nil
}

type stubProber struct {
	sec   float64
	err   error
	calls int
}

func (s *stubProber) DurationSeconds(ctx context.Context, videoRef string) (float64, error) {
	s.calls++
	return s.sec, s.err
}

type env struct {
	h      *Handler
	engine *fakeEngine
	prober *stubProber
}

func newEnv(t *testing.T, cloud, drive ports.Uploader) *env {
	t.Helper()
	engine := &fakeEngine{}
	prober := &stubProber{sec: 30}
	h := New(Deps{
		Engine:     engine,
		Bundle:     renderer.NewBundleCache(engine),
		Dispatcher: delivery.NewDispatcher(cloud, drive, nil),
		Prober:     prober,
		OutDir:     t.TempDir(),
	})
	return &env{h: h, engine: engine, prober: prober}
}

func doJSON(t *testing.T, handler http.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return rec, resp
}

func TestPostRenderValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing lines", `{}`},
		{"empty lines", `{"lines":[]}`},
		{"non-array lines", `{"lines":"hello"}`},
		{"invalid json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, nil, nil)
			rec, resp := doJSON(t, e.h.PostRender, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if resp["error"] != "lines_required" {
				t.Errorf("expected error 'lines_required', got %v", resp["error"])
			}
			if e.engine.bundleCalls != 0 {
				t.Error("validation failure must not touch the render engine")
			}
		})
	}
}

func TestPostRenderEditValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing videoUrl", `{"lines":["a"]}`},
		{"blank videoUrl", `{"videoUrl":"   "}`},
		{"non-string videoUrl", `{"videoUrl":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, nil, nil)
			rec, resp := doJSON(t, e.h.PostRenderEdit, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if resp["error"] != "videoUrl_required" {
				t.Errorf("expected error 'videoUrl_required', got %v", resp["error"])
			}
			if e.engine.bundleCalls != 0 {
				t.Error("validation failure must not touch the render engine")
			}
		})
	}
}

func TestPostRenderLocalOnly(t *testing.T) {
	e := newEnv(t, nil, nil)
	rec, resp := doJSON(t, e.h.PostRender, `{"lines":["Hello","World"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %v", resp["status"])
	}

	outputPath, _ := resp["outputPath"].(string)
	if !strings.HasSuffix(outputPath, ".mp4") {
		t.Errorf("expected .mp4 output path, got %q", outputPath)
	}
	if !strings.Contains(outputPath, "video-") {
		t.Errorf("expected video- prefix, got %q", outputPath)
	}
	if _, err := os.Stat(outputPath); err != nil {
		t.Errorf("expected artifact to exist at %q: %v", outputPath, err)
	}
	for _, absent := range []string{"videoUrl", "webViewLink", "driveUpload"} {
		if _, ok := resp[absent]; ok {
			t.Errorf("expected no %s field in local-only response", absent)
		}
	}

	if e.engine.lastCompositionID != "SimpleVideo" {
		t.Errorf("expected SimpleVideo composition, got %s", e.engine.lastCompositionID)
	}
}

func TestPostRenderEditProps(t *testing.T) {
	t.Run("explicit duration skips probe", func(t *testing.T) {
		e := newEnv(t, nil, nil)
		rec, _ := doJSON(t, e.h.PostRenderEdit,
			`{"videoUrl":" https://cdn/x.mp4 ","lines":["a"],"durationSeconds":12.5}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if e.prober.calls != 0 {
			t.Error("probe must not run when durationSeconds is supplied")
		}

		var props map[string]any
		json.Unmarshal(e.engine.lastProps, &props)
		if props["durationInFrames"] != float64(375) {
			t.Errorf("expected 375 frames, got %v", props["durationInFrames"])
		}
		if props["videoUrl"] != "https://cdn/x.mp4" {
			t.Errorf("expected trimmed videoUrl, got %v", props["videoUrl"])
		}
	})

	t.Run("failed probe falls back to default", func(t *testing.T) {
		e := newEnv(t, nil, nil)
		e.prober.err = fmt.Errorf("ffprobe: exit status 1")
		rec, _ := doJSON(t, e.h.PostRenderEdit, `{"videoUrl":"https://cdn/x.mp4"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var props map[string]any
		json.Unmarshal(e.engine.lastProps, &props)
		if props["durationInFrames"] != float64(900) { // 30s default * 30fps
			t.Errorf("expected 900 frames, got %v", props["durationInFrames"])
		}
	})

	t.Run("empty lines become single empty caption", func(t *testing.T) {
		e := newEnv(t, nil, nil)
		doJSON(t, e.h.PostRenderEdit, `{"videoUrl":"https://cdn/x.mp4","lines":[],"durationSeconds":5}`)

		var props map[string]any
		json.Unmarshal(e.engine.lastProps, &props)
		lines, _ := props["lines"].([]any)
		if len(lines) != 1 || lines[0] != "" {
			t.Errorf("expected [''], got %v", props["lines"])
		}
		if e.engine.lastCompositionID != "EditVideo" {
			t.Errorf("expected EditVideo composition, got %s", e.engine.lastCompositionID)
		}
	})

	t.Run("blank optional fields are absent from props", func(t *testing.T) {
		e := newEnv(t, nil, nil)
		doJSON(t, e.h.PostRenderEdit,
			`{"videoUrl":"https://cdn/x.mp4","durationSeconds":5,"musicUrl":"   ","logoUrl":""}`)

		var props map[string]any
		json.Unmarshal(e.engine.lastProps, &props)
		for _, key := range []string{"musicUrl", "voiceoverUrl", "logoUrl", "primaryColor"} {
			if _, ok := props[key]; ok {
				t.Errorf("expected %s absent from props, got %v", key, props[key])
			}
		}
	})
}

func TestPostRenderCloudinaryDelivery(t *testing.T) {
	cloud := &fakeUploader{name: "cloudinary", result: ports.UploadResult{URL: "https://res.cloudinary/v.mp4"}}
	drive := &fakeUploader{name: "gdrive"}
	e := newEnv(t, cloud, drive)

	rec, resp := doJSON(t, e.h.PostRender, `{"lines":["Hi"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp["videoUrl"] != "https://res.cloudinary/v.mp4" {
		t.Errorf("expected videoUrl in response, got %v", resp["videoUrl"])
	}
	if drive.calls != 0 {
		t.Error("drive must not be attempted when cloudinary is configured")
	}
	if _, err := os.Stat(e.engine.lastOutput); !os.IsNotExist(err) {
		t.Error("expected artifact deleted after upload")
	}
}

func TestPostRenderEditDriveQuotaSkip(t *testing.T) {
	drive := &fakeUploader{name: "gdrive", err: apperrors.New(apperrors.CodeResourceExhaust, "quota")}
	e := newEnv(t, nil, drive)

	rec, resp := doJSON(t, e.h.PostRenderEdit, `{"videoUrl":"https://cdn/x.mp4","durationSeconds":5}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("quota soft-failure must answer 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if resp["driveUpload"] != "skipped" {
		t.Errorf("expected driveUpload=skipped, got %v", resp["driveUpload"])
	}
	if msg, _ := resp["message"].(string); !strings.Contains(msg, "quota") {
		t.Errorf("expected quota message, got %v", resp["message"])
	}
	if _, err := os.Stat(e.engine.lastOutput); !os.IsNotExist(err) {
		t.Error("expected artifact deleted on quota soft-failure")
	}
}

func TestPostRenderEditDriveHardFailure(t *testing.T) {
	drive := &fakeUploader{name: "gdrive", err: apperrors.Internal("permission denied")}
	e := newEnv(t, nil, drive)

	rec, resp := doJSON(t, e.h.PostRenderEdit, `{"videoUrl":"https://cdn/x.mp4","durationSeconds":5}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if resp["error"] != "render_edit_failed" {
		t.Errorf("expected error 'render_edit_failed', got %v", resp["error"])
	}
	if msg, _ := resp["message"].(string); !strings.Contains(msg, "permission denied") {
		t.Errorf("expected underlying message in body, got %v", resp["message"])
	}
	if _, err := os.Stat(e.engine.lastOutput); err != nil {
		t.Error("expected artifact left on disk after hard failure")
	}
}

func TestPostRenderPipelineFailures(t *testing.T) {
	t.Run("bundle failure", func(t *testing.T) {
		e := newEnv(t, nil, nil)
		e.engine.bundleErr = fmt.Errorf("bundler crashed")
		rec, resp := doJSON(t, e.h.PostRender, `{"lines":["a"]}`)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if resp["error"] != "render_failed" {
			t.Errorf("expected 'render_failed', got %v", resp["error"])
		}
	})

	t.Run("unknown composition", func(t *testing.T) {
		e := newEnv(t, nil, nil)
		e.engine.selectErr = fmt.Errorf("composition not found")
		rec, resp := doJSON(t, e.h.PostRender, `{"lines":["a"]}`)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if msg, _ := resp["message"].(string); !strings.Contains(msg, "composition not found") {
			t.Errorf("expected underlying message, got %v", resp["message"])
		}
	})

	t.Run("render failure", func(t *testing.T) {
		e := newEnv(t, nil, nil)
		e.engine.renderErr = fmt.Errorf("decode error on https://cdn/x.mp4")
		rec, _ := doJSON(t, e.h.PostRender, `{"lines":["a"]}`)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestBundleReusedAcrossRequests(t *testing.T) {
	e := newEnv(t, nil, nil)

	doJSON(t, e.h.PostRender, `{"lines":["a"]}`)
	doJSON(t, e.h.PostRender, `{"lines":["b"]}`)
	doJSON(t, e.h.PostRenderEdit, `{"videoUrl":"https://cdn/x.mp4","durationSeconds":5}`)

	if e.engine.bundleCalls != 1 {
		t.Errorf("expected bundle to run once per process, got %d", e.engine.bundleCalls)
	}
}
