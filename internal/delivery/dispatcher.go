// Package delivery uploads rendered artifacts, preferring Cloudinary, then
// Google Drive, then leaving the file on local disk.
package delivery

import (
	"context"
	"os"

	apperrors "vidcap/internal/pkg/errors"
	"vidcap/internal/pkg/logger"
	"vidcap/internal/ports"
)

// Kind tags a delivery outcome.
type Kind string

const (
	KindCloud   Kind = "cloudinary"
	KindDrive   Kind = "gdrive"
	KindSkipped Kind = "skipped"
	KindLocal   Kind = "local"
)

// Outcome describes how (or whether) the artifact was delivered. Exactly
// one outcome is produced per job.
type Outcome struct {
	Kind Kind

	// VideoURL is set for KindCloud.
	VideoURL string
	// WebViewLink/WebContentLink are set for KindDrive.
	WebViewLink    string
	WebContentLink string
	// SkipMessage is set for KindSkipped.
	SkipMessage string

	LocalPath string
}

const quotaSkipMessage = "Video rendered. Drive upload failed (service account quota). " +
	"Use a Workspace Shared Drive or omit Drive env vars."

// Dispatcher tries configured providers in strict priority order. A nil
// uploader means that provider is unconfigured.
type Dispatcher struct {
	cloud ports.Uploader
	drive ports.Uploader
	log   *logger.Logger
}

func NewDispatcher(cloud, drive ports.Uploader, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Dispatcher{cloud: cloud, drive: drive, log: log.WithComponent("delivery")}
}

// Deliver uploads the artifact at localPath. Successful uploads and
// drive-quota soft failures delete the local file; any other upload error
// is fatal and leaves the artifact on disk for inspection.
func (d *Dispatcher) Deliver(ctx context.Context, localPath string) (Outcome, error) {
	log := d.log.FromContext(ctx)

	if d.cloud != nil {
		res, err := d.cloud.Upload(ctx, localPath)
		if err != nil {
			return Outcome{}, apperrors.Wrap(err, "delivery.cloudinary", "upload failed")
		}
		d.removeLocal(ctx, localPath)
		log.Info("artifact delivered", "provider", d.cloud.Name(), "url", res.URL)
		return Outcome{Kind: KindCloud, VideoURL: res.URL, LocalPath: localPath}, nil
	}

	if d.drive != nil {
		res, err := d.drive.Upload(ctx, localPath)
		if err != nil {
			if apperrors.IsResourceExhausted(err) {
				// The render itself succeeded; a misconfigured service
				// account must not fail the request.
				d.removeLocal(ctx, localPath)
				log.Warn("drive upload skipped", "reason", "service account quota")
				return Outcome{Kind: KindSkipped, SkipMessage: quotaSkipMessage, LocalPath: localPath}, nil
			}
			return Outcome{}, apperrors.Wrap(err, "delivery.gdrive", "upload failed")
		}
		d.removeLocal(ctx, localPath)
		log.Info("artifact delivered", "provider", d.drive.Name(), "view_link", res.ViewLink)
		return Outcome{
			Kind:           KindDrive,
			WebViewLink:    res.ViewLink,
			WebContentLink: res.DownloadLink,
			LocalPath:      localPath,
		}, nil
	}

	log.Info("no delivery provider configured, keeping local artifact", "path", localPath)
	return Outcome{Kind: KindLocal, LocalPath: localPath}, nil
}

func (d *Dispatcher) removeLocal(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil {
		d.log.FromContext(ctx).Warn("failed to remove local artifact",
			"path", path,
			"error", err.Error(),
		)
	}
}
