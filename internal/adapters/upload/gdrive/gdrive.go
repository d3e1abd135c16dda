// Package gdrive implements ports.Uploader backed by Google Drive, using a
// service account with optional domain-wide impersonation.
package gdrive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	apperrors "vidcap/internal/pkg/errors"
	"vidcap/internal/ports"
)

type Client struct {
	srv      *drive.Service
	folderID string
}

// Config holds service-account credentials. PrivateKey must already have
// real newlines.
type Config struct {
	ClientEmail     string
	PrivateKey      string
	ImpersonateUser string
	FolderID        string
}

// New builds an authenticated Drive uploader.
func New(ctx context.Context, cfg Config) (*Client, error) {
	conf := &jwt.Config{
		Email:      cfg.ClientEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{drive.DriveFileScope},
		TokenURL:   google.JWTTokenURL,
		Subject:    cfg.ImpersonateUser,
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}

	return &Client{srv: srv, folderID: cfg.FolderID}, nil
}

func (c *Client) Name() string { return "gdrive" }

func (c *Client) Upload(ctx context.Context, localPath string) (ports.UploadResult, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return ports.UploadResult{}, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	file := &drive.File{
		Name:    shareName(localPath),
		Parents: []string{c.folderID},
	}

	created, err := c.srv.Files.Create(file).
		Media(f, googleapi.ContentType("video/mp4")).
		Fields("id, webViewLink, webContentLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return ports.UploadResult{}, classify(err)
	}

	// Anyone with the link can read the upload.
	_, err = c.srv.Permissions.Create(created.Id, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return ports.UploadResult{}, classify(err)
	}

	return ports.UploadResult{
		ViewLink:     created.WebViewLink,
		DownloadLink: created.WebContentLink,
	}, nil
}

// shareName maps a local artifact name to the shared file name:
// video-<ts>.mp4 becomes ai-video-<ts>.mp4, edit-<ts>.mp4 becomes
// ai-video-edit-<ts>.mp4.
func shareName(localPath string) string {
	base := filepath.Base(localPath)
	return "ai-video-" + strings.TrimPrefix(base, "video-")
}

// classify turns a quota failure into a RESOURCE_EXHAUSTED coded error so
// callers can branch structurally instead of sniffing message text. The
// googleapi reason is checked first; the substring check covers responses
// where the reason is absent.
func classify(err error) error {
	var gerr *googleapi.Error
	if apperrors.As(err, &gerr) {
		for _, item := range gerr.Errors {
			switch item.Reason {
			case "storageQuotaExceeded", "quotaExceeded", "teamDriveFileLimitExceeded":
				return apperrors.WrapWithCode(err, apperrors.CodeResourceExhaust,
					"gdrive.upload", "service account quota exhausted")
			}
		}
	}

	if msg := err.Error(); strings.Contains(msg, "storage quota") ||
		strings.Contains(msg, "do not have storage quota") {
		return apperrors.WrapWithCode(err, apperrors.CodeResourceExhaust,
			"gdrive.upload", "service account quota exhausted")
	}

	return fmt.Errorf("gdrive upload: %w", err)
}
