// Package cloudinaryup implements ports.Uploader backed by Cloudinary.
package cloudinaryup

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"vidcap/internal/ports"
)

type Client struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// New builds a Cloudinary uploader targeting the given folder.
func New(cloudName, apiKey, apiSecret, folder string) (*Client, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &Client{cld: cld, folder: folder}, nil
}

func (c *Client) Name() string { return "cloudinary" }

func (c *Client) Upload(ctx context.Context, localPath string) (ports.UploadResult, error) {
	resp, err := c.cld.Upload.Upload(ctx, localPath, uploader.UploadParams{
		ResourceType: "video",
		Folder:       c.folder,
	})
	if err != nil {
		return ports.UploadResult{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	// The SDK reports API-level failures in the response body, not err.
	if resp.Error.Message != "" {
		return ports.UploadResult{}, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return ports.UploadResult{}, fmt.Errorf("cloudinary upload: empty secure url")
	}

	return ports.UploadResult{URL: resp.SecureURL}, nil
}
