package delivery

import (
	"context"

	"vidcap/internal/adapters/upload/cloudinaryup"
	"vidcap/internal/adapters/upload/gdrive"
	"vidcap/internal/config"
	"vidcap/internal/pkg/logger"
	"vidcap/internal/ports"
)

// Build constructs a dispatcher from configuration. Credential groups that
// are incomplete leave the corresponding provider unconfigured rather than
// failing startup.
func Build(ctx context.Context, cfg config.Config, log *logger.Logger) (*Dispatcher, error) {
	var cloud, drv ports.Uploader

	if cfg.Cloudinary.Configured() {
		c, err := cloudinaryup.New(
			cfg.Cloudinary.CloudName,
			cfg.Cloudinary.APIKey,
			cfg.Cloudinary.APISecret,
			cfg.Cloudinary.Folder,
		)
		if err != nil {
			return nil, err
		}
		cloud = c
	}

	if cfg.Drive.Configured() {
		d, err := gdrive.New(ctx, gdrive.Config{
			ClientEmail:     cfg.Drive.ClientEmail,
			PrivateKey:      cfg.Drive.PrivateKey,
			ImpersonateUser: cfg.Drive.ImpersonateUser,
			FolderID:        cfg.Drive.FolderID,
		})
		if err != nil {
			return nil, err
		}
		drv = d
	}

	return NewDispatcher(cloud, drv, log), nil
}
