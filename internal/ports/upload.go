package ports

import "context"

// UploadResult is the durable reference a provider hands back for an
// uploaded video. Which fields are set depends on the provider: Cloudinary
// fills URL, Drive fills ViewLink and DownloadLink.
type UploadResult struct {
	URL          string
	ViewLink     string
	DownloadLink string
}

// Uploader is the contract for a delivery provider: take a finished local
// file, return a shareable reference. Quota exhaustion must surface as a
// RESOURCE_EXHAUSTED coded error so the dispatcher can degrade instead of
// failing the request.
type Uploader interface {
	Name() string
	Upload(ctx context.Context, localPath string) (UploadResult, error)
}
