package driven

import (
	"context"
)

// AssetUploader receives discovered PDF URLs for out-of-band storage.
// The URLs are handed off verbatim under a state-derived path prefix;
// this core never inspects PDF content.
type AssetUploader interface {
	UploadPDFs(ctx context.Context, state string, urls []string) error
}
