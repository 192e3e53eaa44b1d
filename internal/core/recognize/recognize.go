// Package recognize turns page images into text. Providers wrap an OCR
// capability behind a small interface so the pipeline never depends on a
// concrete engine; handles are the stateful workers a provider hands out.
package recognize

import "context"

// Config fixes a handle's recognition behavior for its whole lifetime. All
// handles created by one provider share the same configuration.
type Config struct {
	Language    string // tesseract language code, e.g. "eng"
	Whitelist   string // restrict recognition to these characters; empty allows all
	PageSegMode int    // tesseract page segmentation mode, 3 = fully automatic
	DPI         int    // source image resolution hint
}

// Handle is a reusable recognition worker: configured once, fed many images.
// A handle must not be used concurrently; Close is idempotent and safe to
// call on every exit path.
type Handle interface {
	Recognize(ctx context.Context, image []byte) (string, error)
	Close() error
}

// Provider creates identically configured handles.
type Provider interface {
	NewHandle() (Handle, error)
	Name() string
}
