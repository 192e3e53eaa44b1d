package pipeline

import "errors"

// Failure classes a run can surface. Per-page recognition failures are
// deliberately absent: they are absorbed as empty page text and never abort
// a run.
var (
	// ErrPageLimitExceeded rejects an oversized document before any
	// rasterization work is spent on it.
	ErrPageLimitExceeded = errors.New("pdf exceeds page limit")

	// ErrRasterizationFailed covers the rasterizer failing to report a page
	// count or produce page images.
	ErrRasterizationFailed = errors.New("rasterization failed")

	// ErrIO covers working-directory creation and output-artifact writes
	// failing.
	ErrIO = errors.New("io failure")
)
