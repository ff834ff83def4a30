package preview

import "errors"

// ErrRender wraps any rasterization failure. Render errors are per-file
// and never fatal to the session.
var ErrRender = errors.New("render failed")

// Renderer converts PDF pages to encoded images. Implementations scale
// pages to the requested pixel width and keep the aspect ratio.
type Renderer interface {
	// PageCount returns the number of pages in the document.
	PageCount(path string) (int, error)

	// RenderPage renders a single zero-based page as a grayscale JPEG.
	RenderPage(path string, page int, targetWidth int, quality int) ([]byte, error)

	// RenderAll renders every page as a grayscale JPEG.
	RenderAll(path string, targetWidth int, quality int) ([][]byte, error)
}
