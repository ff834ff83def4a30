package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
)

// baseDPI is the resolution MuPDF reports page bounds at.
const baseDPI = 72.0

// FitzRenderer rasterizes PDFs with MuPDF.
type FitzRenderer struct{}

func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{}
}

func (r *FitzRenderer) PageCount(path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %v", ErrRender, path, err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

func (r *FitzRenderer) RenderPage(path string, page int, targetWidth int, quality int) ([]byte, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrRender, path, err)
	}
	defer doc.Close()

	return renderPage(doc, path, page, targetWidth, quality)
}

func (r *FitzRenderer) RenderAll(path string, targetWidth int, quality int) ([][]byte, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrRender, path, err)
	}
	defer doc.Close()

	pages := make([][]byte, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := renderPage(doc, path, n, targetWidth, quality)
		if err != nil {
			return nil, err
		}
		pages = append(pages, img)
	}
	return pages, nil
}

func renderPage(doc *fitz.Document, path string, page int, targetWidth int, quality int) ([]byte, error) {
	bound, err := doc.Bound(page)
	if err != nil {
		return nil, fmt.Errorf("%w: bounds %s page %d: %v", ErrRender, path, page, err)
	}
	pageWidth := bound.Dx()
	if pageWidth <= 0 {
		return nil, fmt.Errorf("%w: %s page %d has no width", ErrRender, path, page)
	}

	dpi := baseDPI * float64(targetWidth) / float64(pageWidth)
	img, err := doc.ImageDPI(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: rasterize %s page %d: %v", ErrRender, path, page, err)
	}

	return encodeGrayJPEG(img, quality)
}

func encodeGrayJPEG(img image.Image, quality int) ([]byte, error) {
	gray := image.NewGray(img.Bounds())
	draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, gray, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: jpeg encode: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}
