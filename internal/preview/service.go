package preview

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Render parameters per variant. First-page previews are sized for the
// list pane, the image endpoint serves the zoomable viewer.
const (
	FirstPageWidth   = 1200
	FirstPageQuality = 75

	AllPagesWidth   = 1200
	AllPagesQuality = 70

	ImageWidth   = 1400
	ImageQuality = 90
)

// cache sizes; rendered pages run a few hundred KB each
const (
	pageCacheSize = 256
	docCacheSize  = 32
)

// prefetchCount previews are warmed right after a session loads.
const prefetchCount = 10

// Service caches rendered previews and collapses concurrent renders of
// the same document into one.
type Service struct {
	renderer Renderer
	pages    *lru.Cache[string, []byte]
	docs     *lru.Cache[string, [][]byte]
	group    singleflight.Group
}

func NewService(renderer Renderer) (*Service, error) {
	pages, err := lru.New[string, []byte](pageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("page cache: %w", err)
	}
	docs, err := lru.New[string, [][]byte](docCacheSize)
	if err != nil {
		return nil, fmt.Errorf("doc cache: %w", err)
	}
	return &Service{
		renderer: renderer,
		pages:    pages,
		docs:     docs,
	}, nil
}

// FirstPage renders the first page of the PDF at the list-pane size.
func (s *Service) FirstPage(path string) ([]byte, error) {
	return s.page(path, "first", FirstPageWidth, FirstPageQuality)
}

// Image renders the first page at the viewer size.
func (s *Service) Image(path string) ([]byte, error) {
	return s.page(path, "image", ImageWidth, ImageQuality)
}

func (s *Service) page(path, variant string, width, quality int) ([]byte, error) {
	key := path + "|" + variant
	if img, ok := s.pages.Get(key); ok {
		return img, nil
	}

	img, err, _ := s.group.Do(key, func() (any, error) {
		if img, ok := s.pages.Get(key); ok {
			return img, nil
		}
		img, err := s.renderer.RenderPage(path, 0, width, quality)
		if err != nil {
			return nil, err
		}
		s.pages.Add(key, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return img.([]byte), nil
}

// AllPages renders every page of the PDF for the scrollable viewer.
func (s *Service) AllPages(path string) ([][]byte, error) {
	key := path + "|all"
	if pages, ok := s.docs.Get(key); ok {
		return pages, nil
	}

	pages, err, _ := s.group.Do(key, func() (any, error) {
		if pages, ok := s.docs.Get(key); ok {
			return pages, nil
		}
		pages, err := s.renderer.RenderAll(path, AllPagesWidth, AllPagesQuality)
		if err != nil {
			return nil, err
		}
		s.docs.Add(key, pages)
		return pages, nil
	})
	if err != nil {
		return nil, err
	}
	return pages.([][]byte), nil
}

// Invalidate drops every cached variant for path. Called when the file
// moves or comes back via undo.
func (s *Service) Invalidate(path string) {
	s.pages.Remove(path + "|first")
	s.pages.Remove(path + "|image")
	s.docs.Remove(path + "|all")
}

// Prefetch warms the first-page cache for the first few paths in the
// background. Failures are logged and skipped; the per-request render
// will surface them.
func (s *Service) Prefetch(paths []string) {
	if len(paths) > prefetchCount {
		paths = paths[:prefetchCount]
	}
	go func() {
		for _, path := range paths {
			if _, err := s.FirstPage(path); err != nil {
				slog.Debug("preview prefetch", "path", path, "error", err)
			}
		}
	}()
}
