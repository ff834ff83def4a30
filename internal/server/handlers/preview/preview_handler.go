package preview

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/papersort/papersort/internal/preview"
	"github.com/papersort/papersort/internal/server/handlers/api"
	"github.com/papersort/papersort/internal/session"
	"github.com/papersort/papersort/internal/utils"
)

// PreviewService is the slice of preview.Service the handler needs.
type PreviewService interface {
	FirstPage(path string) ([]byte, error)
	AllPages(path string) ([][]byte, error)
	Image(path string) ([]byte, error)
}

// EntryProvider resolves a session entry index to its file.
type EntryProvider interface {
	Entry(index int) (session.FileEntry, error)
}

type PreviewHandler struct {
	previews PreviewService
	entries  EntryProvider
}

func New(previews PreviewService, entries EntryProvider) *PreviewHandler {
	return &PreviewHandler{
		previews: previews,
		entries:  entries,
	}
}

// FirstPage serves the first page as a base64 JPEG for the list pane.
func (h *PreviewHandler) FirstPage(ctx *gin.Context) {
	entry, ok := h.entryParam(ctx)
	if !ok {
		return
	}

	img, err := h.previews.FirstPage(entry.Path)
	if err != nil {
		h.abortPreviewError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, gin.H{
		"preview": base64.StdEncoding.EncodeToString(img),
	})
}

// AllPages serves every page as base64 JPEGs for the scrollable viewer.
func (h *PreviewHandler) AllPages(ctx *gin.Context) {
	entry, ok := h.entryParam(ctx)
	if !ok {
		return
	}

	rendered, err := h.previews.AllPages(entry.Path)
	if err != nil {
		h.abortPreviewError(ctx, err)
		return
	}

	pages := make([]string, len(rendered))
	for i, img := range rendered {
		pages[i] = base64.StdEncoding.EncodeToString(img)
	}
	ctx.PureJSON(http.StatusOK, gin.H{
		"pages": pages,
	})
}

// Image serves the first page as raw JPEG bytes at viewer resolution.
func (h *PreviewHandler) Image(ctx *gin.Context) {
	entry, ok := h.entryParam(ctx)
	if !ok {
		return
	}

	img, err := h.previews.Image(entry.Path)
	if err != nil {
		h.abortPreviewError(ctx, err)
		return
	}

	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.Data(http.StatusOK, "image/jpeg", img)
}

// PDF serves the raw PDF with range support for the browser's viewer.
func (h *PreviewHandler) PDF(ctx *gin.Context) {
	entry, ok := h.entryParam(ctx)
	if !ok {
		return
	}

	if !utils.FileExists(entry.Path) {
		api.AbortWithError(ctx, http.StatusNotFound, api.CodeNoEntry, fmt.Errorf("file not found: %s", entry.Path))
		return
	}

	ctx.Header("Cache-Control", "private, max-age=3600")
	ctx.Header("Content-Type", "application/pdf")
	// http.ServeFile handles Accept-Ranges / range requests
	http.ServeFile(ctx.Writer, ctx.Request, entry.Path)
}

func (h *PreviewHandler) entryParam(ctx *gin.Context) (session.FileEntry, bool) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Errorf("invalid index %q", ctx.Param("index")))
		return session.FileEntry{}, false
	}

	entry, err := h.entries.Entry(index)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoSession):
			api.AbortWithError(ctx, http.StatusConflict, api.CodeNoSession, err)
		case errors.Is(err, session.ErrNoCurrentEntry):
			api.AbortWithError(ctx, http.StatusNotFound, api.CodeNoEntry, err)
		default:
			api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeInternalError, err)
		}
		return session.FileEntry{}, false
	}
	return entry, true
}

func (h *PreviewHandler) abortPreviewError(ctx *gin.Context, err error) {
	if errors.Is(err, preview.ErrRender) {
		api.AbortWithError(ctx, http.StatusUnprocessableEntity, api.CodeRenderFailed, err)
		return
	}
	api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeInternalError, err)
}
