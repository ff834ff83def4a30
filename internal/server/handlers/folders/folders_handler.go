package folders

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/papersort/papersort/internal/dialog"
	"github.com/papersort/papersort/internal/server/handlers/api"
	"github.com/papersort/papersort/internal/utils"
)

// PickFunc opens the native folder chooser. Swappable for tests.
type PickFunc func(ctx *gin.Context) (string, error)

type FoldersHandler struct {
	pick PickFunc
}

func New() *FoldersHandler {
	return &FoldersHandler{
		pick: func(ctx *gin.Context) (string, error) {
			return dialog.PickFolder(ctx.Request.Context())
		},
	}
}

type ValidateRequest struct {
	Path string `json:"path" binding:"required"`
}

// Pick opens the native folder dialog and returns the chosen path.
// Cancel or an unavailable dialog yields {"path": null}.
func (h *FoldersHandler) Pick(ctx *gin.Context) {
	path, err := h.pick(ctx)
	if err != nil {
		api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeInternalError, fmt.Errorf("folder dialog: %w", err))
		return
	}

	if path == "" {
		ctx.PureJSON(http.StatusOK, gin.H{"path": nil})
		return
	}
	ctx.PureJSON(http.StatusOK, gin.H{"path": path})
}

// Validate resolves a destination folder path, creating it when missing.
func (h *FoldersHandler) Validate(ctx *gin.Context) {
	var req ValidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Errorf("bind request: %w", err))
		return
	}

	path, err := utils.ResolvePath(req.Path)
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	if err := utils.EnsureDir(path); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeFolderAccessDenied, fmt.Errorf("cannot create folder: %w", err))
		return
	}
	if !utils.DirExists(path) {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Errorf("path is not a directory: %s", path))
		return
	}
	if !utils.IsWritable(path) {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeFolderAccessDenied, fmt.Errorf("folder is not writable: %s", path))
		return
	}

	ctx.PureJSON(http.StatusOK, gin.H{
		"valid": true,
		"path":  path,
	})
}
