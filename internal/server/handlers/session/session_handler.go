package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/papersort/papersort/internal/server/handlers/api"
	"github.com/papersort/papersort/internal/session"
)

// SessionService is the slice of session.Service the handler needs.
type SessionService interface {
	Load(source, dest1, dest2 string) (*session.View, error)
	View() (*session.View, error)
	Next() (*session.View, error)
	Previous() (*session.View, error)
	Sort(target session.Target) (*session.View, error)
	Undo() (*session.View, bool, error)
}

// LoadedFunc runs after a successful load so the server can retarget
// the folder watcher and warm previews.
type LoadedFunc func(view *session.View)

type SessionHandler struct {
	svc      SessionService
	onLoaded LoadedFunc
}

func New(svc SessionService, onLoaded LoadedFunc) *SessionHandler {
	return &SessionHandler{
		svc:      svc,
		onLoaded: onLoaded,
	}
}

func (h *SessionHandler) Load(ctx *gin.Context) {
	var req LoadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Errorf("bind request: %w", err))
		return
	}

	view, err := h.svc.Load(req.Source, req.Dest1, req.Dest2)
	if err != nil {
		h.abortSessionError(ctx, err)
		return
	}

	if h.onLoaded != nil {
		h.onLoaded(view)
	}
	ctx.PureJSON(http.StatusOK, view)
}

func (h *SessionHandler) GetView(ctx *gin.Context) {
	view, err := h.svc.View()
	if err != nil {
		h.abortSessionError(ctx, err)
		return
	}
	ctx.PureJSON(http.StatusOK, view)
}

func (h *SessionHandler) Next(ctx *gin.Context) {
	view, err := h.svc.Next()
	if err != nil {
		h.abortSessionError(ctx, err)
		return
	}
	ctx.PureJSON(http.StatusOK, view)
}

func (h *SessionHandler) Previous(ctx *gin.Context) {
	view, err := h.svc.Previous()
	if err != nil {
		h.abortSessionError(ctx, err)
		return
	}
	ctx.PureJSON(http.StatusOK, view)
}

func (h *SessionHandler) Sort(ctx *gin.Context) {
	var req SortRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Errorf("bind request: %w", err))
		return
	}

	target := session.Target(req.Target)
	if !target.Valid() {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Errorf("target must be 1 or 2, got %d", req.Target))
		return
	}

	view, err := h.svc.Sort(target)
	if err != nil {
		h.abortSessionError(ctx, err)
		return
	}
	ctx.PureJSON(http.StatusOK, view)
}

func (h *SessionHandler) Undo(ctx *gin.Context) {
	view, undone, err := h.svc.Undo()
	if err != nil {
		h.abortSessionError(ctx, err)
		return
	}

	resp := gin.H{
		"undone":  undone,
		"session": view,
	}
	if !undone {
		resp["message"] = "nothing to undo"
	}
	ctx.PureJSON(http.StatusOK, resp)
}

func (h *SessionHandler) abortSessionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNoSession):
		api.AbortWithError(ctx, http.StatusConflict, api.CodeNoSession, err)
	case errors.Is(err, session.ErrFolderNotFound):
		api.AbortWithError(ctx, http.StatusNotFound, api.CodeFolderNotFound, err)
	case errors.Is(err, session.ErrPermissionDenied):
		api.AbortWithError(ctx, http.StatusForbidden, api.CodeFolderAccessDenied, err)
	case errors.Is(err, session.ErrFolderLocked):
		api.AbortWithError(ctx, http.StatusConflict, api.CodeFolderLocked, err)
	case errors.Is(err, session.ErrNoCurrentEntry):
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeNoEntry, err)
	case errors.Is(err, session.ErrMoveFailed):
		api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeMoveFailed, err)
	default:
		api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeInternalError, err)
	}
}
