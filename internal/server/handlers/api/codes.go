package api

const (
	// Generic request/server errors
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal server error

	// Folder errors
	CodeFolderNotFound     = "E_FOLDER_NOT_FOUND"     // the folder does not exist
	CodeFolderAccessDenied = "E_FOLDER_ACCESS_DENIED" // the folder is not readable or writable
	CodeFolderLocked       = "E_FOLDER_LOCKED"        // another papersort process holds the folder

	// Session errors
	CodeNoSession = "E_NO_SESSION" // no session loaded yet
	CodeNoEntry   = "E_NO_ENTRY"   // no entry at the requested index

	// Operation errors
	CodeRenderFailed = "E_RENDER_FAILED" // the PDF could not be rasterized
	CodeMoveFailed   = "E_MOVE_FAILED"   // the file could not be moved
)
