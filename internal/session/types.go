package session

import "errors"

var (
	ErrNoSession        = errors.New("no active session")
	ErrFolderNotFound   = errors.New("folder not found")
	ErrPermissionDenied = errors.New("folder not readable")
	ErrNoCurrentEntry   = errors.New("no entry at current index")
	ErrMoveFailed       = errors.New("move failed")
	ErrFolderLocked     = errors.New("source folder locked by another process")
)

// Status tracks where a file currently lives within a sorting session.
type Status string

const (
	StatusUnsorted  Status = "unsorted"
	StatusSortedTo1 Status = "sorted_1"
	StatusSortedTo2 Status = "sorted_2"
)

// Target selects one of the two destination folders.
type Target int

const (
	TargetDest1 Target = 1
	TargetDest2 Target = 2
)

func (t Target) Valid() bool {
	return t == TargetDest1 || t == TargetDest2
}

// FileEntry is one PDF candidate tracked by path and sort status.
// Path always points at the file's current location, so it changes
// when the entry is sorted or un-sorted.
type FileEntry struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Status Status `json:"status"`
}

// lastAction records the single most recent sort so it can be reversed.
// Each new sort overwrites it.
type lastAction struct {
	Index    int
	FromPath string
	ToPath   string
}

// Session is the full in-memory state of one sorting session.
type Session struct {
	ID           string
	Source       string
	Dest1        string
	Dest2        string
	Entries      []*FileEntry
	CurrentIndex int
	Stale        bool

	last *lastAction
}

// EntryView is the JSON shape of a FileEntry in API responses.
type EntryView struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"sizeHuman"`
	Status    Status `json:"status"`
}

// View is the JSON shape of the session in API responses.
type View struct {
	ID           string      `json:"id"`
	Source       string      `json:"source"`
	Dest1        string      `json:"dest1"`
	Dest2        string      `json:"dest2"`
	Entries      []EntryView `json:"entries"`
	CurrentIndex int         `json:"currentIndex"`
	CanUndo      bool        `json:"canUndo"`
	Stale        bool        `json:"stale"`
}
