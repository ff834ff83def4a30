package session

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/papersort/papersort/internal/utils"
)

const lockFileName = ".papersort.lock"

// Publisher receives session lifecycle events for fan-out to connected UIs.
type Publisher interface {
	Publish(event string, payload any)
}

// PreviewCache is the slice of the preview service the session needs:
// rendered pages keyed by file path go stale once the file moves.
type PreviewCache interface {
	Invalidate(path string)
}

const (
	EventLoaded        = "session_loaded"
	EventSorted        = "entry_sorted"
	EventUndone        = "entry_undone"
	EventIndexChanged  = "index_changed"
	EventFolderChanged = "folder_changed"
)

// Service owns the single sorting session of a papersort process.
// All operations are serialized behind a mutex, so actions are applied
// in the order received.
type Service struct {
	mu      sync.Mutex
	session *Session
	lock    *flock.Flock

	// source paths papersort itself is adding or removing, so watcher
	// callbacks can tell our own moves from external ones
	expected map[string]int

	publisher Publisher
	previews  PreviewCache
}

func NewService() *Service {
	return &Service{
		expected: make(map[string]int),
	}
}

func (s *Service) SetPublisher(p Publisher) {
	s.publisher = p
}

func (s *Service) SetPreviewCache(c PreviewCache) {
	s.previews = c
}

// Load builds a fresh session for the given folders, replacing any
// previous one. Destination folders are created when missing; the source
// folder must exist and be readable.
func (s *Service) Load(source, dest1, dest2 string) (*View, error) {
	src, err := utils.ResolvePath(source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	d1, err := utils.ResolvePath(dest1)
	if err != nil {
		return nil, fmt.Errorf("dest1: %w", err)
	}
	d2, err := utils.ResolvePath(dest2)
	if err != nil {
		return nil, fmt.Errorf("dest2: %w", err)
	}

	if !utils.DirExists(src) {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, src)
	}
	if err := utils.EnsureDir(d1); err != nil {
		return nil, fmt.Errorf("create dest1: %w", err)
	}
	if err := utils.EnsureDir(d2); err != nil {
		return nil, fmt.Errorf("create dest2: %w", err)
	}

	entries, err := listPDFs(src)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.relock(src); err != nil {
		return nil, err
	}

	clear(s.expected)
	s.session = &Session{
		ID:      uuid.NewString(),
		Source:  src,
		Dest1:   d1,
		Dest2:   d2,
		Entries: entries,
	}
	slog.Info("session loaded", "id", s.session.ID, "source", src, "entries", len(entries))

	view := s.view()
	s.publish(EventLoaded, view)
	return view, nil
}

// relock swaps the source folder lock. Guards against two papersort
// processes triaging the same folder.
func (s *Service) relock(source string) error {
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			slog.Warn("session lock release", "error", err)
		}
		s.lock = nil
	}

	fl := flock.New(filepath.Join(source, lockFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("lock source folder: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrFolderLocked, source)
	}
	s.lock = fl
	return nil
}

// View returns the current session view, or ErrNoSession.
func (s *Service) View() (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, ErrNoSession
	}
	return s.view(), nil
}

// Entry returns a copy of the entry at index.
func (s *Service) Entry(index int) (FileEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return FileEntry{}, ErrNoSession
	}
	if index < 0 || index >= len(s.session.Entries) {
		return FileEntry{}, fmt.Errorf("%w: index %d", ErrNoCurrentEntry, index)
	}
	return *s.session.Entries[index], nil
}

// Next advances the current index by one. No-op at the last entry.
func (s *Service) Next() (*View, error) {
	return s.step(1)
}

// Previous moves the current index back by one. No-op at the first entry.
func (s *Service) Previous() (*View, error) {
	return s.step(-1)
}

func (s *Service) step(delta int) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, ErrNoSession
	}

	next := s.session.CurrentIndex + delta
	if next >= 0 && next < len(s.session.Entries) {
		s.session.CurrentIndex = next
		s.publish(EventIndexChanged, s.view())
	}
	return s.view(), nil
}

// Sort moves the current entry's file into the target destination folder,
// records the action for undo and advances to the next entry. On failure
// the session is left unchanged.
func (s *Service) Sort(target Target) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, ErrNoSession
	}
	if !target.Valid() {
		return nil, fmt.Errorf("invalid sort target %d", target)
	}

	idx := s.session.CurrentIndex
	if idx < 0 || idx >= len(s.session.Entries) {
		return nil, ErrNoCurrentEntry
	}
	entry := s.session.Entries[idx]

	destDir := s.session.Dest1
	status := StatusSortedTo1
	if target == TargetDest2 {
		destDir = s.session.Dest2
		status = StatusSortedTo2
	}

	newPath, err := moveFile(entry.Path, destDir)
	if err != nil {
		return nil, err
	}

	s.session.last = &lastAction{
		Index:    idx,
		FromPath: entry.Path,
		ToPath:   newPath,
	}
	s.expected[entry.Path]++
	s.invalidate(entry.Path)

	entry.Path = newPath
	entry.Status = status
	if idx < len(s.session.Entries)-1 {
		s.session.CurrentIndex = idx + 1
	}
	slog.Info("entry sorted", "name", entry.Name, "target", int(target), "to", newPath)

	view := s.view()
	s.publish(EventSorted, view)
	return view, nil
}

// Undo reverses the most recent sort. Returns undone=false when there is
// nothing to undo; that is not an error. Only one level of undo is kept.
func (s *Service) Undo() (*View, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, false, ErrNoSession
	}
	last := s.session.last
	if last == nil {
		return s.view(), false, nil
	}

	// lastAction is kept on failure so the user can retry
	if err := restoreFile(last.ToPath, last.FromPath); err != nil {
		return nil, false, err
	}

	entry := s.session.Entries[last.Index]
	s.expected[last.FromPath]++
	s.invalidate(entry.Path)
	entry.Path = last.FromPath
	entry.Status = StatusUnsorted
	s.session.CurrentIndex = last.Index
	s.session.last = nil
	slog.Info("entry undone", "name", entry.Name, "restored", last.FromPath)

	view := s.view()
	s.publish(EventUndone, view)
	return view, true, nil
}

// NoteFolderChange handles a watcher event for path. Changes caused by
// our own sort and undo moves are consumed silently; anything else is
// an external actor touching the source folder.
func (s *Service) NoteFolderChange(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := s.expected[path]; n > 0 {
		if n == 1 {
			delete(s.expected, path)
		} else {
			s.expected[path] = n - 1
		}
		return
	}
	s.markStale()
}

// MarkStale flags the session when the source folder changed under us.
// Entries are never mutated here; the user decides whether to reload.
func (s *Service) MarkStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markStale()
}

func (s *Service) markStale() {
	if s.session == nil || s.session.Stale {
		return
	}
	s.session.Stale = true
	s.publish(EventFolderChanged, s.view())
}

// Source returns the active session's source folder, or "".
func (s *Service) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return ""
	}
	return s.session.Source
}

// Close releases the source folder lock.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock = nil
	return err
}

// view builds the JSON view. Callers must hold s.mu.
func (s *Service) view() *View {
	sess := s.session
	entries := make([]EntryView, len(sess.Entries))
	for i, e := range sess.Entries {
		entries[i] = EntryView{
			Name:      e.Name,
			Path:      e.Path,
			Size:      e.Size,
			SizeHuman: humanize.Bytes(uint64(e.Size)),
			Status:    e.Status,
		}
	}
	return &View{
		ID:           sess.ID,
		Source:       sess.Source,
		Dest1:        sess.Dest1,
		Dest2:        sess.Dest2,
		Entries:      entries,
		CurrentIndex: sess.CurrentIndex,
		CanUndo:      sess.last != nil,
		Stale:        sess.Stale,
	}
}

func (s *Service) publish(event string, payload any) {
	if s.publisher != nil {
		s.publisher.Publish(event, payload)
	}
}

func (s *Service) invalidate(path string) {
	if s.previews != nil {
		s.previews.Invalidate(path)
	}
}
