package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) Publish(event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakePublisher) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

type fakeCache struct {
	invalidated []string
}

func (f *fakeCache) Invalidate(path string) {
	f.invalidated = append(f.invalidated, path)
}

type fixture struct {
	svc    *Service
	source string
	dest1  string
	dest2  string
	pub    *fakePublisher
	cache  *fakeCache
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	f := &fixture{
		svc:    NewService(),
		source: t.TempDir(),
		dest1:  filepath.Join(t.TempDir(), "dest1"),
		dest2:  filepath.Join(t.TempDir(), "dest2"),
		pub:    &fakePublisher{},
		cache:  &fakeCache{},
	}
	f.svc.SetPublisher(f.pub)
	f.svc.SetPreviewCache(f.cache)
	writeFiles(t, f.source, names...)
	t.Cleanup(func() { f.svc.Close() })
	return f
}

func (f *fixture) load(t *testing.T) *View {
	t.Helper()
	view, err := f.svc.Load(f.source, f.dest1, f.dest2)
	require.NoError(t, err)
	return view
}

func TestLoad_BuildsOrderedSession(t *testing.T) {
	f := newFixture(t, "c.pdf", "a.pdf", "b.pdf")
	view := f.load(t)

	require.Len(t, view.Entries, 3)
	assert.Equal(t, "a.pdf", view.Entries[0].Name)
	assert.Equal(t, "c.pdf", view.Entries[2].Name)
	assert.Equal(t, 0, view.CurrentIndex)
	assert.False(t, view.CanUndo)
	assert.NotEmpty(t, view.ID)
	assert.NotEmpty(t, view.Entries[0].SizeHuman)
	assert.DirExists(t, f.dest1)
	assert.DirExists(t, f.dest2)
	assert.Contains(t, f.pub.Events(), EventLoaded)
}

func TestLoad_MissingSource(t *testing.T) {
	svc := NewService()
	_, err := svc.Load(filepath.Join(t.TempDir(), "missing"), t.TempDir(), t.TempDir())
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestLoad_SourceLockedByOtherService(t *testing.T) {
	f := newFixture(t, "a.pdf")
	f.load(t)

	other := NewService()
	defer other.Close()
	_, err := other.Load(f.source, f.dest1, f.dest2)
	assert.ErrorIs(t, err, ErrFolderLocked)
}

func TestOps_WithoutSession(t *testing.T) {
	svc := NewService()

	_, err := svc.View()
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = svc.Next()
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = svc.Sort(TargetDest1)
	assert.ErrorIs(t, err, ErrNoSession)
	_, _, err = svc.Undo()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestNavigation_ClampedAtBounds(t *testing.T) {
	f := newFixture(t, "a.pdf", "b.pdf", "c.pdf")
	f.load(t)

	// already at the first entry
	view, err := f.svc.Previous()
	require.NoError(t, err)
	assert.Equal(t, 0, view.CurrentIndex)

	for range 10 {
		view, err = f.svc.Next()
		require.NoError(t, err)
	}
	assert.Equal(t, 2, view.CurrentIndex)

	for range 10 {
		view, err = f.svc.Previous()
		require.NoError(t, err)
	}
	assert.Equal(t, 0, view.CurrentIndex)
}

func TestSortThenUndo_RestoresEverything(t *testing.T) {
	f := newFixture(t, "a.pdf", "b.pdf", "c.pdf")
	f.load(t)

	view, err := f.svc.Sort(TargetDest1)
	require.NoError(t, err)
	assert.Equal(t, StatusSortedTo1, view.Entries[0].Status)
	assert.Equal(t, 1, view.CurrentIndex)
	assert.True(t, view.CanUndo)
	assert.FileExists(t, filepath.Join(f.dest1, "a.pdf"))
	assert.NoFileExists(t, filepath.Join(f.source, "a.pdf"))
	assert.Contains(t, f.cache.invalidated, filepath.Join(f.source, "a.pdf"))

	view, undone, err := f.svc.Undo()
	require.NoError(t, err)
	assert.True(t, undone)
	assert.Equal(t, StatusUnsorted, view.Entries[0].Status)
	assert.Equal(t, 0, view.CurrentIndex)
	assert.False(t, view.CanUndo)
	assert.FileExists(t, filepath.Join(f.source, "a.pdf"))
	assert.NoFileExists(t, filepath.Join(f.dest1, "a.pdf"))
	assert.Contains(t, f.pub.Events(), EventUndone)
}

func TestSort_ToSecondDestination(t *testing.T) {
	f := newFixture(t, "a.pdf", "b.pdf")
	f.load(t)

	view, err := f.svc.Sort(TargetDest2)
	require.NoError(t, err)
	assert.Equal(t, StatusSortedTo2, view.Entries[0].Status)
	assert.FileExists(t, filepath.Join(f.dest2, "a.pdf"))
}

func TestSort_InvalidTarget(t *testing.T) {
	f := newFixture(t, "a.pdf")
	f.load(t)

	_, err := f.svc.Sort(Target(3))
	assert.Error(t, err)
}

func TestSort_LastEntryKeepsIndexInBounds(t *testing.T) {
	f := newFixture(t, "only.pdf")
	f.load(t)

	view, err := f.svc.Sort(TargetDest1)
	require.NoError(t, err)
	assert.Equal(t, 0, view.CurrentIndex)
}

func TestSort_CollisionGetsSuffix(t *testing.T) {
	f := newFixture(t, "a.pdf")
	f.load(t)
	writeFiles(t, f.dest1, "a.pdf")

	view, err := f.svc.Sort(TargetDest1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.dest1, "a_1.pdf"), view.Entries[0].Path)
	assert.FileExists(t, filepath.Join(f.dest1, "a_1.pdf"))
}

func TestSort_FailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, "a.pdf", "b.pdf")
	f.load(t)

	// file vanished out from under the session
	require.NoError(t, os.Remove(filepath.Join(f.source, "a.pdf")))

	_, err := f.svc.Sort(TargetDest1)
	assert.ErrorIs(t, err, ErrMoveFailed)

	view, err := f.svc.View()
	require.NoError(t, err)
	assert.Equal(t, 0, view.CurrentIndex)
	assert.Equal(t, StatusUnsorted, view.Entries[0].Status)
	assert.False(t, view.CanUndo)
}

func TestUndo_NothingToUndo(t *testing.T) {
	f := newFixture(t, "a.pdf")
	f.load(t)

	view, undone, err := f.svc.Undo()
	require.NoError(t, err)
	assert.False(t, undone)
	assert.Equal(t, 0, view.CurrentIndex)
}

func TestUndo_SingleLevelOnly(t *testing.T) {
	f := newFixture(t, "a.pdf", "b.pdf")
	f.load(t)

	_, err := f.svc.Sort(TargetDest1)
	require.NoError(t, err)
	_, err = f.svc.Sort(TargetDest2)
	require.NoError(t, err)

	// only the second sort is reversible
	view, undone, err := f.svc.Undo()
	require.NoError(t, err)
	assert.True(t, undone)
	assert.Equal(t, 1, view.CurrentIndex)
	assert.Equal(t, StatusSortedTo1, view.Entries[0].Status)
	assert.Equal(t, StatusUnsorted, view.Entries[1].Status)

	_, undone, err = f.svc.Undo()
	require.NoError(t, err)
	assert.False(t, undone)
}

func TestUndo_OverwrittenBySecondSort(t *testing.T) {
	f := newFixture(t, "a.pdf", "b.pdf")
	f.load(t)

	_, err := f.svc.Sort(TargetDest1)
	require.NoError(t, err)
	view, err := f.svc.Sort(TargetDest1)
	require.NoError(t, err)
	require.True(t, view.CanUndo)

	_, _, err = f.svc.Undo()
	require.NoError(t, err)

	// a.pdf stays sorted; only b.pdf came back
	assert.FileExists(t, filepath.Join(f.dest1, "a.pdf"))
	assert.FileExists(t, filepath.Join(f.source, "b.pdf"))
}

func TestMarkStale_PublishesOnce(t *testing.T) {
	f := newFixture(t, "a.pdf")
	f.load(t)

	f.svc.MarkStale()
	f.svc.MarkStale()

	view, err := f.svc.View()
	require.NoError(t, err)
	assert.True(t, view.Stale)

	count := 0
	for _, e := range f.pub.Events() {
		if e == EventFolderChanged {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestNoteFolderChange_IgnoresOwnMoves(t *testing.T) {
	f := newFixture(t, "a.pdf", "b.pdf")
	f.load(t)

	_, err := f.svc.Sort(TargetDest1)
	require.NoError(t, err)

	// the watcher reporting the sort's own rename must not go stale
	f.svc.NoteFolderChange(filepath.Join(f.source, "a.pdf"))
	view, err := f.svc.View()
	require.NoError(t, err)
	assert.False(t, view.Stale)

	_, undone, err := f.svc.Undo()
	require.NoError(t, err)
	require.True(t, undone)
	f.svc.NoteFolderChange(filepath.Join(f.source, "a.pdf"))
	view, err = f.svc.View()
	require.NoError(t, err)
	assert.False(t, view.Stale)

	// a second event for the same path is an external change
	f.svc.NoteFolderChange(filepath.Join(f.source, "a.pdf"))
	view, err = f.svc.View()
	require.NoError(t, err)
	assert.True(t, view.Stale)
}

func TestEntry_OutOfRange(t *testing.T) {
	f := newFixture(t, "a.pdf")
	f.load(t)

	_, err := f.svc.Entry(5)
	assert.ErrorIs(t, err, ErrNoCurrentEntry)

	entry, err := f.svc.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", entry.Name)
}
