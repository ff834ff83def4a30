package session

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// pdfPattern matches against lowercased file names, so ".PDF" and ".Pdf"
// are picked up too.
const pdfPattern = "*.pdf"

// listPDFs scans dir (non-recursive) and returns one Unsorted entry per PDF,
// ordered by file name.
func listPDFs(dir string) ([]*FileEntry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, dir)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, dir)
		}
		return nil, fmt.Errorf("read folder %s: %w", dir, err)
	}

	entries := make([]*FileEntry, 0, len(dirents))
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		ok, err := doublestar.Match(pdfPattern, strings.ToLower(de.Name()))
		if err != nil || !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// file vanished between ReadDir and Stat
			if _, ok := err.(*fs.PathError); ok {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", de.Name(), err)
		}
		entries = append(entries, &FileEntry{
			Name:   de.Name(),
			Path:   filepath.Join(dir, de.Name()),
			Size:   info.Size(),
			Status: StatusUnsorted,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}
