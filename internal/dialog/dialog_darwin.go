package dialog

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

const chooseFolderScript = `
tell application "System Events"
	activate
	set theFolder to choose folder with prompt "Select a folder"
	return POSIX path of theFolder
end tell
`

func pickFolder(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", chooseFolderScript).Output()
	if err != nil {
		// user hit cancel
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
