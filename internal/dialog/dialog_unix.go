//go:build !darwin && !windows

package dialog

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// zenity and kdialog cover near enough every Linux desktop; headless
// boxes get neither and the UI falls back to typing the path.
func pickFolder(ctx context.Context) (string, error) {
	if path, err := exec.LookPath("zenity"); err == nil {
		return runPicker(ctx, path, "--file-selection", "--directory", "--title=Select a folder")
	}
	if path, err := exec.LookPath("kdialog"); err == nil {
		return runPicker(ctx, path, "--getexistingdirectory")
	}
	return "", nil
}

func runPicker(ctx context.Context, bin string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, bin, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
