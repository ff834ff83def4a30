// Package dialog shells out to the platform's native folder picker.
// A cancelled or unavailable dialog yields an empty path, not an error.
package dialog

import (
	"context"
	"time"
)

// pickTimeout bounds how long the dialog may sit open.
const pickTimeout = 120 * time.Second

// PickFolder opens the native folder chooser and returns the selected
// absolute path, or "" when the user cancels or no dialog is available.
func PickFolder(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pickTimeout)
	defer cancel()
	return pickFolder(ctx)
}
