// Package filestore stores uploaded binary objects (avatars) and returns the
// path under which they were saved.
package filestore

import (
	"context"
	"io"
)

// Store saves an uploaded file into a folder namespaced by the owner and
// returns the stored path.
type Store interface {
	Save(ctx context.Context, file io.Reader, folder, ownerID, fileName string) (string, error)
}
