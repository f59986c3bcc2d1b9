package storage

import (
	"context"
)

// Client is the object-store surface used to mirror gamelist backups.
type Client interface {
	UploadFile(ctx context.Context, key, filePath string, contentType string) error
}
