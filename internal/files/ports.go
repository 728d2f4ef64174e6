package files

import (
	"context"
	"errors"

	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

const (
	MsgFetchFailed    = "Failed to fetch files"
	MsgDeleted        = "File deleted successfully!"
	MsgDeleteFailed   = "Failed to delete file"
	MsgDownloadFailed = "Failed to download the file."
	MsgNoPreview      = "File not available for preview."
	MsgNoOriginal     = "Original file not available."
	MsgNotOwned       = "File not found in your files."
)

// ErrNotLoggedIn: caller should route to sign-in
var ErrNotLoggedIn = errors.New("not logged in")

// ErrNotOwned: the url is not an artifact of any of the caller's records
var ErrNotOwned = errors.New(MsgNotOwned)

// Blob: a fetched artifact, named <name>.<ext>
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}

type Service interface {
	List(ctx context.Context, sess ports.Session) ([]ports.FileRecord, error)
	Delete(ctx context.Context, sess ports.Session, id string) (string, error)
	// Fetch returns the artifact behind url once it is found among the
	// caller's records.
	Fetch(ctx context.Context, sess ports.Session, url, name string) (Blob, error)
	// Download is Fetch plus storing the blob in the sink.
	Download(ctx context.Context, sess ports.Session, url, name string) (string, error)
}
