package files

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
	"github.com/Vovarama1992/braille_bridge/internal/backend"
	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

type service struct {
	backend ports.Backend
	sink    ports.ArtifactSink
	log     *logger.ZapLogger
}

// NewService: sink may be nil when nothing is stored locally
func NewService(b ports.Backend, sink ports.ArtifactSink, log *logger.ZapLogger) Service {
	return &service{backend: b, sink: sink, log: log}
}

func (s *service) List(ctx context.Context, sess ports.Session) ([]ports.FileRecord, error) {
	if !sess.Valid() {
		return nil, ErrNotLoggedIn
	}

	raw, err := s.backend.ListFiles(ctx, sess.Token)
	if err != nil {
		s.warn("list files", err)
		return nil, apperr.Wrap(apperr.KindTransport, MsgFetchFailed, err)
	}
	if raw.StatusCode == http.StatusUnauthorized || raw.StatusCode == http.StatusForbidden {
		return nil, apperr.Newf(apperr.KindAuthRejected, "%s (status %d)", MsgFetchFailed, raw.StatusCode)
	}
	if !raw.OK() {
		return nil, apperr.Newf(apperr.KindUnknown, "%s (status %d)", MsgFetchFailed, raw.StatusCode)
	}

	p := backend.Parse[[]ports.FileRecord](raw)
	if p.Malformed {
		return nil, apperr.Wrap(apperr.KindMalformedResponse, MsgFetchFailed, p.Cause)
	}
	if p.Value == nil {
		return []ports.FileRecord{}, nil
	}
	return p.Value, nil
}

// Delete: confirmation is the caller's job
func (s *service) Delete(ctx context.Context, sess ports.Session, id string) (string, error) {
	if !sess.Valid() {
		return "", ErrNotLoggedIn
	}
	if id == "" {
		return "", apperr.New(apperr.KindPrecondition, MsgDeleteFailed+": missing file id")
	}

	raw, err := s.backend.DeleteFile(ctx, sess.Token, id)
	if err != nil {
		s.warn("delete file "+id, err)
		return "", apperr.Wrap(apperr.KindTransport, MsgDeleteFailed+": "+apperr.Message(err, MsgDeleteFailed), err)
	}

	p := backend.Parse[backend.MessageBody](raw)
	if p.Malformed {
		return "", apperr.Wrap(apperr.KindMalformedResponse, MsgDeleteFailed+": invalid response", p.Cause)
	}
	if !raw.OK() {
		return "", apperr.New(apperr.KindUnknown, MsgDeleteFailed+": "+apperr.ServerMessage(p.Value.Message, MsgDeleteFailed))
	}

	return MsgDeleted, nil
}

func (s *service) Fetch(ctx context.Context, sess ports.Session, url, name string) (Blob, error) {
	if url == "" {
		return Blob{}, apperr.New(apperr.KindPrecondition, MsgNoPreview)
	}
	if name == "" {
		name = "file"
	}

	// listing with the caller's token also validates it upstream
	recs, err := s.List(ctx, sess)
	if err != nil {
		return Blob{}, err
	}
	if !owns(recs, url) {
		return Blob{}, ErrNotOwned
	}

	data, ct, err := s.backend.Fetch(ctx, url)
	if err != nil {
		s.warn("download "+url, err)
		return Blob{}, apperr.Wrap(apperr.KindTransport, MsgDownloadFailed, err)
	}
	if ct == "" {
		ct = "application/octet-stream"
	}

	return Blob{Name: name + "." + Extension(url), ContentType: ct, Data: data}, nil
}

// Download stores the artifact as <name>.<ext>, ext taken from the url.
func (s *service) Download(ctx context.Context, sess ports.Session, url, name string) (string, error) {
	if s.sink == nil {
		return "", apperr.New(apperr.KindUnknown, MsgDownloadFailed)
	}

	blob, err := s.Fetch(ctx, sess, url, name)
	if err != nil {
		return "", err
	}

	loc, err := s.sink.Put(ctx, blob.Name, blob.Data, blob.ContentType)
	if err != nil {
		s.warn("store download", err)
		return "", apperr.Wrap(apperr.KindUnknown, MsgDownloadFailed, err)
	}
	return loc, nil
}

func owns(recs []ports.FileRecord, url string) bool {
	for _, r := range recs {
		if url == r.OriginalURL || url == r.ConvertedURL || url == r.BrailleUnicodeURL {
			return true
		}
	}
	return false
}

// Extension: part after the last '.', query string dropped
func Extension(url string) string {
	ext := url
	if i := strings.LastIndex(url, "."); i >= 0 {
		ext = url[i+1:]
	}
	if i := strings.Index(ext, "?"); i >= 0 {
		ext = ext[:i]
	}
	return ext
}

// View returns the url to open, or the user-facing reason it cannot.
func View(url string) (string, error) {
	if url == "" {
		return "", apperr.New(apperr.KindPrecondition, MsgNoPreview)
	}
	return url, nil
}

func ViewOriginal(f ports.FileRecord) (string, error) {
	if f.OriginalURL == "" {
		return "", apperr.New(apperr.KindPrecondition, MsgNoOriginal)
	}
	return f.OriginalURL, nil
}

func (s *service) warn(msg string, err error) {
	if s.log == nil {
		return
	}
	s.log.Log(logger.LogEntry{Level: "warn", Message: fmt.Sprintf("[files] %s", msg), Service: "braille_bridge", Error: err})
}
