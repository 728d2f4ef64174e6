package workflow

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

// OpenFile loads a file for SelectFile. The size is checked from the file
// info first so an oversized file never gets read.
func OpenFile(path string, msgs Messages) (ports.SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ports.SourceFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return ports.SourceFile{}, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > ports.MaxFileSize {
		return ports.SourceFile{}, apperr.New(apperr.KindPrecondition, msgs.FileTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ports.SourceFile{}, fmt.Errorf("read %s: %w", path, err)
	}

	return ports.SourceFile{
		Name:        filepath.Base(path),
		ContentType: contentType(path, data),
		Data:        data,
	}, nil
}

func contentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
