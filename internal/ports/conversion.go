package ports

import (
	"fmt"
	"time"
)

type Target string

const (
	TargetBraille Target = "braille"
	TargetTTS     Target = "tts"
)

func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case TargetBraille, TargetTTS:
		return Target(s), nil
	}
	return "", fmt.Errorf("unknown target %q", s)
}

type Tab string

const (
	TabText Tab = "text"
	TabFile Tab = "file"
)

// MaxFileSize: 10 MiB, checked when the file is selected
const MaxFileSize int64 = 10 * 1024 * 1024

// Implicit name and type of raw text submissions
const (
	TextFileName    = "input.txt"
	TextContentType = "text/plain"
)

// SourceFile: payload of a single upload
type SourceFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f SourceFile) Size() int64 {
	return int64(len(f.Data))
}

// TextFile wraps raw text the same way a selected file is sent.
func TextFile(text string) SourceFile {
	return SourceFile{
		Name:        TextFileName,
		ContentType: TextContentType,
		Data:        []byte(text),
	}
}

// UploadedResource: what the upload endpoint returns
type UploadedResource struct {
	ID       string `json:"_id"`
	Filename string `json:"filename,omitempty"`
	URL      string `json:"cloudinary_url,omitempty"`
	Message  string `json:"message,omitempty"`
}

type ConversionResult struct {
	Target   Target `json:"target"`
	Text     string `json:"text,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
}

// Value returns whichever slot the target fills.
func (r ConversionResult) Value() string {
	if r.Target == TargetTTS {
		return r.AudioURL
	}
	return r.Text
}

// FileRecord: one entry of GET /api/files
type FileRecord struct {
	ID                string    `json:"_id"`
	Filename          string    `json:"filename"`
	OriginalURL       string    `json:"cloudinary_url"`
	CreatedAt         time.Time `json:"createdAt"`
	ConvertedType     string    `json:"convertedType"`
	ConvertedURL      string    `json:"converted_url"`
	BrailleUnicodeURL string    `json:"braille_unicode_url"`
}

type Artifact struct {
	Label string
	URL   string
}

// Artifacts lists what can be downloaded for the record.
func (f FileRecord) Artifacts() []Artifact {
	var out []Artifact
	switch Target(f.ConvertedType) {
	case TargetBraille:
		if f.ConvertedURL != "" {
			out = append(out, Artifact{Label: "brf", URL: f.ConvertedURL})
		}
		if f.BrailleUnicodeURL != "" {
			out = append(out, Artifact{Label: "txt", URL: f.BrailleUnicodeURL})
		}
	case TargetTTS:
		if f.ConvertedURL != "" {
			out = append(out, Artifact{Label: "audio", URL: f.ConvertedURL})
		}
	}
	return out
}

func (f FileRecord) Converted() bool {
	return f.ConvertedType == string(TargetBraille) || f.ConvertedType == string(TargetTTS)
}
