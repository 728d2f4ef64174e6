package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

// LocalSink writes artifacts into a directory
type LocalSink struct {
	Dir string
}

var _ ports.ArtifactSink = (*LocalSink)(nil)

func NewLocalSink(dir string) *LocalSink {
	return &LocalSink{Dir: dir}
}

func (s *LocalSink) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("export dir: %w", err)
	}

	path := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// NewSink picks the bucket when one is configured, else the local directory.
func NewSink(ctx context.Context, dir string, s3 *S3Config) (ports.ArtifactSink, error) {
	if s3 == nil {
		return NewLocalSink(dir), nil
	}
	sink, err := NewS3Sink(ctx, *s3)
	if err != nil {
		return nil, err
	}
	return sink, nil
}
