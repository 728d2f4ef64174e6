// Package export stores conversion artifacts: the converted Braille text and
// downloaded audio or dashboard files.
package export

import (
	"context"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

const (
	BrailleFileName = "converted-braille.txt"
	SpeechFileName  = "speech.mp3"

	MsgAudioDownloadFailed = "Failed to download audio."
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

func SaveBraille(ctx context.Context, sink ports.ArtifactSink, text string) (string, error) {
	return sink.Put(ctx, BrailleFileName, []byte(text), "text/plain")
}

// SaveSpeech fetches the audio behind url. An empty url is a no-op.
func SaveSpeech(ctx context.Context, f Fetcher, sink ports.ArtifactSink, url string) (string, error) {
	if url == "" {
		return "", nil
	}

	data, ct, err := f.Fetch(ctx, url)
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransport, MsgAudioDownloadFailed, err)
	}
	if ct == "" {
		ct = "audio/mpeg"
	}

	loc, err := sink.Put(ctx, SpeechFileName, data, ct)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnknown, MsgAudioDownloadFailed, err)
	}
	return loc, nil
}
