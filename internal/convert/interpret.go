// Package convert interprets the conversion endpoint's body. The field
// priorities below are part of the backend contract.
package convert

import (
	"fmt"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

const NoAudioMessage = "No audio URL returned from server."

// Body: union of every field either conversion endpoint may return
type Body struct {
	UnicodeText string `json:"unicodeText"`
	G2Text      string `json:"g2Text"`

	AudioURL string `json:"audioUrl"`
	URL      string `json:"url"`
	TTSURL   string `json:"tts_url"`

	Message string `json:"message"`
}

// BrailleText: unicodeText, then g2Text, then "". Empty is a legal result.
func BrailleText(b Body) string {
	return firstNonEmpty(b.UnicodeText, b.G2Text)
}

// AudioURL: audioUrl, then url, then tts_url. Nothing playable is a hard failure.
func AudioURL(b Body) (string, error) {
	u := firstNonEmpty(b.AudioURL, b.URL, b.TTSURL)
	if u == "" {
		return "", apperr.New(apperr.KindMissingArtifact, NoAudioMessage)
	}
	return u, nil
}

func Interpret(target ports.Target, b Body) (ports.ConversionResult, error) {
	switch target {
	case ports.TargetBraille:
		return ports.ConversionResult{Target: target, Text: BrailleText(b)}, nil
	case ports.TargetTTS:
		u, err := AudioURL(b)
		if err != nil {
			return ports.ConversionResult{}, err
		}
		return ports.ConversionResult{Target: target, AudioURL: u}, nil
	}
	return ports.ConversionResult{}, fmt.Errorf("unknown target %q", target)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
