package song

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrWarmupTimeout indicates the singing model never left its loading
// state within the allowed retry budget.
var ErrWarmupTimeout = errors.New("singing model is still warming up")

// ErrGenerationTimeout indicates the overall wall-clock cap was exceeded.
var ErrGenerationTimeout = errors.New("song generation timed out")

// Generator converts short lyrics into sung WAV audio.
type Generator interface {
	Sing(ctx context.Context, lyrics string) ([]byte, error)
}

// wrapLyrics surrounds the text with the note markers Bark interprets as
// singing mode.
func wrapLyrics(lyrics string) string {
	return fmt.Sprintf("♪ %s ♪", strings.TrimSpace(lyrics))
}

func truncateBody(body []byte, max int) string {
	text := strings.TrimSpace(string(body))
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}
