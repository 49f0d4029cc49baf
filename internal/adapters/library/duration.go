package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

// DurationProbe returns a track's length in milliseconds.
type DurationProbe func(path string) (int, error)

// ProbeDuration decodes the mp3 header and derives the length from the
// decoded stream size. Other formats report 0 without an error.
func ProbeDuration(path string) (int, error) {
	if strings.ToLower(filepath.Ext(path)) != ".mp3" {
		return 0, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("library: open %s: %w", path, err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, fmt.Errorf("library: decode %s: %w", path, err)
	}
	length := decoder.Length()
	if length <= 0 || decoder.SampleRate() <= 0 {
		return 0, fmt.Errorf("library: %s has no samples", path)
	}

	// go-mp3 always decodes to 16-bit stereo: 4 bytes per sample frame.
	frames := length / 4
	return int(frames * 1000 / int64(decoder.SampleRate())), nil
}
