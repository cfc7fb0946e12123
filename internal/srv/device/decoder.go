package device

import (
	"bytes"
	"fmt"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"io"
)

// Decode picks the decoder from the magic bytes of content.
func Decode(content *bytes.Reader) (beep.StreamSeekCloser, beep.Format, error) {
	magic := make([]byte, 4)
	if _, err := content.ReadAt(magic, 0); err != nil && err != io.EOF {
		return nil, beep.Format{}, fmt.Errorf("Unable to read audio header: %v", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	switch string(magic) {
	case "fLaC":
		streamer, format, err = flac.Decode(content)
	case "OggS":
		streamer, format, err = vorbis.Decode(io.NopCloser(content))
	case "RIFF":
		streamer, format, err = wav.Decode(content)
	default:
		streamer, format, err = mp3.Decode(io.NopCloser(content))
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("Unable to decode audio: %v", err)
	}
	return streamer, format, nil
}
