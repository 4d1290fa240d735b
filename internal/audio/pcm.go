package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// PCMBytes reads a WAV file and returns its raw sample data as little-endian
// signed 16-bit bytes, plus the file's sample rate. Backends that accept
// audio/l16 payloads consume this form directly.
func PCMBytes(path string) ([]byte, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, errors.New("wav contains no samples")
	}

	out := make([]byte, len(buf.Data)*2)
	for i, s := range buf.Data {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s)))
	}
	return out, int(dec.SampleRate), nil
}
