// Package capture records microphone audio for manual submission to the
// service. It is independent of the HTTP pipeline.
//
// The recorder is a two-state machine (Idle -> Recording -> Idle) driven by a
// single stop signal.
package capture

import (
	stderrors "errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

// Canonical capture format, matching what the normalizer would produce.
const (
	SampleRate      = 16000
	Channels        = 1
	BitDepth        = 16
	FramesPerBuffer = 1024
)

// State is the recorder's lifecycle state.
type State int

const (
	// Idle means no capture is in progress.
	Idle State = iota
	// Recording means samples are being read from the input device.
	Recording
)

// Recorder captures audio from the default input device.
type Recorder struct {
	mu    sync.Mutex
	state State
}

// NewRecorder initializes the audio subsystem. Call Close when done.
func NewRecorder() (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize audio subsystem: %w", err)
	}
	return &Recorder{}, nil
}

// Close tears down the audio subsystem.
func (r *Recorder) Close() error {
	return portaudio.Terminate()
}

// State returns the recorder's current state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Record captures from the default input device until stop is closed, then
// writes the capture to path as mono 16 kHz signed 16-bit WAV.
func (r *Recorder) Record(path string, stop <-chan struct{}) error {
	r.mu.Lock()
	if r.state != Idle {
		r.mu.Unlock()
		return stderrors.New("capture already in progress")
	}
	r.state = Recording
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.state = Idle
		r.mu.Unlock()
	}()

	buf := make([]int16, FramesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(Channels, 0, float64(SampleRate), FramesPerBuffer, buf)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}
	defer stream.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	enc := wav.NewEncoder(f, SampleRate, BitDepth, Channels, 1)

	if err := stream.Start(); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("start input stream: %w", err)
	}

	var captureErr error
loop:
	for {
		select {
		case <-stop:
			break loop
		default:
		}

		if err := stream.Read(); err != nil {
			// Overflow drops samples but the stream stays usable.
			if stderrors.Is(err, portaudio.InputOverflowed) {
				continue
			}
			captureErr = fmt.Errorf("read input stream: %w", err)
			break loop
		}

		if err := enc.Write(intBuffer(buf)); err != nil {
			captureErr = fmt.Errorf("write capture: %w", err)
			break loop
		}
	}

	if err := stream.Stop(); err != nil && captureErr == nil {
		captureErr = fmt.Errorf("stop input stream: %w", err)
	}
	if err := enc.Close(); err != nil && captureErr == nil {
		captureErr = fmt.Errorf("finalize capture: %w", err)
	}
	if err := f.Close(); err != nil && captureErr == nil {
		captureErr = err
	}
	return captureErr
}

func intBuffer(samples []int16) *audio.IntBuffer {
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: Channels,
			SampleRate:  SampleRate,
		},
		Data:           data,
		SourceBitDepth: BitDepth,
	}
}
