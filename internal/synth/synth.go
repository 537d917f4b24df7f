// Package synth defines the interface for speech synthesis of translated text.
//
// Voxlate uses synthesis to speak translations aloud, and in voice-preserving
// mode to speak them with a voice model converted from the original speaker.
package synth

import "context"

// Opts controls synthesis behavior.
type Opts struct {
	// Language is the ISO-639-1 code (e.g., "en", "fr", "es") to select the voice.
	Language string

	// Voice overrides automatic language-based voice selection. In
	// voice-preserving mode this carries the active voice model name.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Synthesize generates audio from the given text. The result is a
	// complete WAV file.
	Synthesize(ctx context.Context, text string, opts Opts) (*Result, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// Result holds the output of synthesis.
type Result struct {
	// Audio is the synthesized audio as a WAV file.
	Audio []byte

	// ContentType is the MIME type of the audio (e.g., "audio/wav").
	ContentType string

	// SampleRate is the audio sample rate in Hz (e.g., 22050).
	SampleRate int

	// Channels is the number of audio channels (typically 1).
	Channels int
}
