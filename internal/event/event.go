// Package event defines the core data types flowing through the voxlate pipeline.
package event

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Backend identifiers reported in Result.Backend.
const (
	BackendOnline        = "online"
	BackendOfflineDirect = "offline_direct"
	BackendOfflinePivot  = "offline_pivot"

	// BackendNone marks a degraded result: every translation attempt was
	// exhausted and the text is passed through unchanged. Consumers must
	// treat it as "translation unavailable", not as a valid translation.
	BackendNone = "none"
)

// Utterance is one recognized, pause-delimited unit of speech. It is created
// by the external recognizer, consumed once by the pipeline, and never mutated.
type Utterance struct {
	// ID is a unique identifier for this utterance (UUID).
	ID string `json:"id"`

	// Text is the recognized text.
	Text string `json:"text"`

	// DetectedLanguage is the ISO-639-1 code reported by the recognizer,
	// if it performed its own detection. Empty means unknown.
	DetectedLanguage string `json:"detected_language,omitempty"`

	// Confidence is the recognizer's confidence in Text.
	Confidence float64 `json:"confidence"`

	// Timestamp is when the utterance was completed.
	Timestamp time.Time `json:"timestamp"`

	// Mode is the operating mode active when the utterance was segmented.
	Mode string `json:"mode,omitempty"`
}

// NewUtterance builds an utterance with a fresh ID and timestamp.
func NewUtterance(text string) *Utterance {
	return &Utterance{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: time.Now(),
	}
}

// Key addresses a translation in both cache tiers. The text is trimmed and
// compared case-insensitively, but stored with its original casing.
type Key struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// NewKey builds a cache key for the given text and language pair.
func NewKey(text, sourceLang, targetLang string) Key {
	return Key{
		Text:       strings.TrimSpace(text),
		SourceLang: sourceLang,
		TargetLang: targetLang,
	}
}

// Hash returns the durable cache address for the key. Casing does not
// participate in addressing, only in storage.
func (k Key) Hash() string {
	sum := md5.Sum([]byte(strings.ToLower(k.Text) + ":" + k.SourceLang + ":" + k.TargetLang))
	return hex.EncodeToString(sum[:])
}

// Result is the outcome of resolving one translation.
//
// Confidence is a quality indicator, not a probability: online backends
// report 1.0, direct offline 0.85, pivot offline 0.75, and a cache hit
// inherits the confidence of the originally resolved translation.
type Result struct {
	TranslatedText string  `json:"translated_text"`
	Confidence     float64 `json:"confidence"`
	Backend        string  `json:"backend"`
	Cached         bool    `json:"cached"`
}

// Degraded reports whether the result means "translation unavailable".
func (r Result) Degraded() bool {
	return r.Backend == BackendNone || r.Confidence == 0
}

// Translation is the event emitted once an utterance has been resolved.
// It is consumed externally by synthesis and caption display.
type Translation struct {
	UtteranceID    string  `json:"utterance_id"`
	SourceText     string  `json:"source_text"`
	TranslatedText string  `json:"translated_text"`
	SourceLang     string  `json:"source_lang"`
	TargetLang     string  `json:"target_lang"`

	// Confidence is the translation-quality confidence of the result.
	Confidence float64 `json:"confidence"`

	// RoutingConfidence is the router's certainty that SourceLang is
	// correct. It is distinct from Confidence.
	RoutingConfidence float64 `json:"routing_confidence"`

	Backend string `json:"backend"`
	Cached  bool   `json:"cached"`

	// Mode is the operating mode active when the utterance was resolved.
	Mode string `json:"mode"`

	// SynthesisRequested is set when voice-preserving mode is active and a
	// voice model is loaded, telling the synthesis consumer to speak the
	// translated text with the preserved voice.
	SynthesisRequested bool `json:"synthesis_requested"`

	// Audio carries the synthesized speech when synthesis was requested and
	// succeeded; empty otherwise. Synthesis is best-effort and never fails
	// the translation.
	Audio            []byte `json:"audio,omitempty"`
	AudioContentType string `json:"audio_content_type,omitempty"`

	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}
