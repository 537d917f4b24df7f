// Package mode holds the active operating mode and its timing/quality policy.
//
// The mode manager is the sole contract between the pipeline and the external
// segmentation trigger: the recognizer asks for the active policy's silence
// threshold to decide when an utterance is complete. No other component reads
// the mode directly.
package mode

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Mode is the closed set of operating modes. Unrecognized strings never reach
// the segmentation trigger — use ParseMode at the API boundary.
type Mode string

const (
	// Standard translates sentences after they are completed.
	Standard Mode = "standard"

	// Simultaneous translates in near real-time with a very short pause gate.
	Simultaneous Mode = "simultaneous"

	// Universal auto-detects the spoken language and translates in real-time.
	Universal Mode = "universal"

	// VoicePreserving translates while keeping the speaker's voice qualities.
	// It requires an active voice-conversion model.
	VoicePreserving Mode = "voice_preserving"
)

// ErrModeUnavailable is returned when a requested mode cannot be satisfied,
// e.g. VoicePreserving without an active voice model. The previous mode stays
// active; the condition is reported, never silently downgraded.
var ErrModeUnavailable = errors.New("mode unavailable")

// Policy is the fixed behavior record attached to a mode.
type Policy struct {
	// SilenceThreshold is how long a pause must last before the upstream
	// recognizer considers an utterance complete.
	SilenceThreshold time.Duration `json:"silence_threshold"`

	// AutoDetect enables automatic language detection for routing.
	AutoDetect bool `json:"auto_detect"`

	// RequiresVoiceModel gates the mode on an active voice-conversion model.
	RequiresVoiceModel bool `json:"requires_voice_model"`
}

var policies = map[Mode]Policy{
	Standard:        {SilenceThreshold: 1500 * time.Millisecond},
	Simultaneous:    {SilenceThreshold: 300 * time.Millisecond},
	Universal:       {SilenceThreshold: 500 * time.Millisecond, AutoDetect: true},
	VoicePreserving: {SilenceThreshold: 1 * time.Second, RequiresVoiceModel: true},
}

// ParseMode validates a mode string from config or the API.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if _, ok := policies[m]; !ok {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

// Modes lists every known mode.
func Modes() []Mode {
	return []Mode{Standard, Simultaneous, Universal, VoicePreserving}
}

// VoiceModelSource reports whether a voice-conversion model is currently
// active. The synthesis model registry implements it.
type VoiceModelSource interface {
	Active() bool
}

// Manager serializes mode transitions and records translation latency.
type Manager struct {
	mu      sync.Mutex
	current Mode
	voice   VoiceModelSource

	translations int64
	avgLatencyMS float64
	lastAt       time.Time
}

// NewManager creates a manager starting in the given mode. voice may be nil
// when no synthesis stack is configured; VoicePreserving is then unavailable.
func NewManager(initial Mode, voice VoiceModelSource) (*Manager, error) {
	if _, ok := policies[initial]; !ok {
		return nil, fmt.Errorf("unknown mode %q", initial)
	}
	m := &Manager{current: initial, voice: voice}
	if err := m.Set(initial); err != nil {
		return nil, err
	}
	return m, nil
}

// Current returns the active mode.
func (m *Manager) Current() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Policy returns the active mode's policy record.
func (m *Manager) Policy() Policy {
	m.mu.Lock()
	defer m.mu.Unlock()
	return policies[m.current]
}

// PolicyFor returns the policy attached to an arbitrary mode.
func PolicyFor(mode Mode) (Policy, bool) {
	p, ok := policies[mode]
	return p, ok
}

// Set transitions to the target mode. When the target requires a voice model
// and none is active it returns ErrModeUnavailable and leaves the current
// mode unchanged.
func (m *Manager) Set(target Mode) error {
	p, ok := policies[target]
	if !ok {
		return fmt.Errorf("unknown mode %q", target)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.RequiresVoiceModel && (m.voice == nil || !m.voice.Active()) {
		return fmt.Errorf("%w: %s requires an active voice-conversion model", ErrModeUnavailable, target)
	}
	m.current = target
	return nil
}

// RecordTranslation folds one resolution latency into the running metrics.
func (m *Manager) RecordTranslation(latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.translations++
	ms := float64(latency.Milliseconds())
	m.avgLatencyMS += (ms - m.avgLatencyMS) / float64(m.translations)
	m.lastAt = time.Now()
}

// Metrics is a point-in-time snapshot of the manager's counters.
type Metrics struct {
	Mode         Mode      `json:"mode"`
	Translations int64     `json:"translations"`
	AvgLatencyMS float64   `json:"avg_latency_ms"`
	LastAt       time.Time `json:"last_at"`
}

// Metrics returns a snapshot of the current mode and latency counters.
func (m *Manager) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Metrics{
		Mode:         m.current,
		Translations: m.translations,
		AvgLatencyMS: m.avgLatencyMS,
		LastAt:       m.lastAt,
	}
}
