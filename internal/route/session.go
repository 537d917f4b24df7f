// Package route decides the source/target language pair for each utterance.
//
// A Session owns the conversation state for one bidirectional conversation:
// language A speakers hear language B and vice versa. Detection on very short
// text is unreliable, so short utterances reuse the previous routing decision,
// and only confident detections update the routing memory.
package route

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/voxlate/voxlate/internal/event"
)

const (
	defaultThreshold = 0.8
	minWords         = 3
	minChars         = 10
)

// Config describes one conversation session.
type Config struct {
	// Enabled turns conversation routing on. When false every utterance is
	// routed DefaultSource→DefaultTarget unchanged.
	Enabled bool

	// LanguageA and LanguageB are the conversation pair for non-auto mode.
	LanguageA string
	LanguageB string

	// AutoMode pairs any detected language with the most recently used other
	// language instead of the fixed A/B pair.
	AutoMode bool

	// DefaultSource and DefaultTarget are the static pair used when routing
	// is disabled; DefaultTarget is also the auto-mode fallback target.
	DefaultSource string
	DefaultTarget string

	// ConfidenceThreshold is the minimum detection confidence for a routing
	// decision to update session memory. Defaults to 0.8.
	ConfidenceThreshold float64
}

// Decision is the outcome of routing one utterance.
type Decision struct {
	SourceLang string  `json:"source_lang"`
	TargetLang string  `json:"target_lang"`
	Confidence float64 `json:"confidence"`
}

// Stats is a snapshot of session routing history.
type Stats struct {
	Detections    map[string]int `json:"detections"`
	AverageConf   float64        `json:"average_confidence"`
	LastDetected  string         `json:"last_detected"`
	TotalRoutings int            `json:"total_routings"`
}

// Session holds the mutable conversation state. All reads and writes of the
// state go through a single mutex so concurrent utterances never observe a
// partially updated direction.
type Session struct {
	mu       sync.Mutex
	cfg      Config
	detector Detector

	lastDetected string
	last         Decision
	recent       []string // session languages, most recent last

	detections map[string]int
	confSum    float64
	routings   int
}

// NewSession creates a session. detector may be nil only when routing is
// disabled.
func NewSession(cfg Config, detector Detector) *Session {
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = defaultThreshold
	}
	cfg.LanguageA = NormalizeLang(cfg.LanguageA)
	cfg.LanguageB = NormalizeLang(cfg.LanguageB)
	cfg.DefaultTarget = NormalizeLang(cfg.DefaultTarget)
	if cfg.DefaultSource != "" && cfg.DefaultSource != "auto" {
		cfg.DefaultSource = NormalizeLang(cfg.DefaultSource)
	}
	return &Session{
		cfg:      cfg,
		detector: detector,
		// Until the first confident detection, fall back to A→B.
		last:       Decision{SourceLang: cfg.LanguageA, TargetLang: cfg.LanguageB, Confidence: 1.0},
		detections: make(map[string]int),
	}
}

// Resolve decides the language pair for one utterance.
func (s *Session) Resolve(utt *event.Utterance) Decision {
	if !s.cfg.Enabled {
		return Decision{
			SourceLang: s.cfg.DefaultSource,
			TargetLang: s.cfg.DefaultTarget,
			Confidence: 1.0,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	text := strings.TrimSpace(utt.Text)
	if len(strings.Fields(text)) < minWords && len([]rune(text)) < minChars {
		// Too short for reliable detection: reuse the previous decision.
		return s.last
	}

	lang, conf := s.detect(utt, text)
	confident := lang != "" && conf >= s.cfg.ConfidenceThreshold

	var dec Decision
	if s.cfg.AutoMode {
		dec = s.resolveAuto(lang, conf)
	} else {
		dec = s.resolveFixed(lang, conf, confident)
	}

	if confident {
		s.lastDetected = lang
		s.last = dec
		s.remember(dec.SourceLang)
		s.remember(dec.TargetLang)
		s.detections[lang]++
		s.confSum += conf
	}
	s.routings++

	slog.Debug("conversation routing",
		"detected", lang,
		"confidence", conf,
		"source", dec.SourceLang,
		"target", dec.TargetLang)
	return dec
}

func (s *Session) detect(utt *event.Utterance, text string) (string, float64) {
	if utt.DetectedLanguage != "" && utt.DetectedLanguage != "auto" {
		return NormalizeLang(utt.DetectedLanguage), 1.0
	}
	if s.detector == nil {
		return "", 0
	}
	lang, conf := s.detector.Detect(text)
	return NormalizeLang(lang), conf
}

// resolveFixed implements the bidirectional A↔B rule: an utterance detected
// as A routes A→B, one detected as B routes B→A, and anything ambiguous
// reuses the last direction without corrupting routing memory.
func (s *Session) resolveFixed(lang string, conf float64, confident bool) Decision {
	switch {
	case confident && lang == s.cfg.LanguageA:
		return Decision{SourceLang: s.cfg.LanguageA, TargetLang: s.cfg.LanguageB, Confidence: conf}
	case confident && lang == s.cfg.LanguageB:
		return Decision{SourceLang: s.cfg.LanguageB, TargetLang: s.cfg.LanguageA, Confidence: conf}
	default:
		return Decision{SourceLang: s.last.SourceLang, TargetLang: s.last.TargetLang, Confidence: conf}
	}
}

// resolveAuto pairs the detected language with the most recently used other
// language in the session, defaulting to the configured target.
func (s *Session) resolveAuto(lang string, conf float64) Decision {
	if lang == "" {
		return Decision{SourceLang: s.last.SourceLang, TargetLang: s.last.TargetLang, Confidence: conf}
	}
	target := s.recentOther(lang)
	if target == "" {
		target = s.cfg.DefaultTarget
	}
	if target == "" || target == lang {
		target = s.cfg.LanguageA
		if target == lang {
			target = s.cfg.LanguageB
		}
	}
	return Decision{SourceLang: lang, TargetLang: target, Confidence: conf}
}

func (s *Session) recentOther(lang string) string {
	for i := len(s.recent) - 1; i >= 0; i-- {
		if s.recent[i] != lang {
			return s.recent[i]
		}
	}
	return ""
}

func (s *Session) remember(lang string) {
	if lang == "" {
		return
	}
	// Keep a short, most-recent-last list without duplicates.
	for i, l := range s.recent {
		if l == lang {
			s.recent = append(s.recent[:i], s.recent[i+1:]...)
			break
		}
	}
	s.recent = append(s.recent, lang)
	if len(s.recent) > 8 {
		s.recent = s.recent[1:]
	}
}

// ShouldTranslate reports whether the decision needs a translation at all.
func (s *Session) ShouldTranslate(d Decision) bool {
	return d.SourceLang != d.TargetLang
}

// LastDetected returns the last confidently detected language.
func (s *Session) LastDetected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDetected
}

// Stats returns a snapshot of the session's detection history.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	detections := make(map[string]int, len(s.detections))
	var total int
	for k, v := range s.detections {
		detections[k] = v
		total += v
	}
	var avg float64
	if total > 0 {
		avg = s.confSum / float64(total)
	}
	return Stats{
		Detections:    detections,
		AverageConf:   avg,
		LastDetected:  s.lastDetected,
		TotalRoutings: s.routings,
	}
}

// Reset clears the session routing memory, as on conversation disable.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDetected = ""
	s.last = Decision{SourceLang: s.cfg.LanguageA, TargetLang: s.cfg.LanguageB, Confidence: 1.0}
	s.recent = nil
	s.detections = make(map[string]int)
	s.confSum = 0
	s.routings = 0
}
