// Package tone adjusts translated text for register and emphasis using the
// recent conversation context.
//
// Everything here is best-effort: a failure in tone adjustment must never
// fail the pipeline, so Enhance recovers internally and falls back to the
// unmodified translation. The context window only biases tone and formality —
// it never affects translation correctness.
package tone

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
)

// ContextType classifies an utterance for tone purposes.
type ContextType string

const (
	ContextGreeting ContextType = "greeting"
	ContextFarewell ContextType = "farewell"
	ContextQuestion ContextType = "question"
	ContextEmotion  ContextType = "emotion"
	ContextFormal   ContextType = "formal"
	ContextInformal ContextType = "informal"
	ContextNeutral  ContextType = "neutral"
)

// DefaultWindowSize is the number of utterances kept for tone inference.
const DefaultWindowSize = 10

// Entry is one remembered utterance.
type Entry struct {
	Text string      `json:"text"`
	Lang string      `json:"lang"`
	Type ContextType `json:"type"`
}

// Window is a bounded FIFO of recent utterances. Mutation is serialized by a
// single mutex so concurrent resolutions never interleave partial updates.
type Window struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
}

// NewWindow creates a window with the given capacity (DefaultWindowSize when
// non-positive).
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &Window{capacity: capacity}
}

// Append records an entry, evicting the oldest on overflow.
func (w *Window) Append(e Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, e)
	if len(w.entries) > w.capacity {
		w.entries = w.entries[len(w.entries)-w.capacity:]
	}
}

// Entries returns a copy of the window, oldest first.
func (w *Window) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Len returns the current number of entries.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// classification keyword tables. Keywords from several languages are kept in
// one list per type, the same way the source conversations mix languages.
var contextKeywords = []struct {
	typ   ContextType
	words []string
}{
	{ContextGreeting, []string{"hello", " hi ", "hey", "good morning", "bonjour", "salut", "hola", "buenos días", "guten tag", "hallo"}},
	{ContextFarewell, []string{"bye", "goodbye", "see you", "good night", "au revoir", "adiós", "hasta luego", "tschüss", "auf wiedersehen"}},
	{ContextFormal, []string{"sir", "madam", "monsieur", "madame", "señor", "señora", "please", "s'il vous plaît", "por favor", "bitte"}},
	{ContextInformal, []string{"dude", "bro", "mate", "buddy", "mec", "tío", "colega", "digger", "kumpel"}},
	{ContextEmotion, []string{"happy", "great", "awesome", "excellent", "wonderful", "fantastic", "sad", "terrible", "awful", "horrible", "heureux", "génial", "triste", "feliz", "excelente"}},
}

var questionWords = map[string]bool{
	"how": true, "what": true, "when": true, "where": true, "why": true, "who": true,
	"comment": true, "quoi": true, "quand": true, "pourquoi": true,
	"cómo": true, "qué": true, "cuándo": true, "dónde": true,
}

// Classify assigns a single context type to the utterance. Greeting and
// farewell cues outrank register cues, which outrank emotion; anything
// unmatched is neutral.
func Classify(text string) ContextType {
	lower := " " + strings.ToLower(text) + " "
	for _, group := range contextKeywords[:2] { // greeting, farewell
		for _, w := range group.words {
			if strings.Contains(lower, w) {
				return group.typ
			}
		}
	}
	if strings.Contains(text, "?") {
		return ContextQuestion
	}
	if fields := strings.Fields(lower); len(fields) > 0 && questionWords[strings.Trim(fields[0], ",.!")] {
		return ContextQuestion
	}
	for _, group := range contextKeywords[2:] { // formal, informal, emotion
		for _, w := range group.words {
			if strings.Contains(lower, w) {
				return group.typ
			}
		}
	}
	return ContextNeutral
}

// register substitutions for languages with distinct formal/informal
// grammatical forms.
var (
	frFormal = []substitution{
		{regexp.MustCompile(`(?i)\btu\b`), "vous"},
		{regexp.MustCompile(`(?i)\bton\b`), "votre"},
		{regexp.MustCompile(`(?i)\bta\b`), "votre"},
	}
	frInformal = []substitution{
		{regexp.MustCompile(`(?i)\bvous\b`), "tu"},
	}
	esFormal = []substitution{
		{regexp.MustCompile(`(?i)\btú\b`), "usted"},
	}
	deFormal = []substitution{
		{regexp.MustCompile(`(?i)\bdu\b`), "Sie"},
	}
)

type substitution struct {
	re   *regexp.Regexp
	with string
}

// Enhancer applies tone adjustments and maintains the context window.
type Enhancer struct {
	window *Window
}

// NewEnhancer wraps a context window.
func NewEnhancer(w *Window) *Enhancer {
	if w == nil {
		w = NewWindow(DefaultWindowSize)
	}
	return &Enhancer{window: w}
}

// Window exposes the underlying context window.
func (e *Enhancer) Window() *Window { return e.window }

// Enhance classifies the original utterance, biases the translation's
// register, preserves emphasis, and records the original in the context
// window. On any internal failure the translation is returned unchanged.
func (e *Enhancer) Enhance(original, translated, srcLang, tgtLang string) (out string) {
	out = translated
	defer func() {
		if recover() != nil {
			out = translated
		}
	}()

	ct := Classify(original)

	switch ct {
	case ContextFormal:
		out = applyRegister(out, tgtLang, true)
	case ContextInformal:
		out = applyRegister(out, tgtLang, false)
	}

	out = preserveEmphasis(original, out)

	e.window.Append(Entry{Text: original, Lang: srcLang, Type: ct})
	return out
}

func applyRegister(text, lang string, formal bool) string {
	var subs []substitution
	switch lang {
	case "fr":
		if formal {
			subs = frFormal
		} else {
			subs = frInformal
		}
	case "es":
		if formal {
			subs = esFormal
		}
	case "de":
		if formal {
			subs = deFormal
		}
	}
	for _, s := range subs {
		text = s.re.ReplaceAllString(text, s.with)
	}
	return text
}

// preserveEmphasis keeps exclamation intensity and shouted case from being
// flattened: trailing "!" runs are carried over (capped at three) and a
// substantially upper-case original keeps an upper-case translation.
func preserveEmphasis(original, translated string) string {
	exclamations := strings.Count(original, "!")
	if exclamations > 0 && strings.Count(translated, "!") < exclamations {
		if exclamations > 3 {
			exclamations = 3
		}
		translated = strings.TrimRight(translated, ".!") + strings.Repeat("!", exclamations)
	}
	if isShouted(original) && !isShouted(translated) {
		translated = strings.ToUpper(translated)
	}
	return translated
}

// isShouted reports whether the text is substantially upper-case: at least
// five letters, 70% or more of them capitals.
func isShouted(s string) bool {
	var letters, uppers int
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	return letters >= 5 && float64(uppers) >= 0.7*float64(letters)
}
