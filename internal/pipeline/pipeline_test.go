package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/voxlate/voxlate/internal/cache"
	"github.com/voxlate/voxlate/internal/event"
	"github.com/voxlate/voxlate/internal/history"
	"github.com/voxlate/voxlate/internal/lexicon"
	"github.com/voxlate/voxlate/internal/mode"
	"github.com/voxlate/voxlate/internal/route"
	"github.com/voxlate/voxlate/internal/storage"
	"github.com/voxlate/voxlate/internal/synth"
	"github.com/voxlate/voxlate/internal/tone"
	"github.com/voxlate/voxlate/internal/translate"
)

type stubDetector struct {
	lang string
	conf float64
}

func (d stubDetector) Detect(string) (string, float64) { return d.lang, d.conf }

type activeVoice struct{ active bool }

func (v activeVoice) Active() bool { return v.active }

// namedVoice carries a model name alongside the active flag, like the
// synthesis model registry does.
type namedVoice struct {
	active bool
	name   string
}

func (v namedVoice) Active() bool        { return v.active }
func (v namedVoice) ActiveModel() string { return v.name }

// stubSynth records synthesis requests and returns scripted audio.
type stubSynth struct {
	texts []string
	opts  []synth.Opts
	audio []byte
	err   error
}

func (s *stubSynth) Synthesize(_ context.Context, text string, opts synth.Opts) (*synth.Result, error) {
	s.texts = append(s.texts, text)
	s.opts = append(s.opts, opts)
	if s.err != nil {
		return nil, s.err
	}
	return &synth.Result{Audio: s.audio, ContentType: "audio/wav"}, nil
}

func (s *stubSynth) Close() error { return nil }

// stubAttempt records the texts it was asked to translate.
type stubAttempt struct {
	calls []string
	out   string
	err   error
}

func (s *stubAttempt) attempt() translate.Attempt {
	return translate.Attempt{
		Name:       event.BackendOnline,
		Confidence: translate.OnlineConfidence,
		Run: func(_ context.Context, text, _, _ string) (string, error) {
			s.calls = append(s.calls, text)
			return s.out, s.err
		},
	}
}

type fixture struct {
	pipeline *Pipeline
	backend  *stubAttempt
	history  *history.Store
}

func newFixture(t *testing.T, opts func(*Options)) *fixture {
	t.Helper()

	modes, err := mode.NewManager(mode.Standard, nil)
	if err != nil {
		t.Fatalf("mode manager: %v", err)
	}
	lex, err := lexicon.Load("", "")
	if err != nil {
		t.Fatalf("lexicon: %v", err)
	}
	mem, err := cache.NewMemory(64)
	if err != nil {
		t.Fatalf("memory cache: %v", err)
	}
	db, err := storage.Open(filepath.Join(t.TempDir(), "voxlate.db"))
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	backend := &stubAttempt{out: "bonjour"}
	hist := history.NewStore(db)

	o := Options{
		Modes: modes,
		Session: route.NewSession(route.Config{
			Enabled:   true,
			LanguageA: "en",
			LanguageB: "fr",
		}, stubDetector{lang: "en", conf: 0.95}),
		Lexicon:  lex,
		Cache:    cache.NewHierarchy(mem, nil),
		Resolver: translate.NewResolver(backend.attempt()),
		Tone:     tone.NewEnhancer(nil),
		History:  hist,
	}
	if opts != nil {
		opts(&o)
	}
	p, err := New(o)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{pipeline: p, backend: backend, history: hist}
}

func TestResolveTranslatesAndCaches(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.pipeline.Resolve(ctx, event.NewUtterance("hello there friend"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first.TranslatedText != "bonjour" {
		t.Fatalf("translated: got %q", first.TranslatedText)
	}
	if first.SourceLang != "en" || first.TargetLang != "fr" {
		t.Fatalf("routing: %s→%s", first.SourceLang, first.TargetLang)
	}
	if first.Cached {
		t.Fatalf("first resolution must not be cached")
	}
	if first.Backend != event.BackendOnline || first.Confidence != 1.0 {
		t.Fatalf("backend: %s/%v", first.Backend, first.Confidence)
	}

	second, err := f.pipeline.Resolve(ctx, event.NewUtterance("hello there friend"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !second.Cached {
		t.Fatalf("repeat resolution must be served from cache")
	}
	if second.Confidence != 1.0 {
		t.Fatalf("cache hit must inherit confidence: got %v", second.Confidence)
	}
	if len(f.backend.calls) != 1 {
		t.Fatalf("backend invoked %d times, want 1", len(f.backend.calls))
	}

	stats := f.pipeline.Stats()
	if stats.CacheHits != 1 || stats.CacheMisses != 1 {
		t.Fatalf("cache stats: hits=%d misses=%d", stats.CacheHits, stats.CacheMisses)
	}
	if stats.Mode.Translations != 2 {
		t.Fatalf("mode metrics: %d translations", stats.Mode.Translations)
	}
}

func TestResolvePreprocessesBeforeTranslation(t *testing.T) {
	f := newFixture(t, nil)

	tr, err := f.pipeline.Resolve(context.Background(), event.NewUtterance("brb gotta check something"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := "be right back got to check something"
	if tr.SourceText != want {
		t.Fatalf("source text: got %q, want %q", tr.SourceText, want)
	}
	if len(f.backend.calls) != 1 || f.backend.calls[0] != want {
		t.Fatalf("backend input: %v", f.backend.calls)
	}
}

func TestResolveSameLanguagePassesThrough(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.Session = route.NewSession(route.Config{
			DefaultSource: "en",
			DefaultTarget: "en",
		}, nil)
	})

	tr, err := f.pipeline.Resolve(context.Background(), event.NewUtterance("hello there friend"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tr.TranslatedText != "hello there friend" {
		t.Fatalf("passthrough text: got %q", tr.TranslatedText)
	}
	if len(f.backend.calls) != 0 {
		t.Fatalf("no translation expected for same-language routing")
	}
}

func TestResolveDegradedResultNotCached(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.out = ""
	f.backend.err = errors.New("backend down")
	ctx := context.Background()

	tr, err := f.pipeline.Resolve(ctx, event.NewUtterance("hello there friend"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tr.Backend != event.BackendNone || tr.Confidence != 0 {
		t.Fatalf("degraded event: %s/%v", tr.Backend, tr.Confidence)
	}
	if tr.TranslatedText != "hello there friend" {
		t.Fatalf("degraded text must pass through: %q", tr.TranslatedText)
	}

	// A degraded result is never cached: the next utterance retries the chain.
	if _, err := f.pipeline.Resolve(ctx, event.NewUtterance("hello there friend")); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(f.backend.calls) != 2 {
		t.Fatalf("backend invoked %d times, want 2", len(f.backend.calls))
	}
}

func TestResolveRequestsSynthesisInVoicePreservingMode(t *testing.T) {
	voice := activeVoice{active: true}
	f := newFixture(t, func(o *Options) {
		modes, err := mode.NewManager(mode.VoicePreserving, voice)
		if err != nil {
			t.Fatalf("mode manager: %v", err)
		}
		o.Modes = modes
		o.Voice = voice
	})

	tr, err := f.pipeline.Resolve(context.Background(), event.NewUtterance("hello there friend"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !tr.SynthesisRequested {
		t.Fatalf("voice-preserving mode with an active model must request synthesis")
	}
}

func TestResolveSpeaksWithActiveVoiceModel(t *testing.T) {
	voice := namedVoice{active: true, name: "alice"}
	speaker := &stubSynth{audio: []byte("RIFFdata")}
	f := newFixture(t, func(o *Options) {
		modes, err := mode.NewManager(mode.VoicePreserving, voice)
		if err != nil {
			t.Fatalf("mode manager: %v", err)
		}
		o.Modes = modes
		o.Voice = voice
		o.Synth = speaker
	})

	tr, err := f.pipeline.Resolve(context.Background(), event.NewUtterance("hello there friend"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(speaker.texts) != 1 || speaker.texts[0] != "bonjour" {
		t.Fatalf("synthesized texts: %v, want the translated text", speaker.texts)
	}
	if speaker.opts[0].Language != "fr" || speaker.opts[0].Voice != "alice" {
		t.Fatalf("synthesis opts: %+v", speaker.opts[0])
	}
	if string(tr.Audio) != "RIFFdata" || tr.AudioContentType != "audio/wav" {
		t.Fatalf("audio not attached: %q/%q", tr.Audio, tr.AudioContentType)
	}
}

func TestResolveSynthesisFailureKeepsCaption(t *testing.T) {
	voice := namedVoice{active: true, name: "alice"}
	speaker := &stubSynth{err: errors.New("server down")}
	f := newFixture(t, func(o *Options) {
		modes, err := mode.NewManager(mode.VoicePreserving, voice)
		if err != nil {
			t.Fatalf("mode manager: %v", err)
		}
		o.Modes = modes
		o.Voice = voice
		o.Synth = speaker
	})

	tr, err := f.pipeline.Resolve(context.Background(), event.NewUtterance("hello there friend"))
	if err != nil {
		t.Fatalf("synthesis failure must not fail resolution: %v", err)
	}
	if tr.TranslatedText != "bonjour" {
		t.Fatalf("caption lost: %q", tr.TranslatedText)
	}
	if len(tr.Audio) != 0 || tr.AudioContentType != "" {
		t.Fatalf("failed synthesis must not attach audio: %q/%q", tr.Audio, tr.AudioContentType)
	}
}

func TestResolveSkipsSynthesisOutsideVoicePreserving(t *testing.T) {
	speaker := &stubSynth{audio: []byte("RIFFdata")}
	f := newFixture(t, func(o *Options) { o.Synth = speaker })

	if _, err := f.pipeline.Resolve(context.Background(), event.NewUtterance("hello there friend")); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(speaker.texts) != 0 {
		t.Fatalf("standard mode must not synthesize: %v", speaker.texts)
	}
}

func TestResolveRecordsHistory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.pipeline.Resolve(ctx, event.NewUtterance("hello there friend")); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	entries, err := f.history.Recent(ctx, 10, "")
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 || entries[0].TranslatedText != "bonjour" {
		t.Fatalf("history entries: %+v", entries)
	}
	if got := f.pipeline.Stats().HistoryEntries; got != 1 {
		t.Fatalf("stats history entries: %d, want 1", got)
	}
}

func TestStatsWithoutHistory(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.History = nil })

	if _, err := f.pipeline.Resolve(context.Background(), event.NewUtterance("hello there friend")); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := f.pipeline.Stats().HistoryEntries; got != -1 {
		t.Fatalf("stats history entries without persistence: %d, want -1", got)
	}
}
