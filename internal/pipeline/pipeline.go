// Package pipeline wires routing, preprocessing, caching, translation, and
// tone adjustment into the single resolution path every utterance follows.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/voxlate/voxlate/internal/cache"
	"github.com/voxlate/voxlate/internal/event"
	"github.com/voxlate/voxlate/internal/history"
	"github.com/voxlate/voxlate/internal/lexicon"
	"github.com/voxlate/voxlate/internal/mode"
	"github.com/voxlate/voxlate/internal/route"
	"github.com/voxlate/voxlate/internal/synth"
	"github.com/voxlate/voxlate/internal/tone"
	"github.com/voxlate/voxlate/internal/translate"
)

// DefaultMaxConcurrent bounds how many utterances resolve at once. Beyond
// this the callers queue on the semaphore instead of overwhelming the
// translation back-ends.
const DefaultMaxConcurrent = 6

// Options assembles a pipeline from its stages.
type Options struct {
	Modes    *mode.Manager
	Session  *route.Session
	Lexicon  *lexicon.Lexicon
	Cache    *cache.Hierarchy
	Resolver *translate.Resolver
	Tone     *tone.Enhancer

	// History may be nil when persistence is disabled; recording is then
	// skipped.
	History *history.Store

	// Voice may be nil when no synthesis stack is configured.
	Voice mode.VoiceModelSource

	// Synth speaks translations flagged for synthesis. Nil disables audio
	// output; the SynthesisRequested flag is still emitted for external
	// consumers.
	Synth synth.Synthesizer

	// MaxConcurrent defaults to DefaultMaxConcurrent when non-positive.
	MaxConcurrent int

	Logger *slog.Logger
}

// Pipeline resolves utterances into translation events.
type Pipeline struct {
	modes    *mode.Manager
	session  *route.Session
	lexicon  *lexicon.Lexicon
	cache    *cache.Hierarchy
	resolver *translate.Resolver
	tone     *tone.Enhancer
	history  *history.Store
	voice    mode.VoiceModelSource
	synth    synth.Synthesizer
	sem      *semaphore.Weighted
	log      *slog.Logger
}

// New builds the pipeline. Modes, Session, Lexicon, Cache, Resolver, and Tone
// are required.
func New(opts Options) (*Pipeline, error) {
	if opts.Modes == nil || opts.Session == nil || opts.Lexicon == nil ||
		opts.Cache == nil || opts.Resolver == nil || opts.Tone == nil {
		return nil, fmt.Errorf("pipeline: missing required stage")
	}
	workers := opts.MaxConcurrent
	if workers <= 0 {
		workers = DefaultMaxConcurrent
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		modes:    opts.Modes,
		session:  opts.Session,
		lexicon:  opts.Lexicon,
		cache:    opts.Cache,
		resolver: opts.Resolver,
		tone:     opts.Tone,
		history:  opts.History,
		voice:    opts.Voice,
		synth:    opts.Synth,
		sem:      semaphore.NewWeighted(int64(workers)),
		log:      logger.With("component", "pipeline"),
	}, nil
}

// Resolve runs one utterance through the full path: route, expand slang,
// autocorrect, cache lookup, translation fallback chain, tone adjustment,
// history. Degraded results are returned, never cached.
func (p *Pipeline) Resolve(ctx context.Context, utt *event.Utterance) (*event.Translation, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire pipeline slot: %w", err)
	}
	defer p.sem.Release(1)

	start := time.Now()

	dec := p.session.Resolve(utt)

	text, _ := p.lexicon.ExpandSlang(utt.Text, dec.SourceLang)
	text = p.lexicon.Autocorrect(text, dec.SourceLang)

	if !p.session.ShouldTranslate(dec) {
		// Same language on both sides: pass the preprocessed text through.
		return p.emit(ctx, utt, dec, text, event.Result{
			TranslatedText: text,
			Confidence:     1.0,
			Backend:        event.BackendNone,
		}, start), nil
	}

	key := event.NewKey(text, dec.SourceLang, dec.TargetLang)
	res, ok := p.cache.Get(ctx, key)
	if !ok {
		res = p.resolver.Translate(ctx, text, dec.SourceLang, dec.TargetLang)
		if !res.Degraded() {
			p.cache.Put(ctx, key, res)
		}
	}

	res.TranslatedText = p.tone.Enhance(text, res.TranslatedText, dec.SourceLang, dec.TargetLang)

	return p.emit(ctx, utt, dec, text, res, start), nil
}

func (p *Pipeline) emit(ctx context.Context, utt *event.Utterance, dec route.Decision,
	sourceText string, res event.Result, start time.Time) *event.Translation {

	elapsed := time.Since(start)
	p.modes.RecordTranslation(elapsed)

	tr := &event.Translation{
		UtteranceID:        utt.ID,
		SourceText:         sourceText,
		TranslatedText:     res.TranslatedText,
		SourceLang:         dec.SourceLang,
		TargetLang:         dec.TargetLang,
		Confidence:         res.Confidence,
		RoutingConfidence:  dec.Confidence,
		Backend:            res.Backend,
		Cached:             res.Cached,
		Mode:               string(p.modes.Current()),
		SynthesisRequested: p.synthesisRequested(),
		DurationMS:         elapsed.Milliseconds(),
		Timestamp:          time.Now(),
	}

	if tr.SynthesisRequested && p.synth != nil {
		p.speak(ctx, tr)
	}

	if p.history != nil {
		if err := p.history.Add(ctx, tr); err != nil {
			p.log.Warn("history record failed", "error", err)
		}
	}

	p.log.Debug("utterance resolved",
		"utterance_id", tr.UtteranceID,
		"source", tr.SourceLang,
		"target", tr.TargetLang,
		"backend", tr.Backend,
		"cached", tr.Cached,
		"duration_ms", tr.DurationMS)
	return tr
}

func (p *Pipeline) synthesisRequested() bool {
	return p.modes.Current() == mode.VoicePreserving && p.voice != nil && p.voice.Active()
}

// speak synthesizes the translated text with the active voice model and
// attaches the audio to the event. Failures are logged, never surfaced: the
// caption text is always delivered.
func (p *Pipeline) speak(ctx context.Context, tr *event.Translation) {
	opts := synth.Opts{Language: tr.TargetLang}
	if namer, ok := p.voice.(interface{ ActiveModel() string }); ok {
		opts.Voice = namer.ActiveModel()
	}
	res, err := p.synth.Synthesize(ctx, tr.TranslatedText, opts)
	if err != nil {
		p.log.Warn("synthesis failed", "utterance_id", tr.UtteranceID, "error", err)
		return
	}
	tr.Audio = res.Audio
	tr.AudioContentType = res.ContentType
}

// Stats is a point-in-time snapshot across pipeline stages.
type Stats struct {
	Mode    mode.Metrics `json:"mode"`
	Routing route.Stats  `json:"routing"`

	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`

	// HistoryEntries is the total number of recorded translations, -1 when
	// persistence is disabled.
	HistoryEntries int64 `json:"history_entries"`
}

// Stats snapshots the mode metrics, routing history, cache counters, and the
// history size.
func (p *Pipeline) Stats() Stats {
	hits, misses := p.cache.Stats()
	s := Stats{
		Mode:           p.modes.Metrics(),
		Routing:        p.session.Stats(),
		CacheHits:      hits,
		CacheMisses:    misses,
		HistoryEntries: -1,
	}
	if p.history != nil {
		n, err := p.history.Count(context.Background())
		if err != nil {
			p.log.Warn("history count failed", "error", err)
		} else {
			s.HistoryEntries = n
		}
	}
	return s
}
