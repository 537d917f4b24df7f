// Package translate implements the ordered fallback chain across translation
// back-ends: online first, then a locally installed direct model, then an
// English pivot, and finally a degraded pass-through.
//
// The chain is data-driven: each back-end contributes Attempts, and the
// resolver iterates them until the first success. A failing attempt is logged
// and skipped, never surfaced to the caller — the worst case is a result with
// confidence zero, which consumers must read as "translation unavailable".
package translate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/voxlate/voxlate/internal/event"
)

// Fixed quality indicators per back-end class. They are constants by
// observation, not load-bearing invariants.
const (
	OnlineConfidence = 1.0
	DirectConfidence = 0.85
	PivotConfidence  = 0.75
)

// Attempt is a single guarded translation strategy.
type Attempt struct {
	// Name is the backend identifier reported in results.
	Name string

	// Confidence is the quality indicator assigned on success.
	Confidence float64

	// Available reports whether the attempt can serve the pair at all
	// (e.g. the offline model package is installed). Nil means always.
	Available func(sourceLang, targetLang string) bool

	// Run performs the translation. It must honor ctx cancellation.
	Run func(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Resolver executes the ordered attempt chain.
type Resolver struct {
	attempts []Attempt
}

// NewResolver builds a resolver over the given attempts, tried in order.
func NewResolver(attempts ...Attempt) *Resolver {
	return &Resolver{attempts: attempts}
}

// Translate runs the chain for a cache miss and short-circuits on the first
// success. When every attempt fails the text is returned unchanged with
// confidence zero and backend "none".
func (r *Resolver) Translate(ctx context.Context, text, sourceLang, targetLang string) event.Result {
	for _, a := range r.attempts {
		if a.Available != nil && !a.Available(sourceLang, targetLang) {
			continue
		}
		out, err := a.Run(ctx, text, sourceLang, targetLang)
		if err != nil {
			slog.Warn("translation attempt failed",
				"backend", a.Name,
				"source", sourceLang,
				"target", targetLang,
				"error", err)
			continue
		}
		if strings.TrimSpace(out) == "" {
			slog.Warn("translation attempt returned empty text", "backend", a.Name)
			continue
		}
		return event.Result{
			TranslatedText: out,
			Confidence:     a.Confidence,
			Backend:        a.Name,
		}
	}

	return event.Result{
		TranslatedText: text,
		Confidence:     0,
		Backend:        event.BackendNone,
	}
}
