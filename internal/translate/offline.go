package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/voxlate/voxlate/internal/event"
)

// DefaultPivotLanguage is the intermediate language for pivot translation.
const DefaultPivotLanguage = "en"

// OfflineConfig holds the local inference server settings.
type OfflineConfig struct {
	// Endpoint is the local model server's translate URL
	// (e.g. "http://localhost:5000/translate").
	Endpoint string

	// Pairs lists the installed language-pair packages as "src-tgt" codes.
	Pairs []string

	// PivotLanguage defaults to English.
	PivotLanguage string

	// Timeout bounds one local inference call.
	Timeout time.Duration
}

// Offline translates with locally installed models served by a local
// inference endpoint. When no direct model exists for a pair it can pivot
// through an intermediate language, at a fixed confidence penalty.
type Offline struct {
	endpoint string
	pivot    string
	client   *http.Client

	mu    sync.RWMutex
	pairs map[string]bool
}

// NewOffline creates the offline back-end from config.
func NewOffline(cfg OfflineConfig) *Offline {
	pivot := cfg.PivotLanguage
	if pivot == "" {
		pivot = DefaultPivotLanguage
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	o := &Offline{
		endpoint: cfg.Endpoint,
		pivot:    pivot,
		client:   &http.Client{Timeout: timeout},
		pairs:    make(map[string]bool, len(cfg.Pairs)),
	}
	for _, p := range cfg.Pairs {
		o.pairs[p] = true
	}
	return o
}

// InstallPair marks a language-pair package as installed.
func (o *Offline) InstallPair(sourceLang, targetLang string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pairs[pairKey(sourceLang, targetLang)] = true
}

// HasDirect reports whether a direct model is installed for the pair.
func (o *Offline) HasDirect(sourceLang, targetLang string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pairs[pairKey(sourceLang, targetLang)]
}

// HasPivot reports whether both pivot legs are installed for the pair.
func (o *Offline) HasPivot(sourceLang, targetLang string) bool {
	if sourceLang == o.pivot || targetLang == o.pivot {
		return false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pairs[pairKey(sourceLang, o.pivot)] && o.pairs[pairKey(o.pivot, targetLang)]
}

// InstalledPairs returns the installed pairs, unordered.
func (o *Offline) InstalledPairs() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]string, 0, len(o.pairs))
	for p := range o.pairs {
		out = append(out, p)
	}
	return out
}

// Direct runs the exact-pair model.
func (o *Offline) Direct(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return o.leg(ctx, text, sourceLang, targetLang)
}

// Pivot translates source→pivot then pivot→target.
func (o *Offline) Pivot(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	intermediate, err := o.leg(ctx, text, sourceLang, o.pivot)
	if err != nil {
		return "", fmt.Errorf("pivot leg %s→%s: %w", sourceLang, o.pivot, err)
	}
	out, err := o.leg(ctx, intermediate, o.pivot, targetLang)
	if err != nil {
		return "", fmt.Errorf("pivot leg %s→%s: %w", o.pivot, targetLang, err)
	}
	return out, nil
}

// Attempts exposes the back-end's links of the fallback chain, direct before
// pivot.
func (o *Offline) Attempts() []Attempt {
	return []Attempt{
		{
			Name:       event.BackendOfflineDirect,
			Confidence: DirectConfidence,
			Available:  o.HasDirect,
			Run:        o.Direct,
		},
		{
			Name:       event.BackendOfflinePivot,
			Confidence: PivotConfidence,
			Available:  o.HasPivot,
			Run:        o.Pivot,
		},
	}
}

func (o *Offline) leg(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"q":      text,
		"source": sourceLang,
		"target": targetLang,
		"format": "text",
	})
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("offline inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("offline inference failed (status %d): %s", resp.StatusCode, body)
	}

	var result struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding inference response: %w", err)
	}
	return result.TranslatedText, nil
}

func pairKey(sourceLang, targetLang string) string {
	return sourceLang + "-" + targetLang
}
