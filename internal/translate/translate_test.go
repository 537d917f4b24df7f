package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voxlate/voxlate/internal/event"
)

type legRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
}

func failing(name string, calls *int) Attempt {
	return Attempt{
		Name:       name,
		Confidence: 1.0,
		Run: func(context.Context, string, string, string) (string, error) {
			*calls++
			return "", errors.New("backend down")
		},
	}
}

func succeeding(name string, confidence float64, out string, calls *int) Attempt {
	return Attempt{
		Name:       name,
		Confidence: confidence,
		Run: func(context.Context, string, string, string) (string, error) {
			*calls++
			return out, nil
		},
	}
}

func TestFallbackOrdering(t *testing.T) {
	var onlineCalls, directCalls int
	r := NewResolver(
		failing(event.BackendOnline, &onlineCalls),
		succeeding(event.BackendOfflineDirect, DirectConfidence, "hello", &directCalls),
	)

	got := r.Translate(context.Background(), "bonjour", "fr", "en")
	if got.Backend != event.BackendOfflineDirect {
		t.Fatalf("backend: got %s, want %s", got.Backend, event.BackendOfflineDirect)
	}
	if got.Confidence != 0.85 {
		t.Fatalf("confidence: got %v, want 0.85", got.Confidence)
	}
	if got.TranslatedText != "hello" {
		t.Fatalf("text: got %q", got.TranslatedText)
	}
	if onlineCalls != 1 || directCalls != 1 {
		t.Fatalf("call counts: online=%d direct=%d", onlineCalls, directCalls)
	}
}

func TestShortCircuitOnFirstSuccess(t *testing.T) {
	var onlineCalls, directCalls int
	r := NewResolver(
		succeeding(event.BackendOnline, OnlineConfidence, "hello", &onlineCalls),
		succeeding(event.BackendOfflineDirect, DirectConfidence, "unused", &directCalls),
	)

	got := r.Translate(context.Background(), "bonjour", "fr", "en")
	if got.Backend != event.BackendOnline || got.Confidence != 1.0 {
		t.Fatalf("got %+v, want online/1.0", got)
	}
	if directCalls != 0 {
		t.Fatalf("chain did not short-circuit: direct called %d times", directCalls)
	}
}

func TestUnavailableAttemptsAreSkipped(t *testing.T) {
	var calls int
	never := Attempt{
		Name:       event.BackendOfflineDirect,
		Confidence: DirectConfidence,
		Available:  func(string, string) bool { return false },
		Run: func(context.Context, string, string, string) (string, error) {
			calls++
			return "should not run", nil
		},
	}
	r := NewResolver(never)

	got := r.Translate(context.Background(), "bonjour", "fr", "en")
	if calls != 0 {
		t.Fatalf("unavailable attempt was run")
	}
	if got.Backend != event.BackendNone {
		t.Fatalf("backend: got %s, want none", got.Backend)
	}
}

func TestAllAttemptsExhausted(t *testing.T) {
	var a, b int
	r := NewResolver(failing(event.BackendOnline, &a), failing(event.BackendOfflineDirect, &b))

	got := r.Translate(context.Background(), "bonjour", "fr", "en")
	if got.TranslatedText != "bonjour" {
		t.Fatalf("degraded result must pass the text through, got %q", got.TranslatedText)
	}
	if got.Confidence != 0 || got.Backend != event.BackendNone {
		t.Fatalf("degraded result: got %+v", got)
	}
	if !got.Degraded() {
		t.Fatalf("Degraded() must report true")
	}
}

func TestOfflinePairAvailability(t *testing.T) {
	o := NewOffline(OfflineConfig{
		Endpoint: "http://localhost:5000/translate",
		Pairs:    []string{"fr-en", "en-de"},
	})

	if !o.HasDirect("fr", "en") {
		t.Fatalf("fr-en should be direct")
	}
	if o.HasDirect("fr", "de") {
		t.Fatalf("fr-de has no direct model")
	}
	if !o.HasPivot("fr", "de") {
		t.Fatalf("fr-de should pivot through en")
	}
	if o.HasPivot("fr", "en") {
		t.Fatalf("pairs touching the pivot language never pivot")
	}
	if o.HasPivot("de", "fr") {
		t.Fatalf("de-fr lacks the en-fr leg")
	}

	o.InstallPair("en", "fr")
	if !o.HasPivot("de", "fr") {
		t.Fatalf("de-fr should pivot once en-fr is installed")
	}
}

func TestOfflinePivotTranslation(t *testing.T) {
	// The fake inference server translates each leg by tagging the pair.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req legRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translatedText":"` + req.Q + `|` + req.Source + `>` + req.Target + `"}`))
	}))
	defer srv.Close()

	o := NewOffline(OfflineConfig{
		Endpoint: srv.URL,
		Pairs:    []string{"fr-en", "en-de"},
	})
	r := NewResolver(o.Attempts()...)

	got := r.Translate(context.Background(), "bonjour", "fr", "de")
	if got.Backend != event.BackendOfflinePivot {
		t.Fatalf("backend: got %s, want %s", got.Backend, event.BackendOfflinePivot)
	}
	if got.Confidence != 0.75 {
		t.Fatalf("confidence: got %v, want 0.75", got.Confidence)
	}
	if got.TranslatedText != "bonjour|fr>en|en>de" {
		t.Fatalf("pivot legs: got %q", got.TranslatedText)
	}
}

func TestOnlineTimeoutFallsThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	online := NewOnline(OnlineConfig{Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	var directCalls int
	r := NewResolver(
		online.Attempt(),
		succeeding(event.BackendOfflineDirect, DirectConfidence, "hello", &directCalls),
	)

	start := time.Now()
	got := r.Translate(context.Background(), "bonjour", "fr", "en")
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("online attempt was not bounded: took %v", elapsed)
	}
	if got.Backend != event.BackendOfflineDirect {
		t.Fatalf("backend after timeout: got %s, want offline_direct", got.Backend)
	}
	if directCalls != 1 {
		t.Fatalf("offline fallback not invoked")
	}
}

func TestOnlineSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req legRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Q != "hello" || req.Source != "en" || req.Target != "fr" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translatedText":"bonjour"}`))
	}))
	defer srv.Close()

	online := NewOnline(OnlineConfig{Endpoint: srv.URL})
	got, err := online.Translate(context.Background(), "hello", "en", "fr")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "bonjour" {
		t.Fatalf("got %q, want bonjour", got)
	}
}
