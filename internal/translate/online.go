package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voxlate/voxlate/internal/event"
)

// DefaultOnlineTimeout bounds the network-dependent attempt so a stalled
// call falls through to the offline back-ends instead of blocking
// concurrently running resolutions.
const DefaultOnlineTimeout = 4 * time.Second

// OnlineConfig holds the hosted translation API settings.
type OnlineConfig struct {
	// Endpoint is a LibreTranslate-compatible translate URL
	// (e.g. "https://translate.example.com/translate").
	Endpoint string

	// APIKey is sent when the service requires one.
	APIKey string

	// Timeout bounds one translation request. Defaults to
	// DefaultOnlineTimeout when zero.
	Timeout time.Duration
}

// Online translates through a hosted HTTP translation API.
type Online struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	client   *http.Client
}

// NewOnline creates the online back-end from config.
func NewOnline(cfg OnlineConfig) *Online {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultOnlineTimeout
	}
	return &Online{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
	}
}

// Translate sends one request to the hosted API. The timeout applies on top
// of any caller deadline so a dead network can never stall the chain.
func (o *Online) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	reqBody := map[string]string{
		"q":      text,
		"source": sourceLang,
		"target": targetLang,
		"format": "text",
	}
	if o.apiKey != "" {
		reqBody["api_key"] = o.apiKey
	}
	payload, err := json.Marshal(reqBody)
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
		return "", fmt.Errorf("online translation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("online translation failed (status %d): %s", resp.StatusCode, body)
	}

	var result struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding translation: %w", err)
	}
	return result.TranslatedText, nil
}

// Attempt exposes the back-end as the first link of the fallback chain.
func (o *Online) Attempt() Attempt {
	return Attempt{
		Name:       event.BackendOnline,
		Confidence: OnlineConfidence,
		Run:        o.Translate,
	}
}
