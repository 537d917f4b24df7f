// Package http implements the HTTP transport for voxlate.
//
// This transport exposes a REST API for submitting utterances, switching the
// operating mode, reading the segmentation policy, and browsing the
// translation history. It is best suited for web captions, phones, and
// services that prefer HTTP-based communication.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/voxlate/voxlate/internal/event"
	"github.com/voxlate/voxlate/internal/history"
	"github.com/voxlate/voxlate/internal/mode"
	"github.com/voxlate/voxlate/internal/synth"
	"github.com/voxlate/voxlate/internal/transport"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Options configures the HTTP transport.
type Options struct {
	Port    int
	Modes   *mode.Manager
	History *history.Store       // nil when persistence is disabled
	Voices  *synth.ModelRegistry // nil when synthesis is disabled
}

// Transport implements transport.Transport over HTTP.
type Transport struct {
	opts   Options
	server *http.Server
}

// New creates a new HTTP transport.
func New(opts Options) *Transport {
	return &Transport{opts: opts}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// routes builds the request mux. Split from Listen so handlers are testable
// without binding a port.
func (t *Transport) routes(handler transport.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /utterances", func(w http.ResponseWriter, r *http.Request) {
		t.handleUtterance(w, r, handler)
	})
	mux.HandleFunc("GET /mode", t.handleGetMode)
	mux.HandleFunc("PUT /mode", t.handleSetMode)
	mux.HandleFunc("GET /segmentation", t.handleSegmentation)
	mux.HandleFunc("GET /history", t.handleHistory)
	mux.HandleFunc("GET /history/export", t.handleHistoryExport)
	mux.HandleFunc("DELETE /history", t.handleHistoryClear)
	mux.HandleFunc("GET /voice-models", t.handleVoiceModels)
	mux.HandleFunc("PUT /voice-model", t.handleSetVoiceModel)

	// Swagger UI — serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	return mux
}

// Listen starts the HTTP server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	mux := t.routes(handler)

	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.opts.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.opts.Port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// handleUtterance processes a POST /utterances request.
//
// @Summary     Resolve one utterance
// @Description Accepts a recognized utterance and runs it through the full resolution
// @Description path: conversation routing, slang expansion and autocorrection, the
// @Description two-tier cache, the translation fallback chain, and tone adjustment.
// @Tags        utterances
// @Accept      json
// @Produce     json
// @Param       utterance  body      event.Utterance  true  "Recognized utterance. ID and timestamp are filled in when omitted."
// @Success     200  {object}  event.Translation  "Resolved translation event"
// @Failure     400  {string}  string  "Invalid request body or empty text"
// @Failure     500  {string}  string  "Internal resolution error"
// @Router      /utterances [post]
func (t *Transport) handleUtterance(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	var utt event.Utterance
	if err := json.NewDecoder(r.Body).Decode(&utt); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if utt.Text == "" {
		http.Error(w, "utterance text is required", http.StatusBadRequest)
		return
	}
	if utt.ID == "" {
		fresh := event.NewUtterance(utt.Text)
		utt.ID = fresh.ID
		if utt.Timestamp.IsZero() {
			utt.Timestamp = fresh.Timestamp
		}
	}

	result, err := handler(r.Context(), &utt)
	if err != nil {
		slog.Error("utterance resolution failed", "error", err)
		http.Error(w, "resolution error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// modeResponse is the GET /mode and PUT /mode payload.
type modeResponse struct {
	Mode   mode.Mode   `json:"mode"`
	Policy mode.Policy `json:"policy"`
}

// handleGetMode returns the active operating mode and its policy.
//
// @Summary     Get the active operating mode
// @Tags        mode
// @Produce     json
// @Success     200  {object}  modeResponse
// @Router      /mode [get]
func (t *Transport) handleGetMode(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, modeResponse{
		Mode:   t.opts.Modes.Current(),
		Policy: t.opts.Modes.Policy(),
	})
}

// handleSetMode transitions to a new operating mode.
//
// @Summary     Switch the operating mode
// @Description Transitions to the requested mode. Voice-preserving mode is refused
// @Description with 409 when no voice-conversion model is active; the previous mode
// @Description stays in effect.
// @Tags        mode
// @Accept      json
// @Produce     json
// @Param       request  body      object{mode=string}  true  "Target mode"
// @Success     200  {object}  modeResponse
// @Failure     400  {string}  string  "Unknown mode"
// @Failure     409  {string}  string  "Mode unavailable"
// @Router      /mode [put]
func (t *Transport) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	target, err := mode.ParseMode(req.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := t.opts.Modes.Set(target); err != nil {
		if errors.Is(err, mode.ErrModeUnavailable) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, modeResponse{
		Mode:   t.opts.Modes.Current(),
		Policy: t.opts.Modes.Policy(),
	})
}

// handleSegmentation exposes the active silence threshold to the recognizer.
//
// @Summary     Get the segmentation policy for the active mode
// @Tags        mode
// @Produce     json
// @Success     200  {object}  map[string]any
// @Router      /segmentation [get]
func (t *Transport) handleSegmentation(w http.ResponseWriter, _ *http.Request) {
	p := t.opts.Modes.Policy()
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":                 t.opts.Modes.Current(),
		"silence_threshold_ms": p.SilenceThreshold.Milliseconds(),
		"auto_detect":          p.AutoDetect,
	})
}

// handleHistory lists recent translations.
//
// @Summary     List recent translations
// @Tags        history
// @Produce     json
// @Param       limit  query  int     false  "Maximum number of entries (default 50)"
// @Param       q      query  string  false  "Substring filter on source or translated text"
// @Success     200  {array}   history.Entry
// @Failure     503  {string}  string  "History persistence is disabled"
// @Router      /history [get]
func (t *Transport) handleHistory(w http.ResponseWriter, r *http.Request) {
	if t.opts.History == nil {
		http.Error(w, "history persistence is disabled", http.StatusServiceUnavailable)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := t.opts.History.Recent(r.Context(), limit, r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("history query failed", "error", err)
		http.Error(w, "history error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleHistoryExport streams the full history as JSON.
//
// @Summary     Export the full translation history
// @Tags        history
// @Produce     json
// @Success     200  {array}   history.Entry
// @Failure     503  {string}  string  "History persistence is disabled"
// @Router      /history/export [get]
func (t *Transport) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	if t.opts.History == nil {
		http.Error(w, "history persistence is disabled", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="voxlate-history.json"`)
	if err := t.opts.History.Export(r.Context(), w); err != nil {
		slog.Error("history export failed", "error", err)
	}
}

// handleHistoryClear deletes all recorded translations.
//
// @Summary     Clear the translation history
// @Tags        history
// @Success     204  "History cleared"
// @Failure     503  {string}  string  "History persistence is disabled"
// @Router      /history [delete]
func (t *Transport) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if t.opts.History == nil {
		http.Error(w, "history persistence is disabled", http.StatusServiceUnavailable)
		return
	}
	if err := t.opts.History.Clear(r.Context()); err != nil {
		slog.Error("history clear failed", "error", err)
		http.Error(w, "history error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// voiceModelsResponse is the GET /voice-models and PUT /voice-model payload.
type voiceModelsResponse struct {
	Models []string `json:"models"`
	Active string   `json:"active,omitempty"`
}

// handleVoiceModels lists the voice-conversion models found on disk.
//
// @Summary     List available voice models
// @Tags        voice
// @Produce     json
// @Success     200  {object}  voiceModelsResponse
// @Failure     503  {string}  string  "Synthesis is disabled"
// @Router      /voice-models [get]
func (t *Transport) handleVoiceModels(w http.ResponseWriter, _ *http.Request) {
	if t.opts.Voices == nil {
		http.Error(w, "synthesis is disabled", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, voiceModelsResponse{
		Models: t.opts.Voices.Models(),
		Active: t.opts.Voices.ActiveModel(),
	})
}

// handleSetVoiceModel activates a voice-conversion model, unlocking
// voice-preserving mode.
//
// @Summary     Activate a voice model
// @Description Selects a voice-conversion model by name. An empty name
// @Description deactivates the current model; voice-preserving mode then
// @Description refuses to engage until another model is activated.
// @Tags        voice
// @Accept      json
// @Produce     json
// @Param       request  body      object{model=string}  true  "Model name"
// @Success     200  {object}  voiceModelsResponse
// @Failure     400  {string}  string  "Unknown model"
// @Failure     503  {string}  string  "Synthesis is disabled"
// @Router      /voice-model [put]
func (t *Transport) handleSetVoiceModel(w http.ResponseWriter, r *http.Request) {
	if t.opts.Voices == nil {
		http.Error(w, "synthesis is disabled", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := t.opts.Voices.SetActive(req.Model); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Info("voice model activated", "model", req.Model)
	writeJSON(w, http.StatusOK, voiceModelsResponse{
		Models: t.opts.Voices.Models(),
		Active: t.opts.Voices.ActiveModel(),
	})
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
