// Voxlate is a streaming speech translation daemon. It receives recognized
// utterances, routes them between the conversation's languages, resolves
// translations through a cached fallback chain, and emits translation events
// for captions and synthesis.
//
// Usage:
//
//	voxlate [flags]
//	voxlate --config /path/to/voxlate.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/voxlate/voxlate/internal/cache"
	"github.com/voxlate/voxlate/internal/config"
	"github.com/voxlate/voxlate/internal/health"
	"github.com/voxlate/voxlate/internal/history"
	"github.com/voxlate/voxlate/internal/lexicon"
	"github.com/voxlate/voxlate/internal/mode"
	"github.com/voxlate/voxlate/internal/pipeline"
	"github.com/voxlate/voxlate/internal/route"
	"github.com/voxlate/voxlate/internal/storage"
	"github.com/voxlate/voxlate/internal/synth"
	"github.com/voxlate/voxlate/internal/tone"
	"github.com/voxlate/voxlate/internal/translate"
	"github.com/voxlate/voxlate/internal/transport"
	grpctransport "github.com/voxlate/voxlate/internal/transport/grpc"
	httptransport "github.com/voxlate/voxlate/internal/transport/http"

	_ "github.com/voxlate/voxlate/docs" // swagger docs registration
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/voxlate.local.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("voxlate %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("voxlate starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Voice model registry gates voice-preserving mode. A missing directory
	// just means the mode is unavailable.
	var voices *synth.ModelRegistry
	var synthesizer synth.Synthesizer
	if cfg.Synthesis.Enabled {
		voices, err = synth.NewModelRegistry(cfg.Synthesis.VoiceModelDir)
		if err != nil {
			slog.Error("failed to scan voice models", "error", err)
			os.Exit(1)
		}
		if cfg.Synthesis.ActiveModel != "" {
			if err := voices.SetActive(cfg.Synthesis.ActiveModel); err != nil {
				slog.Error("failed to activate voice model", "error", err)
				os.Exit(1)
			}
		}
		synthesizer = synth.NewWyoming(synth.WyomingConfig{
			Endpoint:  cfg.Synthesis.Endpoint,
			Endpoints: cfg.Synthesis.Endpoints,
			Voices:    cfg.Synthesis.Voices,
		})
		defer synthesizer.Close()
		slog.Info("synthesis enabled",
			"endpoint", cfg.Synthesis.Endpoint,
			"voice_models", len(voices.Models()),
			"active_model", voices.ActiveModel())
	}

	// Operating mode manager.
	initial, err := mode.ParseMode(cfg.Mode)
	if err != nil {
		slog.Error("invalid mode in config", "error", err)
		os.Exit(1)
	}
	var voiceSource mode.VoiceModelSource
	if voices != nil {
		voiceSource = voices
	}
	modes, err := mode.NewManager(initial, voiceSource)
	if err != nil {
		slog.Error("failed to initialize mode manager", "error", err)
		os.Exit(1)
	}

	// Slang and autocorrect tables.
	lex, err := lexicon.Load(cfg.Tables.Slang, cfg.Tables.Autocorrect)
	if err != nil {
		slog.Error("failed to load lexicon tables", "error", err)
		os.Exit(1)
	}

	// Two-tier cache and translation history share one SQLite database.
	memory, err := cache.NewMemory(cfg.Cache.MemoryEntries)
	if err != nil {
		slog.Error("failed to initialize memory cache", "error", err)
		os.Exit(1)
	}
	var durable cache.Tier
	var hist *history.Store
	if cfg.Cache.Durable {
		db, err := storage.Open(cfg.Cache.Path)
		if err != nil {
			// The pipeline degrades to memory-only caching and no history.
			slog.Warn("durable storage unavailable, continuing memory-only", "error", err)
		} else {
			defer db.Close()
			durable = cache.NewDurable(db)
			hist = history.NewStore(db)
		}
	}
	caches := cache.NewHierarchy(memory, durable)

	// Translation fallback chain: online first, then offline direct, then
	// offline pivot.
	var attempts []translate.Attempt
	if cfg.Translator.Online.Enabled {
		attempts = append(attempts, translate.NewOnline(translate.OnlineConfig{
			Endpoint: cfg.Translator.Online.Endpoint,
			APIKey:   cfg.Translator.Online.APIKey,
			Timeout:  time.Duration(cfg.Translator.Online.TimeoutMS) * time.Millisecond,
		}).Attempt())
	}
	if cfg.Translator.Offline.Enabled {
		offline := translate.NewOffline(translate.OfflineConfig{
			Endpoint:      cfg.Translator.Offline.Endpoint,
			Pairs:         cfg.Translator.Offline.Pairs,
			PivotLanguage: cfg.Translator.Offline.Pivot,
		})
		attempts = append(attempts, offline.Attempts()...)
		slog.Info("offline translation enabled",
			"endpoint", cfg.Translator.Offline.Endpoint,
			"pairs", len(cfg.Translator.Offline.Pairs))
	}
	if len(attempts) == 0 {
		slog.Warn("no translation backends enabled — every resolution will be degraded")
	}
	resolver := translate.NewResolver(attempts...)

	// Conversation routing.
	var detector route.Detector
	if cfg.Conversation.Enabled || modes.Policy().AutoDetect {
		detector, err = route.NewLinguaDetector(route.SupportedLanguages())
		if err != nil {
			slog.Error("failed to initialize language detection", "error", err)
			os.Exit(1)
		}
	}
	session := route.NewSession(route.Config{
		Enabled:             cfg.Conversation.Enabled,
		LanguageA:           cfg.Conversation.LanguageA,
		LanguageB:           cfg.Conversation.LanguageB,
		AutoMode:            cfg.Conversation.AutoMode,
		DefaultSource:       cfg.Languages.Source,
		DefaultTarget:       cfg.Languages.Target,
		ConfidenceThreshold: cfg.Conversation.ConfidenceThreshold,
	}, detector)

	// Tone enhancement over the shared context window.
	enhancer := tone.NewEnhancer(tone.NewWindow(cfg.Pipeline.ContextWindow))

	// Assemble the pipeline.
	pipe, err := pipeline.New(pipeline.Options{
		Modes:         modes,
		Session:       session,
		Lexicon:       lex,
		Cache:         caches,
		Resolver:      resolver,
		Tone:          enhancer,
		History:       hist,
		Voice:         voiceSource,
		Synth:         synthesizer,
		MaxConcurrent: cfg.Pipeline.MaxConcurrent,
	})
	if err != nil {
		slog.Error("failed to assemble pipeline", "error", err)
		os.Exit(1)
	}

	// Initialize enabled transports.
	var transports []transport.Transport

	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port))
	}
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(httptransport.Options{
			Port:    cfg.Transports.HTTP.Port,
			Modes:   modes,
			History: hist,
			Voices:  voices,
		}))
	}

	if len(transports) == 0 {
		slog.Error("no transports enabled — enable at least one in config")
		os.Exit(1)
	}

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort, func() any { return pipe.Stats() })
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start all transports.
	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, pipe.Resolve); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	slog.Info("voxlate ready",
		"mode", modes.Current(),
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("voxlate stopped")
}
