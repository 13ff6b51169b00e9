// Bomatchd is the BOM analysis daemon.
//
// It serves the document processing pipeline over HTTP: technical document
// upload, translation, material extraction with QA classification, supplier
// BOM matching and the knowledge base API.
//
// Usage:
//
//	# Start with defaults
//	bomatchd
//
//	# Load a config file
//	bomatchd -config /etc/bomatch/config.yaml
//
//	# Configure via environment
//	BOMATCH_SERVER_ADDR=:9001 BOMATCH_GEMINI_API_KEY=... bomatchd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/bomatch/internal/config"
	"github.com/fyrsmithlabs/bomatch/internal/extraction"
	"github.com/fyrsmithlabs/bomatch/internal/genai"
	"github.com/fyrsmithlabs/bomatch/internal/httpapi"
	"github.com/fyrsmithlabs/bomatch/internal/knowledge"
	"github.com/fyrsmithlabs/bomatch/internal/logging"
	"github.com/fyrsmithlabs/bomatch/internal/matcher"
	"github.com/fyrsmithlabs/bomatch/internal/translate"
	"github.com/fyrsmithlabs/bomatch/internal/workflow"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  bomatchd           Start the daemon\n")
			fmt.Fprintf(os.Stderr, "  bomatchd version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("bomatchd\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires the pipeline and serves HTTP until the context is cancelled.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logging.Sync(logger)

	gen := genai.NewGeminiClient(cfg.GeminiClientConfig(), logger)
	logger.Info("initialized Gemini client", zap.Bool("available", gen.Available()))

	store, err := knowledge.New(cfg.KnowledgeStoreConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to create knowledge store: %w", err)
	}
	defer store.Close()

	orchestrator := workflow.New(
		translate.New(gen, logger),
		extraction.NewCoordinator(gen, cfg.ExtractionConfig(), logger),
		matcher.New(store, logger),
		store,
		cfg.WorkflowOrchestratorConfig(),
		logger,
	)

	srv, err := httpapi.NewServer(orchestrator, store, gen, httpapi.Config{
		Addr:           cfg.Server.Addr,
		UploadDir:      cfg.Server.UploadDir,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
