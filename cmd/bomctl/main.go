// Package main implements the bomctl CLI for running the BOM analysis
// pipeline locally and querying a running bomatchd server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/bomatch/internal/config"
	"github.com/fyrsmithlabs/bomatch/internal/extraction"
	"github.com/fyrsmithlabs/bomatch/internal/genai"
	"github.com/fyrsmithlabs/bomatch/internal/knowledge"
	"github.com/fyrsmithlabs/bomatch/internal/logging"
	"github.com/fyrsmithlabs/bomatch/internal/matcher"
	"github.com/fyrsmithlabs/bomatch/internal/translate"
	"github.com/fyrsmithlabs/bomatch/internal/workflow"
)

var (
	// serverURL is the base URL for the bomatchd HTTP server
	serverURL string
	// configPath is the config file used by local commands
	configPath string
	// outputJSON switches process output to raw JSON
	outputJSON bool
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bomctl",
	Short: "CLI for BOM analysis operations",
	Long: `bomctl runs the BOM analysis pipeline locally or queries a running
bomatchd server for health and knowledge base statistics.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "bomatchd server URL")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statsCmd)
}

// processCmd runs the full pipeline locally, without a server
var processCmd = &cobra.Command{
	Use:   "process <document> <supplier-bom>",
	Short: "Process a technical document against a supplier BOM",
	Long: `Process runs the full pipeline locally: read and translate the
document, extract materials with QA classification, load the supplier BOM
and match everything against it and the knowledge base.

Examples:
  # Process a work instruction against an item master
  bomctl process instructions.docx item_master.xlsx

  # Emit the full result as JSON
  bomctl process --json instructions.docx item_master.xlsx`,
	Args: cobra.ExactArgs(2),
	RunE: runProcess,
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check bomatchd server health",
	RunE:  runHealth,
}

// statsCmd reports knowledge base statistics
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	RunE:  runStats,
}

func init() {
	processCmd.Flags().BoolVar(&outputJSON, "json", false, "print the full result as JSON")
}

func runProcess(cmd *cobra.Command, args []string) error {
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

	workflowID := workflow.NewWorkflowID()
	result, err := orchestrator.Run(cmd.Context(), args[0], args[1], workflowID, func(stage string, percent float64, message string) {
		if !outputJSON {
			fmt.Printf("[%3.0f%%] %-12s %s\n", percent, stage, message)
		}
	})
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	if outputJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("\nWorkflow %s completed\n", result.WorkflowID)
	fmt.Printf("  Materials extracted:    %d\n", result.Summary.TotalMaterials)
	fmt.Printf("  Supplier BOM items:     %d\n", result.Summary.TotalSupplierItems)
	fmt.Printf("  Successful matches:     %d\n", result.Summary.SuccessfulMatches)
	fmt.Printf("  Knowledge base matches: %d\n", result.Summary.KnowledgeBaseMatches)
	for _, m := range result.Matches {
		fmt.Printf("  - %-40s %5.1f%%  %s\n", m.QAMaterialName, m.Confidence*100, m.MatchSource)
	}
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	body, err := getJSON(cmd.Context(), serverURL+"/health")
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	body, err := getJSON(cmd.Context(), serverURL+"/api/knowledge-base/stats")
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}

func getJSON(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
