// Package httpapi provides the HTTP API for the BOM analysis service.
package httpapi

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/bomatch/internal/extraction"
	"github.com/fyrsmithlabs/bomatch/internal/knowledge"
	"github.com/fyrsmithlabs/bomatch/internal/workflow"
)

// Version reported by the health endpoint.
const Version = "2.1.0"

// Runner executes one workflow run. *workflow.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, documentPath, supplierBOMPath, workflowID string, progress workflow.ProgressFunc) (*workflow.Result, error)
}

// Config holds HTTP server configuration.
type Config struct {
	// Addr is the listen address. Default: ":8000".
	Addr string

	// UploadDir is where uploaded files are stored. Default: "uploads".
	UploadDir string

	// MaxUploadBytes caps multipart request size. Default: 32MB.
	MaxUploadBytes int64
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8000"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 32 << 20
	}
}

// Server provides the HTTP endpoints for document processing and the
// knowledge base.
type Server struct {
	echo    *echo.Echo
	runner  Runner
	store   knowledge.Store
	gen     extraction.Generator
	tracker *tracker
	logger  *zap.Logger
	config  Config
	wg      sync.WaitGroup
}

// NewServer creates the HTTP server. store and gen may be nil; the
// corresponding endpoints then report unavailability.
func NewServer(runner Runner, store knowledge.Store, gen extraction.Generator, cfg Config, logger *zap.Logger) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", cfg.MaxUploadBytes>>10)))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:    e,
		runner:  runner,
		store:   store,
		gen:     gen,
		tracker: newTracker(),
		logger:  logger,
		config:  cfg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	auto := s.echo.Group("/api/autonomous")
	auto.POST("/upload", s.handleUpload)
	auto.GET("/workflow/:id/status", s.handleWorkflowStatus)
	auto.GET("/workflow/:id/results", s.handleWorkflowResults)
	auto.GET("/workflows", s.handleListWorkflows)

	kb := s.echo.Group("/api/knowledge-base")
	kb.GET("/stats", s.handleKnowledgeStats)
	kb.POST("/clear", s.handleKnowledgeClear)
	kb.GET("/items", s.handleKnowledgeItems)
}

func (s *Server) generatorAvailable() bool {
	return s.gen != nil && s.gen.Available()
}

// RootResponse is the response body for GET /.
type RootResponse struct {
	Message         string `json:"message"`
	Status          string `json:"status"`
	GeminiAvailable bool   `json:"gemini_available"`
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, RootResponse{
		Message:         "BOM Analysis API v2.1 - Enhanced with QA Classification",
		Status:          "running",
		GeminiAvailable: s.generatorAvailable(),
	})
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status            string `json:"status"`
	Version           string `json:"version"`
	GeminiAvailable   bool   `json:"gemini_available"`
	OrchestratorReady bool   `json:"orchestrator_ready"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:            "healthy",
		Version:           Version,
		GeminiAvailable:   s.generatorAvailable(),
		OrchestratorReady: s.runner != nil,
	})
}

// UploadResponse is the response body for POST /api/autonomous/upload.
type UploadResponse struct {
	Success    bool   `json:"success"`
	WorkflowID string `json:"workflow_id"`
	Message    string `json:"message"`
	WIDocument string `json:"wi_document"`
	ItemMaster string `json:"item_master"`
}

// handleUpload accepts a work instruction document and a supplier item
// master, stores them, and starts background processing.
func (s *Server) handleUpload(c echo.Context) error {
	wiFile, err := c.FormFile("wi_document")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "wi_document file is required")
	}
	itemFile, err := c.FormFile("item_master")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "item_master file is required")
	}

	workflowID := workflow.NewWorkflowID()
	dir := filepath.Join(s.config.UploadDir, workflowID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("failed to create upload directory", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}

	wiPath := filepath.Join(dir, filepath.Base(wiFile.Filename))
	itemPath := filepath.Join(dir, filepath.Base(itemFile.Filename))
	if err := saveUpload(wiFile, wiPath); err != nil {
		s.logger.Error("failed to save upload", zap.String("file", wiFile.Filename), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}
	if err := saveUpload(itemFile, itemPath); err != nil {
		s.logger.Error("failed to save upload", zap.String("file", itemFile.Filename), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}

	s.tracker.create(workflowID, wiFile.Filename, itemFile.Filename)
	s.logger.Info("files uploaded",
		zap.String("workflow_id", workflowID),
		zap.String("wi_document", wiFile.Filename),
		zap.String("item_master", itemFile.Filename),
	)

	s.wg.Add(1)
	go s.processWorkflow(workflowID, wiPath, itemPath)

	return c.JSON(http.StatusOK, UploadResponse{
		Success:    true,
		WorkflowID: workflowID,
		Message:    "Documents uploaded successfully. Processing started.",
		WIDocument: wiFile.Filename,
		ItemMaster: itemFile.Filename,
	})
}

// processWorkflow runs the pipeline in the background and records the
// outcome in the tracker.
func (s *Server) processWorkflow(workflowID, wiPath, itemPath string) {
	defer s.wg.Done()

	result, err := s.runner.Run(context.Background(), wiPath, itemPath, workflowID, func(stage string, percent float64, message string) {
		s.tracker.updateProgress(workflowID, stage, percent, message)
		s.logger.Info("workflow progress",
			zap.String("workflow_id", workflowID),
			zap.String("stage", stage),
			zap.Float64("progress", percent),
			zap.String("message", message),
		)
	})
	if err != nil {
		s.logger.Error("background processing failed",
			zap.String("workflow_id", workflowID),
			zap.Error(err),
		)
		s.tracker.fail(workflowID, err)
		return
	}
	s.tracker.complete(workflowID, result)
}

func (s *Server) handleWorkflowStatus(c echo.Context) error {
	state, ok := s.tracker.get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workflow not found")
	}
	// Status responses omit the full result payload.
	state.Result = nil
	return c.JSON(http.StatusOK, state)
}

func (s *Server) handleWorkflowResults(c echo.Context) error {
	state, ok := s.tracker.get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workflow not found")
	}
	if state.Status != StatusCompleted {
		return echo.NewHTTPError(http.StatusBadRequest, "Workflow not completed yet")
	}
	if state.Result == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Results not found")
	}
	return c.JSON(http.StatusOK, state.Result)
}

// ListWorkflowsResponse is the response body for GET /api/autonomous/workflows.
type ListWorkflowsResponse struct {
	Workflows []WorkflowSummary `json:"workflows"`
}

func (s *Server) handleListWorkflows(c echo.Context) error {
	return c.JSON(http.StatusOK, ListWorkflowsResponse{Workflows: s.tracker.list()})
}

func (s *Server) handleKnowledgeStats(c echo.Context) error {
	if s.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Knowledge base not available")
	}
	stats, err := s.store.Stats(c.Request().Context())
	if err != nil {
		s.logger.Error("failed to read knowledge base stats", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

// ClearResponse is the response body for POST /api/knowledge-base/clear.
type ClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleKnowledgeClear(c echo.Context) error {
	if s.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Knowledge base not available")
	}
	if err := s.store.Clear(c.Request().Context()); err != nil {
		s.logger.Error("failed to clear knowledge base", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ClearResponse{
		Success: true,
		Message: "Knowledge base cleared successfully",
	})
}

// ItemsResponse is the response body for GET /api/knowledge-base/items.
type ItemsResponse struct {
	Items []knowledge.Match `json:"items"`
	Query string            `json:"query"`
	Limit int               `json:"limit"`
	Total int               `json:"total"`
}

// handleKnowledgeItems searches registered items by material name.
func (s *Server) handleKnowledgeItems(c echo.Context) error {
	if s.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Knowledge base not available")
	}

	query := c.QueryParam("query")
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	items := []knowledge.Match{}
	if query != "" {
		matches, err := s.store.FindSimilar(c.Request().Context(), query, "")
		if err != nil {
			s.logger.Error("knowledge base search failed", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if len(matches) > limit {
			matches = matches[:limit]
		}
		items = matches
	}

	return c.JSON(http.StatusOK, ItemsResponse{
		Items: items,
		Query: query,
		Limit: limit,
		Total: len(items),
	})
}

func saveUpload(file *multipart.FileHeader, path string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.config.Addr))
	return s.echo.Start(s.config.Addr)
}

// Shutdown stops the server and waits for in-flight workflows, bounded
// by the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	err := s.echo.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("shutdown deadline reached with workflows still running")
	}
	return err
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
