// Package main is the medcheck CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/carelane/medcheck/internal/analysis"
	"github.com/carelane/medcheck/internal/analytics"
	"github.com/carelane/medcheck/internal/cli"
	"github.com/carelane/medcheck/internal/config"
	"github.com/carelane/medcheck/internal/export"
	"github.com/carelane/medcheck/internal/extract"
	"github.com/carelane/medcheck/internal/models"
	reportpkg "github.com/carelane/medcheck/internal/report"
	"github.com/carelane/medcheck/internal/server"
	"github.com/carelane/medcheck/internal/storage"
	"github.com/carelane/medcheck/internal/upload"
	"github.com/carelane/medcheck/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/medcheck/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "medcheck server" from the project dir uses the
// project's config (including debug). Returns the config and the path that
// was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "analyze":
		runAnalyze()
	case "export":
		runExport()
	case "version", "--version", "-v":
		fmt.Printf("medcheck version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Storage,
		components.Analyzer,
		components.Validator,
		components.Extractor,
		components.Exporter,
		analytics.NewLogSink(logger),
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// readDocument reads a file from disk into an uploaded-document value with
// its content type derived from the extension.
func readDocument(path string) (*models.UploadedDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &models.UploadedDocument{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Size:        int64(len(content)),
		Content:     content,
	}, nil
}

func printAnalyzeUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: medcheck analyze [flags] <report-file> <policy-file>\n\n")
	fmt.Fprintf(fs.Output(), "Extracts text from the two documents and runs a compliance analysis.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  medcheck analyze report.pdf policy.docx
  medcheck analyze --output json report.pdf policy.pdf
  medcheck analyze --pdf out.pdf report.pdf policy.pdf
  medcheck analyze --server http://localhost:8080 report.pdf policy.pdf
`)
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = call the model API directly)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), markdown (full report), or json (parseable)")
	pdfPath := fs.String("pdf", "", "also write the PDF report to this path")
	fs.Usage = func() { printAnalyzeUsage(fs) }
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 2 {
		printAnalyzeUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "markdown":
		format = cli.OutputMarkdown
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text, markdown, or json\n", *outputFormat)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	report, err := readDocument(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read report: %v\n", err)
		os.Exit(1)
	}
	policy, err := readDocument(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read policy: %v\n", err)
		os.Exit(1)
	}

	validator := upload.NewValidator(cfg.Upload.MaxSizeBytes())
	if err := validator.Validate(report, models.RoleReport); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := validator.Validate(policy, models.RolePolicy); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	extractor := extract.NewExtractor()
	req := models.AnalysisRequest{
		ReportText: extractor.ExtractText(report),
		PolicyText: extractor.ExtractText(policy),
	}

	var result *models.AnalysisResult
	if *serverURL != "" {
		result, err = analyzeViaHTTP(*serverURL, req)
	} else {
		logger, logErr := utils.NewLogger(cfg.Debug)
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", logErr)
			os.Exit(1)
		}
		defer logger.Sync()
		client := analysis.NewClient(analysis.Config{
			BaseURL:     cfg.Analysis.BaseURL,
			Model:       cfg.Analysis.Model,
			Temperature: cfg.Analysis.Temperature,
			Timeout:     cfg.Analysis.Timeout(),
		}, logger)
		result, err = client.Analyze(context.Background(), req)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}

	if err := cli.WriteAnalysisResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}

	if *pdfPath != "" {
		var buf bytes.Buffer
		if err := reportpkg.WritePDF(&buf, result, nil, time.Now()); err != nil {
			fmt.Fprintf(os.Stderr, "PDF rendering failed: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*pdfPath, buf.Bytes(), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "PDF write failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("PDF report written to %s\n", *pdfPath)
	}
}

func analyzeViaHTTP(serverURL string, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/analyze", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var result models.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func runExport() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outPath := fs.String("o", "applications.xlsx", "output file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	data, err := components.Exporter.ApplicationsXLSX(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Write failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported applications to %s\n", *outPath)
}

// Components holds initialized services.
type Components struct {
	Storage   storage.Storage
	Analyzer  *analysis.Client
	Validator *upload.Validator
	Extractor *extract.Extractor
	Exporter  *export.Service
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	analyzer := analysis.NewClient(analysis.Config{
		BaseURL:     cfg.Analysis.BaseURL,
		Model:       cfg.Analysis.Model,
		Temperature: cfg.Analysis.Temperature,
		Timeout:     cfg.Analysis.Timeout(),
	}, logger)

	return &Components{
		Storage:   store,
		Analyzer:  analyzer,
		Validator: upload.NewValidator(cfg.Upload.MaxSizeBytes()),
		Extractor: extract.NewExtractor(),
		Exporter:  export.NewService(store, logger),
	}, nil
}

func printUsage() {
	fmt.Println(`medcheck - Healthcare approval compliance checker

Usage:
  medcheck server [flags]                          Start the HTTP server
  medcheck analyze [flags] <report> <policy>       Analyze two documents
  medcheck export [flags]                          Export applications to XLSX
  medcheck version                                 Show version
  medcheck help                                    Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/medcheck/config.yaml)
  --debug            Enable debug logging

Analyze Flags:
  --config string    Config file path
  --server string    Server URL (empty = call the model API directly; requires OPENAI_API_KEY)
  --output string    Output format: text, markdown, or json (default: text)
  --pdf string       Also write the PDF report to this path

Export Flags:
  --config string    Config file path
  -o string          Output file path (default: applications.xlsx)

Examples:
  medcheck server
  medcheck analyze report.pdf policy.docx
  medcheck analyze --output json report.pdf policy.pdf
  medcheck analyze --server http://localhost:8080 report.pdf policy.pdf
  medcheck export -o /tmp/applications.xlsx`)
}
