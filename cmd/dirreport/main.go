package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/x-dv7/p01-lesson05/internal/config"
	"github.com/x-dv7/p01-lesson05/internal/core"
	"github.com/x-dv7/p01-lesson05/internal/report"
	"github.com/x-dv7/p01-lesson05/pkg/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	styleTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	styleLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleValue = lipgloss.NewStyle().Foreground(lipgloss.Color("231"))
	stylePath  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

var version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", styleError.Render("Error:"), err)
		os.Exit(1)
	}
}

// rootCmd creates the report command
func rootCmd() *cobra.Command {
	var (
		path       string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "dirreport",
		Short: "Report the structure of a directory tree",
		Long: `Recursively list every file and folder under a directory, including the
contents of ZIP archives, and save the listing as JSON, CSV, XLSX, DOCX or PDF.
The report format is chosen by the extension of --report.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Flags override config
			if cmd.Flags().Changed("path") || cfg.Path == "" {
				cfg.Path = path
			}
			if cmd.Flags().Changed("report") || cfg.ReportPath == "" {
				cfg.ReportPath = reportPath
			}

			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			return run(cfg, logger)
		},
	}

	cmd.Flags().StringVar(&path, "path", ".", "Directory to scan")
	cmd.Flags().StringVar(&reportPath, "report", "./report.pdf", "Report file path; the extension selects the format (json, csv, xlsx, docx, pdf)")

	return cmd
}

// run validates the inputs, scans and writes the report
func run(cfg *config.Config, logger *zap.Logger) error {
	generator, err := report.NewGenerator(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize report generator: %w", err)
	}

	// Validate before doing any work
	if _, err := generator.Check(cfg.ReportPath); err != nil {
		return err
	}
	if err := core.CheckRoot(cfg.Path); err != nil {
		return err
	}

	scanner, err := core.NewScanner(cfg, logger)
	if err != nil {
		return err
	}
	scanner.SetProgressCallback(func(level string, entries int) {
		logger.Debug("Listed level", zap.String("level", level), zap.Int("entries", entries))
	})

	fmt.Printf("  %s %s\n", styleLabel.Width(12).Render("Scanning:"), stylePath.Render(cfg.Path))

	results, err := scanner.Scan(cfg.Path)
	if err != nil {
		logger.Error("Scan failed", zap.Error(err))
		return err
	}

	fmt.Printf("  %s %s\n", styleLabel.Width(12).Render("Format:"), styleValue.Render(report.FormatFromPath(cfg.ReportPath)))

	results.ReportPath, err = generator.Generate(results, cfg.ReportPath)
	if err != nil {
		logger.Error("Failed to generate report", zap.Error(err))
		return err
	}

	printSummary(results)
	return nil
}

// newLogger builds a development logger for debug, otherwise a JSON logger
// on stderr at the given level
func newLogger(level string) (*zap.Logger, error) {
	if strings.EqualFold(level, "debug") {
		return zap.NewDevelopment()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.ErrorLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         "json",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}
	return cfg.Build()
}

// printSummary prints the scan statistics and report location
func printSummary(results *models.ScanResults) {
	stats := results.Stats

	fmt.Println()
	fmt.Println("  " + styleTitle.Render("REPORT COMPLETE"))
	fmt.Println()
	printField("Files:", humanize.Comma(int64(stats.Files)))
	printField("Folders:", humanize.Comma(int64(stats.Folders)))
	printField("Total size:", humanize.Bytes(uint64(stats.TotalSize)))
	if stats.Archives > 0 || stats.CorruptArchives > 0 {
		printField("Archives:", fmt.Sprintf("%d expanded, %d unreadable", stats.Archives, stats.CorruptArchives))
	}
	printField("Duration:", results.Duration.Round(time.Millisecond).String())
	fmt.Printf("  %s %s\n", styleLabel.Width(12).Render("Report:"), stylePath.Render(results.ReportPath))
	fmt.Println()
}

func printField(label, value string) {
	fmt.Printf("  %s %s\n", styleLabel.Width(12).Render(label), styleValue.Render(value))
}
