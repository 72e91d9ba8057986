package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"csvdash/domain/analysis"
	"csvdash/domain/dashboard"
	"csvdash/internal"
	"csvdash/internal/config"
	"csvdash/internal/container"
	"csvdash/internal/demo"
	"csvdash/internal/render"
	"csvdash/internal/report"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "dashctl",
		Short: "CSV dashboard tools: upload files, render charts and export reports",
	}

	rootCmd.AddCommand(
		newUploadCmd(),
		newRenderCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newContainer(apiBase string) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiBase != "" {
		cfg.API.BaseURL = strings.TrimRight(apiBase, "/")
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))
	return container.New(cfg, logger)
}

func newUploadCmd() *cobra.Command {
	var apiBase string
	var out string

	cmd := &cobra.Command{
		Use:   "upload [csv-file]",
		Short: "Upload a CSV file to the analysis service and print the result",
		Long: `Upload a CSV file to {API_BASE}/upload-csv/ and print a summary of the analysis.

Example: dashctl upload sales.csv --api http://localhost:8000/api --out sales.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd.Context(), args[0], apiBase, out)
		},
	}

	cmd.Flags().StringVar(&apiBase, "api", "", "Analysis service base URL (default from API_BASE_URL)")
	cmd.Flags().StringVar(&out, "out", "", "Save the analysis payload as JSON to this file")
	return cmd
}

func runUpload(ctx context.Context, path, apiBase, out string) error {
	c, err := newContainer(apiBase)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	fmt.Printf("Uploading %s to %s...\n", path, c.Uploader.URL())
	start := time.Now()
	payload, err := c.Uploader.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	fmt.Printf("File processed in %v\n\n", time.Since(start).Round(time.Millisecond))

	if _, err := c.Engine.Handle(render.PayloadLoaded{Payload: payload}); err != nil {
		return err
	}
	printSummary(c, payload)

	if out != "" {
		raw, err := analysis.Encode(payload)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, raw, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Printf("\nPayload saved to %s\n", out)
	}
	return nil
}

// loadPayload reads a saved payload, or the demo payload when path is empty
func loadPayload(path string) (*analysis.Payload, error) {
	if path == "" {
		return demo.Payload(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return analysis.Decode(raw)
}

func newRenderCmd() *cobra.Command {
	var payloadFile string
	var outDir string
	var nullsMode, dupesMode string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render every dashboard chart of a payload to PNG files",
		Long: `Render every section of a saved payload (or the demo payload) and write one PNG
per chart target.

Example: dashctl render --payload sales.json --out charts --nulls-mode percent`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(payloadFile, outDir, nullsMode, dupesMode)
		},
	}

	cmd.Flags().StringVar(&payloadFile, "payload", "", "Payload JSON file (default: demo payload)")
	cmd.Flags().StringVar(&outDir, "out", "charts", "Output directory")
	cmd.Flags().StringVar(&nullsMode, "nulls-mode", "count", "Nulls chart mode: count|percent")
	cmd.Flags().StringVar(&dupesMode, "dupes-mode", "count", "Duplicates chart mode: count|percent")
	return cmd
}

func runRender(payloadFile, outDir, nullsMode, dupesMode string) error {
	c, err := newContainer("")
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	payload, err := loadPayload(payloadFile)
	if err != nil {
		return err
	}

	result, err := c.Engine.Handle(render.PayloadLoaded{Payload: payload})
	if err != nil {
		return err
	}
	warnFailures(result)
	for _, m := range []struct {
		selector dashboard.ModeSelector
		value    string
	}{
		{dashboard.SelectorNulls, nullsMode},
		{dashboard.SelectorDuplicates, dupesMode},
	} {
		mode, err := dashboard.ParseDisplayMode(m.value)
		if err != nil {
			return err
		}
		if mode == c.Engine.Mode(m.selector) {
			continue
		}
		result, err := c.Engine.Handle(render.ModeChanged{Selector: m.selector, Mode: mode})
		if err != nil {
			return err
		}
		warnFailures(result)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, target := range c.Canvas.Targets() {
		png, ok := c.Canvas.Image(target)
		if !ok {
			continue
		}
		path := filepath.Join(outDir, string(target)+".png")
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("%-20s %s\n", target, path)
	}
	return nil
}

// warnOut receives render warnings
var warnOut io.Writer = os.Stderr

// warnFailures reports sections that failed to render without aborting the command
func warnFailures(result *render.Result) {
	if err := result.Err(); err != nil {
		fmt.Fprintf(warnOut, "warning: %v\n", err)
	}
}

func newExportCmd() *cobra.Command {
	var payloadFile string
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a dashboard report as Excel or PDF",
		Long: `Build the full dashboard report of a saved payload (or the demo payload) and
write it as an Excel workbook or a PDF document.

Example: dashctl export --payload sales.json --format pdf --out sales.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(payloadFile, format, out)
		},
	}

	cmd.Flags().StringVar(&payloadFile, "payload", "", "Payload JSON file (default: demo payload)")
	cmd.Flags().StringVar(&format, "format", "xlsx", "Report format: xlsx|pdf")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default: report.<format>)")
	return cmd
}

func runExport(payloadFile, format, out string) error {
	c, err := newContainer("")
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	exporter, ok := c.Exporter(strings.ToLower(format))
	if !ok {
		return fmt.Errorf("unknown format %q (use xlsx or pdf)", format)
	}
	payload, err := loadPayload(payloadFile)
	if err != nil {
		return err
	}
	if _, err := c.Engine.Handle(render.PayloadLoaded{Payload: payload}); err != nil {
		return err
	}

	title := "demo"
	if payloadFile != "" {
		title = strings.TrimSuffix(filepath.Base(payloadFile), filepath.Ext(payloadFile))
	}
	if out == "" {
		out = "report" + exporter.Extension()
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := exporter.Export(f, report.Build(c.Engine, c.Canvas, title, time.Now())); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Printf("Report written to %s (payload %s)\n", out, report.PayloadHash(payload).Short())
	return nil
}

func printSummary(c *container.Container, payload *analysis.Payload) {
	e := c.Engine
	summary := e.Reconcile(dashboard.SectionHome).Summary
	fmt.Println(report.SummaryMarkdown(summary, e.Threshold(), e.Formatter()))

	table := render.ProjectStatsTable(payload, e.Formatter())
	if table.HasRows() {
		fmt.Println(strings.Join(table.Header, "\t"))
		for _, row := range table.Rows {
			fmt.Println(strings.Join(row, "\t"))
		}
	} else {
		fmt.Println(table.Placeholder)
	}

	fmt.Println("\nCleaning suggestions:")
	for _, s := range render.GenerateSuggestions(payload, e.Threshold()) {
		fmt.Printf("  - %s\n", s)
	}
}
