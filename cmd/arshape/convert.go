package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atomicdeploy/arshape/pkg/datasource"
	"github.com/atomicdeploy/arshape/pkg/exporter"
	"github.com/atomicdeploy/arshape/pkg/watcher"
)

var (
	outputDir      string
	outputFormat   string
	csvColumn      string
	watchMode      bool
	debounceString string
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [source-file]",
		Short: "🔄 Shape every entry of a text, JSON or CSV file and export the result",
		Long: `🔄 Shape every entry of a source file and export the result.

Source files may be:
  .txt   one entry per line (UTF-8, or UTF-16 with byte order mark)
  .json  an array of strings or an object of string values
  .csv   the first column, or the column chosen with --column

The output is written to the --output directory as <name>.shaped.<format>
and is only rewritten when its content changes.`,
		Args: cobra.ExactArgs(1),
		RunE: runConvert,
	}
	addShapingFlags(cmd)
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output directory for converted files")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format (text, json or csv)")
	cmd.Flags().StringVar(&csvColumn, "column", "", "CSV column to shape, by header name")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Watch file for changes and auto-convert")
	cmd.Flags().StringVarP(&debounceString, "debounce", "d", "1s", "Debounce duration for watch mode (e.g., 0s, 500ms, 1s, 5s)")
	return cmd
}

// outputPath names the export of sourceFile in format
func outputPath(sourceFile string, format exporter.ExportFormat) string {
	baseName := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	return filepath.Join(outputDir, baseName+".shaped"+format.Extension())
}

func runConvert(cmd *cobra.Command, args []string) error {
	sourceFile := args[0]

	format, err := exporter.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	var opts []datasource.Option
	if csvColumn != "" {
		opts = append(opts, datasource.WithColumn(csvColumn))
	}
	ds, err := datasource.NewDataSource(sourceFile, opts...)
	if err != nil {
		return err
	}
	defer ds.Close()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	exp := exporter.NewExporter(shapeFunc())
	target := outputPath(sourceFile, format)

	if !watchMode {
		return convertFile(ds, exp, format, target)
	}

	debounceDuration, err := parseDebounceDuration(debounceString)
	if err != nil {
		return err
	}

	infoColor.Printf("👀 Watching file: %s\n", sourceFile)
	infoColor.Println("📝 Press Ctrl+C to stop watching")

	// Initial conversion
	if err := convertFile(ds, exp, format, target); err != nil {
		errorColor.Printf("❌ %v\n", err)
	}

	fw, err := watcher.NewFileWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Watch(sourceFile, func(path string) {
		if err := convertFile(ds, exp, format, target); err != nil {
			errorColor.Printf("❌ %v\n", err)
		}
	}, debounceDuration); err != nil {
		return fmt.Errorf("failed to watch file: %w", err)
	}

	fw.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	infoColor.Println("👋 Stopped watching")
	return nil
}

func convertFile(ds datasource.DataSource, exp *exporter.Exporter, format exporter.ExportFormat, target string) error {
	infoColor.Printf("🔍 Reading source: %s\n", filepath.Base(ds.GetPath()))

	entries, err := ds.GetEntries()
	if err != nil {
		return fmt.Errorf("failed to read entries: %w", err)
	}

	infoColor.Printf("📊 Found %d entries\n", len(entries))

	info, err := exp.Export(entries, format, target)
	if err != nil {
		return fmt.Errorf("failed to export to %s: %w", format, err)
	}

	if info.Skipped {
		warningColor.Printf("⏭️  Output unchanged: %s\n", target)
		return nil
	}
	successColor.Printf("✅ Successfully exported to: %s (crc32 %s, %d bytes)\n", target, info.Hash, info.Size)
	return nil
}
