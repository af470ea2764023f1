package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/spf13/cobra"

	"github.com/atomicdeploy/arshape/pkg/shaper"
)

var (
	// Version information
	Version   = "1.0.0"
	BuildDate = "unknown"

	// Global flags
	verbose    bool
	traceLevel string

	// Shaping flags shared by several commands
	logicalOrder bool
	noLigatures  bool

	// Color definitions
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warningColor = color.New(color.FgYellow)
)

// tracer traces with key 'arshape.shaper', the key the shaper package uses
func tracer() tracing.Trace {
	return tracing.Select("arshape.shaper")
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "arshape",
		Short: "🔤 Arabic text shaper for renderers without shaping support",
		Long: `
╔═══════════════════════════════════════════════════════════╗
║               🔤 arshape - Arabic Text Shaper             ║
║   Contextual forms, LAM-ALEF ligatures and visual order   ║
║        for renderers that cannot shape Arabic text        ║
╚═══════════════════════════════════════════════════════════╝

Turns logical-order Arabic text into presentation-form glyphs in
left-to-right drawing order. Text without Arabic letters is left as is.
`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureTracing()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging (same as --trace Debug)")
	rootCmd.PersistentFlags().StringVar(&traceLevel, "trace", "Error", "Trace level [Debug|Info|Error]")

	rootCmd.AddCommand(newShapeCmd(), newInspectCmd(), newConvertCmd(), newServeCmd(), newReplCmd())

	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Set up logging
	log.SetFlags(0)
	log.SetOutput(os.Stdout)
}

// configureTracing routes shaper traces to the Go logger at the level
// chosen on the command line.
func configureTracing() error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":      "go",
		"trace.arshape.shaper": "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("failed to configure tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	level := traceLevel
	if verbose {
		level = "Debug"
	}
	switch level {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		return fmt.Errorf("invalid trace level: %s", level)
	}
	return nil
}

// addShapingFlags registers the flags that select pipeline stages
func addShapingFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&logicalOrder, "logical", "l", false, "Keep logical order (skip reordering and mirroring)")
	cmd.Flags().BoolVar(&noLigatures, "no-ligatures", false, "Do not form LAM-ALEF ligatures")
}

func shapingOptions() shaper.Options {
	return shaper.Options{Logical: logicalOrder, NoLigatures: noLigatures}
}

// shapeFunc returns a shaping function for the options given on the command line
func shapeFunc() func(string) string {
	opts := shapingOptions()
	return func(s string) string {
		return shaper.ShapeWith(s, opts)
	}
}

// parseDebounceDuration parses and validates a debounce duration string
func parseDebounceDuration(durationStr string) (time.Duration, error) {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		return 0, fmt.Errorf("invalid debounce duration '%s' (valid examples: 0s, 500ms, 1s, 5s, 1m): %w", durationStr, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("invalid debounce duration '%s': must not be negative", durationStr)
	}
	return duration, nil
}
