package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/atomicdeploy/arshape/pkg/codepoint"
	"github.com/atomicdeploy/arshape/pkg/inspect"
	"github.com/atomicdeploy/arshape/pkg/shaper"
)

var (
	codepointInput string
	printHex       bool
)

func newShapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shape [text...]",
		Short: "✨ Shape text given as arguments, code points or on stdin",
		Example: `  arshape shape العربية
  arshape shape --codepoints "U+0644 U+0627"
  echo "سلام" | arshape shape --hex`,
		RunE: runShape,
	}
	addShapingFlags(cmd)
	cmd.Flags().StringVarP(&codepointInput, "codepoints", "u", "", "Read input as code points (e.g. \"U+0644 U+0627\")")
	cmd.Flags().BoolVarP(&printHex, "hex", "x", false, "Also print the code points of the result")
	return cmd
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [text...]",
		Short: "🔍 Show the runes of a text before and after shaping",
		RunE:  runInspect,
	}
	addShapingFlags(cmd)
	cmd.Flags().StringVarP(&codepointInput, "codepoints", "u", "", "Read input as code points (e.g. \"U+0644 U+0627\")")
	return cmd
}

// readInput returns the text to work on: code points, arguments or stdin
func readInput(args []string, stdin io.Reader) (string, error) {
	if codepointInput != "" {
		runes, err := codepoint.Parse(codepointInput)
		if err != nil {
			return "", err
		}
		return string(runes), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func runShape(cmd *cobra.Command, args []string) error {
	text, err := readInput(args, os.Stdin)
	if err != nil {
		return err
	}

	opts := shapingOptions()
	tracer().Infof("stages: %s", strings.Join(shaper.Stages(opts), ", "))

	shaped := shaper.ShapeLines(text, opts)
	out := cmd.OutOrStdout()
	fmt.Fprint(out, shaped)
	if !strings.HasSuffix(shaped, "\n") {
		fmt.Fprintln(out)
	}
	if printHex {
		for _, line := range strings.Split(strings.TrimSuffix(shaped, "\n"), "\n") {
			infoColor.Fprintln(out, codepoint.Format(strings.TrimSuffix(line, "\r")))
		}
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	text, err := readInput(args, os.Stdin)
	if err != nil {
		return err
	}
	text = strings.TrimRight(text, "\r\n")

	comparison := inspect.Compare(text, shapingOptions())
	data := [][]string{{"Source", "Type", "Name", "Shaped", "Type", "Name"}}
	data = append(data, comparison.Rows()...)

	pterm.Info.Printf("%d runes shaped to %d\n", len(comparison.Source), len(comparison.Shaped))
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil
}
