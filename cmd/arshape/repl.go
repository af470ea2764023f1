package main

import (
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/atomicdeploy/arshape/pkg/codepoint"
	"github.com/atomicdeploy/arshape/pkg/shaper"
)

func newReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "⌨️  Shape text interactively, line by line",
		RunE:  runRepl,
	}
	addShapingFlags(cmd)
	return cmd
}

// session holds the options toggled from inside the REPL
type session struct {
	opts shaper.Options
	hex  bool
}

// command handles a line starting with ':'. It reports whether the REPL
// should end.
func (s *session) command(line string) (quit bool) {
	switch strings.TrimPrefix(line, ":") {
	case "q", "quit":
		return true
	case "logical":
		s.opts.Logical = !s.opts.Logical
		pterm.Info.Printf("logical order: %v\n", s.opts.Logical)
	case "ligatures":
		s.opts.NoLigatures = !s.opts.NoLigatures
		pterm.Info.Printf("ligatures: %v\n", !s.opts.NoLigatures)
	case "hex":
		s.hex = !s.hex
		pterm.Info.Printf("code points: %v\n", s.hex)
	case "stages":
		pterm.Info.Println(strings.Join(shaper.Stages(s.opts), " → "))
	default:
		pterm.Error.Printf("unknown command %s (try :logical :ligatures :hex :stages :quit)\n", line)
	}
	return false
}

// shape returns the lines to print for one line of input
func (s *session) shape(line string) []string {
	shaped := shaper.ShapeWith(line, s.opts)
	out := []string{shaped}
	if s.hex {
		out = append(out, codepoint.Format(shaped))
	}
	return out
}

func runRepl(cmd *cobra.Command, args []string) error {
	repl, err := readline.New("ar > ")
	if err != nil {
		return err
	}
	defer repl.Close()

	s := &session{opts: shapingOptions()}
	pterm.Info.Println("Type Arabic text to shape it, :quit or <ctrl>D to leave")
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if s.command(line) {
				break
			}
			continue
		}
		for _, out := range s.shape(line) {
			pterm.Println(out)
		}
	}
	pterm.Info.Println("Good bye!")
	return nil
}
