package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atomicdeploy/arshape/pkg/server"
)

const defaultAddr = ":8080"

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [source-file]",
		Short: "🌐 Start the shaping REST API and WebSocket server",
		Long: `🌐 Start the shaping REST API and WebSocket server.

Endpoints:
  GET  /              welcome page with a live shaping box
  POST /api/shape     {"text": "...", "logical": false, "no_ligatures": false}
  GET  /api/inspect   ?text=...
  GET  /api/source    shaped entries of the source file, if one is given
  GET  /ws            WebSocket: text messages are answered with their shaped form

The address defaults to $ARSHAPE_ADDR, then ` + defaultAddr + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServe,
	}
	cmd.Flags().StringP("addr", "a", "", "Server address (e.g., :8080)")
	cmd.Flags().BoolP("watch", "w", true, "Watch the source file for changes and broadcast updates")
	cmd.Flags().StringP("debounce", "d", "0s", "Debounce duration for watch mode (e.g., 0s, 500ms, 1s, 5s)")
	cmd.Flags().String("column", "", "CSV column to shape, by header name")
	cmd.Flags().StringSlice("origin", nil, "Allowed WebSocket origins (default: any)")
	return cmd
}

// serverAddr picks the listen address: flag, then environment, then default
func serverAddr(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if addr := os.Getenv("ARSHAPE_ADDR"); addr != "" {
		return addr
	}
	return defaultAddr
}

func runServe(cmd *cobra.Command, args []string) error {
	addrFlag, _ := cmd.Flags().GetString("addr")
	watchFile, _ := cmd.Flags().GetBool("watch")
	debounceStr, _ := cmd.Flags().GetString("debounce")
	column, _ := cmd.Flags().GetString("column")
	origins, _ := cmd.Flags().GetStringSlice("origin")

	opts := server.Options{Column: column, AllowedOrigins: origins}
	if len(args) == 1 {
		opts.SourcePath = args[0]
	}

	srv, err := server.NewServer(opts)
	if err != nil {
		return err
	}
	defer srv.Close()

	if watchFile && opts.SourcePath != "" {
		debounceDuration, err := parseDebounceDuration(debounceStr)
		if err != nil {
			return err
		}
		if err := srv.StartWatching(debounceDuration); err != nil {
			return err
		}
	}
	if len(origins) == 0 {
		warningColor.Println("⚠️  WebSocket connections are accepted from any origin (use --origin to restrict)")
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		infoColor.Println("👋 Shutting down")
		srv.Close()
	}()

	addr := serverAddr(addrFlag)
	successColor.Printf("🌐 Server running at http://localhost%s\n", addr)
	infoColor.Println("📝 Press Ctrl+C to stop the server")

	return srv.Start(addr)
}
