// Command octail follows an OpenCode server's event stream from the terminal.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL  string
	configPath string
	verbose    bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "octail",
	Short: "Follow an OpenCode server's event stream",
	Long: `Octail attaches to the push event stream of a running OpenCode server
and renders message, tool, and session activity as it happens.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "Server base URL (default "+defaultServer+")")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default .octail.yaml, then ~/.octail.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger creates a structured logger that writes to stderr.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveServer picks the server URL: flag over config file.
func resolveServer(config *Config) string {
	if serverURL != "" {
		return serverURL
	}
	return config.Server
}
