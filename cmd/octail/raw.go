package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/calumba-holding/spacebot/internal/sse"
)

var rawCount int

var rawCmd = &cobra.Command{
	Use:   "raw",
	Short: "Print event payloads as line-delimited JSON",
	Long: `Raw prints each event frame's JSON payload on its own line without
decoding it, which is useful for capturing fixtures.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolveServer(config)+"/event", nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "text/event-stream")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL)
		}

		reader := sse.NewReader(resp.Body)
		printed := 0
		for {
			payload, err := reader.Next()
			if err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return nil
				}
				return err
			}

			fmt.Println(string(payload))
			printed++
			if rawCount > 0 && printed >= rawCount {
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(rawCmd)
	rawCmd.Flags().IntVarP(&rawCount, "count", "n", 0, "Stop after N frames (0 = unlimited)")
}
