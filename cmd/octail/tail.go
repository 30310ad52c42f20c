package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/calumba-holding/spacebot/opencode"
	"github.com/calumba-holding/spacebot/opencode/render"
)

var (
	tailSession   string
	tailReconnect bool
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Render the event stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := []opencode.SessionOption{opencode.WithLogger(newLogger())}
		if config.BufferSize > 0 {
			opts = append(opts, opencode.WithEventBufferSize(config.BufferSize))
		}
		if tailReconnect || config.Reconnect {
			opts = append(opts, opencode.WithReconnect(2*time.Second, 0))
		}

		session := tailSession
		if session == "" {
			session = config.Session
		}

		r := render.NewRenderer(os.Stdout, verbose, noColor)
		defer r.Done()

		err = opencode.Tail(ctx, resolveServer(config), func(ev opencode.Event) bool {
			if session != "" && !inSession(ev, session) {
				return true
			}
			r.Event(ev)
			return true
		}, opts...)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(tailCmd)
	tailCmd.Flags().StringVar(&tailSession, "session", "", "Only render events for this session ID")
	tailCmd.Flags().BoolVar(&tailReconnect, "reconnect", false, "Reopen the stream when the connection drops")
}

// inSession reports whether the event belongs to the given session. Events
// without session scope (step accounting, stream errors, unknown kinds) pass
// the filter.
func inSession(ev opencode.Event, sessionID string) bool {
	switch e := ev.(type) {
	case opencode.MessageUpdatedEvent:
		return e.Info == nil || e.Info.SessionID == sessionID
	case opencode.MessagePartUpdatedEvent:
		switch p := e.Part.(type) {
		case opencode.TextPart:
			return p.SessionID == sessionID
		case opencode.ToolPart:
			return p.SessionID == sessionID
		case opencode.StepStartPart:
			return p.SessionID == sessionID
		default:
			return true
		}
	case opencode.SessionStatusEvent:
		return e.SessionID == sessionID
	case opencode.SessionIdleEvent:
		return e.SessionID == sessionID
	case opencode.SessionErrorEvent:
		return e.SessionID == "" || e.SessionID == sessionID
	default:
		return true
	}
}
