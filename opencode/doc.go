// Package opencode provides a Go client for the OpenCode server's push
// event stream.
//
// An OpenCode server exposes its activity as a server-sent event stream on
// GET /event: message lifecycle updates, streaming message parts (text and
// tool calls), and session status transitions. This package decodes those
// frames into typed events and delivers them on a channel. The stream is
// server-wide; events carry session identifiers for callers that follow a
// single session.
//
// # Quick Start
//
// To follow a running server:
//
//	err := opencode.Tail(ctx, "http://127.0.0.1:4096", func(ev opencode.Event) bool {
//	    switch e := ev.(type) {
//	    case opencode.MessagePartUpdatedEvent:
//	        if text, ok := e.Part.(opencode.TextPart); ok {
//	            fmt.Print(text.Text)
//	        }
//	    case opencode.SessionIdleEvent:
//	        return false // done
//	    }
//	    return true
//	})
//
// # Streaming Usage
//
// For lower-level control over the stream lifecycle:
//
//	session := opencode.NewSession("http://127.0.0.1:4096",
//	    opencode.WithReconnect(2*time.Second, 0),
//	)
//	if err := session.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Stop()
//
//	for event := range session.Events() {
//	    switch e := event.(type) {
//	    case opencode.MessageUpdatedEvent:
//	        fmt.Printf("message %s (%s)\n", e.Info.ID, e.Info.Role)
//	    case opencode.MessagePartUpdatedEvent:
//	        if tool, ok := e.Part.(opencode.ToolPart); ok && opencode.IsRunning(tool.State) {
//	            fmt.Printf("[%s running]\n", tool.Tool)
//	        }
//	    case opencode.ErrorEvent:
//	        log.Printf("stream: %v", e.Error)
//	    }
//	}
//
// # Managed Servers
//
// Callers embedding a private server can spawn one:
//
//	srv := opencode.NewServerProcess(opencode.WithWorkDir("/path/to/project"))
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop()
//	if err := srv.WaitReady(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	events, err := opencode.TailStream(ctx, srv.URL())
//
// Decoding is strict about structure and lenient about vocabulary: missing
// required fields fail with *ParseError, while unrecognized event types pass
// through as UnknownEvent and unrecognized session status values pass
// through verbatim.
package opencode
