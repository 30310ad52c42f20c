package opencode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/calumba-holding/spacebot/internal/procattr"
)

// ServerConfig controls how a managed server process is spawned.
type ServerConfig struct {
	// CLIPath is the binary to execute. Defaults to "opencode" resolved
	// via PATH.
	CLIPath string

	// Hostname the server binds. Defaults to "127.0.0.1".
	Hostname string

	// Port the server listens on. Zero picks a free port at Start.
	Port int

	// WorkDir is the working directory for the server, i.e. the project
	// root it serves. Empty inherits the current directory.
	WorkDir string

	// Env entries are appended to the inherited environment as KEY=VALUE.
	Env map[string]string

	// ExtraArgs are appended to the serve command line verbatim.
	ExtraArgs []string

	// Stdout and Stderr receive the server's output. Nil discards stdout;
	// stderr is always also retained in a bounded tail for exit errors.
	Stdout io.Writer
	Stderr io.Writer

	// ReadyTimeout bounds WaitReady. Defaults to 30 seconds.
	ReadyTimeout time.Duration

	// StopGrace is how long Stop waits after SIGTERM before escalating to
	// SIGKILL. Defaults to 3 seconds.
	StopGrace time.Duration

	// Logger receives lifecycle diagnostics. Defaults to a no-op logger.
	Logger *slog.Logger
}

// ServerOption configures a ServerProcess.
type ServerOption func(*ServerConfig)

// WithCLIPath overrides the server binary path.
func WithCLIPath(path string) ServerOption {
	return func(c *ServerConfig) {
		c.CLIPath = path
	}
}

// WithHostname sets the address the server binds.
func WithHostname(hostname string) ServerOption {
	return func(c *ServerConfig) {
		c.Hostname = hostname
	}
}

// WithPort sets the port the server listens on. Zero picks a free port.
func WithPort(port int) ServerOption {
	return func(c *ServerConfig) {
		c.Port = port
	}
}

// WithWorkDir sets the project directory the server runs in.
func WithWorkDir(dir string) ServerOption {
	return func(c *ServerConfig) {
		c.WorkDir = dir
	}
}

// WithServerEnv adds environment variables for the server process.
func WithServerEnv(env map[string]string) ServerOption {
	return func(c *ServerConfig) {
		c.Env = env
	}
}

// WithExtraArgs appends raw arguments to the serve command line.
func WithExtraArgs(args ...string) ServerOption {
	return func(c *ServerConfig) {
		c.ExtraArgs = append(c.ExtraArgs, args...)
	}
}

// WithServerOutput directs the server's stdout and stderr. Either may be
// nil to discard.
func WithServerOutput(stdout, stderr io.Writer) ServerOption {
	return func(c *ServerConfig) {
		c.Stdout = stdout
		c.Stderr = stderr
	}
}

// WithReadyTimeout bounds how long WaitReady polls for the listener.
func WithReadyTimeout(d time.Duration) ServerOption {
	return func(c *ServerConfig) {
		c.ReadyTimeout = d
	}
}

// WithStopGrace sets the SIGTERM grace period before SIGKILL.
func WithStopGrace(d time.Duration) ServerOption {
	return func(c *ServerConfig) {
		c.StopGrace = d
	}
}

// WithServerLogger sets the logger for lifecycle diagnostics.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(c *ServerConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{
		CLIPath:      "opencode",
		Hostname:     "127.0.0.1",
		ReadyTimeout: 30 * time.Second,
		StopGrace:    3 * time.Second,
		Logger:       nopLogger,
	}
}

// ServerProcess manages a locally spawned server instance, for callers
// embedding a private server rather than attaching to a running one. The
// child runs in its own process group so Stop can tear down any workers it
// forked.
type ServerProcess struct {
	cmd      *exec.Cmd
	config   ServerConfig
	tail     *tailWriter
	exited   chan struct{}
	exitErr  error
	port     int
	mu       sync.Mutex
	started  bool
	stopping bool
}

// NewServerProcess creates a server process manager.
func NewServerProcess(opts ...ServerOption) *ServerProcess {
	config := defaultServerConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &ServerProcess{
		config: config,
		tail:   newTailWriter(4096),
	}
}

// BuildServeArgs builds the serve command line from the configuration.
//
// The server CLI uses: opencode serve --hostname <host> --port <port> [options]
func (sp *ServerProcess) BuildServeArgs() []string {
	return sp.buildArgs(sp.resolvedPort())
}

func (sp *ServerProcess) buildArgs(port int) []string {
	args := []string{
		"serve",
		"--hostname", sp.config.Hostname,
		"--port", strconv.Itoa(port),
	}
	args = append(args, sp.config.ExtraArgs...)
	return args
}

// URL returns the base URL of the managed server. Once Start has resolved
// an ephemeral port, the URL reflects the picked port.
func (sp *ServerProcess) URL() string {
	return "http://" + net.JoinHostPort(sp.config.Hostname, strconv.Itoa(sp.resolvedPort()))
}

func (sp *ServerProcess) resolvedPort() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.port != 0 {
		return sp.port
	}
	return sp.config.Port
}

// Start spawns the server process.
func (sp *ServerProcess) Start(ctx context.Context) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.started {
		return ErrAlreadyStarted
	}

	port := sp.config.Port
	if port == 0 {
		picked, err := pickFreePort(sp.config.Hostname)
		if err != nil {
			return &ProcessError{Message: "failed to pick a free port", Cause: err}
		}
		port = picked
	}
	sp.port = port

	cliPath := sp.config.CLIPath
	if cliPath == "" {
		cliPath = "opencode"
	}

	sp.cmd = exec.CommandContext(ctx, cliPath, sp.buildArgs(port)...)

	// Set environment variables
	sp.cmd.Env = os.Environ()
	for k, v := range sp.config.Env {
		sp.cmd.Env = append(sp.cmd.Env, k+"="+v)
	}

	if sp.config.WorkDir != "" {
		sp.cmd.Dir = sp.config.WorkDir
	}

	sp.cmd.Stdout = sp.config.Stdout
	if sp.config.Stderr != nil {
		sp.cmd.Stderr = io.MultiWriter(sp.tail, sp.config.Stderr)
	} else {
		sp.cmd.Stderr = sp.tail
	}

	// Configure process group for orphan prevention
	procattr.Apply(sp.cmd)

	if err := sp.cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return &CLINotFoundError{Path: cliPath, Cause: err}
		}
		return &ProcessError{Message: "failed to start server process", Cause: err}
	}

	sp.config.Logger.Debug("server process started", "pid", sp.cmd.Process.Pid, "args", sp.cmd.Args)

	sp.started = true
	sp.exited = make(chan struct{})
	go sp.waitLoop()
	return nil
}

// waitLoop reaps the child and records its exit status.
func (sp *ServerProcess) waitLoop() {
	err := sp.cmd.Wait()
	sp.mu.Lock()
	sp.exitErr = err
	sp.mu.Unlock()
	close(sp.exited)
}

// WaitReady blocks until the server accepts TCP connections, the process
// exits, the timeout elapses, or ctx is done.
func (sp *ServerProcess) WaitReady(ctx context.Context) error {
	sp.mu.Lock()
	started := sp.started
	exited := sp.exited
	addr := net.JoinHostPort(sp.config.Hostname, strconv.Itoa(sp.port))
	sp.mu.Unlock()

	if !started {
		return ErrNotStarted
	}

	deadline := time.Now().Add(sp.config.ReadyTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			conn.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return &ProcessError{Message: "server not ready before timeout: " + addr}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-exited:
			return sp.exitError()
		case <-ticker.C:
		}
	}
}

// exitError converts the recorded exit status into a ProcessError.
func (sp *ServerProcess) exitError() error {
	sp.mu.Lock()
	err := sp.exitErr
	sp.mu.Unlock()

	if err == nil {
		// Exited zero before the listener came up.
		err = ErrServerExited
	}

	exitCode := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return &ProcessError{
		Message:  "server process exited",
		Cause:    err,
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(sp.tail.String()),
	}
}

// Stop gracefully shuts down the server process.
func (sp *ServerProcess) Stop() error {
	sp.mu.Lock()
	if !sp.started || sp.stopping {
		sp.mu.Unlock()
		return nil
	}
	sp.stopping = true
	exited := sp.exited
	proc := sp.cmd.Process
	sp.mu.Unlock()

	// Graceful shutdown: SIGTERM → grace period → SIGKILL
	if proc != nil {
		_ = procattr.SignalGroup(proc, syscall.SIGTERM)
	}

	select {
	case <-exited:
		return nil
	case <-time.After(sp.config.StopGrace):
		// Process didn't respond to SIGTERM, force kill
	}

	if proc != nil {
		sp.config.Logger.Debug("server ignored SIGTERM, killing group", "pid", proc.Pid)
		_ = procattr.KillGroup(proc)
	}

	select {
	case <-exited:
	case <-time.After(time.Second):
	}
	return nil
}

// pickFreePort asks the kernel for an unused TCP port on host.
func pickFreePort(host string) (int, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// tailWriter keeps the most recent bytes written to it.
type tailWriter struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newTailWriter(max int) *tailWriter {
	return &tailWriter{max: max}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	if len(w.buf) > w.max {
		w.buf = w.buf[len(w.buf)-w.max:]
	}
	return len(p), nil
}

func (w *tailWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(w.buf)
}
