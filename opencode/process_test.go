package opencode

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestBuildServeArgs(t *testing.T) {
	sp := NewServerProcess(WithPort(4096))

	args := sp.BuildServeArgs()
	want := []string{"serve", "--hostname", "127.0.0.1", "--port", "4096"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestBuildServeArgs_CustomHostname(t *testing.T) {
	sp := NewServerProcess(WithHostname("0.0.0.0"), WithPort(8080))

	argsStr := strings.Join(sp.BuildServeArgs(), " ")
	if !strings.Contains(argsStr, "--hostname 0.0.0.0") {
		t.Errorf("expected --hostname 0.0.0.0 in %q", argsStr)
	}
	if !strings.Contains(argsStr, "--port 8080") {
		t.Errorf("expected --port 8080 in %q", argsStr)
	}
}

func TestBuildServeArgs_ExtraArgs(t *testing.T) {
	sp := NewServerProcess(WithPort(4096), WithExtraArgs("--log-level", "DEBUG"))

	args := sp.BuildServeArgs()
	found := false
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "--log-level" && args[i+1] == "DEBUG" {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected --log-level DEBUG in args, got %v", args)
	}
}

func TestServerProcess_URL(t *testing.T) {
	sp := NewServerProcess(WithHostname("0.0.0.0"), WithPort(5000))

	if got := sp.URL(); got != "http://0.0.0.0:5000" {
		t.Errorf("URL() = %q, want %q", got, "http://0.0.0.0:5000")
	}
}

func TestServerProcess_WaitReadyBeforeStart(t *testing.T) {
	sp := NewServerProcess()

	if err := sp.WaitReady(context.Background()); !errors.Is(err, ErrNotStarted) {
		t.Errorf("WaitReady() = %v, want ErrNotStarted", err)
	}
}

func TestServerProcess_StopBeforeStart(t *testing.T) {
	sp := NewServerProcess()

	if err := sp.Stop(); err != nil {
		t.Errorf("Stop() before Start = %v, want nil", err)
	}
}

func TestServerProcess_StartMissingBinary(t *testing.T) {
	sp := NewServerProcess(WithCLIPath("definitely-not-a-real-binary"))

	err := sp.Start(context.Background())
	var notFound *CLINotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Start() = %v, want CLINotFoundError", err)
	}
	if notFound.Path != "definitely-not-a-real-binary" {
		t.Errorf("Path = %q", notFound.Path)
	}
}

func TestServerProcess_StartTwice(t *testing.T) {
	// sleep rejects the serve arguments and exits, but Start itself succeeds.
	sp := NewServerProcess(WithCLIPath("sleep"), WithPort(4096))

	if err := sp.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer sp.Stop()

	if err := sp.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() = %v, want ErrAlreadyStarted", err)
	}
}

func TestWaitReady_ProcessExitsEarly(t *testing.T) {
	// Reserve a port nothing listens on so the readiness poll cannot succeed.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	sp := NewServerProcess(
		WithCLIPath("sleep"),
		WithPort(port),
		WithReadyTimeout(5*time.Second),
	)

	if err := sp.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer sp.Stop()

	err = sp.WaitReady(context.Background())
	var procErr *ProcessError
	if !errors.As(err, &procErr) {
		t.Fatalf("WaitReady() = %v, want ProcessError", err)
	}
	if procErr.ExitCode == 0 {
		t.Error("expected nonzero exit code")
	}
	if procErr.Stderr == "" {
		t.Error("expected captured stderr in exit error")
	}
}

func TestWaitReady_ListenerAccepts(t *testing.T) {
	// Stand in for the server's listener so WaitReady sees the port accept.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	sp := NewServerProcess(
		WithCLIPath("sleep"),
		WithPort(port),
		WithReadyTimeout(5*time.Second),
	)
	if err := sp.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer sp.Stop()

	if err := sp.WaitReady(context.Background()); err != nil {
		t.Errorf("WaitReady() = %v, want nil", err)
	}

	wantURL := "http://127.0.0.1:" + strconv.Itoa(port)
	if got := sp.URL(); got != wantURL {
		t.Errorf("URL() = %q, want %q", got, wantURL)
	}
}
