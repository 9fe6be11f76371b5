package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openports/openports/internal/iana"
	"github.com/openports/openports/internal/lsof"
	"github.com/openports/openports/internal/services"
)

// End to end over canned tool output: two well-formed lines, one malformed,
// and a registry that knows exactly one of the ports.
func TestBuildRowsEndToEnd(t *testing.T) {
	canned := strings.Join([]string{
		"COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME",
		"webapp 42 www 7u IPv4 1001 0t0 TCP *:8080 (LISTEN)",
		"oddball 43 www 8u IPv4 1002 0t0 TCP *:45678 (LISTEN)",
		"torn line with too few fields",
	}, "\n")

	reg, err := iana.ReadRegistry(strings.NewReader(
		"Service Name,Port Number,Transport Protocol\nhttp-alt,8080,tcp\n"))
	if err != nil {
		t.Fatal(err)
	}
	resolver := services.NewResolver(filepath.Join(t.TempDir(), "no-services"), reg, services.Options{})

	lister := &lsof.Lister{Run: func(ctx context.Context) (string, error) {
		return canned, nil
	}}
	parsed, err := lister.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	conns, skipped := buildRows(parsed, resolver)
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	if len(conns) != 2 {
		t.Fatalf("got %d rows, want 2", len(conns))
	}

	// Rows come back sorted by (process, local port).
	if conns[0].Process != "oddball" || conns[1].Process != "webapp" {
		t.Fatalf("unexpected order: %s, %s", conns[0].Process, conns[1].Process)
	}
	if conns[1].Service != "http-alt" {
		t.Errorf("webapp service = %q, want http-alt", conns[1].Service)
	}
	if conns[0].Service != services.Unknown {
		t.Errorf("oddball service = %q, want the sentinel", conns[0].Service)
	}
}

func TestListConnectionsUnknownSource(t *testing.T) {
	if _, err := listConnections(context.Background(), "netstat"); err == nil {
		t.Fatal("expected an error for an unknown source")
	}
}

func TestRootCmdFlags(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{"json", "tui", "no-color", "cache", "source", "compat-tcp-fallback", "skip-refresh"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing flag --%s", name)
		}
	}
}
