package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/openports/openports/pkg/model"
)

func TestSortConnections(t *testing.T) {
	conns := []model.Connection{
		{Process: "nginx", LocalPort: 443},
		{Process: "chrome", LocalPort: 9000},
		{Process: "chrome", LocalPort: 80},
		{Process: "nginx", LocalPort: 80},
	}
	SortConnections(conns)

	want := []struct {
		process string
		port    int
	}{
		{"chrome", 80},
		{"chrome", 9000},
		{"nginx", 80},
		{"nginx", 443},
	}
	for i, w := range want {
		if conns[i].Process != w.process || conns[i].LocalPort != w.port {
			t.Fatalf("row %d = %s:%d, want %s:%d",
				i, conns[i].Process, conns[i].LocalPort, w.process, w.port)
		}
	}
}

func TestSortConnectionsStable(t *testing.T) {
	// Identical (process, port) pairs keep their input order.
	conns := []model.Connection{
		{Process: "worker", LocalPort: 8080, PID: "100"},
		{Process: "worker", LocalPort: 8080, PID: "200"},
		{Process: "worker", LocalPort: 8080, PID: "300"},
	}
	SortConnections(conns)
	for i, pid := range []string{"100", "200", "300"} {
		if conns[i].PID != pid {
			t.Fatalf("row %d PID = %s, want %s", i, conns[i].PID, pid)
		}
	}
}

func TestRenderTablePlain(t *testing.T) {
	conns := []model.Connection{
		{
			User: "root", NetworkType: "IPv4", Protocol: "TCP",
			LocalAddr: "*", LocalPort: 22, Service: "ssh",
			Process: "sshd", PID: "911", RemoteAddr: "*", State: "Listen",
		},
		{
			User: "alice", NetworkType: "IPv6", Protocol: "UDP",
			LocalAddr: "[::1]", LocalPort: 5353, Service: "Unknown Service",
			Process: "resolved", PID: "567", RemoteAddr: "*",
		},
	}

	var buf bytes.Buffer
	RenderTable(&buf, conns, false)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("rendered %d lines, want header + 2 rows", len(lines))
	}
	for _, col := range []string{"User", "Local Port", "Service", "State"} {
		if !strings.Contains(lines[0], col) {
			t.Errorf("header missing column %q: %s", col, lines[0])
		}
	}
	if !strings.Contains(lines[1], "sshd") || !strings.Contains(lines[1], "ssh") {
		t.Errorf("first row should show sshd/ssh: %s", lines[1])
	}
	if !strings.Contains(lines[2], "Unknown Service") {
		t.Errorf("second row should show the sentinel: %s", lines[2])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("plain rendering should not emit ANSI escapes")
	}
}

func TestToJSON(t *testing.T) {
	conns := []model.Connection{{Process: "sshd", LocalPort: 22, Service: "ssh"}}
	s, err := ToJSON(conns)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if !strings.Contains(s, `"sshd"`) || !strings.Contains(s, `"ssh"`) {
		t.Fatalf("unexpected JSON: %s", s)
	}
}
