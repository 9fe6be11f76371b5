package iana

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestReadRegistryLookup(t *testing.T) {
	// Columns deliberately out of the usual order: fields are addressed by
	// header name, not position.
	csv := strings.Join([]string{
		"Transport Protocol,Service Name,Port Number,Description",
		"tcp,ssh,22,The Secure Shell",
		"udp,ssh,22,The Secure Shell",
		"tcp,first-wins,7070,registered first",
		"tcp,second-loses,7070,duplicate assignment",
		"tcp,,8081,reserved but unnamed",
		"sctp,ranged,9000-9005,range entry",
		"tcp,short-row",
	}, "\n")

	reg, err := ReadRegistry(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadRegistry: %v", err)
	}
	if reg.Len() != 7 {
		t.Fatalf("Len = %d, want 7", reg.Len())
	}

	cases := []struct {
		port    int
		proto   string
		want    string
		wantHit bool
	}{
		{22, "tcp", "ssh", true},
		{22, "udp", "ssh", true},
		{22, "TCP", "ssh", true},
		{7070, "tcp", "first-wins", true},
		{8081, "tcp", "", false},  // blank names are never indexed
		{9000, "sctp", "", false}, // range rows are not numeric ports
		{4242, "tcp", "", false},
	}
	for _, tc := range cases {
		got, ok := reg.Lookup(tc.port, tc.proto)
		if ok != tc.wantHit || got != tc.want {
			t.Errorf("Lookup(%d, %q) = %q, %v; want %q, %v",
				tc.port, tc.proto, got, ok, tc.want, tc.wantHit)
		}
	}
}

func TestReadRegistryMissingColumns(t *testing.T) {
	csv := "Name,Port\nssh,22\n"
	if _, err := ReadRegistry(strings.NewReader(csv)); err == nil {
		t.Fatal("expected an error for a header without the required columns")
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected an error for a missing registry file")
	}
}
