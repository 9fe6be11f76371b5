// Package services resolves port numbers to service names using the local
// services database first and the cached registry second.
package services

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/openports/openports/internal/iana"
)

// Unknown is returned when neither source knows the port.
const Unknown = "Unknown Service"

// DefaultPath is the system services database consulted first.
const DefaultPath = "/etc/services"

type serviceKey struct {
	port  int
	proto string
}

// Options adjusts resolver behavior.
type Options struct {
	// TCPOnlyFallback reproduces the historical registry fallback, which
	// queried "tcp" rows no matter which protocol was being resolved. Off by
	// default; UDP lookups then consult UDP rows as one would expect.
	TCPOnlyFallback bool
}

// Resolver answers port+protocol lookups from in-memory indexes built once at
// construction. Misses are common and are not errors.
type Resolver struct {
	local    map[serviceKey]string
	registry *iana.Registry
	opts     Options
}

// NewResolver parses the services database at path (absence is fine, the tier
// is just empty) and keeps the registry for fallback. registry may be nil.
func NewResolver(path string, registry *iana.Registry, opts Options) *Resolver {
	return &Resolver{
		local:    loadLocal(path),
		registry: registry,
		opts:     opts,
	}
}

// Resolve returns the best-known service name for a port and transport
// protocol ("tcp" or "udp", case-insensitive), or Unknown.
func (r *Resolver) Resolve(port int, proto string) string {
	proto = strings.ToLower(proto)
	if name, ok := r.local[serviceKey{port, proto}]; ok {
		return name
	}
	if r.registry != nil {
		fallback := proto
		if r.opts.TCPOnlyFallback {
			fallback = "tcp"
		}
		if name, ok := r.registry.Lookup(port, fallback); ok {
			return name
		}
	}
	return Unknown
}

// loadLocal parses an /etc/services style file: "name port/proto [aliases]",
// '#' starts a comment. First entry for a port/proto pair wins.
func loadLocal(path string) map[serviceKey]string {
	local := make(map[serviceKey]string)
	f, err := os.Open(path)
	if err != nil {
		return local
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		portProto := strings.SplitN(fields[1], "/", 2)
		if len(portProto) != 2 {
			continue
		}
		port, err := strconv.Atoi(portProto[0])
		if err != nil {
			continue
		}
		k := serviceKey{port: port, proto: strings.ToLower(portProto[1])}
		if _, ok := local[k]; !ok {
			local[k] = fields[0]
		}
	}
	return local
}
