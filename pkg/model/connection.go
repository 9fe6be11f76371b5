package model

// Connection is one open socket and its owning process, as reported by the
// listing tool. Service is filled in after resolution; everything else is
// immutable once parsed.
type Connection struct {
	User        string
	Process     string
	PID         string
	State       string // Listen, Established, ... (empty for most UDP sockets)
	NetworkType string // IPv4 or IPv6 marker as reported by the tool
	Protocol    string // TCP or UDP
	LocalAddr   string
	LocalPort   int
	RemoteAddr  string // "*" when there is no peer
	RemotePort  int    // 0 when there is no peer
	Service     string
}
