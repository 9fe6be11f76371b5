package model

// ParsedLine is the outcome of parsing a single line of listing-tool output.
// Exactly one of Conn and Skip is set.
type ParsedLine struct {
	Conn *Connection
	Skip *SkippedLine
}

// SkippedLine records a line the parser could not turn into a Connection, so
// callers can count or report drops instead of losing them silently.
type SkippedLine struct {
	Raw    string
	Reason string
}
