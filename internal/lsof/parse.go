package lsof

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/openports/openports/pkg/model"
)

// Trailing :<port> on an address half. Addresses themselves may contain
// colons (IPv6), so the match is anchored at the end.
var portSuffix = regexp.MustCompile(`(.*):(\d+)$`)

// ParseOutput parses lsof tabular output line by line. The header line is
// discarded; a data line needs more than 8 whitespace-delimited fields to be
// accepted, anything shorter is returned as a SkippedLine. This is a
// best-effort parser over loosely structured tool output, not a grammar.
func ParseOutput(r io.Reader) []model.ParsedLine {
	var lines []model.ParsedLine

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			first = false
			continue
		}
		fields := strings.Fields(line)
		if len(fields) <= 8 {
			lines = append(lines, model.ParsedLine{Skip: &model.SkippedLine{
				Raw:    line,
				Reason: fmt.Sprintf("expected more than 8 fields, got %d", len(fields)),
			}})
			continue
		}
		lines = append(lines, model.ParsedLine{Conn: parseFields(fields)})
	}
	return lines
}

// Field layout of `lsof +c 300 -i -nP`:
//
//	COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME [STATE]
//	   0     1   2   3   4     5      6       7    8      9
func parseFields(fields []string) *model.Connection {
	state := ""
	if len(fields) > 9 {
		state = capitalize(strings.Trim(fields[9], "()"))
	}

	local := fields[8]
	remote := ""
	if i := strings.Index(fields[8], "->"); i >= 0 {
		local = fields[8][:i]
		remote = fields[8][i+2:]
	}
	localAddr, localPort := splitHostPort(local)
	remoteAddr, remotePort := splitHostPort(remote)
	if remoteAddr == "" {
		remoteAddr = "*"
	}

	return &model.Connection{
		User:        fields[2],
		Process:     unescapeCommand(fields[0]),
		PID:         fields[1],
		State:       state,
		NetworkType: fields[4],
		Protocol:    fields[7],
		LocalAddr:   localAddr,
		LocalPort:   localPort,
		RemoteAddr:  remoteAddr,
		RemotePort:  remotePort,
	}
}

// splitHostPort separates the trailing port from an address half. A half
// without a numeric port yields an empty address and port 0.
func splitHostPort(s string) (string, int) {
	m := portSuffix.FindStringSubmatch(s)
	if m == nil {
		return "", 0
	}
	port, _ := strconv.Atoi(m[2])
	return m[1], port
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// unescapeCommand decodes the backslash escapes lsof emits for non-printable
// bytes in command names (\xNN and the usual single-character escapes).
func unescapeCommand(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}
		switch s[i+1] {
		case 'x':
			if i+4 <= len(s) {
				if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
					b.WriteByte(byte(v))
					i += 4
					continue
				}
			}
			b.WriteByte(s[i])
			i++
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case '\\':
			b.WriteByte('\\')
			i += 2
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}
