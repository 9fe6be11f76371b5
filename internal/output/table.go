package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openports/openports/pkg/model"
)

var headers = []string{
	"User", "Type", "Protocol", "Local Address", "Local Port",
	"Service", "Process", "PID", "Remote Address", "Remote Port", "State",
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")). // White
			Background(lipgloss.Color("#7D56F4"))  // Purple

	// One foreground per column, in header order.
	columnColors = []lipgloss.Color{
		"#FFFFFF", // user
		"#00AFAF", // type
		"#00AFAF", // protocol
		"#22AA22", // local address
		"#FFDF87", // local port
		"#D75FD7", // service
		"#5F5FD7", // process
		"#FF5F5F", // pid
		"#22AA22", // remote address
		"#FFDF87", // remote port
		"#FFFFFF", // state
	}
)

// SortConnections orders rows ascending by process name then local port,
// keeping the input order for ties.
func SortConnections(conns []model.Connection) {
	sort.SliceStable(conns, func(i, j int) bool {
		if conns[i].Process != conns[j].Process {
			return conns[i].Process < conns[j].Process
		}
		return conns[i].LocalPort < conns[j].LocalPort
	})
}

// RenderTable writes the connections as a column-aligned table. With color
// enabled the header is highlighted, columns get per-column foregrounds and
// every other row is dimmed.
func RenderTable(w io.Writer, conns []model.Connection, colorEnabled bool) {
	rows := make([][]string, 0, len(conns))
	for _, c := range conns {
		rows = append(rows, []string{
			c.User,
			c.NetworkType,
			c.Protocol,
			strings.TrimSpace(c.LocalAddr),
			strconv.Itoa(c.LocalPort),
			c.Service,
			c.Process,
			c.PID,
			strings.TrimSpace(c.RemoteAddr),
			strconv.Itoa(c.RemotePort),
			c.State,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string, style func(i int, s string) string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = style(i, pad(cell, widths[i]))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	plain := func(_ int, s string) string { return s }

	if colorEnabled {
		writeRow(headers, func(_ int, s string) string { return headerStyle.Render(s) })
	} else {
		writeRow(headers, plain)
	}

	for n, row := range rows {
		if !colorEnabled {
			writeRow(row, plain)
			continue
		}
		dim := n%2 == 1
		writeRow(row, func(i int, s string) string {
			style := lipgloss.NewStyle().Foreground(columnColors[i])
			if dim {
				style = style.Faint(true)
			}
			return style.Render(s)
		})
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
