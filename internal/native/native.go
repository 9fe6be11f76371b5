// Package native lists open sockets through gopsutil instead of the lsof
// binary. It is an alternate source for hosts without lsof; output is
// normalized into the same connection model.
package native

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"syscall"

	gnet "github.com/shirou/gopsutil/v4/net"
	gproc "github.com/shirou/gopsutil/v4/process"

	"github.com/openports/openports/pkg/model"
)

// List returns all IPv4/IPv6 sockets with owning-process details where
// available. Process name and user need suitable permissions; rows without
// them are still reported.
func List(ctx context.Context) ([]model.ParsedLine, error) {
	conns, err := gnet.ConnectionsWithContext(ctx, "inet")
	if err != nil {
		return nil, fmt.Errorf("list sockets: %w", err)
	}

	procs := make(map[int32]*gproc.Process)
	var lines []model.ParsedLine
	for _, c := range conns {
		conn := &model.Connection{
			NetworkType: familyName(c.Family),
			Protocol:    protoName(c.Type),
			State:       stateName(c.Status),
			LocalAddr:   c.Laddr.IP,
			LocalPort:   int(c.Laddr.Port),
			RemoteAddr:  "*",
		}
		if c.Raddr.IP != "" {
			conn.RemoteAddr = c.Raddr.IP
			conn.RemotePort = int(c.Raddr.Port)
		}
		if c.Pid > 0 {
			conn.PID = strconv.Itoa(int(c.Pid))
			p, ok := procs[c.Pid]
			if !ok {
				p, _ = gproc.NewProcessWithContext(ctx, c.Pid)
				procs[c.Pid] = p
			}
			if p != nil {
				if name, err := p.NameWithContext(ctx); err == nil {
					conn.Process = name
				}
				if user, err := p.UsernameWithContext(ctx); err == nil {
					conn.User = user
				}
			}
		}
		lines = append(lines, model.ParsedLine{Conn: conn})
	}
	return lines, nil
}

func familyName(family uint32) string {
	switch family {
	case syscall.AF_INET:
		return "IPv4"
	case syscall.AF_INET6:
		return "IPv6"
	}
	return ""
}

func protoName(sockType uint32) string {
	switch sockType {
	case syscall.SOCK_STREAM:
		return "TCP"
	case syscall.SOCK_DGRAM:
		return "UDP"
	}
	return ""
}

// stateName matches the lsof lister's state casing. gopsutil reports "NONE"
// for stateless sockets where lsof omits the field.
func stateName(status string) string {
	if status == "" || status == "NONE" {
		return ""
	}
	return strings.ToUpper(status[:1]) + strings.ToLower(status[1:])
}
