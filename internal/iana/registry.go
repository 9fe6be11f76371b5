package iana

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/openports/openports/pkg/model"
)

type registryKey struct {
	port  int
	proto string
}

// Registry is the registry file loaded once into memory. Records keep file
// order; the index maps (port, protocol) to the first non-blank service name,
// so repeated lookups never re-read the file.
type Registry struct {
	records []model.ServiceRecord
	index   map[registryKey]string
}

// LoadRegistry reads a registry CSV. Fields are addressed by header name, so
// column order does not matter; rows with a non-numeric port (the registry
// uses ranges and blanks for some assignments) are kept as records but never
// indexed, matching a by-the-number lookup.
func LoadRegistry(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRegistry(f)
}

func ReadRegistry(r io.Reader) (*Registry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read registry header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	nameCol, okName := col["Service Name"]
	portCol, okPort := col["Port Number"]
	protoCol, okProto := col["Transport Protocol"]
	if !okName || !okPort || !okProto {
		return nil, fmt.Errorf("registry header missing required columns: %q", header)
	}

	reg := &Registry{index: make(map[registryKey]string)}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read registry: %w", err)
		}
		rec := model.ServiceRecord{
			Name:     field(row, nameCol),
			Protocol: strings.ToLower(field(row, protoCol)),
		}
		portStr := field(row, portCol)
		port, perr := strconv.Atoi(portStr)
		if perr == nil {
			rec.Port = port
		}
		reg.records = append(reg.records, rec)

		if perr != nil || rec.Name == "" || rec.Protocol == "" {
			continue
		}
		k := registryKey{port: rec.Port, proto: rec.Protocol}
		if _, dup := reg.index[k]; !dup {
			// first matching record wins
			reg.index[k] = rec.Name
		}
	}
	return reg, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Lookup returns the first registered non-blank service name for a port and
// transport protocol.
func (r *Registry) Lookup(port int, proto string) (string, bool) {
	name, ok := r.index[registryKey{port: port, proto: strings.ToLower(proto)}]
	return name, ok
}

// Len reports the number of records loaded, blanks and ranges included.
func (r *Registry) Len() int {
	return len(r.records)
}
