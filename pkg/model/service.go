package model

// ServiceRecord is one row of the port/service registry.
type ServiceRecord struct {
	Port     int
	Protocol string // tcp, udp, sctp, dccp
	Name     string
}
