// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

// Package netctx defines the pluggable interface the `ip` command talks
// to, the same "one interface, one method per operation" shape as
// fuseutil.FileSystem: a host device implements Context, and commands
// never touch the host's routing tables directly.
package netctx

import "fmt"

// LinkState is an interface's administrative state.
type LinkState int

const (
	LinkDown LinkState = iota
	LinkUp
)

func (s LinkState) String() string {
	if s == LinkUp {
		return "UP"
	}
	return "DOWN"
}

// Link describes one network interface.
type Link struct {
	Name       string
	Index      int
	MTU        int
	HWAddr     string
	State      LinkState
}

// Addr is an address assigned to an interface.
type Addr struct {
	Interface string
	CIDR      string // e.g. "10.0.0.1/24"
}

// Route is one routing table entry.
type Route struct {
	Destination string // CIDR, or "default"
	Gateway     string // empty for a directly connected route
	Interface   string
	Src         string // preferred source address, if any
	Metric      int
}

// Neighbor is one ARP/NDP table entry.
type Neighbor struct {
	Address   string
	HWAddr    string
	Interface string
	State     string // e.g. "REACHABLE", "STALE", "FAILED"
}

// Context is the minimum surface the `ip` command needs: list
// interfaces, get/set addresses, get/add/delete routes, get the
// neighbor table, bring interfaces up/down. Every mutating method
// returns "" on success or a human-readable error line on failure,
// matching iproute2's own error text for known failures (spec §6).
type Context interface {
	ListLinks() ([]Link, error)
	SetLinkState(name string, state LinkState) string

	ListAddrs(iface string) ([]Addr, error)
	AddAddr(iface, cidr string) string
	DelAddr(iface, cidr string) string

	ListRoutes() ([]Route, error)
	AddRoute(r Route) string
	DelRoute(destination string) string
	GetRoute(destination string) (Route, error)

	ListNeighbors() ([]Neighbor, error)
}

// NotImplemented embeds into a Context implementation to default every
// method to an RTNETLINK-style error, the same ENOSYS-default idiom as
// fuseutil.NotImplementedFileSystem.
type NotImplemented struct{}

var _ Context = &NotImplemented{}

func rtnetlinkErr(op string) error {
	return fmt.Errorf("RTNETLINK answers: operation not supported (%s)", op)
}

func (NotImplemented) ListLinks() ([]Link, error) { return nil, rtnetlinkErr("ListLinks") }

func (NotImplemented) SetLinkState(name string, state LinkState) string {
	return rtnetlinkErr("SetLinkState").Error()
}

func (NotImplemented) ListAddrs(iface string) ([]Addr, error) {
	return nil, rtnetlinkErr("ListAddrs")
}

func (NotImplemented) AddAddr(iface, cidr string) string { return rtnetlinkErr("AddAddr").Error() }
func (NotImplemented) DelAddr(iface, cidr string) string { return rtnetlinkErr("DelAddr").Error() }

func (NotImplemented) ListRoutes() ([]Route, error) { return nil, rtnetlinkErr("ListRoutes") }
func (NotImplemented) AddRoute(r Route) string       { return rtnetlinkErr("AddRoute").Error() }
func (NotImplemented) DelRoute(destination string) string {
	return rtnetlinkErr("DelRoute").Error()
}
func (NotImplemented) GetRoute(destination string) (Route, error) {
	return Route{}, rtnetlinkErr("GetRoute")
}

func (NotImplemented) ListNeighbors() ([]Neighbor, error) {
	return nil, rtnetlinkErr("ListNeighbors")
}
