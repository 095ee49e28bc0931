// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ospf

import (
	"fmt"
	"sort"

	"github.com/mkokutoyori/netsim/internal/netctx"
)

// This file makes *Engine satisfy netctx.Context, so the `ip` command
// (spec §6 "Network adapter") can list/mutate interfaces, addresses, and
// routes directly against the live OSPF topology rather than through a
// separate routing table.

func (e *Engine) ListLinks() ([]netctx.Link, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, 0, len(e.interfaces))
	for name := range e.interfaces {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]netctx.Link, 0, len(names))
	for i, name := range names {
		ifc := e.interfaces[name]
		state := netctx.LinkDown
		if ifc.State != IfDown {
			state = netctx.LinkUp
		}
		out = append(out, netctx.Link{Name: name, Index: i + 1, MTU: 1500, HWAddr: macFor(name), State: state})
	}
	return out, nil
}

func (e *Engine) SetLinkState(name string, state netctx.LinkState) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ifc, ok := e.interfaces[name]
	if !ok {
		return fmt.Sprintf("Cannot find device \"%s\"", name)
	}
	if state == netctx.LinkDown {
		ifc.State = IfDown
		for rid, n := range ifc.Neighbors {
			e.transitionLocked(ifc, n, NbrDown)
			delete(ifc.Neighbors, rid)
		}
	} else if ifc.NetworkType == NetPointToPoint {
		ifc.State = IfPointToPoint
	} else if ifc.Priority > 0 {
		ifc.State = IfWaiting
		ifc.waitingAt = e.clock.Now()
	} else {
		ifc.State = IfDROther
	}
	e.originateRouterLSALocked(ifc.Area)
	return ""
}

func (e *Engine) ListAddrs(iface string) ([]netctx.Addr, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []netctx.Addr
	for name, ifc := range e.interfaces {
		if iface != "" && name != iface {
			continue
		}
		for _, a := range ifc.Addresses {
			out = append(out, netctx.Addr{Interface: name, CIDR: a})
		}
	}
	return out, nil
}

func (e *Engine) AddAddr(iface, cidr string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ifc, ok := e.interfaces[iface]
	if !ok {
		return fmt.Sprintf("Cannot find device \"%s\"", iface)
	}
	ifc.Addresses = append(ifc.Addresses, cidr)
	e.originateRouterLSALocked(ifc.Area)
	return ""
}

func (e *Engine) DelAddr(iface, cidr string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ifc, ok := e.interfaces[iface]
	if !ok {
		return fmt.Sprintf("Cannot find device \"%s\"", iface)
	}
	kept := ifc.Addresses[:0]
	found := false
	for _, a := range ifc.Addresses {
		if a == cidr {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return "RTNETLINK answers: Cannot assign requested address"
	}
	ifc.Addresses = kept
	e.originateRouterLSALocked(ifc.Area)
	return ""
}

func (e *Engine) ListRoutes() ([]netctx.Route, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]netctx.Route, 0, len(e.routes))
	for _, r := range e.routes {
		out = append(out, netctx.Route{Destination: r.Destination, Gateway: r.NextHop, Interface: r.Interface, Metric: r.Cost})
	}
	return out, nil
}

func (e *Engine) AddRoute(r netctx.Route) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.routes = append(e.routes, Route{Destination: r.Destination, NextHop: r.Gateway, Interface: r.Interface, Cost: r.Metric, Area: "static"})
	return ""
}

func (e *Engine) DelRoute(destination string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.routes[:0]
	found := false
	for _, r := range e.routes {
		if r.Destination == destination {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return "RTNETLINK answers: No such process"
	}
	e.routes = kept
	return ""
}

func (e *Engine) GetRoute(destination string) (netctx.Route, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range e.routes {
		if r.Destination == destination {
			return netctx.Route{Destination: r.Destination, Gateway: r.NextHop, Interface: r.Interface, Metric: r.Cost}, nil
		}
	}
	return netctx.Route{}, fmt.Errorf("RTNETLINK answers: Network is unreachable")
}

func (e *Engine) ListNeighbors() ([]netctx.Neighbor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []netctx.Neighbor
	for name, ifc := range e.interfaces {
		for _, n := range ifc.Neighbors {
			state := "REACHABLE"
			if n.State < NbrTwoWay {
				state = "STALE"
			}
			out = append(out, netctx.Neighbor{Address: n.Address, HWAddr: macFor(n.RouterID), Interface: name, State: state})
		}
	}
	return out, nil
}

// macFor derives a deterministic placeholder MAC from a name, since the
// simulator doesn't model real link-layer addresses.
func macFor(name string) string {
	h := 0
	for _, c := range name {
		h = h*131 + int(c)
	}
	if h < 0 {
		h = -h
	}
	return fmt.Sprintf("02:00:00:%02x:%02x:%02x", (h>>16)&0xff, (h>>8)&0xff, h&0xff)
}
