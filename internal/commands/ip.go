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

package commands

import (
	"fmt"
	"strings"

	"github.com/mkokutoyori/netsim/internal/netctx"
	"github.com/mkokutoyori/netsim/internal/shell"
)

// Ip implements the `ip` object/command dispatcher (addr, link, route,
// neigh) over netctx.Context (spec §6).
func Ip(ctx *shell.Context, args []string, stdin string) (string, int) {
	if len(args) == 0 {
		return "Usage: ip [ link | addr | route | neigh ] { COMMAND | help }\n", 1
	}
	if ctx.Net == nil {
		return "ip: networking not available on this device\n", 1
	}

	object, rest := args[0], args[1:]
	switch object {
	case "link", "l":
		return ipLink(ctx, rest)
	case "addr", "a", "address":
		return ipAddr(ctx, rest)
	case "route", "r":
		return ipRoute(ctx, rest)
	case "neigh", "n", "neighbor":
		return ipNeigh(ctx, rest)
	default:
		return fmt.Sprintf("Object \"%s\" is unknown, try \"ip help\".\n", object), 1
	}
}

func ipLink(ctx *shell.Context, args []string) (string, int) {
	if len(args) >= 2 && args[0] == "set" {
		name := args[1]
		state := netctx.LinkDown
		for _, a := range args[2:] {
			if a == "up" {
				state = netctx.LinkUp
			}
		}
		if errText := ctx.Net.SetLinkState(name, state); errText != "" {
			return errText + "\n", 2
		}
		return "", 0
	}

	links, err := ctx.Net.ListLinks()
	if err != nil {
		return err.Error() + "\n", 1
	}
	var b strings.Builder
	for _, l := range links {
		fmt.Fprintf(&b, "%d: %s: mtu %d state %s\n    link/ether %s\n", l.Index, l.Name, l.MTU, l.State, l.HWAddr)
	}
	return b.String(), 0
}

func ipAddr(ctx *shell.Context, args []string) (string, int) {
	if len(args) >= 3 && (args[0] == "add" || args[0] == "del") {
		cidr, iface := args[1], args[3]
		var errText string
		if args[0] == "add" {
			errText = ctx.Net.AddAddr(iface, cidr)
		} else {
			errText = ctx.Net.DelAddr(iface, cidr)
		}
		if errText != "" {
			return errText + "\n", 2
		}
		return "", 0
	}

	iface := ""
	if len(args) >= 2 && args[0] == "show" {
		iface = args[1]
	}
	addrs, err := ctx.Net.ListAddrs(iface)
	if err != nil {
		return err.Error() + "\n", 1
	}
	var b strings.Builder
	for _, a := range addrs {
		fmt.Fprintf(&b, "%s: inet %s\n", a.Interface, a.CIDR)
	}
	return b.String(), 0
}

func ipRoute(ctx *shell.Context, args []string) (string, int) {
	if len(args) >= 1 && (args[0] == "add" || args[0] == "del") {
		if args[0] == "del" {
			if len(args) < 2 {
				return "ip route: missing destination\n", 1
			}
			if errText := ctx.Net.DelRoute(args[1]); errText != "" {
				return errText + "\n", 2
			}
			return "", 0
		}
		r := parseRouteSpec(args[1:])
		if errText := ctx.Net.AddRoute(r); errText != "" {
			return errText + "\n", 2
		}
		return "", 0
	}
	if len(args) >= 2 && args[0] == "get" {
		r, err := ctx.Net.GetRoute(args[1])
		if err != nil {
			return err.Error() + "\n", 1
		}
		return fmt.Sprintf("%s via %s dev %s src %s\n", args[1], r.Gateway, r.Interface, r.Src), 0
	}

	routes, err := ctx.Net.ListRoutes()
	if err != nil {
		return err.Error() + "\n", 1
	}
	var b strings.Builder
	for _, r := range routes {
		if r.Gateway == "" {
			fmt.Fprintf(&b, "%s dev %s metric %d\n", r.Destination, r.Interface, r.Metric)
		} else {
			fmt.Fprintf(&b, "%s via %s dev %s metric %d\n", r.Destination, r.Gateway, r.Interface, r.Metric)
		}
	}
	return b.String(), 0
}

func parseRouteSpec(args []string) netctx.Route {
	var r netctx.Route
	if len(args) > 0 {
		r.Destination = args[0]
	}
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "via":
			i++
			if i < len(args) {
				r.Gateway = args[i]
			}
		case "dev":
			i++
			if i < len(args) {
				r.Interface = args[i]
			}
		case "src":
			i++
			if i < len(args) {
				r.Src = args[i]
			}
		case "metric":
			i++
			if i < len(args) {
				fmt.Sscanf(args[i], "%d", &r.Metric)
			}
		}
	}
	return r
}

func ipNeigh(ctx *shell.Context, args []string) (string, int) {
	neighbors, err := ctx.Net.ListNeighbors()
	if err != nil {
		return err.Error() + "\n", 1
	}
	var b strings.Builder
	for _, n := range neighbors {
		fmt.Fprintf(&b, "%s dev %s lladdr %s %s\n", n.Address, n.Interface, n.HWAddr, n.State)
	}
	return b.String(), 0
}
