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
	"context"
	"sort"

	"github.com/mkokutoyori/netsim/common"
)

// spfNode is one vertex of the shortest-path tree: either a router (keyed
// by router-id) or a transit network (keyed by the DR's router-id with
// the "net:" prefix).
type spfNode struct {
	id       string
	isNet    bool
	cost     int
	nextHop  string // first-hop neighbor address from the root
	outIface string
	settled  bool
}

// runSPFLocked recomputes the route table from every area's LSDB via
// Dijkstra (spec §4.6.5) and replaces e.routes. Callers hold e.mu.
func (e *Engine) runSPFLocked() {
	start := e.clock.Now()
	var all []Route
	for areaID := range e.areas {
		all = append(all, e.computeAreaSPFLocked(areaID)...)
	}
	e.routes = all
	e.metrics.OSPFSPFLatency(context.Background(), e.clock.Now().Sub(start), nil)
	e.emit("SPFRecomputed", "routes=%d", len(all))
}

// computeAreaSPFLocked runs Dijkstra rooted at the local Router-LSA
// within one area (spec §4.6.5). Callers hold e.mu.
func (e *Engine) computeAreaSPFLocked(areaID string) []Route {
	area, ok := e.areas[areaID]
	if !ok {
		return nil
	}

	nodes := map[string]*spfNode{e.routerID: {id: e.routerID, cost: 0}}
	unsettled := []*spfNode{nodes[e.routerID]}

	for len(unsettled) > 0 {
		sort.Slice(unsettled, func(i, j int) bool {
			if unsettled[i].cost != unsettled[j].cost {
				return unsettled[i].cost > unsettled[j].cost
			}
			return unsettled[i].id > unsettled[j].id // the last element is the cheapest; on equal cost, the lower router-id settles first
		})
		cur := unsettled[len(unsettled)-1]
		unsettled = unsettled[:len(unsettled)-1]
		if cur.settled {
			continue
		}
		cur.settled = true

		rlsa, have := area.LSDB[LSAKey{Type: LSARouter, LinkStateID: cur.id, AdvertisingRtr: cur.id}]
		if !have {
			continue
		}
		for _, link := range rlsa.Links {
			switch link.Type {
			case 1: // point-to-point
				e.relax(nodes, &unsettled, cur, link.LinkID, false, link.Metric)
			case 2: // transit network, via the DR
				e.relax(nodes, &unsettled, cur, "net:"+link.LinkID, true, link.Metric)
			}
		}

		if cur.isNet {
			dr := cur.id[len("net:"):]
			nlsa, have := area.LSDB[LSAKey{Type: LSANetwork, LinkStateID: dr, AdvertisingRtr: dr}]
			if have {
				for _, rid := range nlsa.AttachedRouters {
					e.relax(nodes, &unsettled, cur, rid, false, 0)
				}
			}
		}
	}

	return e.emitRoutesLocked(areaID, nodes)
}

func (e *Engine) relax(nodes map[string]*spfNode, unsettled *[]*spfNode, cur *spfNode, id string, isNet bool, metric int) {
	next, ok := nodes[id]
	newCost := cur.cost + metric
	if !ok {
		next = &spfNode{id: id, isNet: isNet, cost: newCost + 1}
		nodes[id] = next
		*unsettled = append(*unsettled, next)
	}
	if newCost < next.cost || (next.nextHop == "" && cur.id == e.routerID) {
		next.cost = newCost
		if cur.id == e.routerID {
			next.nextHop, next.outIface = e.firstHopLocked(id, isNet)
		} else {
			next.nextHop, next.outIface = cur.nextHop, cur.outIface
		}
	}
}

// firstHopLocked finds the directly-connected interface/neighbor-address
// that reaches id (a router-id, or a "net:"-prefixed DR router-id) in one
// hop from the local router.
func (e *Engine) firstHopLocked(id string, isNet bool) (nextHop, outIface string) {
	target := id
	if isNet {
		target = id[len("net:"):]
	}
	for name, ifc := range e.interfaces {
		if n, ok := ifc.Neighbors[target]; ok && n.State == NbrFull {
			return n.Address, name
		}
		if isNet && ifc.DR == target {
			return "", name
		}
	}
	return "", ""
}

// emitRoutesLocked emits one route per stub network and per transit
// Network-LSA once the tree has settled (spec §4.6.5).
func (e *Engine) emitRoutesLocked(areaID string, nodes map[string]*spfNode) []Route {
	area := e.areas[areaID]
	var routes []Route

	for _, rlsa := range area.LSDB {
		if rlsa.Key.Type != LSARouter {
			continue
		}
		node, ok := nodes[rlsa.Key.LinkStateID]
		if !ok || !node.settled || node.nextHop == "" {
			continue
		}
		for _, link := range rlsa.Links {
			if link.Type != 3 {
				continue
			}
			routes = append(routes, Route{
				Destination: link.LinkID, NextHop: node.nextHop, Interface: node.outIface,
				Cost: node.cost + link.Metric, Area: areaID,
			})
		}
	}

	for id, node := range nodes {
		if !node.isNet || !node.settled {
			continue
		}
		routes = append(routes, Route{
			Destination: id[len("net:"):], NextHop: node.nextHop, Interface: node.outIface,
			Cost: node.cost, Area: areaID,
		})
	}

	sort.Slice(routes, func(i, j int) bool { return routes[i].Destination < routes[j].Destination })
	return routes
}
