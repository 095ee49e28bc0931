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

import "sort"

// lsdbHeadersLocked returns every LSA currently known in area, sorted for
// deterministic DD packet ordering. Callers hold e.mu.
func (e *Engine) lsdbHeadersLocked(areaID string) []LSA {
	area, ok := e.areas[areaID]
	if !ok {
		return nil
	}
	out := make([]LSA, 0, len(area.LSDB))
	for _, lsa := range area.LSDB {
		out = append(out, lsa)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Type != out[j].Key.Type {
			return out[i].Key.Type < out[j].Key.Type
		}
		if out[i].Key.LinkStateID != out[j].Key.LinkStateID {
			return out[i].Key.LinkStateID < out[j].Key.LinkStateID
		}
		return out[i].Key.AdvertisingRtr < out[j].Key.AdvertisingRtr
	})
	return out
}

// installIfNewerLocked installs lsa into area's LSDB if it's newer than
// (or unknown relative to) what's already there, returning whether it
// was installed (spec §4.6.4 "Flooding").
func (e *Engine) installIfNewerLocked(areaID string, lsa LSA) bool {
	area, ok := e.areas[areaID]
	if !ok {
		return false
	}
	existing, have := area.LSDB[lsa.Key]
	if have && !existing.Fresher(lsa) {
		return false
	}
	area.LSDB[lsa.Key] = lsa
	return true
}

// floodLocked forwards lsa as an LS-Update to every Full/Exchange/
// Loading neighbor on every non-passive interface in the area except
// excludeIface (spec §4.6.4).
func (e *Engine) floodLocked(areaID, excludeIface string, lsa LSA) {
	if e.send == nil {
		return
	}
	for name, ifc := range e.interfaces {
		if name == excludeIface || ifc.Area != areaID || ifc.Passive {
			continue
		}
		for _, n := range ifc.Neighbors {
			if n.State != NbrExchange && n.State != NbrLoading && n.State != NbrFull {
				continue
			}
			if n.LSRetransmitList == nil {
				n.LSRetransmitList = make(map[LSAKey]LSA)
			}
			n.LSRetransmitList[lsa.Key] = lsa
			e.send(name, n.Address, Packet{Type: PktLSUpdate, RouterID: e.routerID, AreaID: areaID, Update: []LSA{lsa}})
		}
	}
}

// checksum is a simplified, non-Fletcher checksum (spec §9 "OSPF LSA
// checksum is a simplified non-Fletcher function"); it exists only to
// give installed LSAs a comparable, deterministic stand-in value.
func checksum(lsa LSA) int {
	sum := int(lsa.Key.Type)
	for _, c := range lsa.Key.LinkStateID {
		sum = sum*31 + int(c)
	}
	for _, c := range lsa.Key.AdvertisingRtr {
		sum = sum*31 + int(c)
	}
	for _, l := range lsa.Links {
		sum = sum*31 + l.Metric + l.Type
	}
	sum += lsa.Metric
	if sum < 0 {
		sum = -sum
	}
	return sum
}

// originateRouterLSALocked (re)builds and installs the local Router-LSA
// for area, per spec §4.6.6: point-to-point links per Full neighbor,
// stub networks for local subnets, and a transit-network link to the DR
// when the interface has at least one Full neighbor. It also originates
// (or withdraws, by omission) the Network-LSA when the local router is
// DR with a Full neighbor (spec §4.6.6 "Network-LSA").
func (e *Engine) originateRouterLSALocked(areaID string) {
	area, ok := e.areas[areaID]
	if !ok {
		return
	}

	var links []RouterLink
	var networkAttached []string
	isDRWithFull := false

	for _, ifc := range e.interfaces {
		if ifc.Area != areaID {
			continue
		}

		hasFull := false
		for _, n := range ifc.Neighbors {
			if n.State != NbrFull {
				continue
			}
			hasFull = true
			if ifc.NetworkType == NetPointToPoint {
				links = append(links, RouterLink{LinkID: n.RouterID, Type: 1, Metric: ifc.Cost})
			}
		}

		for _, addr := range ifc.Addresses {
			links = append(links, RouterLink{LinkID: addr, LinkData: addr, Type: 3, Metric: ifc.Cost})
		}

		if ifc.NetworkType == NetBroadcast && hasFull && ifc.DR != "" {
			links = append(links, RouterLink{LinkID: ifc.DR, Type: 2, Metric: ifc.Cost})
			if ifc.DR == e.routerID {
				isDRWithFull = true
				networkAttached = append(networkAttached, e.routerID)
				for _, n := range ifc.Neighbors {
					if n.State == NbrFull {
						networkAttached = append(networkAttached, n.RouterID)
					}
				}
			}
		}
	}

	key := LSAKey{Type: LSARouter, LinkStateID: e.routerID, AdvertisingRtr: e.routerID}
	lsa := LSA{Key: key, Sequence: area.LSDB[key].Sequence + 1, Links: links}
	lsa.Checksum = checksum(lsa)
	area.LSDB[key] = lsa
	e.emit("LSAOriginated", "area %s router-lsa seq %d links %d", areaID, lsa.Sequence, len(links))
	e.floodLocked(areaID, "", lsa)
	e.emit("LSAFlooded", "area %s router-lsa", areaID)

	if isDRWithFull {
		netKey := LSAKey{Type: LSANetwork, LinkStateID: e.routerID, AdvertisingRtr: e.routerID}
		netLSA := LSA{Key: netKey, Sequence: area.LSDB[netKey].Sequence + 1, AttachedRouters: networkAttached}
		netLSA.Checksum = checksum(netLSA)
		area.LSDB[netKey] = netLSA
		e.emit("LSAOriginated", "area %s network-lsa seq %d", areaID, netLSA.Sequence)
		e.floodLocked(areaID, "", netLSA)
	}

	e.scheduleSPFLocked()
}
