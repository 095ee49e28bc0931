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

// candidate is one DR/BDR election participant (spec §4.6.2).
type candidate struct {
	routerID    string
	priority    int
	declaredDR  string
	declaredBDR string
}

// runElectionLocked performs the RFC 2328 §9.4 two-step DR/BDR election
// on ifc and, if the outcome changed, dispatches AdjOK to every
// neighbor and re-originates the Router-LSA (and Network-LSA, if now
// DR). Callers hold e.mu.
func (e *Engine) runElectionLocked(ifaceName string) {
	ifc := e.interfaces[ifaceName]
	if ifc == nil || ifc.NetworkType != NetBroadcast {
		return
	}

	var candidates []candidate
	if ifc.Priority > 0 {
		candidates = append(candidates, candidate{e.routerID, ifc.Priority, ifc.DR, ifc.BDR})
	}
	for _, n := range ifc.Neighbors {
		if n.State >= NbrTwoWay && n.Priority > 0 {
			candidates = append(candidates, candidate{n.RouterID, n.Priority, n.DeclaredDR, n.DeclaredBDR})
		}
	}
	if len(candidates) == 0 {
		return
	}

	bdr := electBDR(candidates)
	dr := electDR(candidates, bdr)

	oldDR, oldBDR := ifc.DR, ifc.BDR
	ifc.DR, ifc.BDR = dr, bdr

	switch {
	case dr == e.routerID:
		ifc.State = IfDR
	case bdr == e.routerID:
		ifc.State = IfBackup
	default:
		ifc.State = IfDROther
	}

	if oldDR != dr || oldBDR != bdr {
		e.emit("DRElection", "interface %s dr=%s bdr=%s", ifaceName, dr, bdr)
		for _, n := range ifc.Neighbors {
			e.adjOKLocked(ifc, n)
		}
		e.originateRouterLSALocked(ifc.Area)
	}
}

// adjOKLocked re-evaluates whether n now requires a full adjacency,
// promoting TwoWay->ExStart or downgrading Exchange/Loading/Full->TwoWay
// (spec §4.6.1 "AdjOK").
func (e *Engine) adjOKLocked(ifc *Interface, n *Neighbor) {
	needs := requiresAdjacency(ifc, n.RouterID)
	switch {
	case needs && n.State == NbrTwoWay:
		e.transitionLocked(ifc, n, NbrExStart)
		e.startDDExchangeLocked(ifc, n)
	case !needs && n.State > NbrTwoWay:
		e.transitionLocked(ifc, n, NbrTwoWay)
	}
}

// electBDR picks the backup among candidates that do not declare
// themselves DR, preferring those declaring themselves BDR already,
// then highest priority, then highest router-id.
func electBDR(candidates []candidate) string {
	var biasedBDR, biased []candidate
	var all []candidate
	for _, c := range candidates {
		if c.declaredDR == c.routerID {
			continue
		}
		all = append(all, c)
		if c.declaredBDR == c.routerID {
			biasedBDR = append(biasedBDR, c)
		}
	}
	biased = biasedBDR
	if len(biased) == 0 {
		biased = all
	}
	return bestOf(biased)
}

// electDR picks among candidates declaring themselves DR; falls back to
// the elected BDR if none do.
func electDR(candidates []candidate, bdr string) string {
	var declaring []candidate
	for _, c := range candidates {
		if c.declaredDR == c.routerID {
			declaring = append(declaring, c)
		}
	}
	if len(declaring) == 0 {
		return bdr
	}
	return bestOf(declaring)
}

// bestOf returns the highest-priority candidate, tie-broken by highest
// router-id (spec §4.6.2).
func bestOf(cands []candidate) string {
	if len(cands) == 0 {
		return ""
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.priority > best.priority || (c.priority == best.priority && c.routerID > best.routerID) {
			best = c
		}
	}
	return best.routerID
}
