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
	"time"

	"github.com/mkokutoyori/netsim/common"
)

// transitionLocked moves n to to, running the side effects the table in
// spec §4.6.1 documents for list-clearing transitions. Callers hold e.mu.
func (e *Engine) transitionLocked(ifc *Interface, n *Neighbor, to NeighborState) {
	if n.State == to {
		return
	}
	wasFull := n.State == NbrFull
	downgrading := to == NbrInit || to == NbrDown || to == NbrTwoWay
	if downgrading {
		n.LSRequestList = nil
		n.LSRetransmitList = nil
		n.DBSummaryList = nil
	}
	n.State = to

	ifaceAttr := []common.MetricAttr{{Key: common.InterfaceKey, Value: ifc.Name}}
	if to == NbrFull {
		e.metrics.OSPFNeighborCount(context.Background(), 1, ifaceAttr)
		e.emit("NeighborUp", "interface %s neighbor %s reached Full", ifc.Name, n.RouterID)
		e.originateRouterLSALocked(ifc.Area)
		e.scheduleSPFLocked()
	} else if wasFull {
		e.metrics.OSPFNeighborCount(context.Background(), -1, ifaceAttr)
	}
}

// requiresAdjacency reports whether the local router should form a full
// adjacency with a neighbor on this interface (spec §4.6.1 "Adjacency
// requirement"): always on point-to-point/point-to-multipoint, and on
// broadcast/NBMA only if the local router or the neighbor is DR/BDR.
func requiresAdjacency(ifc *Interface, neighborRouterID string) bool {
	if ifc.NetworkType == NetPointToPoint || ifc.NetworkType == NetPointToMultipoint {
		return true
	}
	return ifc.DR == neighborRouterID || ifc.BDR == neighborRouterID
}

func (e *Engine) handleHelloLocked(ifc *Interface, srcRouterID, srcAddr string, pkt Packet) {
	if pkt.Hello == nil {
		return
	}
	// Mismatched hello/dead interval is a "transient protocol" mismatch
	// (spec §3.4 kind 5): silently dropped, no neighbor entry created.
	if pkt.Hello.HelloInterval != ifc.HelloIntervalSecs || pkt.Hello.DeadInterval != ifc.DeadIntervalSecs {
		return
	}

	e.emit("HelloRx", "interface %s from %s", ifc.Name, srcRouterID)

	n, ok := ifc.Neighbors[srcRouterID]
	if !ok {
		n = &Neighbor{RouterID: srcRouterID, Address: srcAddr, Interface: ifc.Name, State: NbrDown}
		ifc.Neighbors[srcRouterID] = n
	}
	n.Priority = pkt.Hello.Priority
	n.DeclaredDR = pkt.Hello.DR
	n.DeclaredBDR = pkt.Hello.BDR
	n.LastHello = e.clock.Now()
	n.deadAt = n.LastHello.Add(time.Duration(ifc.DeadIntervalSecs) * time.Second)

	if n.State == NbrDown || n.State == NbrAttempt {
		e.transitionLocked(ifc, n, NbrInit)
	}

	sawSelf := false
	for _, rid := range pkt.Hello.Neighbors {
		if rid == e.routerID {
			sawSelf = true
			break
		}
	}

	if sawSelf {
		if n.State == NbrInit {
			if requiresAdjacency(ifc, srcRouterID) {
				e.transitionLocked(ifc, n, NbrExStart)
				e.startDDExchangeLocked(ifc, n)
			} else {
				e.transitionLocked(ifc, n, NbrTwoWay)
			}
		}
	} else if n.State != NbrDown {
		e.transitionLocked(ifc, n, NbrInit)
	}

	if ifc.NetworkType == NetBroadcast && n.State >= NbrTwoWay {
		e.runElectionLocked(ifc.Name)
	}
}

func (e *Engine) startDDExchangeLocked(ifc *Interface, n *Neighbor) {
	n.Master = e.routerID > n.RouterID
	n.DDSequence = 1
	n.DBSummaryList = e.lsdbHeadersLocked(ifc.Area)
	if e.send != nil {
		e.send(ifc.Name, n.Address, Packet{
			Type: PktDD, RouterID: e.routerID, AreaID: ifc.Area,
			DD: &DDPacket{Sequence: n.DDSequence, Init: true, More: true, Master: n.Master, Headers: n.DBSummaryList},
		})
	}
}

func (e *Engine) handleDDLocked(ifc *Interface, srcRouterID string, pkt Packet) {
	n, ok := ifc.Neighbors[srcRouterID]
	if !ok || pkt.DD == nil || n.State < NbrExStart {
		return
	}

	area := e.areas[ifc.Area]
	for _, peerLSA := range pkt.DD.Headers {
		local, have := area.LSDB[peerLSA.Key]
		if !have || local.Fresher(peerLSA) {
			n.LSRequestList = append(n.LSRequestList, peerLSA.Key)
		}
	}

	if n.State == NbrExStart {
		e.transitionLocked(ifc, n, NbrExchange)
	}

	if !pkt.DD.More {
		if len(n.LSRequestList) > 0 {
			e.transitionLocked(ifc, n, NbrLoading)
			e.sendLSRequestsLocked(ifc, n)
		} else {
			e.transitionLocked(ifc, n, NbrFull)
		}
	}
}

func (e *Engine) sendLSRequestsLocked(ifc *Interface, n *Neighbor) {
	if e.send == nil || len(n.LSRequestList) == 0 {
		return
	}
	batch := n.LSRequestList
	if len(batch) > 10 {
		batch = batch[:10]
	}
	e.send(ifc.Name, n.Address, Packet{Type: PktLSRequest, RouterID: e.routerID, AreaID: ifc.Area, Request: batch})
}

func (e *Engine) handleLSRequestLocked(ifc *Interface, srcRouterID string, pkt Packet) {
	n, ok := ifc.Neighbors[srcRouterID]
	if !ok {
		return
	}
	area := e.areas[ifc.Area]
	var update []LSA
	for _, key := range pkt.Request {
		if lsa, have := area.LSDB[key]; have {
			update = append(update, lsa)
		}
	}
	if len(update) > 0 && e.send != nil {
		e.send(ifc.Name, n.Address, Packet{Type: PktLSUpdate, RouterID: e.routerID, AreaID: ifc.Area, Update: update})
	}
}

func (e *Engine) handleLSUpdateLocked(ifc *Interface, srcRouterID, recvIface string, pkt Packet) {
	n, ok := ifc.Neighbors[srcRouterID]
	if !ok {
		return
	}
	var acked []LSAKey
	for _, lsa := range pkt.Update {
		if e.installIfNewerLocked(ifc.Area, lsa) {
			e.floodLocked(ifc.Area, recvIface, lsa)
		}
		n.LSRequestList = removeKey(n.LSRequestList, lsa.Key)
		acked = append(acked, lsa.Key)
	}
	if len(acked) > 0 && e.send != nil {
		e.send(ifc.Name, n.Address, Packet{Type: PktLSAck, RouterID: e.routerID, AreaID: ifc.Area, Ack: acked})
	}
	if n.State == NbrLoading && len(n.LSRequestList) == 0 {
		e.transitionLocked(ifc, n, NbrFull)
	}
}

func (e *Engine) handleLSAckLocked(ifc *Interface, srcRouterID string, pkt Packet) {
	n, ok := ifc.Neighbors[srcRouterID]
	if !ok || n.LSRetransmitList == nil {
		return
	}
	for _, key := range pkt.Ack {
		delete(n.LSRetransmitList, key)
	}
}

func removeKey(list []LSAKey, key LSAKey) []LSAKey {
	out := list[:0]
	for _, k := range list {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}
