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

// Package ospf implements the routing engine: the neighbor state machine
// (RFC 2328 §10.1), Hello protocol, DR/BDR election, DD/LSR/LSU/LSAck
// database synchronization, LSA origination/flooding, and SPF route
// computation. The engine talks to the outside world only through a
// send callback and ProcessPacket/netctx.Context, never reaching into a
// host device's other components directly.
package ospf

import "time"

// NeighborState is a position in the RFC 2328 §10.1 neighbor FSM.
type NeighborState int

const (
	NbrDown NeighborState = iota
	NbrAttempt
	NbrInit
	NbrTwoWay
	NbrExStart
	NbrExchange
	NbrLoading
	NbrFull
)

func (s NeighborState) String() string {
	switch s {
	case NbrDown:
		return "Down"
	case NbrAttempt:
		return "Attempt"
	case NbrInit:
		return "Init"
	case NbrTwoWay:
		return "2-Way"
	case NbrExStart:
		return "ExStart"
	case NbrExchange:
		return "Exchange"
	case NbrLoading:
		return "Loading"
	case NbrFull:
		return "Full"
	default:
		return "Unknown"
	}
}

// InterfaceState is an OSPF interface's position in its own (simpler)
// state machine (RFC 2328 §9.1).
type InterfaceState int

const (
	IfDown InterfaceState = iota
	IfLoopback
	IfWaiting
	IfPointToPoint
	IfDROther
	IfBackup
	IfDR
)

func (s InterfaceState) String() string {
	switch s {
	case IfDown:
		return "Down"
	case IfLoopback:
		return "Loopback"
	case IfWaiting:
		return "Waiting"
	case IfPointToPoint:
		return "PointToPoint"
	case IfDROther:
		return "DROther"
	case IfBackup:
		return "Backup"
	case IfDR:
		return "DR"
	default:
		return "Unknown"
	}
}

// NetworkType decides whether DR/BDR election applies.
type NetworkType int

const (
	NetBroadcast NetworkType = iota
	NetPointToPoint
	NetNBMA
	NetPointToMultipoint
)

// LSAType names the OSPFv2/v3 LSA kinds spec §3.4 enumerates.
type LSAType int

const (
	LSARouter        LSAType = 1
	LSANetwork       LSAType = 2
	LSASummaryNet    LSAType = 3
	LSASummaryASBR   LSAType = 4
	LSAASExternal    LSAType = 5
	LSALink          LSAType = 0x0008 // OSPFv3 Link-LSA
	LSAIntraAreaPfx  LSAType = 0x2009 // OSPFv3 Intra-Area-Prefix-LSA
)

// LSAKey identifies an LSA uniquely within its scope (type, link-state-id,
// advertising-router), the LSDB's map key (spec §3.4).
type LSAKey struct {
	Type            LSAType
	LinkStateID     string
	AdvertisingRtr  string
}

// RouterLink is one entry of a Router-LSA's link list.
type RouterLink struct {
	LinkID   string // neighbor router-id (P2P), DR router-id (transit), or subnet (stub)
	LinkData string
	Type     int // 1 = P2P, 2 = transit network, 3 = stub network
	Metric   int
}

// LSA is an LSA header plus its body, modeled as a structured record
// rather than a wire octet stream (spec §3.4, Non-goals).
type LSA struct {
	Key LSAKey

	Age      int
	Options  int
	Sequence int32
	Checksum int

	// Router-LSA body.
	Links []RouterLink

	// Network-LSA body.
	AttachedRouters []string
	NetworkMask     string

	// AS-External/Summary body.
	Metric      int
	ForwardAddr string
}

// Fresher reports whether other is strictly fresher than lsa, per the
// tie-break chain spec §4.6.3 documents: sequence, then checksum, then
// MaxAge special-case, then a >15 minute age gap.
func (lsa LSA) Fresher(other LSA) bool {
	if other.Sequence != lsa.Sequence {
		return other.Sequence > lsa.Sequence
	}
	if other.Checksum != lsa.Checksum {
		return other.Checksum > lsa.Checksum
	}
	const maxAge = 3600
	if (other.Age == maxAge) != (lsa.Age == maxAge) {
		return other.Age == maxAge
	}
	if abs(other.Age-lsa.Age) > 15*60 {
		return other.Age < lsa.Age
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Neighbor is one adjacency under formation or established on an
// interface (spec §3.4).
type Neighbor struct {
	RouterID  string
	Address   string
	Interface string
	State     NeighborState
	Priority  int

	DeclaredDR  string
	DeclaredBDR string

	DDSequence int32
	Master     bool

	LSRequestList    []LSAKey
	LSRetransmitList map[LSAKey]LSA
	DBSummaryList    []LSA

	LastHello time.Time
	deadAt    time.Time
}

// Interface is one OSPF-speaking virtual link (spec §3.4).
type Interface struct {
	Name      string
	Addresses []string
	Area      string
	NetworkType NetworkType

	Cost     int
	Priority int
	Passive  bool
	IPv6     bool

	HelloIntervalSecs int
	DeadIntervalSecs  int

	State InterfaceState
	DR    string
	BDR   string

	Neighbors map[string]*Neighbor // keyed by router-id

	lastHelloAt time.Time
	waitingAt   time.Time
}

// Area tracks one OSPF area's LSDB and stub flag.
type Area struct {
	ID   string
	Stub bool

	LSDB map[LSAKey]LSA
}

// Route is one computed routing table entry (spec §4.6.5).
type Route struct {
	Destination string
	NextHop     string
	Interface   string
	Cost        int
	Area        string
}

// Packet is a structured stand-in for an OSPF wire packet (spec §3.4
// Non-goals: "binary-format wire fidelity... not octet streams").
type Packet struct {
	Type      PacketType
	RouterID  string
	AreaID    string

	Hello   *HelloPacket
	DD      *DDPacket
	Request []LSAKey
	Update  []LSA
	Ack     []LSAKey
}

// PacketType is the OSPF packet type field.
type PacketType int

const (
	PktHello PacketType = iota + 1
	PktDD
	PktLSRequest
	PktLSUpdate
	PktLSAck
)

// HelloPacket carries the fields the Hello protocol needs to run the
// neighbor FSM and DR/BDR election.
type HelloPacket struct {
	HelloInterval int
	DeadInterval  int
	Priority      int
	DR            string
	BDR           string
	Neighbors     []string // router-ids the sender currently sees
}

// DDPacket is a Database Description packet (spec §4.6.3). Headers carry
// full LSA records rather than wire-format headers (age/options/seq/
// checksum/length) since the engine models packets as structured
// records, not octet streams (spec §3.4 Non-goals).
type DDPacket struct {
	Sequence int32
	Init     bool
	More     bool
	Master   bool
	Headers  []LSA
}

// Multicast destinations, represented symbolically rather than as real
// addresses (spec §6 "OSPF packet boundary").
const (
	AllSPFRoutersV4 = "224.0.0.5"
	AllDRoutersV4   = "224.0.0.6"
	AllSPFRoutersV6 = "ff02::5"
	AllDRoutersV6   = "ff02::6"
)
