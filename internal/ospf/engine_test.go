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
	"testing"
	"time"

	"github.com/mkokutoyori/netsim/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pairUp wires a's outbound packets into b.ProcessPacket and vice versa,
// the way a host device's network module would deliver packets between
// two directly-connected simulated interfaces (spec §6 "OSPF packet
// boundary").
func pairUp(a, b *Engine, aID, bID string) {
	a.SetSendCallback(func(iface, dest string, pkt Packet) {
		b.ProcessPacket(iface, aID, "10.0.0.1", pkt)
	})
	b.SetSendCallback(func(iface, dest string, pkt Packet) {
		a.ProcessPacket(iface, bID, "10.0.0.2", pkt)
	})
}

func newBroadcastEngine(t *testing.T, routerID string, clk clock.Clock, priority int) *Engine {
	e := New(routerID, clk)
	e.AddArea("0.0.0.0", false)
	require.NoError(t, e.AddInterface(Interface{
		Name: "eth0", Addresses: []string{"10.0.0.0/24"}, Area: "0.0.0.0",
		NetworkType: NetBroadcast, Cost: 10, Priority: priority,
		HelloIntervalSecs: 10, DeadIntervalSecs: 40,
	}))
	return e
}

func TestBroadcastAdjacency_ReachesFullAndElectsDR(t *testing.T) {
	clk := clock.NewSimulatedClock(time.Unix(0, 0))
	a := newBroadcastEngine(t, "2.2.2.2", clk, 1)
	b := newBroadcastEngine(t, "1.1.1.1", clk, 1)
	pairUp(a, b, "2.2.2.2", "1.1.1.1")

	// Exchange a few rounds of Hello/DD/LSR/LSU; each Tick sends one
	// Hello per interface per hello interval, and ProcessPacket drives
	// the rest of the FSM synchronously within the same call.
	for i := 0; i < 6; i++ {
		clk.(*clock.SimulatedClock).AdvanceTime(11 * time.Second)
		a.Tick(clk.Now())
		b.Tick(clk.Now())
	}

	aNbr := a.interfaces["eth0"].Neighbors["1.1.1.1"]
	bNbr := b.interfaces["eth0"].Neighbors["2.2.2.2"]
	require.NotNil(t, aNbr)
	require.NotNil(t, bNbr)
	assert.Equal(t, NbrFull, aNbr.State)
	assert.Equal(t, NbrFull, bNbr.State)

	// Higher router-id (2.2.2.2) wins DR per the tie-break in spec
	// §4.6.2.
	assert.Equal(t, "2.2.2.2", a.interfaces["eth0"].DR)
	assert.Equal(t, "2.2.2.2", b.interfaces["eth0"].DR)
	assert.Equal(t, "1.1.1.1", a.interfaces["eth0"].BDR)
}

func TestMismatchedDeadInterval_NeverFormsNeighbor(t *testing.T) {
	clk := clock.NewSimulatedClock(time.Unix(0, 0))
	a := New("1.1.1.1", clk)
	a.AddArea("0.0.0.0", false)
	require.NoError(t, a.AddInterface(Interface{
		Name: "eth0", Area: "0.0.0.0", NetworkType: NetBroadcast,
		Priority: 1, HelloIntervalSecs: 10, DeadIntervalSecs: 40,
	}))

	// A Hello whose dead interval doesn't match is a transient protocol
	// mismatch (spec §3.4 kind 5): silently dropped.
	a.ProcessPacket("eth0", "2.2.2.2", "10.0.0.2", Packet{
		Type: PktHello,
		Hello: &HelloPacket{HelloInterval: 10, DeadInterval: 999, Priority: 1},
	})

	assert.Empty(t, a.interfaces["eth0"].Neighbors)
}

func TestRunSPFNow_ComputesStubNetworkRoute(t *testing.T) {
	clk := clock.NewSimulatedClock(time.Unix(0, 0))
	a := newBroadcastEngine(t, "2.2.2.2", clk, 1)
	b := newBroadcastEngine(t, "1.1.1.1", clk, 1)
	pairUp(a, b, "2.2.2.2", "1.1.1.1")

	for i := 0; i < 6; i++ {
		clk.(*clock.SimulatedClock).AdvanceTime(11 * time.Second)
		a.Tick(clk.Now())
		b.Tick(clk.Now())
	}
	a.RunSPFNow()

	var found bool
	for _, r := range a.Routes() {
		if r.Destination == "10.0.0.0/24" {
			found = true
		}
	}
	assert.True(t, found, "expected a route to the shared broadcast subnet")
}

func TestElectBDR_PrefersSelfDeclaredBDR(t *testing.T) {
	cands := []candidate{
		{routerID: "1.1.1.1", priority: 1, declaredDR: "", declaredBDR: "1.1.1.1"},
		{routerID: "2.2.2.2", priority: 1, declaredDR: "", declaredBDR: ""},
	}
	assert.Equal(t, "1.1.1.1", electBDR(cands))
}

func TestElectDR_FallsBackToBDRWhenNoneDeclareDR(t *testing.T) {
	cands := []candidate{
		{routerID: "1.1.1.1", priority: 1},
		{routerID: "2.2.2.2", priority: 2},
	}
	bdr := electBDR(cands)
	assert.Equal(t, bdr, electDR(cands, bdr))
}
