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
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mkokutoyori/netsim/clock"
	"github.com/mkokutoyori/netsim/common"
	"github.com/mkokutoyori/netsim/internal/netctx"
)

// SendFunc delivers an outbound packet to the given interface/destination;
// the host device wires this to whatever actually moves packets between
// simulated devices (spec §6 "OSPF packet boundary").
type SendFunc func(iface, dest string, pkt Packet)

// EventLogger records OSPF events for the journal (HelloRx, NeighborUp,
// DRElection, ...); nil disables logging.
type EventLogger func(event, format string, args ...any)

// Engine is one device's OSPF instance: process-wide singleton per spec
// §5 "Shared-resource policy", independent of the VFS/shell and talking
// only through SendFunc/ProcessPacket/netctx.Context.
type Engine struct {
	mu sync.Mutex

	routerID string
	clock    clock.Clock
	send     SendFunc
	log      EventLogger
	metrics  common.MetricHandle

	interfaces map[string]*Interface
	areas      map[string]*Area

	routes []Route

	spfPending bool

	pacer *pacer
}

var _ netctx.Context = (*Engine)(nil)

// New builds an Engine for the given router-id, driven by clk for all
// timers (hello, dead, wait, SPF coalescing).
func New(routerID string, clk clock.Clock) *Engine {
	return &Engine{
		routerID:   routerID,
		clock:      clk,
		interfaces: make(map[string]*Interface),
		areas:      make(map[string]*Area),
		pacer:      newPacer(),
		metrics:    common.NewNoopMetrics(),
	}
}

// SetSendCallback installs the function used to emit packets.
func (e *Engine) SetSendCallback(fn SendFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.send = fn
}

// SetEventLogger installs the function used to record OSPF events.
func (e *Engine) SetEventLogger(fn EventLogger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = fn
}

// SetMetrics installs the handle used to record OSPF event counts, SPF
// latency, and neighbor counts; nil installs a noop handle.
func (e *Engine) SetMetrics(m common.MetricHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m == nil {
		m = common.NewNoopMetrics()
	}
	e.metrics = m
}

func (e *Engine) emit(event, format string, args ...any) {
	if e.log != nil {
		e.log(event, format, args...)
	}
	e.metrics.OSPFEventCount(context.Background(), 1, []common.MetricAttr{{Key: common.OSPFEventKey, Value: event}})
}

// AddArea registers an OSPF area, creating its LSDB.
func (e *Engine) AddArea(id string, stub bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.areas[id] = &Area{ID: id, Stub: stub, LSDB: make(map[LSAKey]LSA)}
}

// AddInterface brings up an OSPF-speaking interface and starts its hello
// timer. The area must already exist (AddArea first).
func (e *Engine) AddInterface(iface Interface) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.areas[iface.Area]; !ok {
		return fmt.Errorf("ospf: unknown area %q for interface %q", iface.Area, iface.Name)
	}
	iface.Neighbors = make(map[string]*Neighbor)
	if iface.NetworkType == NetPointToPoint {
		iface.State = IfPointToPoint
	} else if iface.Priority > 0 {
		iface.State = IfWaiting
		iface.waitingAt = e.clock.Now()
	} else {
		iface.State = IfDROther
	}
	ifc := iface
	e.interfaces[iface.Name] = &ifc
	e.originateRouterLSALocked(iface.Area)
	return nil
}

// DeactivateInterface cancels the interface's timers and every attached
// neighbor's dead timer, dropping the interface out of the topology
// (spec §5 "Cancellation").
func (e *Engine) DeactivateInterface(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ifc, ok := e.interfaces[name]
	if !ok {
		return
	}
	area := ifc.Area
	delete(e.interfaces, name)
	e.originateRouterLSALocked(area)
}

// Shutdown cancels all timers, clears every area's LSDB, and empties the
// route table (spec §5).
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interfaces = make(map[string]*Interface)
	for _, a := range e.areas {
		a.LSDB = make(map[LSAKey]LSA)
	}
	e.routes = nil
	return nil
}

// Tick advances every interface's hello timer and every neighbor's dead
// timer against the engine's clock; the host device calls this on its
// own scheduling cadence (spec §5 "Suspension points").
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for name, ifc := range e.interfaces {
		if ifc.Passive {
			continue
		}
		interval := time.Duration(ifc.HelloIntervalSecs) * time.Second
		if interval <= 0 {
			interval = 10 * time.Second
		}
		if now.Sub(ifc.lastHelloAt) >= interval {
			ifc.lastHelloAt = now
			e.sendHelloLocked(name)
		}
		if ifc.State == IfWaiting {
			wait := time.Duration(ifc.DeadIntervalSecs) * time.Second
			if wait <= 0 {
				wait = 40 * time.Second
			}
			if now.Sub(ifc.waitingAt) >= wait {
				e.runElectionLocked(name)
			}
		}
		for rid, n := range ifc.Neighbors {
			if n.State != NbrDown && !n.deadAt.IsZero() && now.After(n.deadAt) {
				e.emit("NeighborDown", "interface %s neighbor %s inactivity timer expired", name, rid)
				e.transitionLocked(ifc, n, NbrDown)
				delete(ifc.Neighbors, rid)
			}
		}
	}

	if e.spfPending {
		e.spfPending = false
		e.runSPFLocked()
	}
}

func (e *Engine) sendHelloLocked(ifaceName string) {
	ifc := e.interfaces[ifaceName]
	if ifc == nil || e.send == nil {
		return
	}
	if !e.pacer.Allow() {
		return
	}
	neighbors := make([]string, 0, len(ifc.Neighbors))
	for rid := range ifc.Neighbors {
		neighbors = append(neighbors, rid)
	}
	sort.Strings(neighbors)

	pkt := Packet{
		Type:     PktHello,
		RouterID: e.routerID,
		AreaID:   ifc.Area,
		Hello: &HelloPacket{
			HelloInterval: ifc.HelloIntervalSecs,
			DeadInterval:  ifc.DeadIntervalSecs,
			Priority:      ifc.Priority,
			DR:            ifc.DR,
			BDR:           ifc.BDR,
			Neighbors:     neighbors,
		},
	}
	dest := AllSPFRoutersV4
	if ifc.IPv6 {
		dest = AllSPFRoutersV6
	}
	e.send(ifaceName, dest, pkt)
}

// ProcessPacket is the engine's half of the packet boundary: the host
// device's network module calls this with packets received on iface
// from srcAddr (spec §6).
func (e *Engine) ProcessPacket(iface, srcRouterID, srcAddr string, pkt Packet) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ifc, ok := e.interfaces[iface]
	if !ok {
		return
	}

	switch pkt.Type {
	case PktHello:
		e.handleHelloLocked(ifc, srcRouterID, srcAddr, pkt)
	case PktDD:
		e.handleDDLocked(ifc, srcRouterID, pkt)
	case PktLSRequest:
		e.handleLSRequestLocked(ifc, srcRouterID, pkt)
	case PktLSUpdate:
		e.handleLSUpdateLocked(ifc, srcRouterID, iface, pkt)
	case PktLSAck:
		e.handleLSAckLocked(ifc, srcRouterID, pkt)
	}
}

// scheduleSPFLocked schedules route recomputation, coalescing bursts into
// a single run (spec §4.6.5 "SPF scheduling"). Since the engine is driven
// by an external Tick rather than real goroutine timers, "scheduling"
// means marking spfPending; the next Tick call runs SPF once, however
// many changes were scheduled since the previous one.
func (e *Engine) scheduleSPFLocked() {
	e.spfPending = true
}

// RunSPFNow forces an immediate recomputation, for tests and for
// callers that don't want to wait for the coalescing window.
func (e *Engine) RunSPFNow() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runSPFLocked()
}

// Routes returns a snapshot of the current route table.
func (e *Engine) Routes() []Route {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Route, len(e.routes))
	copy(out, e.routes)
	return out
}

// RunAreaSPF fans SPF out across every area concurrently via errgroup,
// returning the first error (none of the area computations can
// currently fail, but the fan-out shape is kept so a future failing
// step — e.g. an ABR summary recomputation — has somewhere to report
// to) and the combined route set.
func (e *Engine) RunAreaSPF(ctx context.Context) ([]Route, error) {
	e.mu.Lock()
	areaIDs := make([]string, 0, len(e.areas))
	for id := range e.areas {
		areaIDs = append(areaIDs, id)
	}
	e.mu.Unlock()

	results := make([][]Route, len(areaIDs))
	g, _ := errgroup.WithContext(ctx)
	for i, id := range areaIDs {
		i, id := i, id
		g.Go(func() error {
			e.mu.Lock()
			r := e.computeAreaSPFLocked(id)
			e.mu.Unlock()
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Route
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func newTraceID() string { return uuid.NewString() }

func joinNames(names []string) string { return strings.Join(names, ",") }
