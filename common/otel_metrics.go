// Copyright 2024 Google LLC
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

package common

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// FSOpKey annotates the VFS op processed.
	FSOpKey = "fs_op"

	// FSErrCategoryKey reduces the cardinality of FSOpsErrorCategory by
	// grouping errors together.
	FSErrCategoryKey = "fs_error_category"

	// OSPFEventKey annotates an OSPF engine event (neighbor transition,
	// LSA flooded, SPF recomputed, ...).
	OSPFEventKey = "ospf_event"

	// InterfaceKey annotates the interface an OSPF event occurred on.
	InterfaceKey = "interface"
)

var (
	vfsOpsMeter  = otel.Meter("vfs_op")
	ospfMeter    = otel.Meter("ospf")

	fsOpsAttributeSet,
	fsOpsErrorCategoryAttributeSet,
	ospfEventAttributeSet sync.Map
)

func loadOrStoreAttributeOption[K comparable](mp *sync.Map, key K, attrSetGenFunc func() attribute.Set) metric.MeasurementOption {
	attrSet, ok := mp.Load(key)
	if ok {
		return attrSet.(metric.MeasurementOption)
	}
	v, _ := mp.LoadOrStore(key, metric.WithAttributeSet(attrSetGenFunc()))
	return v.(metric.MeasurementOption)
}

func toAttributeSet(attrs []MetricAttr) attribute.Set {
	kvs := make([]attribute.KeyValue, len(attrs))
	for i, a := range attrs {
		kvs[i] = attribute.String(a.Key, a.Value)
	}
	return attribute.NewSet(kvs...)
}

func attrsKey(attrs []MetricAttr) string {
	s := ""
	for _, a := range attrs {
		s += a.Key + "=" + a.Value + ";"
	}
	return s
}

func getFSOpsAttributeSet(attrs []MetricAttr) metric.MeasurementOption {
	return loadOrStoreAttributeOption(&fsOpsAttributeSet, attrsKey(attrs), func() attribute.Set { return toAttributeSet(attrs) })
}

func getFsOpsErrorCategoryAttributeSet(attrs []MetricAttr) metric.MeasurementOption {
	return loadOrStoreAttributeOption(&fsOpsErrorCategoryAttributeSet, attrsKey(attrs), func() attribute.Set { return toAttributeSet(attrs) })
}

func getOSPFEventAttributeSet(attrs []MetricAttr) metric.MeasurementOption {
	return loadOrStoreAttributeOption(&ospfEventAttributeSet, attrsKey(attrs), func() attribute.Set { return toAttributeSet(attrs) })
}

// otelMetrics maintains the list of all metrics computed by the device.
type otelMetrics struct {
	fsOpsCount      metric.Int64Counter
	fsOpsErrorCount metric.Int64Counter
	fsOpsLatency    metric.Float64Histogram

	ospfEventCount    metric.Int64Counter
	ospfSPFLatency    metric.Float64Histogram
	ospfNeighborCount metric.Int64UpDownCounter
}

func (o *otelMetrics) OpsCount(ctx context.Context, inc int64, attrs []MetricAttr) {
	o.fsOpsCount.Add(ctx, inc, getFSOpsAttributeSet(attrs))
}

func (o *otelMetrics) OpsLatency(ctx context.Context, latency time.Duration, attrs []MetricAttr) {
	o.fsOpsLatency.Record(ctx, float64(latency.Microseconds()), getFSOpsAttributeSet(attrs))
}

func (o *otelMetrics) OpsErrorCount(ctx context.Context, inc int64, attrs []MetricAttr) {
	o.fsOpsErrorCount.Add(ctx, inc, getFsOpsErrorCategoryAttributeSet(attrs))
}

func (o *otelMetrics) OSPFEventCount(ctx context.Context, inc int64, attrs []MetricAttr) {
	o.ospfEventCount.Add(ctx, inc, getOSPFEventAttributeSet(attrs))
}

func (o *otelMetrics) OSPFSPFLatency(ctx context.Context, latency time.Duration, attrs []MetricAttr) {
	o.ospfSPFLatency.Record(ctx, float64(latency.Microseconds()), getOSPFEventAttributeSet(attrs))
}

func (o *otelMetrics) OSPFNeighborCount(ctx context.Context, delta int64, attrs []MetricAttr) {
	o.ospfNeighborCount.Add(ctx, delta, getOSPFEventAttributeSet(attrs))
}

// NewOTelMetrics wires a MetricHandle backed by the global otel meter
// provider. This module installs no meter provider or exporter of its own,
// so the instruments record into whatever provider is global at the time
// (otel's no-op provider unless the embedding program sets one).
func NewOTelMetrics() (MetricHandle, error) {
	fsOpsCount, err1 := vfsOpsMeter.Int64Counter("vfs/ops_count", metric.WithDescription("The cumulative number of ops processed by the virtual file system."))
	fsOpsLatency, err2 := vfsOpsMeter.Float64Histogram("vfs/ops_latency", metric.WithDescription("The cumulative distribution of VFS operation latencies"), metric.WithUnit("us"),
		defaultLatencyDistribution)
	fsOpsErrorCount, err3 := vfsOpsMeter.Int64Counter("vfs/ops_error_count", metric.WithDescription("The cumulative number of errors generated by VFS operations"))

	ospfEventCount, err4 := ospfMeter.Int64Counter("ospf/event_count", metric.WithDescription("The cumulative number of OSPF engine events, by kind."))
	ospfSPFLatency, err5 := ospfMeter.Float64Histogram("ospf/spf_latency", metric.WithDescription("The cumulative distribution of SPF (Dijkstra) recomputation latencies."), metric.WithUnit("us"),
		defaultLatencyDistribution)
	ospfNeighborCount, err6 := ospfMeter.Int64UpDownCounter("ospf/neighbor_count", metric.WithDescription("The current number of neighbors in state Full, by interface."))

	if err := errors.Join(err1, err2, err3, err4, err5, err6); err != nil {
		return nil, err
	}

	return &otelMetrics{
		fsOpsCount:        fsOpsCount,
		fsOpsErrorCount:   fsOpsErrorCount,
		fsOpsLatency:      fsOpsLatency,
		ospfEventCount:    ospfEventCount,
		ospfSPFLatency:    ospfSPFLatency,
		ospfNeighborCount: ospfNeighborCount,
	}, nil
}
