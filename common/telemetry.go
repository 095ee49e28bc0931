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
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// The default time buckets for latency metrics, in microseconds.
var defaultLatencyDistribution = metric.WithExplicitBucketBoundaries(1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 5000, 10000, 20000, 50000, 100000)

// MetricAttr represents one attribute attached to a metric observation.
type MetricAttr struct {
	Key, Value string
}

func (a *MetricAttr) String() string {
	return fmt.Sprintf("Key: %s, Value: %s", a.Key, a.Value)
}

// VFSMetricHandle tracks VFS operation counts, latencies, and errors, the
// same way the teacher tracks its fs ops.
type VFSMetricHandle interface {
	OpsCount(ctx context.Context, inc int64, attrs []MetricAttr)
	OpsLatency(ctx context.Context, latency time.Duration, attrs []MetricAttr)
	OpsErrorCount(ctx context.Context, inc int64, attrs []MetricAttr)
}

// OSPFMetricHandle tracks routing-engine events: neighbor transitions, LSA
// flooding, and SPF recomputation.
type OSPFMetricHandle interface {
	OSPFEventCount(ctx context.Context, inc int64, attrs []MetricAttr)
	OSPFSPFLatency(ctx context.Context, latency time.Duration, attrs []MetricAttr)
	OSPFNeighborCount(ctx context.Context, delta int64, attrs []MetricAttr)
}

// MetricHandle is the aggregate interface a device hands to every subsystem
// that emits metrics.
type MetricHandle interface {
	VFSMetricHandle
	OSPFMetricHandle
}
