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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOTelMetrics(t *testing.T) {
	mh, err := NewOTelMetrics()
	require.NoError(t, err)
	require.NotNil(t, mh)

	ctx := context.Background()
	attrs := []MetricAttr{{Key: FSOpKey, Value: OpReadFile}}

	assert.NotPanics(t, func() {
		mh.OpsCount(ctx, 1, attrs)
		mh.OpsLatency(ctx, 5*time.Microsecond, attrs)
		mh.OpsErrorCount(ctx, 1, []MetricAttr{{Key: FSOpKey, Value: OpReadFile}, {Key: FSErrCategoryKey, Value: "NotFound"}})
		mh.OSPFEventCount(ctx, 1, []MetricAttr{{Key: OSPFEventKey, Value: EventNeighborUp}})
		mh.OSPFSPFLatency(ctx, time.Millisecond, []MetricAttr{{Key: InterfaceKey, Value: "eth0"}})
		mh.OSPFNeighborCount(ctx, 1, []MetricAttr{{Key: InterfaceKey, Value: "eth0"}})
	})
}

func TestGetFSOpsAttributeSet_CachesByKey(t *testing.T) {
	attrs := []MetricAttr{{Key: FSOpKey, Value: OpMkdir}}
	a := getFSOpsAttributeSet(attrs)
	b := getFSOpsAttributeSet(attrs)
	assert.Equal(t, a, b)
}
