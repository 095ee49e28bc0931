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

package commands

import (
	"testing"
	"time"

	"github.com/mkokutoyori/netsim/clock"
	"github.com/mkokutoyori/netsim/internal/ospf"
	"github.com/mkokutoyori/netsim/internal/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIpCtx(t *testing.T) *shell.Context {
	e := ospf.New("1.1.1.1", clock.NewSimulatedClock(time.Unix(0, 0)))
	e.AddArea("0.0.0.0", false)
	require.NoError(t, e.AddInterface(ospf.Interface{
		Name: "eth0", Addresses: []string{"10.0.0.1/24"}, Area: "0.0.0.0",
		NetworkType: ospf.NetBroadcast, Cost: 10, Priority: 1,
		HelloIntervalSecs: 10, DeadIntervalSecs: 40,
	}))
	return &shell.Context{Net: e, Env: map[string]string{}}
}

func TestIp_WithoutNetReportsUnavailable(t *testing.T) {
	out, code := Ip(&shell.Context{}, []string{"link"}, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "not available")
}

func TestIp_UnknownObjectReportsUsage(t *testing.T) {
	ctx := newIpCtx(t)
	out, code := Ip(ctx, []string{"bogus"}, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "unknown")
}

func TestIpLink_ListsInterfaces(t *testing.T) {
	ctx := newIpCtx(t)
	out, code := Ip(ctx, []string{"link"}, "")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "eth0")
}

func TestIpAddr_AddAndShow(t *testing.T) {
	ctx := newIpCtx(t)

	out, code := Ip(ctx, []string{"addr", "add", "10.0.0.2/24", "dev", "eth0"}, "")
	assert.Equal(t, 0, code)
	assert.Empty(t, out)

	out, code = Ip(ctx, []string{"addr", "show"}, "")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "10.0.0.2/24")
}

func TestIpRoute_AddGetAndList(t *testing.T) {
	ctx := newIpCtx(t)

	out, code := Ip(ctx, []string{"route", "add", "192.168.1.0/24", "via", "10.0.0.254", "dev", "eth0"}, "")
	assert.Equal(t, 0, code)
	assert.Empty(t, out)

	out, code = Ip(ctx, []string{"route", "get", "192.168.1.0/24"}, "")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "10.0.0.254")

	out, code = Ip(ctx, []string{"route"}, "")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "192.168.1.0/24")
}

func TestIpRoute_DelUnknownDestinationErrors(t *testing.T) {
	ctx := newIpCtx(t)
	out, code := Ip(ctx, []string{"route", "del", "10.9.9.0/24"}, "")
	assert.Equal(t, 2, code)
	assert.NotEmpty(t, out)
}

func TestIpLink_SetUpDown(t *testing.T) {
	ctx := newIpCtx(t)
	out, code := Ip(ctx, []string{"link", "set", "eth0", "down"}, "")
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
}

func TestIpNeigh_EmptyByDefault(t *testing.T) {
	ctx := newIpCtx(t)
	out, code := Ip(ctx, []string{"neigh"}, "")
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
}
