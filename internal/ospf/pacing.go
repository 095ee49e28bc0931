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

import "golang.org/x/time/rate"

// pacer throttles outbound Hello bursts so a misbehaving scenario can't
// make the engine originate Hellos faster than a real router's transmit
// queue would allow. LS Update floods are not paced.
type pacer struct {
	limiter *rate.Limiter
}

// newPacer allows up to 50 packets/second with a burst of 20, generous
// enough to never throttle a well-behaved single-device simulation but
// present so a misbehaving scripted scenario can't originate storms.
func newPacer() *pacer {
	return &pacer{limiter: rate.NewLimiter(rate.Limit(50), 20)}
}

// Allow reports whether a packet may be sent now, consuming a token if
// so.
func (p *pacer) Allow() bool {
	return p.limiter.Allow()
}
