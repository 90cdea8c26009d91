// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bout

import "time"

// KeepAll accepts every bout.
func KeepAll(Bout) bool { return true }

// MinSamples accepts bouts spanning at least n samples.
func MinSamples(n int) func(Bout) bool {
	return func(b Bout) bool { return b.Samples() >= n }
}

// MinDuration accepts bouts lasting at least d in a signal sampled at rate
// Hz.  The duration of a bout is (EndSample-StartSample)/rate.
func MinDuration(d time.Duration, rate float64) func(Bout) bool {
	return func(b Bout) bool {
		start, end := b.Seconds(rate)
		return end-start >= d.Seconds()
	}
}

// And accepts a bout only if every predicate accepts it.
func And(keep ...func(Bout) bool) func(Bout) bool {
	return func(b Bout) bool {
		for _, k := range keep {
			if !k(b) {
				return false
			}
		}
		return true
	}
}
