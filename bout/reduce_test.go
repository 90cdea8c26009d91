// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bout_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/grailbio/biosignal/bout"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func seq(start, n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = start + i
	}
	return s
}

func TestReduceExample(t *testing.T) {
	bouts, err := bout.Reduce(seq(10, 6), []int{0, 0, 1, 1, 2, 2})
	assert.NoError(t, err)
	expect.EQ(t, bouts, []bout.Bout{
		{StartSample: 11, EndSample: 13, StartPeak: 1, EndPeak: 3},
		{StartSample: 14, EndSample: 15, StartPeak: 4, EndPeak: 5},
	})
}

func TestBoundaries(t *testing.T) {
	tests := []struct {
		labels []int
		want   []int
	}{
		{[]int{0, 0, 1, 1, 2, 2}, []int{1, 3, 5}},
		// Last label equals the first one: the last transition is moved to
		// the final peak.
		{[]int{0, 1, 1, 0}, []int{0, 3}},
		{[]int{0, 1, 0}, []int{0, 2}},
		{[]int{0, 0, 0, 1}, []int{2, 3}},
		{[]int{3, 7}, []int{0, 1}},
		{[]int{5, 5, 5, 5}, nil},
		{[]int{5}, nil},
		{nil, nil},
	}
	for _, test := range tests {
		expect.EQ(t, bout.Boundaries(test.labels), test.want, "labels %v", test.labels)
	}
}

func TestReduceSpecialCases(t *testing.T) {
	tests := []struct {
		positions, labels []int
		want              []bout.Bout
	}{
		{
			[]int{0, 10, 20, 30}, []int{0, 1, 1, 0},
			[]bout.Bout{{StartSample: 0, EndSample: 30, StartPeak: 0, EndPeak: 3}},
		},
		{
			[]int{1, 2, 3, 4}, []int{0, 0, 0, 1},
			[]bout.Bout{{StartSample: 3, EndSample: 4, StartPeak: 2, EndPeak: 3}},
		},
		{
			[]int{5, 9}, []int{3, 7},
			[]bout.Bout{{StartSample: 5, EndSample: 9, StartPeak: 0, EndPeak: 1}},
		},
		{
			[]int{100, 200, 300, 400, 500}, []int{1, 2, 1, 2, 1},
			[]bout.Bout{
				{StartSample: 100, EndSample: 200, StartPeak: 0, EndPeak: 1},
				{StartSample: 300, EndSample: 300, StartPeak: 2, EndPeak: 2},
				{StartSample: 400, EndSample: 500, StartPeak: 3, EndPeak: 4},
			},
		},
	}
	for _, test := range tests {
		got, err := bout.Reduce(test.positions, test.labels)
		assert.NoError(t, err)
		expect.EQ(t, got, test.want, "labels %v", test.labels)
	}
}

func TestReduceErrors(t *testing.T) {
	_, err := bout.Reduce(seq(0, 4), []int{5, 5, 5, 5})
	expect.True(t, bout.IsNoTransition(err), "got %v", err)
	expect.False(t, bout.IsInvalidInput(err))

	invalid := []struct {
		positions, labels []int
	}{
		{seq(0, 4), []int{0, 1, 2}},
		{nil, nil},
		{nil, []int{0, 1}},
		{[]int{3}, []int{1}},
		{[]int{-1, 2}, []int{0, 1}},
		{[]int{4, 2, 6}, []int{0, 1, 2}},
		{[]int{0, 1, 1, 2}, []int{0, 1, 2, 2}},
	}
	for _, test := range invalid {
		bouts, err := bout.Reduce(test.positions, test.labels)
		expect.True(t, bout.IsInvalidInput(err), "positions %v labels %v: got %v", test.positions, test.labels, err)
		expect.EQ(t, len(bouts), 0)
	}
}

func TestReduceKeep(t *testing.T) {
	r := bout.Reducer{Keep: bout.MinSamples(3)}
	bouts, err := r.Reduce(seq(10, 6), []int{0, 0, 1, 1, 2, 2})
	assert.NoError(t, err)
	expect.EQ(t, bouts, []bout.Bout{{StartSample: 11, EndSample: 13, StartPeak: 1, EndPeak: 3}})

	r = bout.Reducer{Keep: bout.KeepAll}
	bouts, err = r.Reduce(seq(10, 6), []int{0, 0, 1, 1, 2, 2})
	assert.NoError(t, err)
	expect.EQ(t, len(bouts), 2)

	// 100 samples at 100Hz last 1s.
	r = bout.Reducer{Keep: bout.And(bout.KeepAll, bout.MinDuration(time.Second, 100))}
	bouts, err = r.Reduce([]int{0, 50, 150, 200, 260}, []int{0, 1, 1, 2, 2})
	assert.NoError(t, err)
	expect.EQ(t, bouts, []bout.Bout{{StartSample: 0, EndSample: 150, StartPeak: 0, EndPeak: 2}})
}

func randomInput(r *rand.Rand, n, nLabels int) (positions, labels []int) {
	pos := r.Intn(10)
	label := r.Intn(nLabels)
	for i := 0; i < n; i++ {
		positions = append(positions, pos)
		pos += 1 + r.Intn(20)
		if r.Intn(4) == 0 {
			label = r.Intn(nLabels)
		}
		labels = append(labels, label)
	}
	return
}

func TestReduceProperties(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for iter := 0; iter < 2000; iter++ {
		positions, labels := randomInput(r, 2+r.Intn(50), 1+r.Intn(4))
		bouts, err := bout.Reduce(positions, labels)
		b := bout.Boundaries(labels)
		if len(b) == 0 {
			expect.True(t, bout.IsNoTransition(err), "labels %v", labels)
			for _, l := range labels {
				expect.EQ(t, l, labels[0])
			}
			continue
		}
		assert.NoError(t, err)
		assert.EQ(t, len(bouts), len(b)-1, "labels %v", labels)

		// The bouts tile [positions[b[0]], positions[n-1]].
		assert.EQ(t, bouts[0].StartSample, positions[b[0]])
		assert.EQ(t, bouts[len(bouts)-1].EndSample, positions[len(positions)-1])
		for j, bt := range bouts {
			expect.LE(t, bt.StartSample, bt.EndSample)
			expect.LE(t, bt.StartPeak, bt.EndPeak)
			expect.EQ(t, bt.EndPeak, b[j+1])
			if j > 0 {
				expect.EQ(t, bt.StartPeak, bouts[j-1].EndPeak+1)
				expect.GE(t, bt.StartSample, bouts[j-1].EndSample+1)
			}
		}

		again, err := bout.Reduce(positions, labels)
		assert.NoError(t, err)
		expect.EQ(t, again, bouts)
	}
}
