// Package signal holds fixed-rate biosignal channels and reads them from
// delimited text tables.
package signal

import (
	"fmt"
	"math"
)

// Track is one channel of a recording, sampled at a fixed rate.  Sample i
// is at time i/SampleRate seconds; every track starts at t=0.
type Track struct {
	// Label names the channel, e.g. "acc_x".
	Label string
	// Filename is the base name of the recording the track was read from.
	Filename string
	// SampleRate is in Hz.
	SampleRate float64
	// Values holds one value per sample.  Missing cells are NaN.
	Values []float64
}

// NewTrack creates a track.  It panics if rate is not positive.
func NewTrack(label string, values []float64, rate float64, filename string) *Track {
	if !(rate > 0) {
		panic(fmt.Sprintf("signal: track %s: invalid sample rate %v", label, rate))
	}
	return &Track{Label: label, Filename: filename, SampleRate: rate, Values: values}
}

// Len returns the number of samples.
func (t *Track) Len() int { return len(t.Values) }

// Duration returns the length of the track in seconds.
func (t *Track) Duration() float64 {
	return float64(len(t.Values)) / t.SampleRate
}

// Time returns the time of sample i, in seconds.
func (t *Track) Time(i int) float64 {
	return float64(i) / t.SampleRate
}

// Index returns the sample closest to time sec, clamped to [0, Len()-1].
// It returns 0 for an empty track.
func (t *Track) Index(sec float64) int {
	i := int(math.Round(sec * t.SampleRate))
	if i >= len(t.Values) {
		i = len(t.Values) - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Between returns the samples in the closed time range [start, end].  It
// returns nil if the range lies entirely outside the track.
func (t *Track) Between(start, end float64) []float64 {
	if end < start {
		return nil
	}
	lo, hi := math.Round(start*t.SampleRate), math.Round(end*t.SampleRate)
	if lo >= float64(len(t.Values)) || hi < 0 {
		return nil
	}
	return t.Values[t.Index(start) : t.Index(end)+1]
}

// YRange returns the minimum and maximum of the samples in [start, end],
// ignoring NaNs.  Both are NaN if there is no such sample.
func (t *Track) YRange(start, end float64) (min, max float64) {
	min, max = math.NaN(), math.NaN()
	for _, v := range t.Between(start, end) {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return
}

func (t *Track) String() string {
	return fmt.Sprintf("%s:%s(%d samples @ %gHz)", t.Filename, t.Label, len(t.Values), t.SampleRate)
}
