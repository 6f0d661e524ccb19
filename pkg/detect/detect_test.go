package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/ntcnode/pkg/detect"
)

func batch(values ...int16) []int16 {
	return values
}

func TestMatchCount(t *testing.T) {
	tests := []struct {
		name   string
		window []int16
		want   int
	}{
		{
			name:   "empty window",
			window: nil,
			want:   0,
		},
		{
			name:   "all distinct",
			window: batch(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15),
			want:   1,
		},
		{
			name:   "all equal",
			window: batch(7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7),
			want:   15,
		},
		{
			name:   "seven of fifteen match reference",
			window: batch(5, 5, 5, 5, 5, 5, 5, 9, 9, 9, 9, 9, 9, 9, 9),
			want:   7,
		},
		{
			name:   "matches counted anywhere in batch",
			window: batch(3, 1, 3, 2, 3, 4, 3, 5, 3, 6, 3, 7, 3, 8, 3),
			want:   8,
		},
		{
			name:   "negative readings compare exactly",
			window: batch(-2, -2, -2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0),
			want:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detect.MatchCount(tt.window))
		})
	}
}

func TestDetected(t *testing.T) {
	// Only counts 7 and 8 trigger; everything outside the band does not.
	for count := 0; count <= detect.WindowSize; count++ {
		want := count == 7 || count == 8
		assert.Equal(t, want, detect.Detected(count), "count=%d", count)
	}
}

func TestWindowBatchLifecycle(t *testing.T) {
	var w detect.Window

	for i := range detect.WindowSize - 1 {
		full := w.Push(int16(i))
		require.False(t, full, "window full after %d pushes", i+1)
	}
	assert.False(t, w.Full())

	full := w.Push(99)
	assert.True(t, full)
	assert.True(t, w.Full())
	assert.Equal(t, detect.WindowSize, w.Len())

	w.Reset()
	assert.Zero(t, w.Len())
	assert.False(t, w.Full())
}

func TestDetectorScenarios(t *testing.T) {
	tests := []struct {
		name     string
		ch1      []int16
		detected bool
	}{
		{
			// Scenario A: seven matches against reference 5.
			name:     "seven matches detects",
			ch1:      batch(5, 5, 5, 5, 5, 5, 5, 9, 9, 9, 9, 9, 9, 9, 9),
			detected: true,
		},
		{
			// Scenario B: all distinct, match count 1.
			name:     "distinct batch does not detect",
			ch1:      batch(10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120, 130, 140, 150),
			detected: false,
		},
		{
			// Scenario C: full 15/15 match is above the band.
			name:     "identical batch does not detect",
			ch1:      batch(42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42),
			detected: false,
		},
		{
			name:     "eight matches detects",
			ch1:      batch(5, 5, 5, 5, 5, 5, 5, 5, 9, 9, 9, 9, 9, 9, 9),
			detected: true,
		},
		{
			name:     "nine matches does not detect",
			ch1:      batch(5, 5, 5, 5, 5, 5, 5, 5, 5, 9, 9, 9, 9, 9, 9),
			detected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := detect.NewDetector()
			// Channel 2 receives distinct values so it never contributes.
			var decided, detected bool
			for i, v := range tt.ch1 {
				decided, detected = d.Observe(v, int16(1000+i))
				if i < len(tt.ch1)-1 {
					require.False(t, decided, "decided early at %d", i)
				}
			}
			assert.True(t, decided)
			assert.Equal(t, tt.detected, detected)
		})
	}
}

func TestDetectorChannelsAreIndependent(t *testing.T) {
	d := detect.NewDetector()

	// Channel 1 distinct, channel 2 carries the seven-match signature.
	var detected bool
	for i := range detect.WindowSize {
		ch2 := int16(5)
		if i >= 7 {
			ch2 = 9
		}
		_, detected = d.Observe(int16(i)*3, ch2)
	}
	assert.True(t, detected, "channel 2 alone must trigger the OR decision")
}

func TestDetectorBatchesDoNotCarryOver(t *testing.T) {
	d := detect.NewDetector()

	// First batch: six matches, just below the band. No detection.
	for i := range detect.WindowSize {
		v := int16(5)
		if i >= 6 {
			v = int16(100 + i)
		}
		decided, detected := d.Observe(v, int16(200+i))
		if decided {
			assert.False(t, detected)
		}
	}
	require.Zero(t, d.Pending(), "windows must be empty between batches")

	// Second batch: one more 5 up front. If batch one leaked into batch
	// two this would mis-count; a fresh batch of one 5 and fourteen
	// distinct values counts exactly 1.
	var decided, detected bool
	for i := range detect.WindowSize {
		v := int16(300 + i)
		if i == 0 {
			v = 5
		}
		decided, detected = d.Observe(v, int16(400+i))
	}
	assert.True(t, decided)
	assert.False(t, detected)
}
