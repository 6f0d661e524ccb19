// Package detect implements the repeated-reading heuristic that decides when
// the node latches its reset output. Readings are collected per channel into
// non-overlapping batches of WindowSize values; a batch whose first value is
// repeated "some but not too much" is treated as a fault signature.
package detect

const (
	// WindowSize is the batch length per channel.
	WindowSize = 15

	// MatchMin and MatchMax bound the inclusive match-count band that
	// triggers a detection. Counts outside the band, including a full
	// 15/15 match, are not detections.
	MatchMin = 7
	MatchMax = 8
)

// MatchCount counts how many values in w equal w[0], including w[0] itself.
// Equality is exact integer equality; there is no tolerance band.
func MatchCount(w []int16) int {
	if len(w) == 0 {
		return 0
	}
	ref := w[0]
	n := 0
	for _, v := range w {
		if v == ref {
			n++
		}
	}
	return n
}

// Detected reports whether a match count falls inside the trigger band.
func Detected(count int) bool {
	return count >= MatchMin && count <= MatchMax
}

// Window accumulates one batch of raw readings for a single channel.
// The batch is discarded wholesale after every decision; it never slides.
type Window struct {
	values [WindowSize]int16
	n      int
}

// Push appends a reading and reports whether the window is now full.
func (w *Window) Push(v int16) bool {
	w.values[w.n] = v
	w.n++
	return w.n == WindowSize
}

// Len returns the number of accumulated readings.
func (w *Window) Len() int { return w.n }

// Full reports whether the window holds a complete batch.
func (w *Window) Full() bool { return w.n == WindowSize }

// Values returns the accumulated readings.
func (w *Window) Values() []int16 { return w.values[:w.n] }

// Reset empties the window.
func (w *Window) Reset() { w.n = 0 }

// Detect evaluates the full window. It must only be called on a full window;
// a partial batch carries no decision.
func (w *Window) Detect() bool {
	if !w.Full() {
		return false
	}
	return Detected(MatchCount(w.values[:]))
}

// Detector runs the heuristic over both channels in lockstep. One completed
// conversion contributes exactly one reading per channel, so the channel
// windows fill and decide together.
type Detector struct {
	windows [2]Window
}

// NewDetector returns a Detector with empty windows.
func NewDetector() *Detector {
	return &Detector{}
}

// Observe feeds one completed conversion (one reading per channel). When the
// batch completes, decided is true and detected carries the OR of the
// per-channel decisions; the windows are reset to empty either way.
func (d *Detector) Observe(ch1, ch2 int16) (decided, detected bool) {
	full := d.windows[0].Push(ch1)
	d.windows[1].Push(ch2)
	if !full {
		return false, false
	}

	detected = d.windows[0].Detect() || d.windows[1].Detect()
	d.windows[0].Reset()
	d.windows[1].Reset()
	return true, detected
}

// Pending returns how many conversions are accumulated toward the next
// decision.
func (d *Detector) Pending() int {
	return d.windows[0].Len()
}
