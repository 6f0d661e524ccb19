package node

import "time"

// DebounceDelay is the fixed blocking re-sample delay confirming a button
// press.
const DebounceDelay = 100 * time.Millisecond

// pollButton samples the push button multiplexed onto the reset pin. The
// pin is flipped to input-with-pull-up for the read and restored to output
// at its shadowed level immediately after; the reset line is therefore
// undriven only for the duration of the sample.
//
// A high-to-low transition is confirmed by a second blocking sample after
// DebounceDelay. A confirmed press toggles the logical reset assertion and
// drives the pin accordingly.
func (n *Node) pollButton() {
	level := n.sampleButton()

	if n.btnLast && !level {
		n.sleep(DebounceDelay)
		if !n.sampleButton() {
			n.resetAsserted = !n.resetAsserted
			n.pins.Reset.SetLevel(n.resetLevel(n.resetAsserted))
		}
	}
	n.btnLast = level
}

// sampleButton performs one input excursion on the reset line.
func (n *Node) sampleButton() bool {
	n.pins.Reset.BeginInput()
	level := n.pins.Reset.Read()
	n.pins.Reset.EndInput()
	return level
}
