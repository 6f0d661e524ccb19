// Package afe drives the two-channel analog front end. It owns the
// double-buffered conversion pipeline: callers arm buffers, trigger
// conversions, and receive completed buffers through a callback, mirroring
// how a SAADC-style peripheral hands buffers back in trigger order.
package afe

import (
	"errors"
	"fmt"
)

// Channel identifies one of the two analog inputs.
type Channel uint8

const (
	Channel1 Channel = iota
	Channel2

	// NumChannels is fixed by the hardware design: two thermistor inputs.
	NumChannels = 2

	// NumBuffers is the depth of the ping-pong pipeline.
	NumBuffers = 2

	// DefaultResolution is the converter resolution in bits.
	DefaultResolution = 10
)

var (
	// ErrNotConfigured is returned when the pipeline is used before Configure.
	ErrNotConfigured = errors.New("afe: not configured")

	// ErrNotArmed is returned by Trigger when no buffer is armed. Continuing
	// past it means conversions are silently lost, so callers must treat it
	// as fatal for the sampling subsystem.
	ErrNotArmed = errors.New("afe: no armed buffer")

	// ErrBufferArmed is returned when arming a buffer that is already queued.
	ErrBufferArmed = errors.New("afe: buffer already armed")

	// ErrBadBuffer is returned for a buffer index outside the pipeline.
	ErrBadBuffer = errors.New("afe: unknown buffer")
)

// Sample is one acquired value. Samples are produced only on conversion
// completion and are immutable once produced.
type Sample struct {
	Channel  Channel
	Raw      int16
	Sequence uint32
}

// Conversion is a completed buffer handed to the completion callback by
// value. Buffer names the slot that completed so the callback can re-arm it
// for the cycle after next.
type Conversion struct {
	Buffer   int
	Raw      [NumChannels]int16
	Sequence uint32
}

// Samples expands the conversion into per-channel samples.
func (c Conversion) Samples() [NumChannels]Sample {
	var out [NumChannels]Sample
	for i := range out {
		out[i] = Sample{Channel: Channel(i), Raw: c.Raw[i], Sequence: c.Sequence}
	}
	return out
}

// Hardware abstracts the converter itself. The firmware backs this with
// machine.ADC pins; tests use the simulator in sim.go.
type Hardware interface {
	// Configure prepares both channels at the given resolution in bits.
	// A rejection is a fatal initialization failure.
	Configure(resolution int) error
	// ReadChannel performs one conversion on a single channel.
	ReadChannel(ch Channel) (int16, error)
}

// CompleteFunc receives each completed conversion, in trigger order.
type CompleteFunc func(Conversion)

// Driver sequences conversions through the double-buffered pipeline.
// It is not safe for concurrent use; the node drives it from a single
// cooperative loop, matching the reference interrupt model.
type Driver struct {
	hw         Hardware
	onComplete CompleteFunc

	// armed is the FIFO of buffer slots submitted for upcoming
	// conversions. Completion pops the head, so the buffer handed to the
	// callback is never the one armed for the next trigger.
	armed []int
	seq   uint32

	configured bool
}

// NewDriver returns a Driver delivering completions to onComplete.
func NewDriver(hw Hardware, onComplete CompleteFunc) *Driver {
	return &Driver{
		hw:         hw,
		onComplete: onComplete,
		armed:      make([]int, 0, NumBuffers),
	}
}

// Configure performs one-time channel setup. Both buffers must then be armed
// before the first trigger.
func (d *Driver) Configure(resolution int) error {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	if err := d.hw.Configure(resolution); err != nil {
		return fmt.Errorf("afe: configure rejected: %w", err)
	}
	d.configured = true
	return nil
}

// Arm submits a buffer slot to receive an upcoming conversion. The slot that
// was just drained must be re-armed before the next trigger; failing to do so
// starves the pipeline and Trigger reports ErrNotArmed.
func (d *Driver) Arm(buffer int) error {
	if !d.configured {
		return ErrNotConfigured
	}
	if buffer < 0 || buffer >= NumBuffers {
		return fmt.Errorf("%w: %d", ErrBadBuffer, buffer)
	}
	for _, b := range d.armed {
		if b == buffer {
			return fmt.Errorf("%w: %d", ErrBufferArmed, buffer)
		}
	}
	d.armed = append(d.armed, buffer)
	return nil
}

// Armed reports how many buffers are currently queued.
func (d *Driver) Armed() int { return len(d.armed) }

// Trigger requests one conversion pass over both channels into the buffer at
// the head of the armed queue, delivering the result to the completion
// callback before returning. A trigger with no armed buffer drops the pass:
// nothing is converted and ErrNotArmed is returned for the caller to
// escalate.
func (d *Driver) Trigger() error {
	if !d.configured {
		return ErrNotConfigured
	}
	if len(d.armed) == 0 {
		return ErrNotArmed
	}

	buffer := d.armed[0]
	d.armed = d.armed[1:]

	var conv Conversion
	conv.Buffer = buffer
	for ch := range NumChannels {
		v, err := d.hw.ReadChannel(Channel(ch))
		if err != nil {
			return fmt.Errorf("afe: channel %d conversion: %w", ch, err)
		}
		conv.Raw[ch] = v
	}
	d.seq++
	conv.Sequence = d.seq

	if d.onComplete != nil {
		d.onComplete(conv)
	}
	return nil
}

// Sequence returns the number of completed conversions.
func (d *Driver) Sequence() uint32 { return d.seq }
