// Package node runs the sensing node's cooperative tick loop: it paces
// conversions and the LED heartbeat off independent divisor counters, drains
// completed conversions from the front end, applies the repeated-reading
// heuristic, and drives the terminal latch transition.
package node

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/itohio/ntcnode/pkg/afe"
	"github.com/itohio/ntcnode/pkg/detect"
	"github.com/itohio/ntcnode/pkg/gpio"
	"github.com/itohio/ntcnode/pkg/transport"
)

// State is the reset/enable subsystem state.
type State int

const (
	// Sampling is the normal operating state.
	Sampling State = iota
	// Latched is terminal: sampling stopped, enable deasserted, reset
	// asserted. There is no transition back without an external reset.
	Latched
)

func (s State) String() string {
	switch s {
	case Sampling:
		return "sampling"
	case Latched:
		return "latched"
	default:
		return "unknown"
	}
}

// DefaultTick is the nominal period of the loop.
const DefaultTick = 100 * time.Millisecond

// Options configure the scheduler. Divisors are in ticks; a zero divisor is
// promoted to 1.
type Options struct {
	Tick           time.Duration
	LEDDivisor     uint32
	SampleDivisor  uint32
	SessionDivisor uint32
	Resolution     int

	// Heuristic applies the repeated-reading match heuristic to completed
	// batches. Without it readings are only forwarded.
	Heuristic bool

	// Button polls the push button multiplexed onto the reset pin once
	// per tick. Polling stops in the Latched state so the button cannot
	// fight the latch for the pin.
	Button bool

	// ResetActiveLow selects the asserted level of the reset line.
	ResetActiveLow bool

	// Encode formats readings for the transport sink. Defaults to the
	// binary notify payload.
	Encode transport.Encoder
}

// Pins groups the three output lines the node drives.
type Pins struct {
	LED       *gpio.Line
	Reset     *gpio.Line
	NTCEnable *gpio.Line
}

// Node owns all process-wide mutable state: tick counters, the heuristic
// windows, pin shadows, and the completion mailbox. It is mutated from the
// tick loop and from the conversion-complete callback only; the fields they
// share are atomic.
type Node struct {
	opts Options
	pins Pins
	sink transport.Sink
	drv  *afe.Driver
	det  *detect.Detector

	// mailbox is the single-slot hand-off from the completion callback to
	// the tick loop. Overwrite-if-unread: a reading that was never drained
	// is superseded, matching the no-retry policy.
	mailbox  atomic.Pointer[afe.Conversion]
	dropped  atomic.Uint32
	sampling atomic.Bool

	ledCounter     uint32
	sampleCounter  uint32
	sessionCounter uint32
	ticks          uint64

	state         State
	resetAsserted bool
	btnLast       bool

	sleep func(time.Duration) // swapped out in tests
}

// New assembles a node over the given front-end hardware, pins and sink.
// A nil sink selects the no-transport variant.
func New(hw afe.Hardware, pins Pins, sink transport.Sink, opts Options) *Node {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.LEDDivisor == 0 {
		opts.LEDDivisor = 1
	}
	if opts.SampleDivisor == 0 {
		opts.SampleDivisor = 1
	}
	if opts.SessionDivisor == 0 {
		opts.SessionDivisor = 1
	}
	if opts.Encode == nil {
		opts.Encode = transport.EncodeBinary
	}
	if sink == nil {
		sink = transport.Discard
	}

	n := &Node{
		opts:  opts,
		pins:  pins,
		sink:  sink,
		det:   detect.NewDetector(),
		sleep: time.Sleep,
	}
	n.drv = afe.NewDriver(hw, n.onComplete)
	return n
}

// Init performs one-time startup: pin levels, front-end configuration and
// the initial arming of both conversion buffers. A configuration rejection
// is fatal; there is no recovery path.
func (n *Node) Init() error {
	n.pins.Reset.SetLevel(n.resetLevel(false))
	n.pins.NTCEnable.Set()
	n.btnLast = true // pull-up reads high while the button is released

	if err := n.drv.Configure(n.opts.Resolution); err != nil {
		return err
	}
	for b := range afe.NumBuffers {
		if err := n.drv.Arm(b); err != nil {
			return fmt.Errorf("node: initial arm of buffer %d: %w", b, err)
		}
	}
	n.sampling.Store(true)
	return nil
}

// Run drives the loop until ctx is cancelled. Each iteration performs one
// tick and then blocks for the tick period; the loop does no other work
// during the delay. On the device this loop never returns.
func (n *Node) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n.Tick()
		n.sleep(n.opts.Tick)
	}
}

// Tick executes one loop iteration: drain the completion mailbox, advance
// the heartbeat, poll the button, trigger a conversion, and run the one-shot
// session counter.
func (n *Node) Tick() {
	n.ticks++

	n.drainCompleted()

	n.ledCounter++
	if n.ledCounter >= n.opts.LEDDivisor {
		n.pins.LED.Toggle()
		n.ledCounter = 0
	}

	if n.opts.Button && n.state != Latched {
		n.pollButton()
	}

	n.sampleCounter++
	if n.sampleCounter >= n.opts.SampleDivisor {
		n.sampleCounter = 0
		if n.sampling.Load() {
			if err := n.drv.Trigger(); err != nil {
				// A starved pipeline means readings are being
				// dropped permanently: fatal for the sampling
				// subsystem, the rest of the loop continues.
				log.Printf("node: trigger failed, sampling stopped: %v", err)
				n.sampling.Store(false)
			}
		}
	}

	// One-shot session timeout. The counter saturates at the divisor so
	// the transition fires exactly once.
	if n.sessionCounter < n.opts.SessionDivisor {
		n.sessionCounter++
		if n.sessionCounter >= n.opts.SessionDivisor {
			n.latch("session timeout")
		}
	}
}

// onComplete is the conversion-complete callback. It runs with interrupt
// semantics relative to the tick loop, so it only touches atomics: the
// completed buffer goes into the mailbox and is processed on the next tick.
func (n *Node) onComplete(conv afe.Conversion) {
	if !n.sampling.Load() {
		return
	}
	if prev := n.mailbox.Swap(&conv); prev != nil {
		n.dropped.Add(1)
	}
}

// drainCompleted processes at most one completed conversion per tick:
// re-arm the drained buffer, update the heuristic windows, forward the
// reading to the sink.
func (n *Node) drainCompleted() {
	conv := n.mailbox.Swap(nil)
	if conv == nil || !n.sampling.Load() {
		// Conversions completed before sampling stopped are discarded,
		// not processed late.
		return
	}

	if err := n.drv.Arm(conv.Buffer); err != nil {
		log.Printf("node: re-arm of buffer %d failed, sampling stopped: %v", conv.Buffer, err)
		n.sampling.Store(false)
	}

	n.notify(conv.Raw[afe.Channel1], conv.Raw[afe.Channel2])

	if n.opts.Heuristic && n.state != Latched {
		decided, detected := n.det.Observe(conv.Raw[afe.Channel1], conv.Raw[afe.Channel2])
		if decided && detected {
			n.latch("match detected")
		}
	}
}

// notify forwards one reading to the transport sink. NotConnected and Busy
// are dropped silently; any other failure is logged and the loop continues.
func (n *Node) notify(ch1, ch2 int16) {
	err := n.sink.Notify(n.opts.Encode(ch1, ch2))
	if err != nil && !transport.Droppable(err) {
		log.Printf("node: notify failed: %v", err)
	}
}

// latch performs the terminal transition: sampling off, NTC excitation off,
// reset asserted. Idempotent, but both callers already guard it.
func (n *Node) latch(cause string) {
	if n.state == Latched {
		return
	}
	n.state = Latched
	n.sampling.Store(false)
	n.pins.NTCEnable.Clear()
	n.resetAsserted = true
	n.pins.Reset.SetLevel(n.resetLevel(true))
	log.Printf("node: latched: %s", cause)
}

// resetLevel maps the logical assertion state onto the configured polarity.
func (n *Node) resetLevel(asserted bool) bool {
	if asserted {
		return !n.opts.ResetActiveLow
	}
	return n.opts.ResetActiveLow
}

// State returns the reset/enable subsystem state.
func (n *Node) State() State { return n.state }

// Ticks returns the number of completed loop iterations.
func (n *Node) Ticks() uint64 { return n.ticks }

// SamplingEnabled reports whether conversions are still being triggered.
func (n *Node) SamplingEnabled() bool { return n.sampling.Load() }

// Dropped returns the number of completed conversions that were overwritten
// in the mailbox before the loop drained them.
func (n *Node) Dropped() uint32 { return n.dropped.Load() }

// ResetAsserted reports the logical reset line assertion.
func (n *Node) ResetAsserted() bool { return n.resetAsserted }
