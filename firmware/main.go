//go:generate tinygo flash -target=pca10056

package main

import (
	"context"
	"time"

	"github.com/itohio/ntcnode/pkg/gpio"
	"github.com/itohio/ntcnode/pkg/node"
)

func main() {
	// Give the USB console a moment to enumerate so early prints are seen.
	time.Sleep(2 * time.Second)

	pins := node.Pins{
		LED:       gpio.NewOutput(pin(PIN_LED)),
		Reset:     gpio.NewOutput(pin(PIN_SR_RESET)),
		NTCEnable: gpio.NewOutput(pin(PIN_NTC_EN)),
	}

	sink, err := newSink()
	if err != nil {
		halt(pins, "sink: "+err.Error())
	}

	n := node.New(newFrontEnd(), pins, sink, node.Options{
		Tick:           TICK_INTERVAL_MS * time.Millisecond,
		LEDDivisor:     LED_DIVISOR,
		SampleDivisor:  SAMPLE_DIVISOR,
		SessionDivisor: SESSION_DIVISOR,
		Resolution:     ADC_RESOLUTION,
		Heuristic:      ENABLE_HEURISTIC,
		Button:         ENABLE_BUTTON,
		Encode:         encoder(),
	})
	if err := n.Init(); err != nil {
		halt(pins, "init: "+err.Error())
	}

	n.Run(context.Background())
}

// halt signals an unrecoverable startup failure with a fast LED blink.
// Nothing on the board can service the node once this is reached.
func halt(pins node.Pins, msg string) {
	println("fatal:", msg)
	for {
		pins.LED.Toggle()
		time.Sleep(50 * time.Millisecond)
	}
}
