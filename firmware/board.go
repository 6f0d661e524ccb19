package main

import (
	"fmt"
	"machine"

	"github.com/itohio/ntcnode/pkg/afe"
	"github.com/itohio/ntcnode/pkg/gpio"
)

// machinePin adapts a machine.Pin to the gpio.Pin interface.
type machinePin struct {
	p machine.Pin
}

var _ gpio.Pin = (*machinePin)(nil)

func pin(p machine.Pin) *machinePin { return &machinePin{p: p} }

func (m *machinePin) ConfigureOutput() {
	m.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
}

func (m *machinePin) ConfigureInputPullup() {
	m.p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

func (m *machinePin) Set()       { m.p.High() }
func (m *machinePin) Clear()     { m.p.Low() }
func (m *machinePin) Toggle()    { m.p.Set(!m.p.Get()) }
func (m *machinePin) Read() bool { return m.p.Get() }

// frontEnd reads the two thermistor dividers through the on-chip ADC.
type frontEnd struct {
	ntc1  machine.ADC
	ntc2  machine.ADC
	shift uint // machine.ADC.Get returns 16-bit left-justified values
}

var _ afe.Hardware = (*frontEnd)(nil)

func newFrontEnd() *frontEnd {
	return &frontEnd{
		ntc1: machine.ADC{Pin: PIN_NTC1},
		ntc2: machine.ADC{Pin: PIN_NTC2},
	}
}

func (f *frontEnd) Configure(resolution int) error {
	machine.InitADC()
	cfg := machine.ADCConfig{Resolution: uint32(resolution)}
	f.ntc1.Configure(cfg)
	f.ntc2.Configure(cfg)
	f.shift = 16 - uint(resolution)
	return nil
}

func (f *frontEnd) ReadChannel(ch afe.Channel) (int16, error) {
	switch ch {
	case afe.Channel1:
		return int16(f.ntc1.Get() >> f.shift), nil
	case afe.Channel2:
		return int16(f.ntc2.Get() >> f.shift), nil
	default:
		return 0, fmt.Errorf("unknown channel %d", ch)
	}
}
