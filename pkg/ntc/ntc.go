// Package ntc converts raw ADC readings from the thermistor divider into
// temperatures. The node itself never converts; this is host-side display
// math for the monitor, kept in float32 so the firmware could share it.
package ntc

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Params describe one thermistor channel: the divider topology is a fixed
// series resistor on top with the NTC on the bottom, sampled ratiometrically
// against the excitation rail.
type Params struct {
	Beta    float32 // Beta coefficient in Kelvin
	R0      float32 // nominal resistance at T0, ohms
	T0      float32 // reference temperature, Kelvin
	RSeries float32 // series resistor, ohms
}

// Default returns parameters for the stock 10k/B3950 thermistor with a 10k
// series resistor.
func Default() Params {
	return Params{
		Beta:    3950,
		R0:      10000,
		T0:      298.15, // 25 °C
		RSeries: 10000,
	}
}

// Resistance computes the thermistor resistance from a raw reading at the
// given converter resolution. Readings at either rail carry no resistance
// information (the divider saturated or excitation is off) and are rejected.
func (p Params) Resistance(raw int16, resolution int) (float32, error) {
	max := int16(1<<resolution - 1)
	if raw <= 0 || raw >= max {
		return 0, fmt.Errorf("ntc: reading %d outside divider range (0, %d)", raw, max)
	}
	// Vout/Vref = R / (R + Rs)  =>  R = Rs * code / (max - code)
	return p.RSeries * float32(raw) / float32(max-raw), nil
}

// Temperature converts a raw reading to degrees Celsius using the Beta
// equation: 1/T = 1/T0 + ln(R/R0)/Beta.
func (p Params) Temperature(raw int16, resolution int) (float32, error) {
	r, err := p.Resistance(raw, resolution)
	if err != nil {
		return 0, err
	}
	invT := 1/p.T0 + math32.Log(r/p.R0)/p.Beta
	return 1/invT - 273.15, nil
}
