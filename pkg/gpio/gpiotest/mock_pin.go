package gpiotest

import "github.com/itohio/ntcnode/pkg/gpio"

// Mode records the configured direction of a MockPin.
type Mode int

const (
	Unconfigured Mode = iota
	ModeOutput
	ModeInputPullup
)

// MockPin simulates a GPIO pin for tests. It records every configuration
// change and level transition so tests can assert on the full history.
type MockPin struct {
	Mode    Mode
	Level   bool    // driven level while output
	Input   bool    // level seen while input (set by the test)
	History []Event // every operation, in order
}

// Event is one recorded pin operation.
type Event struct {
	Op    string // "output", "input_pullup", "set", "clear", "toggle", "read"
	Level bool
}

// Ensure MockPin implements the pin interface.
var _ gpio.Pin = (*MockPin)(nil)

func (p *MockPin) ConfigureOutput() {
	p.Mode = ModeOutput
	p.History = append(p.History, Event{Op: "output", Level: p.Level})
}

func (p *MockPin) ConfigureInputPullup() {
	p.Mode = ModeInputPullup
	p.History = append(p.History, Event{Op: "input_pullup", Level: p.Input})
}

func (p *MockPin) Set() {
	p.Level = true
	p.History = append(p.History, Event{Op: "set", Level: true})
}

func (p *MockPin) Clear() {
	p.Level = false
	p.History = append(p.History, Event{Op: "clear", Level: false})
}

func (p *MockPin) Toggle() {
	p.Level = !p.Level
	p.History = append(p.History, Event{Op: "toggle", Level: p.Level})
}

// Read returns the simulated input level while configured as input, and the
// driven level otherwise (mirroring how real pins latch).
func (p *MockPin) Read() bool {
	level := p.Level
	if p.Mode == ModeInputPullup {
		level = p.Input
	}
	p.History = append(p.History, Event{Op: "read", Level: level})
	return level
}

// Toggles counts toggle operations, useful for LED cadence assertions.
func (p *MockPin) Toggles() int {
	n := 0
	for _, e := range p.History {
		if e.Op == "toggle" {
			n++
		}
	}
	return n
}
