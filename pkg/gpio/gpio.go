package gpio

// Pin is the minimal surface the node needs from a GPIO pin. The firmware
// provides an implementation backed by machine.Pin; tests use gpiotest.
type Pin interface {
	ConfigureOutput()
	ConfigureInputPullup()
	Set()
	Clear()
	Toggle()
	Read() bool
}

// Direction is the configured direction of a Line.
type Direction int

const (
	// Output drives the pin at the commanded level.
	Output Direction = iota
	// Input reads the pin through a pull-up.
	Input
)

// Line wraps a Pin with a shadow of the commanded direction and level.
// The shadow is what makes input excursions safe: a line briefly switched
// to input can always be restored to output at its last commanded level.
type Line struct {
	pin   Pin
	dir   Direction
	level bool
}

// NewOutput configures pin as an output driven low and returns its Line.
func NewOutput(pin Pin) *Line {
	pin.ConfigureOutput()
	pin.Clear()
	return &Line{pin: pin, dir: Output, level: false}
}

// Set drives the line high and records the level.
func (l *Line) Set() {
	l.pin.Set()
	l.level = true
}

// Clear drives the line low and records the level.
func (l *Line) Clear() {
	l.pin.Clear()
	l.level = false
}

// Toggle inverts the driven level.
func (l *Line) Toggle() {
	l.pin.Toggle()
	l.level = !l.level
}

// SetLevel drives the line to the given level.
func (l *Line) SetLevel(high bool) {
	if high {
		l.Set()
	} else {
		l.Clear()
	}
}

// Level returns the last commanded output level. It is meaningful
// regardless of the current direction.
func (l *Line) Level() bool {
	return l.level
}

// Direction returns the current configured direction.
func (l *Line) Direction() Direction {
	return l.dir
}

// BeginInput reconfigures the line as input-with-pull-up. The commanded
// output level is kept in the shadow so EndInput can restore it.
func (l *Line) BeginInput() {
	l.pin.ConfigureInputPullup()
	l.dir = Input
}

// EndInput restores the line to output at its last commanded level.
func (l *Line) EndInput() {
	l.pin.ConfigureOutput()
	if l.level {
		l.pin.Set()
	} else {
		l.pin.Clear()
	}
	l.dir = Output
}

// Read samples the pin. Only meaningful while the line is configured as
// input; reading an output line returns whatever the hardware latches.
func (l *Line) Read() bool {
	return l.pin.Read()
}
