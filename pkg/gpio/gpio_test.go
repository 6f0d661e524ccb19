package gpio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/ntcnode/pkg/gpio"
	"github.com/itohio/ntcnode/pkg/gpio/gpiotest"
)

func TestNewOutputStartsLow(t *testing.T) {
	pin := &gpiotest.MockPin{}
	line := gpio.NewOutput(pin)

	assert.Equal(t, gpiotest.ModeOutput, pin.Mode)
	assert.False(t, pin.Level)
	assert.False(t, line.Level())
	assert.Equal(t, gpio.Output, line.Direction())
}

func TestLineLevelShadow(t *testing.T) {
	tests := []struct {
		name string
		ops  func(l *gpio.Line)
		want bool
	}{
		{
			name: "set",
			ops:  func(l *gpio.Line) { l.Set() },
			want: true,
		},
		{
			name: "set then clear",
			ops:  func(l *gpio.Line) { l.Set(); l.Clear() },
			want: false,
		},
		{
			name: "toggle from low",
			ops:  func(l *gpio.Line) { l.Toggle() },
			want: true,
		},
		{
			name: "double toggle",
			ops:  func(l *gpio.Line) { l.Toggle(); l.Toggle() },
			want: false,
		},
		{
			name: "set level",
			ops:  func(l *gpio.Line) { l.SetLevel(true) },
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pin := &gpiotest.MockPin{}
			line := gpio.NewOutput(pin)
			tt.ops(line)
			assert.Equal(t, tt.want, line.Level())
			assert.Equal(t, tt.want, pin.Level)
		})
	}
}

func TestInputExcursionRestoresLevel(t *testing.T) {
	pin := &gpiotest.MockPin{}
	line := gpio.NewOutput(pin)
	line.Set()

	// Switch to input, sample the (externally pulled low) pin, restore.
	pin.Input = false
	line.BeginInput()
	require.Equal(t, gpio.Input, line.Direction())
	require.Equal(t, gpiotest.ModeInputPullup, pin.Mode)
	assert.False(t, line.Read())

	line.EndInput()
	assert.Equal(t, gpio.Output, line.Direction())
	assert.Equal(t, gpiotest.ModeOutput, pin.Mode)

	// Commanded level must survive the excursion.
	assert.True(t, line.Level())
	assert.True(t, pin.Level)
}

func TestReadWhileInputUsesExternalLevel(t *testing.T) {
	pin := &gpiotest.MockPin{}
	line := gpio.NewOutput(pin)
	line.Set() // driven high

	pin.Input = true
	line.BeginInput()
	assert.True(t, line.Read())

	pin.Input = false
	assert.False(t, line.Read())
	line.EndInput()
}
