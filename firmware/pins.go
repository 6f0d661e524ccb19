package main

import "machine"

const (
	// Tick loop configuration
	TICK_INTERVAL_MS = 100    // Cooperative tick period in milliseconds (10 Hz)
	LED_DIVISOR      = 2      // Heartbeat toggles every 2nd tick (200 ms period)
	SAMPLE_DIVISOR   = 1      // Conversion triggered every tick
	SESSION_DIVISOR  = 100000 // Session expires after 100000 ticks (~2.8 h)

	// ADC configuration
	ADC_RESOLUTION = 10 // Conversion resolution in bits (0-1023)

	// Detection configuration
	ENABLE_HEURISTIC = true  // Latch on the repeated-reading signature
	ENABLE_BUTTON    = false // Poll the multiplexed button on the reset pin

	// Control pins
	PIN_LED      = machine.P0_24 // Heartbeat LED
	PIN_SR_RESET = machine.P0_13 // Shift register reset, shared with the button
	PIN_NTC_EN   = machine.P0_29 // Excitation rail for both thermistor dividers

	// Thermistor divider taps (AIN6, AIN7)
	PIN_NTC1 = machine.P0_30
	PIN_NTC2 = machine.P0_31
)
