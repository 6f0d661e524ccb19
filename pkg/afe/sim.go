package afe

import (
	"errors"
	"sync"
)

// SimConfig tunes the simulated front end.
type SimConfig struct {
	Resolution int  // bits, defaults to DefaultResolution
	Excitation bool // false simulates NTC_EN deasserted: every channel reads 0
}

// Sim is a software Hardware implementation. Tests script exact readings
// with Enqueue; unscripted reads fall back to a ramp so long runs still
// produce plausible, non-repeating values.
type Sim struct {
	mu  sync.Mutex
	cfg SimConfig

	script     [][NumChannels]int16
	ramp       int16
	configured bool
	maxValue   int16
}

// NewSim returns a simulator with the given configuration.
func NewSim(cfg SimConfig) *Sim {
	return &Sim{cfg: cfg}
}

// Configure implements Hardware.
func (s *Sim) Configure(resolution int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resolution <= 0 || resolution > 15 {
		return errors.New("sim: unsupported resolution")
	}
	s.maxValue = int16(1<<resolution - 1)
	s.configured = true
	return nil
}

// Enqueue scripts one conversion worth of readings (one value per channel).
func (s *Sim) Enqueue(values [NumChannels]int16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, values)
}

// EnqueueBatch scripts the same per-channel pair repeatedly.
func (s *Sim) EnqueueBatch(values [NumChannels]int16, times int) {
	for range times {
		s.Enqueue(values)
	}
}

// ReadChannel implements Hardware.
func (s *Sim) ReadChannel(ch Channel) (int16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configured {
		return 0, ErrNotConfigured
	}
	if !s.cfg.Excitation {
		// Excitation disconnected: a valid but meaningless zero reading.
		return 0, nil
	}

	if len(s.script) > 0 {
		v := s.script[0][ch]
		// Drop the scripted pair once the last channel is read.
		if int(ch) == NumChannels-1 {
			s.script = s.script[1:]
		}
		return v, nil
	}

	// Unscripted: a slow ramp offset per channel, wrapped at full scale.
	v := (s.ramp + int16(ch)*37) % (s.maxValue + 1)
	if int(ch) == NumChannels-1 {
		s.ramp = (s.ramp + 13) % (s.maxValue + 1)
	}
	return v, nil
}

// SetExcitation mirrors the NTC enable line into the simulation.
func (s *Sim) SetExcitation(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Excitation = on
}
