package link

import (
	"log"
	"time"

	"github.com/itohio/ntcnode/pkg/ntc"
)

// Measurement is a reading converted to physical units.
type Measurement struct {
	Timestamp time.Time
	NTC1      float32 // Temperature of channel 1, °C
	NTC2      float32 // Temperature of channel 2, °C
}

// Converter transforms a channel of raw readings into measurements.
type Converter func(in <-chan Reading) <-chan Measurement

// NewConverter returns a converter that maps every reading to temperatures
// using the given thermistor parameters. Readings pinned at either rail
// (excitation off, open or shorted divider) are logged and skipped.
func NewConverter(params ntc.Params, resolution int, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	return func(in <-chan Reading) <-chan Measurement {
		out := make(chan Measurement, bufSize)

		go func() {
			defer close(out)

			for r := range in {
				m, err := convertReading(r, params, resolution)
				if err != nil {
					log.Printf("Failed to convert reading: %v", err)
					continue
				}
				select {
				case out <- m:
				default:
					log.Printf("Measurement channel full, dropping")
				}
			}
		}()

		return out
	}
}

// NewSmoothingConverter returns a converter that averages a moving window of
// the last windowSize readings before converting, to knock noise off the
// displayed temperatures. Rail readings still pass through unaveraged so the
// latch remains visible on the host.
func NewSmoothingConverter(params ntc.Params, resolution int, windowSize int, bufSize int) Converter {
	if windowSize <= 1 {
		return NewConverter(params, resolution, bufSize)
	}
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	return func(in <-chan Reading) <-chan Measurement {
		out := make(chan Measurement, bufSize)

		go func() {
			defer close(out)

			var window []Reading
			for r := range in {
				if !inRange(r, resolution) {
					// The node only emits rail readings when excitation
					// dropped; an average would hide that.
					window = window[:0]
					log.Printf("Reading at rail, resetting average: %+v", r)
					continue
				}

				window = append(window, r)
				if len(window) > windowSize {
					window = window[1:]
				}

				m, err := convertReading(averageReadings(window), params, resolution)
				if err != nil {
					log.Printf("Failed to convert averaged reading: %v", err)
					continue
				}
				select {
				case out <- m:
				default:
					log.Printf("Measurement channel full, dropping")
				}
			}
		}()

		return out
	}
}

func convertReading(r Reading, params ntc.Params, resolution int) (Measurement, error) {
	t1, err := params.Temperature(r.NTC1, resolution)
	if err != nil {
		return Measurement{}, err
	}
	t2, err := params.Temperature(r.NTC2, resolution)
	if err != nil {
		return Measurement{}, err
	}
	return Measurement{Timestamp: r.Timestamp, NTC1: t1, NTC2: t2}, nil
}

func inRange(r Reading, resolution int) bool {
	max := int16(1<<resolution - 1)
	return r.NTC1 > 0 && r.NTC1 < max && r.NTC2 > 0 && r.NTC2 < max
}

func averageReadings(window []Reading) Reading {
	var sum1, sum2 int32
	for _, r := range window {
		sum1 += int32(r.NTC1)
		sum2 += int32(r.NTC2)
	}
	n := int32(len(window))
	return Reading{
		Timestamp: window[len(window)-1].Timestamp,
		NTC1:      int16(sum1 / n),
		NTC2:      int16(sum2 / n),
	}
}
